// Package airbnb drives a headless browser over Airbnb search results and
// feeds rendered page snapshots to the extraction core. Everything
// markup-dialect-specific (selectors, popup mechanics, tab handling) lives
// here; the core only ever sees snapshots.
package airbnb

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"

	"airbnb-harvester/config"
	"airbnb-harvester/models"
	"airbnb-harvester/services"
	"airbnb-harvester/snapshot"
	"airbnb-harvester/storage"
	"airbnb-harvester/utils"
)

const platform = "airbnb"

// dismissPopupsScript clicks through consent/info popups the way a human
// would. Best-effort: finding nothing is fine.
const dismissPopupsScript = `
	(function() {
		var labels = ['got it', 'accept all', 'ok', 'dismiss', 'close'];
		var btns = document.querySelectorAll('button');
		for (var i = 0; i < btns.length; i++) {
			var t = (btns[i].innerText || '').trim().toLowerCase();
			if (labels.indexOf(t) !== -1) {
				btns[i].click();
				return true;
			}
		}
		return false;
	})()
`

// Scraper walks the search results page by page and runs the three
// extraction passes for every listing, committing after each pass so a
// crash mid-run loses at most the in-flight pass.
type Scraper struct {
	run     *config.RunContext
	builder *services.RecordBuilder
	cursor  *services.PaginationCursor
	writers []storage.EntryWriter

	gate  *utils.RateGate
	retry *utils.RetryConfig
	seen  *utils.URLSet

	records map[string]*models.ListingRecord
}

// New creates a ready-to-use Scraper writing committed entries to every
// given backend.
func New(run *config.RunContext, builder *services.RecordBuilder, writers ...storage.EntryWriter) *Scraper {
	return &Scraper{
		run:     run,
		builder: builder,
		cursor:  services.NewPaginationCursor(),
		writers: writers,
		gate:    utils.NewRateGate(time.Duration(run.Cfg.RateLimitMs) * time.Millisecond),
		retry: &utils.RetryConfig{
			MaxAttempts: run.Cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      run.Log,
		},
		seen:    utils.NewURLSet(),
		records: make(map[string]*models.ListingRecord),
	}
}

// Scrape processes the search URL until pagination is exhausted or the
// page cap is reached (0 = no cap). Only store failures abort the run;
// entity-level failures are logged and skipped.
func (s *Scraper) Scrape(ctx context.Context, searchURL string, maxPages int) error {
	log := s.run.Log
	log.Info("[airbnb] starting harvest — query slug: %s, page cap: %d", s.run.QuerySlug, maxPages)

	chromeBin := findChromeBinary(s.run.Cfg.ChromeBin)
	log.Debug("[airbnb] browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.run.Cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	current := models.PageRef{URL: searchURL}

	for !s.cursor.Exhausted() {
		if maxPages > 0 && s.cursor.Page() > maxPages {
			log.Info("[airbnb] page cap %d reached", maxPages)
			break
		}

		grid, pageURL, err := s.loadResultsPage(browserCtx, current)
		if err != nil {
			// Pagination failure is exhaustion, not a fatal error.
			log.Warn("[airbnb] page %d unreachable, stopping: %v", s.cursor.Page(), err)
			break
		}

		if err := s.processPage(browserCtx, grid, pageURL); err != nil {
			return err
		}

		state := s.cursor.Advance(grid)
		if state.Done {
			log.Info("[airbnb] pagination exhausted after page %d", state.Page)
			break
		}
		current = state.Next
		if current.URL != "" {
			// Next links are usually relative; CDP refuses those.
			current.URL = resolveURL(pageURL, current.URL)
		}
		log.Info("[airbnb] moving to page %d", state.Page)
	}

	log.Info("[airbnb] harvest complete — %d listings seen", s.seen.Size())
	return nil
}

// loadResultsPage brings the browser to the referenced results page
// (preferring navigation by link over clicking), dismisses popups,
// scrolls to force lazy cards to render, and captures a snapshot.
func (s *Scraper) loadResultsPage(browserCtx context.Context, ref models.PageRef) (*snapshot.Snapshot, string, error) {
	s.gate.Wait()

	err := s.retry.Do(fmt.Sprintf("load-page-%d", s.cursor.Page()), func() error {
		tctx, cancel := context.WithTimeout(browserCtx, 90*time.Second)
		defer cancel()

		actions := []chromedp.Action{}
		if ref.URL != "" {
			actions = append(actions, chromedp.Navigate(ref.URL))
		} else if ref.Handle != "" {
			actions = append(actions, chromedp.Click(ref.Handle, chromedp.ByQuery))
		} else {
			return fmt.Errorf("empty page reference")
		}
		actions = append(actions,
			chromedp.Sleep(4*time.Second),
			chromedp.Evaluate(dismissPopupsScript, nil),
			chromedp.Sleep(500*time.Millisecond),
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight / 2)`, nil),
			chromedp.Sleep(1500*time.Millisecond),
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
			chromedp.Sleep(1500*time.Millisecond),
		)
		return chromedp.Run(tctx, actions...)
	})
	if err != nil {
		return nil, "", err
	}

	s.waitQuiet(browserCtx, services.CardSelector)
	return s.capture(browserCtx)
}

// processPage runs the grid, detail and recovery passes for every card on
// one results page. Store failures propagate; everything else is local.
func (s *Scraper) processPage(browserCtx context.Context, grid *snapshot.Snapshot, pageURL string) error {
	log := s.run.Log
	cards := grid.Regions(services.CardSelector)
	log.Info("[airbnb] page %d — %d cards found", s.cursor.Page(), len(cards))

	limit := s.run.Cfg.ListingsPerPage
	for i, card := range cards {
		if limit > 0 && i >= limit {
			break
		}

		detailURL := s.cardURL(card, pageURL)
		canonical := ""
		if detailURL != "" {
			canonical = stripQuery(detailURL)
			if !s.seen.Add(canonical) {
				log.Debug("[airbnb] duplicate listing skipped: %s", canonical)
				continue
			}
		}

		if err := s.processListing(browserCtx, card, i, detailURL, canonical); err != nil {
			if isStoreError(err) {
				return err
			}
			log.Warn("[airbnb] listing %d failed, continuing: %v", i+1, err)
		}
	}
	return nil
}

// processListing runs the three passes for one entity. The grid pass is
// committed as soon as the canonical key is known, before any detail
// results are consumed, so a detail-page failure can never lose it.
func (s *Scraper) processListing(browserCtx context.Context, card *snapshot.Snapshot, index int, detailURL, canonical string) error {
	log := s.run.Log

	detail, tabURL, err := s.openListing(browserCtx, index, detailURL)
	if canonical == "" && tabURL != "" {
		// Click-opened tab: the canonical key only becomes known here.
		canonical = stripQuery(tabURL)
		if !s.seen.Add(canonical) {
			return nil
		}
	}
	if canonical == "" {
		return fmt.Errorf("no canonical URL for card %d: %v", index+1, err)
	}

	gridSet := s.builder.GridPass(card, canonical)
	rec := s.builder.Merge(s.records[canonical], canonical, gridSet, time.Now())
	s.records[canonical] = rec
	if cErr := s.commit(rec); cErr != nil {
		return cErr
	}

	if err != nil {
		return fmt.Errorf("detail page unreachable for %s: %w", canonical, err)
	}

	detailSet := s.builder.DetailPass(browserCtx, detail)
	rec = s.builder.Merge(rec, canonical, detailSet, time.Now())
	s.records[canonical] = rec
	if cErr := s.commit(rec); cErr != nil {
		return cErr
	}

	recoverySet := s.builder.RecoveryPass(browserCtx, detail.Text(), rec)
	if len(recoverySet.Outcomes) > 0 {
		rec = s.builder.Merge(rec, canonical, recoverySet, time.Now())
		s.records[canonical] = rec
		if cErr := s.commit(rec); cErr != nil {
			return cErr
		}
	}

	log.Debug("[airbnb] committed %s (%d fields known)", canonical, len(rec.Fields))
	return nil
}

// openListing captures the listing's detail page. A discoverable link is
// preferred (navigate in a fresh tab, query intact: the stay dates in it
// decide whether the page renders a total price and night count); a card
// without one is clicked and the resulting new tab awaited.
func (s *Scraper) openListing(browserCtx context.Context, index int, detailURL string) (*snapshot.Snapshot, string, error) {
	s.gate.Wait()

	if detailURL != "" {
		tabCtx, cancel := chromedp.NewContext(browserCtx)
		defer cancel()

		err := s.retry.Do("detail-page", func() error {
			tctx, tcancel := context.WithTimeout(tabCtx, 60*time.Second)
			defer tcancel()
			return chromedp.Run(tctx,
				chromedp.Navigate(detailURL),
				chromedp.Sleep(3*time.Second),
				chromedp.Evaluate(dismissPopupsScript, nil),
				chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
				chromedp.Sleep(1500*time.Millisecond),
			)
		})
		if err != nil {
			return nil, "", err
		}
		s.waitQuiet(tabCtx, services.OverviewSelector)
		return s.capture(tabCtx)
	}

	return s.clickAndAwaitNewTab(browserCtx, index)
}

// clickAndAwaitNewTab clicks the nth card and waits for the listing tab
// Airbnb opens, then captures it.
func (s *Scraper) clickAndAwaitNewTab(browserCtx context.Context, index int) (*snapshot.Snapshot, string, error) {
	ch := chromedp.WaitNewTarget(browserCtx, func(info *target.Info) bool {
		return strings.Contains(info.URL, "/rooms/")
	})

	sel := fmt.Sprintf(`[data-testid="card-container"]:nth-of-type(%d) a`, index+1)
	if err := chromedp.Run(browserCtx, chromedp.Click(sel, chromedp.ByQuery)); err != nil {
		return nil, "", fmt.Errorf("click card %d: %w", index+1, err)
	}

	var targetID target.ID
	select {
	case targetID = <-ch:
	case <-time.After(time.Duration(s.run.Cfg.WaitTimeoutMs) * time.Millisecond):
		return nil, "", fmt.Errorf("no listing tab appeared for card %d", index+1)
	}

	tabCtx, cancel := chromedp.NewContext(browserCtx, chromedp.WithTargetID(targetID))
	defer cancel()

	if err := chromedp.Run(tabCtx, chromedp.Sleep(3*time.Second)); err != nil {
		return nil, "", err
	}
	s.waitQuiet(tabCtx, services.OverviewSelector)
	return s.capture(tabCtx)
}

// capture snapshots the current page's rendered markup and URL.
func (s *Scraper) capture(ctx context.Context) (*snapshot.Snapshot, string, error) {
	var html, currentURL string
	err := chromedp.Run(ctx,
		chromedp.Location(&currentURL),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, "", fmt.Errorf("capture page: %w", err)
	}

	snap, err := snapshot.FromHTML(html)
	if err != nil {
		return nil, "", err
	}
	return snap, currentURL, nil
}

// waitQuiet waits for a selector within the configured bound. A timeout
// is strategy failure downstream, never an error here.
func (s *Scraper) waitQuiet(ctx context.Context, sel string) {
	tctx, cancel := context.WithTimeout(ctx, time.Duration(s.run.Cfg.WaitTimeoutMs)*time.Millisecond)
	defer cancel()
	_ = chromedp.Run(tctx, chromedp.WaitReady(sel, chromedp.ByQuery))
}

// cardURL resolves a card's room link against the results page URL. The
// query string is kept: the check-in and check-out dates in it decide what
// pricing the detail page renders. An empty result means the card carries
// no link and must be opened by clicking.
func (s *Scraper) cardURL(card *snapshot.Snapshot, pageURL string) string {
	href, ok := card.Attr(services.CardLinkSelector, "href")
	if !ok || href == "" {
		return ""
	}
	return resolveURL(pageURL, href)
}

// resolveURL makes a possibly-relative href absolute against the page it
// was found on.
func resolveURL(pageURL, href string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	rel, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(rel).String()
}

// stripQuery reduces a listing URL to its canonical form: scheme, host
// and path. Query parameters (check-in dates, source tracking) vary
// between sightings of the same entity.
func stripQuery(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// commit flattens the record and upserts it into every backend. Store
// failures are the one fatal error class.
func (s *Scraper) commit(rec *models.ListingRecord) error {
	entry := models.EntryFromRecord(rec, platform)
	for _, w := range s.writers {
		if err := w.Upsert(entry); err != nil {
			return &storeError{err: fmt.Errorf("commit %s: %w", rec.URL, err)}
		}
	}
	return nil
}

// storeError marks persistence failures so the page loop can distinguish
// them from skippable entity failures.
type storeError struct {
	err error
}

func (e *storeError) Error() string { return e.err.Error() }
func (e *storeError) Unwrap() error { return e.err }

func isStoreError(err error) bool {
	_, ok := err.(*storeError)
	return ok
}

// findChromeBinary locates a Chrome/Chromium binary, preferring the
// configured path.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
