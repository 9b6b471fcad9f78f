// Package snapshot wraps a point-in-time capture of a page's rendered
// markup and makes it addressable three ways: by structural (CSS) path, by
// attribute lookup, and by regular-expression search over the flattened
// text. The extraction core only ever sees snapshots, never a live
// browser, which keeps the cascade engine testable against fixture HTML.
package snapshot

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// Snapshot is a read-only capture of a page or one of its sub-regions.
// Its lifetime is one extraction pass.
type Snapshot struct {
	sel *goquery.Selection

	flatOnce sync.Once
	flat     string
}

// FromHTML parses a rendered HTML blob into a Snapshot.
func FromHTML(html string) (*Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("snapshot: parse html: %w", err)
	}
	return &Snapshot{sel: doc.Selection}, nil
}

func fromSelection(sel *goquery.Selection) *Snapshot {
	return &Snapshot{sel: sel}
}

// Find returns the trimmed text of the first element matching the CSS
// selector.
func (s *Snapshot) Find(selector string) (string, bool) {
	m := s.sel.Find(selector).First()
	if m.Length() == 0 {
		return "", false
	}
	return collapse(m.Text()), true
}

// Has reports whether any element matches the selector.
func (s *Snapshot) Has(selector string) bool {
	return s.sel.Find(selector).Length() > 0
}

// Attr returns the named attribute of the first element matching the
// selector.
func (s *Snapshot) Attr(selector, name string) (string, bool) {
	m := s.sel.Find(selector).First()
	if m.Length() == 0 {
		return "", false
	}
	return m.Attr(name)
}

// Region returns the first element matching the selector as a sub-region
// snapshot (e.g. the detail panel of a page).
func (s *Snapshot) Region(selector string) (*Snapshot, bool) {
	m := s.sel.Find(selector).First()
	if m.Length() == 0 {
		return nil, false
	}
	return fromSelection(m), true
}

// Regions returns every element matching the selector as its own
// sub-region snapshot (e.g. one per grid item).
func (s *Snapshot) Regions(selector string) []*Snapshot {
	var out []*Snapshot
	s.sel.Find(selector).Each(func(_ int, m *goquery.Selection) {
		out = append(out, fromSelection(m))
	})
	return out
}

// Text returns the region's whitespace-collapsed flattened text. Computed
// once per snapshot.
func (s *Snapshot) Text() string {
	s.flatOnce.Do(func() {
		s.flat = collapse(s.sel.Text())
	})
	return s.flat
}

// Regex runs the pattern over the flattened text and returns the first
// capture group if the pattern has one, otherwise the whole match.
func (s *Snapshot) Regex(re *regexp.Regexp) (string, bool) {
	m := re.FindStringSubmatch(s.Text())
	if m == nil {
		return "", false
	}
	if len(m) > 1 {
		return m[1], true
	}
	return m[0], true
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
