package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airbnb-harvester/models"
	"airbnb-harvester/services"
	"airbnb-harvester/snapshot"
	"airbnb-harvester/storage"
	"airbnb-harvester/utils"
)

func resultsPage(t *testing.T, page, perPage int, lastPage bool) *snapshot.Snapshot {
	t.Helper()

	html := "<html><body><div id='grid'>"
	for i := 1; i <= perPage; i++ {
		n := (page-1)*perPage + i
		html += fmt.Sprintf(`
			<div data-testid="card-container">
				<a href="https://www.airbnb.com/rooms/%d?check_in=2026-09-01">view</a>
				<div data-testid="listing-card-title">Listing %d</div>
				<div data-testid="price-availability-row">$%d night</div>
				<span aria-label="rating">4.%d (1%d)</span>
			</div>`, n, n, 100+n, n%10, n)
	}
	html += "</div><nav>"
	if lastPage {
		html += `<a aria-label="Next" aria-disabled="true" href="#">Next</a>`
	} else {
		html += fmt.Sprintf(`<a aria-label="Next" href="https://www.airbnb.com/s/homes?items_offset=%d">Next</a>`, page*perPage)
	}
	html += "</nav></body></html>"

	snap, err := snapshot.FromHTML(html)
	require.NoError(t, err)
	return snap
}

// TestTwoPageHarvest drives the extraction core over two fixture result
// pages of three listings each, with page 2's next control disabled:
// exactly six unique rows must be committed and the cursor must end
// exhausted after page 2.
func TestTwoPageHarvest(t *testing.T) {
	log := utils.NewTestLogger()
	store, err := storage.NewIncrementalStore(t.TempDir(), "two-page", log)
	require.NoError(t, err)

	builder := services.NewRecordBuilder(nil, log)
	cursor := services.NewPaginationCursor()
	records := make(map[string]*models.ListingRecord)

	const perPage = 3
	pagesVisited := 0

	for !cursor.Exhausted() {
		page := cursor.Page()
		pagesVisited++

		grid := resultsPage(t, page, perPage, page == 2)
		for _, card := range grid.Regions(`[data-testid="card-container"]`) {
			href, ok := card.Attr(`a[href*="/rooms/"]`, "href")
			require.True(t, ok)
			canonical := href[:len(href)-len("?check_in=2026-09-01")]

			set := builder.GridPass(card, canonical)
			rec := builder.Merge(records[canonical], canonical, set, time.Now())
			records[canonical] = rec
			require.NoError(t, store.Upsert(models.EntryFromRecord(rec, "airbnb")))
		}

		cursor.Advance(grid)
	}

	assert.Equal(t, 2, pagesVisited)
	assert.True(t, cursor.Exhausted())
	assert.Equal(t, 6, store.Len())

	seen := map[string]bool{}
	for _, e := range store.Entries() {
		assert.False(t, seen[e.Link], "duplicate link %s", e.Link)
		seen[e.Link] = true
		assert.NotEmpty(t, e.Name)
		assert.NotEmpty(t, e.PricePerNight)
	}

	// row form and document form agree
	f, err := os.Open(store.CSVPath())
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, store.Len(), len(rows)-1)
}
