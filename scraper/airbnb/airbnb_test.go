package airbnb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airbnb-harvester/snapshot"
)

func TestResolveURLMakesRelativeHrefAbsolute(t *testing.T) {
	base := "https://www.airbnb.com/s/Lisbon--Portugal/homes?checkin=2026-09-01"

	// pagination next links are served as relative paths
	assert.Equal(t,
		"https://www.airbnb.com/s/homes?items_offset=18",
		resolveURL(base, "/s/homes?items_offset=18"))

	assert.Equal(t,
		"https://www.airbnb.com/rooms/42?check_in=2026-09-01",
		resolveURL(base, "/rooms/42?check_in=2026-09-01"))

	// absolute hrefs pass through untouched
	assert.Equal(t,
		"https://www.airbnb.com/s/homes?items_offset=36",
		resolveURL(base, "https://www.airbnb.com/s/homes?items_offset=36"))
}

func TestCardURLKeepsQueryForNavigation(t *testing.T) {
	snap, err := snapshot.FromHTML(`<div data-testid="card-container">
		<a href="/rooms/42?check_in=2026-09-01&amp;check_out=2026-09-04&amp;adults=2">view</a>
	</div>`)
	require.NoError(t, err)

	got := (&Scraper{}).cardURL(snap, "https://www.airbnb.com/s/Lisbon--Portugal/homes?checkin=2026-09-01")
	assert.Equal(t,
		"https://www.airbnb.com/rooms/42?check_in=2026-09-01&check_out=2026-09-04&adults=2",
		got, "the navigated URL must keep the stay dates the detail page prices against")

	assert.Equal(t, "https://www.airbnb.com/rooms/42", stripQuery(got),
		"only the record key and dedupe drop the per-sighting query")
}

func TestCardURLWithoutLinkIsEmpty(t *testing.T) {
	snap, err := snapshot.FromHTML(`<div data-testid="card-container"><span>no link</span></div>`)
	require.NoError(t, err)

	assert.Empty(t, (&Scraper{}).cardURL(snap, "https://www.airbnb.com/s/homes"))
}
