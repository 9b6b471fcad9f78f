package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"airbnb-harvester/models"
)

func TestCursorPrefersLinkOverHandle(t *testing.T) {
	snap := mustSnap(t, `<nav>
		<a aria-label="Next" href="/s/homes?items_offset=18">Next</a>
		<button aria-label="Next">Next</button>
	</nav>`)

	c := NewPaginationCursor()
	assert.Equal(t, 1, c.Page())

	state := c.Advance(snap)
	assert.False(t, state.Done)
	assert.Equal(t, 2, state.Page)
	assert.Equal(t, "/s/homes?items_offset=18", state.Next.URL)
	assert.Empty(t, state.Next.Handle)
}

func TestCursorFallsBackToClickableHandle(t *testing.T) {
	snap := mustSnap(t, `<nav><button aria-label="Next">Next</button></nav>`)

	c := NewPaginationCursor()
	state := c.Advance(snap)
	assert.False(t, state.Done)
	assert.Equal(t, 2, state.Page)
	assert.Empty(t, state.Next.URL)
	assert.Equal(t, `button[aria-label="Next"]`, state.Next.Handle)
}

func TestCursorDisabledControlExhausts(t *testing.T) {
	snap := mustSnap(t, `<nav>
		<a aria-label="Next" aria-disabled="true" href="/s/homes?items_offset=36">Next</a>
		<button aria-label="Next" disabled>Next</button>
	</nav>`)

	c := NewPaginationCursor()
	state := c.Advance(snap)
	assert.True(t, state.Done)
	assert.True(t, c.Exhausted())
}

func TestCursorAbsentControlExhausts(t *testing.T) {
	snap := mustSnap(t, `<div><p>no pagination here</p></div>`)

	c := NewPaginationCursor()
	state := c.Advance(snap)
	assert.True(t, state.Done)
}

func TestCursorExhaustedIsTerminal(t *testing.T) {
	exhausted := mustSnap(t, `<div></div>`)
	withNext := mustSnap(t, `<a aria-label="Next" href="/page2">Next</a>`)

	c := NewPaginationCursor()
	c.Advance(exhausted)
	assert.True(t, c.Exhausted())

	state := c.Advance(withNext)
	assert.True(t, state.Done, "Exhausted must be terminal even if a control appears later")
}

func TestCursorOnlyMovesForward(t *testing.T) {
	c := NewPaginationCursor()
	pages := []int{c.Page()}

	for i := 0; i < 3; i++ {
		snap := mustSnap(t, `<a aria-label="Next" href="/next">Next</a>`)
		state := c.Advance(snap)
		pages = append(pages, state.Page)
	}

	assert.Equal(t, []int{1, 2, 3, 4}, pages)
	assert.Equal(t, models.PageRef{URL: "/next"}, c.State().Next)
}
