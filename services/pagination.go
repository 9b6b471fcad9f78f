package services

import (
	"airbnb-harvester/models"
	"airbnb-harvester/snapshot"
)

// nextLinkSelectors locate a resumable next-page link, most specific
// first.
var nextLinkSelectors = []string{
	`a[aria-label="Next"]`,
	`a[aria-label="next"]`,
	`a[data-testid="pagination-next-button"]`,
	`nav a[href*="items_offset"]`,
}

// nextHandleSelectors locate a clickable next control when no link is
// discoverable. Links are preferred: they can be resumed without
// interaction after a restart.
var nextHandleSelectors = []string{
	`button[aria-label="Next"]`,
	`button[data-testid="pagination-next-button"]`,
}

// PaginationCursor decides, from a page snapshot, whether further result
// pages exist and how to obtain the next one. States are AtPage(n) and
// Exhausted; transitions only move forward and Exhausted is terminal.
type PaginationCursor struct {
	state models.PaginationState
}

// NewPaginationCursor starts at page 1.
func NewPaginationCursor() *PaginationCursor {
	return &PaginationCursor{state: models.PaginationState{Page: 1}}
}

// State returns the current cursor state.
func (c *PaginationCursor) State() models.PaginationState { return c.state }

// Page returns the current page index.
func (c *PaginationCursor) Page() int { return c.state.Page }

// Exhausted reports whether the cursor has reached its terminal state.
func (c *PaginationCursor) Exhausted() bool { return c.state.Done }

// Advance inspects a results-page snapshot for an enabled next control.
// A discoverable link wins over a clickable handle; a disabled or absent
// control transitions to Exhausted. Failure to decide is treated as
// Exhausted, never as an error.
func (c *PaginationCursor) Advance(snap *snapshot.Snapshot) models.PaginationState {
	if c.state.Done {
		return c.state
	}

	for _, sel := range nextLinkSelectors {
		if disabled(snap, sel) {
			continue
		}
		if href, ok := snap.Attr(sel, "href"); ok && href != "" {
			c.state = models.PaginationState{
				Page: c.state.Page + 1,
				Next: models.PageRef{URL: href},
			}
			return c.state
		}
	}

	for _, sel := range nextHandleSelectors {
		if snap.Has(sel) && !disabled(snap, sel) {
			c.state = models.PaginationState{
				Page: c.state.Page + 1,
				Next: models.PageRef{Handle: sel},
			}
			return c.state
		}
	}

	c.state = models.PaginationState{Page: c.state.Page, Done: true}
	return c.state
}

func disabled(snap *snapshot.Snapshot, sel string) bool {
	if !snap.Has(sel) {
		return false
	}
	if v, ok := snap.Attr(sel, "aria-disabled"); ok && v == "true" {
		return true
	}
	if _, ok := snap.Attr(sel, "disabled"); ok {
		return true
	}
	return false
}
