// internal/fienta/page.go
package fienta

import (
	"context"
	"time"
)

// Page is the single shared browser tab every operation borrows. All
// operations are strictly sequential: two simultaneous navigations would
// corrupt each other's notion of "current view", so only one logical
// operation may hold the Page at a time, and each must leave it pointed at
// the listing view before yielding.
//
// The concrete implementation lives in internal/browser; tests substitute a
// fake.
type Page interface {
	// Navigate loads a URL and waits for the page to settle.
	Navigate(ctx context.Context, url string) error

	// Location returns the current URL of the tab.
	Location(ctx context.Context) (string, error)

	// HTML returns a snapshot of the current document for parsing.
	HTML(ctx context.Context) (string, error)

	// Click clicks the first element matching the CSS selector.
	Click(ctx context.Context, selector string) error

	// Fill replaces the value of a text field: select-all, delete, then
	// type. Never a partial overwrite, so no leftover characters survive
	// from a previous value of different length.
	Fill(ctx context.Context, selector, value string) error

	// WaitVisible blocks until the selector is present and visible, or the
	// wait elapses.
	WaitVisible(ctx context.Context, selector string, wait time.Duration) error

	// Settle pauses for a fixed post-action delay.
	Settle(ctx context.Context, d time.Duration) error
}
