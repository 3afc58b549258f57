// internal/fienta/errors.go
package fienta

import (
	"errors"
	"fmt"
)

// Sentinel errors for the per-step failure taxonomy. Sub-steps return these
// wrapped with context; the mutation engine matches them with errors.Is and
// converts item-level failures into audit rows instead of aborting a batch.
var (
	// ErrAuthTimeout is fatal for the run: no session, no continuation.
	ErrAuthTimeout = errors.New("authentication timed out")

	// ErrElementNotFound means no candidate strategy resolved in time.
	ErrElementNotFound = errors.New("element not found")

	// ErrParseMismatch marks usage text that matched no known pattern.
	// It is informational; the row is still emitted with zeroed counters.
	ErrParseMismatch = errors.New("usage text matched no pattern")
)

// NavigationError wraps a navigation or network-settle failure.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation to %s failed: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// VerificationError reports a post-mutation check that did not pass.
type VerificationError struct {
	Op     string
	Code   string
	Reason string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("%s of %q not verified: %s", e.Op, e.Code, e.Reason)
}

// classify maps an item-level error onto a short audit message prefix.
func classify(err error) string {
	var nav *NavigationError
	var verify *VerificationError
	switch {
	case errors.Is(err, ErrElementNotFound):
		return "element not found"
	case errors.As(err, &nav):
		return "navigation failed"
	case errors.As(err, &verify):
		return "verification failed"
	default:
		return "error"
	}
}
