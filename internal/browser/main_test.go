// internal/browser/main_test.go
package browser

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain verifies no goroutines leak out of the snapshot and login
// helpers. Tests here never start a real Chrome; everything that needs one
// is exercised through the fienta package's Page fakes instead.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
