// internal/audit/audit_test.go
package audit

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterAppendsHeaderAndRows(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWriter(dir, "ab12cd34")
	require.NoError(t, err)

	require.NoError(t, w.Record("OLD10", "NEW10", "ok", ""))
	require.NoError(t, w.Record("GONE", "", "error", "element not found: no candidate resolved"))
	require.NoError(t, w.Record("same", "SAME", "skipped", "old and new are the same code"))
	require.NoError(t, w.Close())

	f, err := os.Open(w.Path())
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, []string{"old", "new", "status", "message"}, rows[0])
	assert.Equal(t, []string{"OLD10", "NEW10", "ok", ""}, rows[1])
	assert.Equal(t, []string{"GONE", "", "error", "element not found: no candidate resolved"}, rows[2])
	assert.Equal(t, []string{"same", "SAME", "skipped", "old and new are the same code"}, rows[3])
}

func TestWriterFileNameCarriesTimestampAndRunID(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWriter(dir, "ab12cd34")
	require.NoError(t, err)
	defer w.Close()

	name := filepath.Base(w.Path())
	assert.Regexp(t, regexp.MustCompile(`^audit_\d{8}_\d{6}_ab12cd34\.csv$`), name)
}

func TestWriterRowsAreReadableBeforeClose(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWriter(dir, "run1")
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Record("A", "B", "ok", ""))

	// Rows are flushed as written; a reader sees them while the run is
	// still in flight.
	data, err := os.ReadFile(w.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "A,B,ok,")
}

func TestWriterCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")

	w, err := NewWriter(dir, "run1")
	require.NoError(t, err)
	defer w.Close()

	_, err = os.Stat(dir)
	assert.NoError(t, err)
}
