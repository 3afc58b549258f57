// internal/audit/audit.go

// Package audit appends one outcome row per processed batch item to a
// run-scoped CSV log. Rows are flushed as they are written, so a process
// killed mid-run leaves a truthful partial log behind.
package audit

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var header = []string{"old", "new", "status", "message"}

// Writer is a run-scoped audit log. One file per run, timestamp-suffixed.
type Writer struct {
	mu   sync.Mutex
	file *os.File
	csv  *csv.Writer
	path string
}

// NewWriter creates the audit file for one run, creating the parent
// directory as needed. The runID keeps concurrent runs from colliding on
// the same second.
func NewWriter(dir, runID string) (*Writer, error) {
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audit directory: %w", err)
	}

	name := fmt.Sprintf("audit_%s_%s.csv", time.Now().Format("20060102_150405"), runID)
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create audit log: %w", err)
	}

	w := &Writer{file: f, csv: csv.NewWriter(f), path: path}
	if err := w.csv.Write(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write audit header: %w", err)
	}
	w.csv.Flush()
	return w, w.csv.Error()
}

// Record appends one row and flushes it to disk immediately.
func (w *Writer) Record(oldCode, newCode, status, message string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.csv.Write([]string{oldCode, newCode, status, message}); err != nil {
		return err
	}
	w.csv.Flush()
	return w.csv.Error()
}

// Path returns the location of this run's log file.
func (w *Writer) Path() string { return w.path }

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}
