package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/metricsdev/filetailer/internal/tailer"
)

// LinesReceived blocks until snapshot returns at least n lines, or until
// timeout elapses, in which case it fails the test. It's meant to be polled
// against a slice a test's Listener appends to under its own lock, so it
// takes a snapshot func rather than the slice directly.
func LinesReceived(tb testing.TB, n int, timeout time.Duration, snapshot func() []string) []string {
	tb.Helper()
	deadline := time.Now().Add(timeout)
	for {
		lines := snapshot()
		if len(lines) >= n {
			return lines
		}
		if time.Now().After(deadline) {
			tb.Fatalf("timed out waiting for %d lines, got %d: %v", n, len(lines), lines)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// LineRecorder is a minimal tailer.Listener-shaped helper for tests: it
// records every line handled, in order, behind a mutex so it can be
// snapshotted concurrently with the tailer goroutine that's writing to it.
type LineRecorder struct {
	mu    sync.Mutex
	Lines []string

	NotFoundCount int
	RotatedCount  int
	Errors        []error
}

func (r *LineRecorder) Initialize(*tailer.Tailer) {}

func (r *LineRecorder) Handle(line []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Lines = append(r.Lines, string(line))
}

func (r *LineRecorder) FileNotFound() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.NotFoundCount++
}

func (r *LineRecorder) FileRotated() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.RotatedCount++
}

func (r *LineRecorder) HandleError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors = append(r.Errors, err)
}

// Snapshot returns a copy of the lines recorded so far.
func (r *LineRecorder) Snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.Lines))
	copy(out, r.Lines)
	return out
}
