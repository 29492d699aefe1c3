// Package waker provides an interface for a routine waker.
// Adapted from https://github.com/google/mtail/tree/main/internal
package waker

// Waker is the Trigger abstraction: it hands back a channel that closes
// once the caller should wake up and look for new work. Wake is the sole
// designated suspension point for the tailer's read and file loops.
type Waker interface {
	// Wake returns a channel that closes when the caller should next poll.
	// Each call returns a fresh channel; implementations need not be safe
	// for overlapping in-flight waits from the same caller.
	Wake() <-chan struct{}
}
