package waker

import (
	"context"
	"time"
)

// DefaultReadInterval is the default poll period for the interval waker.
const DefaultReadInterval = 500 * time.Millisecond

// intervalWaker is the default Trigger: it wakes the caller after a fixed
// duration, or immediately if the context is cancelled.
type intervalWaker struct {
	ctx context.Context
	d   time.Duration
}

// NewInterval returns a Waker that wakes after d has elapsed. ctx, when
// cancelled, surfaces as an immediate wakeup so the caller can observe
// cancellation without waiting out the full interval.
func NewInterval(ctx context.Context, d time.Duration) Waker {
	return &intervalWaker{ctx: ctx, d: d}
}

func (w *intervalWaker) Wake() <-chan struct{} {
	c := make(chan struct{})
	go func() {
		defer close(c)
		t := time.NewTimer(w.d)
		defer t.Stop()
		select {
		case <-t.C:
		case <-w.ctx.Done():
		}
	}()
	return c
}
