package waker

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/sysflow-telemetry/sf-apis/go/logger"
)

// fsnotifyWaker wakes the caller on filesystem write/create/rename events in
// the watched file's directory, falling back to a bounded interval so the
// tailer still notices rotations that don't generate a watchable event for
// this exact path (e.g. the directory entry disappearing then reappearing
// under load).
type fsnotifyWaker struct {
	ctx     context.Context
	watcher *fsnotify.Watcher
	name    string
	fallback Waker
}

// NewFSNotify returns an event-driven Waker watching the directory
// containing path. Each wait also ends when fallback's Wake fires, and a
// watcher error waits out that fallback, so a single missed or coalesced
// event cannot wedge the tailer. Close the returned Waker's watcher via Stop once the tailer using
// it shuts down.
func NewFSNotify(ctx context.Context, path string, fallback Waker) (Waker, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}
	return &fsnotifyWaker{ctx: ctx, watcher: w, name: filepath.Base(path), fallback: fallback}, nil
}

func (w *fsnotifyWaker) Wake() <-chan struct{} {
	c := make(chan struct{})
	go func() {
		defer close(c)
		fallback := w.fallback.Wake()
		for {
			select {
			case ev, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) == w.name {
					return
				}
				// Event for an unrelated file in the same directory; keep
				// waiting for one that matters.
			case err, ok := <-w.watcher.Errors:
				if ok {
					logger.Warn.Println("fsnotify error, falling back to interval wait:", err)
				}
				<-fallback
				return
			case <-fallback:
				return
			case <-w.ctx.Done():
				return
			}
		}
	}()
	return c
}

// Stop releases the underlying filesystem watch.
func (w *fsnotifyWaker) Stop() error {
	return w.watcher.Close()
}
