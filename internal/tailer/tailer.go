package tailer

import (
	"context"
	"os"
	"sync/atomic"
	"time"

	"github.com/metricsdev/filetailer/internal/fingerprint"
	"github.com/metricsdev/filetailer/internal/waker"
)

// Tailer is the top-level file-loop/read-loop state machine: CLOSED ->
// RESUMING -> READING -> (rotate) -> CLOSED, until stopped or a fatal error
// is reported to the listener.
type Tailer struct {
	cfg    config
	waker  waker.Waker
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	framer *Framer

	running int32

	// per-session mutable state
	position int64
	identity Identity
}

// New builds a Tailer from the given options, ready to Start. Required
// options are Path, PositionStore, and Listener; a missing one returns a
// *ConstructionError rather than panicking.
func New(opts ...Option) (*Tailer, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	t := &Tailer{
		cfg:     cfg,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		framer:  NewFramer(),
		running: 1,
	}
	if cfg.waker != nil {
		t.waker = cfg.waker
	} else {
		t.waker = waker.NewInterval(ctx, cfg.interval)
	}
	cfg.listener.Initialize(t)
	return t, nil
}

// Path returns the file path this tailer follows.
func (t *Tailer) Path() string { return t.cfg.path }

// Start begins the file loop in a dedicated goroutine.
func (t *Tailer) Start() {
	go t.run()
}

// Stop requests termination and blocks until the tailer has released its
// resources. Safe to call once; a cancellation signal from the context is
// the only other path to the same shutdown sequence.
func (t *Tailer) Stop() {
	atomic.StoreInt32(&t.running, 0)
	t.cancel()
	<-t.done
}

func (t *Tailer) isRunning() bool {
	return atomic.LoadInt32(&t.running) != 0
}

func nowMs() int64 {
	return time.Now().UnixNano() / int64(time.Millisecond)
}

// run drives CLOSED -> RESUMING -> READING -> CLOSED until stopped.
func (t *Tailer) run() {
	defer close(t.done)

	initial := t.cfg.initial
	for t.isRunning() {
		f, ok := t.open()
		if !ok {
			return
		}

		if err := t.resume(f, initial); err != nil {
			f.Close()
			t.cfg.listener.HandleError(err)
			return
		}

		rotated, err := t.readUntilRotatedOrStopped(f)
		f.Close()
		if err != nil {
			t.cfg.listener.HandleError(err)
			return
		}
		if !rotated {
			return
		}

		t.cfg.listener.FileRotated()
		// A rotated-in file is, by definition, new: subsequent reopens in
		// this session start fresh rather than reusing the prior initial
		// position preference.
		initial = Start
		t.identity = Identity{}
		t.position = 0
	}
}

// open repeatedly attempts to open the path, notifying the listener and
// waiting between attempts on not-found. A non-not-found error is fatal.
func (t *Tailer) open() (*os.File, bool) {
	for t.isRunning() {
		f, err := os.Open(t.cfg.path)
		if err == nil {
			return f, true
		}
		if !os.IsNotExist(err) {
			t.cfg.listener.HandleError(err)
			atomic.StoreInt32(&t.running, 0)
			return nil, false
		}
		t.cfg.listener.FileNotFound()
		select {
		case <-t.waker.Wake():
		case <-t.ctx.Done():
			return nil, false
		}
	}
	return nil, false
}

// resume computes the file's identity (if it is already large enough) and
// seats the tailer at its checkpointed offset, or at the configured initial
// position if no checkpoint exists for that identity.
func (t *Tailer) resume(f *os.File, initial InitialPosition) error {
	fi, err := f.Stat()
	if err != nil {
		return err
	}
	length := fi.Size()

	fp, ok, err := fingerprint.Of(t.cfg.path, t.cfg.prefixLen)
	if err != nil {
		return err
	}
	if !ok {
		t.identity = Identity{}
		t.position = initialOffset(initial, length)
		return nil
	}

	t.identity = Identity{Hash: fp, HashBytes: t.cfg.prefixLen}
	off, found, err := t.cfg.store.Get(fp)
	if err != nil {
		return err
	}
	if found {
		t.position = int64(off)
		return nil
	}
	t.position = initialOffset(initial, length)
	return nil
}

func initialOffset(p InitialPosition, length int64) int64 {
	if p == End {
		return length
	}
	return 0
}

// readUntilRotatedOrStopped is the READING state: it polls, reads available
// lines, checkpoints, and detects rotation until told to stop or until a
// rotation is confirmed, in which case it performs one more drain cycle
// before returning. A read that finds no bytes despite the size check
// reports rotation at once, without a drain cycle.
func (t *Tailer) readUntilRotatedOrStopped(f *os.File) (rotated bool, err error) {
	lastCheckedMs := nowMs()

	// Checkpointing inline, per line, as each newline boundary is crossed
	// (rather than once per ReadFrom batch) keeps I3/P3 intact: a crash
	// after the listener has handled a line can re-emit at most that one
	// line on restart, never the rest of an in-flight batch.
	onLine := func(line []byte, endPos int64) error {
		t.cfg.listener.Handle(line)
		t.position = endPos
		return t.checkpoint()
	}

	for t.isRunning() {
		decision, _, derr := Detect(t.cfg.path, f, t.position, lastCheckedMs, t.identity)
		if derr != nil {
			return false, derr
		}

		switch decision {
		case DecisionRotated:
			if err := t.drain(f, onLine); err != nil {
				return false, err
			}
			return true, nil

		case DecisionRead:
			newPos, read, rerr := t.framer.ReadFrom(f, t.position, onLine)
			t.position = newPos
			if rerr != nil {
				return false, rerr
			}
			if !read {
				// Size check promised data but the read came back empty:
				// the held file was rotated out from under us and the
				// replacement happens to be longer. Rotate without
				// draining further from the stale descriptor.
				return true, nil
			}

		case DecisionWait:
			// nothing to do this poll
		}

		if t.identity.Hash == "" {
			if fp, ok, ferr := fingerprint.Of(t.cfg.path, t.cfg.prefixLen); ferr == nil && ok {
				t.identity = Identity{Hash: fp, HashBytes: t.cfg.prefixLen}
			}
		}

		lastCheckedMs = nowMs()
		select {
		case <-t.waker.Wake():
		case <-t.ctx.Done():
			return false, nil
		}
	}
	return false, nil
}

// drain grants one more wait+read cycle to flush any late writes to the old
// file before the file loop reopens by name: after the wait it reads until
// no further complete line is framed, so a trailing partial line ends the
// drain. onLine checkpoints inline per line, same as the main read loop.
func (t *Tailer) drain(f *os.File, onLine LineFunc) error {
	select {
	case <-t.waker.Wake():
	case <-t.ctx.Done():
		return nil
	}
	for {
		prev := t.position
		newPos, read, err := t.framer.ReadFrom(f, t.position, onLine)
		t.position = newPos
		if err != nil {
			return err
		}
		if !read || newPos == prev {
			return nil
		}
	}
}

// checkpoint durably records the current read position, keyed by the
// currently-held identity hash. A checkpoint write occurs only with a
// present hash: an absent identity means the file is still too short to
// fingerprint, and recording a position with no key to hang it on would be
// unrecoverable on restart. Called once per framed line (see onLine in
// readUntilRotatedOrStopped) so a checkpoint never lags more than a single
// line behind what has been delivered to the listener.
func (t *Tailer) checkpoint() error {
	if t.identity.Hash == "" {
		return nil
	}
	return t.cfg.store.Set(t.identity.Hash, uint64(t.position))
}
