package tailer

import (
	"time"

	"github.com/metricsdev/filetailer/internal/fingerprint"
	"github.com/metricsdev/filetailer/internal/waker"
)

// config collects the builder surface described in spec.md §6. Required:
// Path, Store, Listener. Optional: ReadInterval (default 500ms),
// InitialPosition (default Start), IdentityPrefixBytes (default 512),
// Waker (default an interval waker built from ReadInterval).
type config struct {
	path      string
	store     PositionStore
	listener  Listener
	waker     waker.Waker
	initial   InitialPosition
	prefixLen int
	interval  time.Duration
}

// Option configures a Tailer at construction time.
type Option func(*config)

// WithPath sets the file path to tail. Required.
func WithPath(path string) Option {
	return func(c *config) { c.path = path }
}

// WithPositionStore sets the durable checkpoint backend. Required.
func WithPositionStore(s PositionStore) Option {
	return func(c *config) { c.store = s }
}

// WithListener sets the line/event sink. Required.
func WithListener(l Listener) Option {
	return func(c *config) { c.listener = l }
}

// WithWaker overrides the default interval Trigger, e.g. with a test waker
// or an fsnotify-backed one.
func WithWaker(w waker.Waker) Option {
	return func(c *config) { c.waker = w }
}

// WithReadInterval sets the poll period used to build the default interval
// waker. Ignored if WithWaker is also given. Default 500ms.
func WithReadInterval(d time.Duration) Option {
	return func(c *config) { c.interval = d }
}

// WithInitialPosition sets where to start reading when no checkpoint exists
// for the file's fingerprint. Default Start.
func WithInitialPosition(p InitialPosition) Option {
	return func(c *config) { c.initial = p }
}

// WithIdentityPrefixBytes overrides the number of leading bytes hashed to
// form the file's identity fingerprint. Default 512.
func WithIdentityPrefixBytes(n int) Option {
	return func(c *config) { c.prefixLen = n }
}

func newConfig(opts []Option) (config, error) {
	c := config{
		initial:   Start,
		prefixLen: fingerprint.PrefixBytes,
		interval:  waker.DefaultReadInterval,
	}
	for _, opt := range opts {
		opt(&c)
	}

	var missing []string
	if c.path == "" {
		missing = append(missing, "path")
	}
	if c.store == nil {
		missing = append(missing, "position store")
	}
	if c.listener == nil {
		missing = append(missing, "listener")
	}
	if len(missing) > 0 {
		return config{}, &ConstructionError{Missing: missing}
	}
	return c, nil
}
