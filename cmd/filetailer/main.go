// Command filetailer tails a single file across rotations, printing each
// line it sees to stdout and checkpointing its read position so a restart
// resumes without re-emitting already-delivered lines.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sysflow-telemetry/sf-apis/go/logger"

	"github.com/metricsdev/filetailer/config"
	"github.com/metricsdev/filetailer/internal/positionstore"
	"github.com/metricsdev/filetailer/internal/tailer"
	"github.com/metricsdev/filetailer/internal/waker"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (yaml, json, or toml)")
	path := flag.String("path", "", "file to tail (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error.Println("config error:", err)
		os.Exit(1)
	}
	if *path != "" {
		cfg.Path = *path
	}
	if cfg.Path == "" {
		logger.Error.Println("config error: -path flag or \"path\" config key is required")
		os.Exit(1)
	}

	store, err := openStore(cfg)
	if err != nil {
		logger.Error.Println("position store error:", err)
		os.Exit(1)
	}
	defer store.Close()

	listener := &stdoutListener{}

	opts := []tailer.Option{
		tailer.WithPath(cfg.Path),
		tailer.WithPositionStore(store),
		tailer.WithListener(listener),
		tailer.WithReadInterval(cfg.ReadInterval),
		tailer.WithIdentityPrefixBytes(cfg.IdentityPrefixBytes),
	}
	if cfg.InitialPositionEnd {
		opts = append(opts, tailer.WithInitialPosition(tailer.End))
	}

	ctx, cancel := context.WithCancel(context.Background())
	if cfg.UseFSNotify {
		w, err := waker.NewFSNotify(ctx, cfg.Path, waker.NewInterval(ctx, cfg.ReadInterval))
		if err != nil {
			logger.Warn.Println("fsnotify unavailable, falling back to interval polling:", err)
		} else {
			opts = append(opts, tailer.WithWaker(w))
		}
	}

	t, err := tailer.New(opts...)
	if err != nil {
		logger.Error.Println("construction error:", err)
		cancel()
		os.Exit(1)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	logger.Info.Println("tailing", cfg.Path)
	t.Start()

	<-sig
	logger.Info.Println("shutting down")
	cancel()
	t.Stop()
}

func openStore(cfg config.Config) (tailer.PositionStore, error) {
	switch cfg.Store {
	case config.StoreBolt:
		return positionstore.OpenBolt(cfg.StorePath)
	case config.StoreAvro:
		return positionstore.OpenAvro(cfg.StorePath)
	case config.StoreMemory:
		return positionstore.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store kind %q", cfg.Store)
	}
}

// stdoutListener is the default Listener: it writes every line to stdout
// and logs the non-line events, rather than acting on them.
type stdoutListener struct {
	handle *tailer.Tailer
}

func (l *stdoutListener) Initialize(handle *tailer.Tailer) { l.handle = handle }

func (l *stdoutListener) Handle(line []byte) {
	os.Stdout.Write(line)
	os.Stdout.Write([]byte("\n"))
}

func (l *stdoutListener) FileNotFound() {
	logger.Warn.Println("file not found:", l.handle.Path())
}

func (l *stdoutListener) FileRotated() {
	logger.Info.Println("rotation detected:", l.handle.Path())
}

func (l *stdoutListener) HandleError(err error) {
	logger.Error.Println("fatal tailer error:", err)
}
