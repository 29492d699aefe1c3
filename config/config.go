// Package config loads the tailer's deployment-time settings (file path,
// poll behavior, checkpoint backend) the way the broader pack's drivers do:
// through viper, so a config file can be overridden by environment
// variables without the caller changing any code.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// StoreKind selects the PositionStore backend a tailer checkpoints to.
type StoreKind string

const (
	StoreMemory StoreKind = "memory"
	StoreBolt   StoreKind = "bolt"
	StoreAvro   StoreKind = "avro"
)

// Config is the fully-resolved settings for a single tailer instance.
type Config struct {
	// Path is the file to tail.
	Path string

	// ReadInterval is the poll period used when no filesystem-event waker
	// is available.
	ReadInterval time.Duration

	// InitialPositionEnd reads from the end of a never-before-seen file
	// instead of its start.
	InitialPositionEnd bool

	// IdentityPrefixBytes is the number of leading bytes hashed to derive
	// a file's identity fingerprint.
	IdentityPrefixBytes int

	// UseFSNotify prefers an fsnotify-backed waker over the interval
	// poller when true.
	UseFSNotify bool

	// Store selects the PositionStore backend.
	Store StoreKind

	// StorePath is the backing file for the bolt and avro store kinds;
	// unused for memory.
	StorePath string
}

// defaults mirrors the zero-value defaults tailer.Option applies, so a
// config file only needs to override what it cares about.
func defaults(v *viper.Viper) {
	v.SetDefault("read_interval", "500ms")
	v.SetDefault("initial_position", "start")
	v.SetDefault("identity_prefix_bytes", 512)
	v.SetDefault("use_fsnotify", false)
	v.SetDefault("store", "bolt")
	v.SetDefault("store_path", "positions.db")
}

// Load reads settings from configPath (if non-empty and present), then
// applies FILETAILER_-prefixed environment variable overrides, e.g.
// FILETAILER_READ_INTERVAL=1s. Path is returned empty if neither the config
// file nor the environment set one; callers that accept a path override
// (e.g. a -path flag) should validate it is non-empty after applying theirs.
func Load(configPath string) (Config, error) {
	v := viper.New()
	defaults(v)

	v.SetEnvPrefix("filetailer")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: reading %s: %w", configPath, err)
		}
	}

	path := v.GetString("path")

	interval, err := time.ParseDuration(v.GetString("read_interval"))
	if err != nil {
		return Config{}, fmt.Errorf("config: read_interval: %w", err)
	}

	initialEnd, err := parseInitialPosition(v.GetString("initial_position"))
	if err != nil {
		return Config{}, err
	}

	store := StoreKind(strings.ToLower(v.GetString("store")))
	switch store {
	case StoreMemory, StoreBolt, StoreAvro:
	default:
		return Config{}, fmt.Errorf("config: unknown store kind %q", store)
	}

	return Config{
		Path:                path,
		ReadInterval:        interval,
		InitialPositionEnd:  initialEnd,
		IdentityPrefixBytes: v.GetInt("identity_prefix_bytes"),
		UseFSNotify:         v.GetBool("use_fsnotify"),
		Store:               store,
		StorePath:           v.GetString("store_path"),
	}, nil
}

func parseInitialPosition(s string) (end bool, err error) {
	switch strings.ToLower(s) {
	case "", "start":
		return false, nil
	case "end":
		return true, nil
	default:
		return false, fmt.Errorf("config: initial_position must be \"start\" or \"end\", got %q", s)
	}
}
