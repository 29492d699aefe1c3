package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/metricsdev/filetailer/config"
	"github.com/metricsdev/filetailer/internal/testutil"
)

func TestLoadAppliesDefaultsWithNoConfigFile(t *testing.T) {
	cfg, err := config.Load("")
	testutil.FatalIfErr(t, err)

	if cfg.Path != "" {
		t.Fatalf("expected empty path with no config file or env override, got %q", cfg.Path)
	}
	if cfg.ReadInterval != 500*time.Millisecond {
		t.Fatalf("expected default read interval 500ms, got %s", cfg.ReadInterval)
	}
	if cfg.InitialPositionEnd {
		t.Fatal("expected default initial position to be start, not end")
	}
	if cfg.IdentityPrefixBytes != 512 {
		t.Fatalf("expected default identity prefix 512, got %d", cfg.IdentityPrefixBytes)
	}
	if cfg.Store != config.StoreBolt {
		t.Fatalf("expected default store kind bolt, got %q", cfg.Store)
	}
}

func TestLoadReadsYAMLConfigFile(t *testing.T) {
	dir := testutil.TestTempDir(t)
	path := dir + "/config.yaml"
	testutil.FatalIfErr(t, os.WriteFile(path, []byte(
		"path: /var/log/app.log\n"+
			"read_interval: 1s\n"+
			"initial_position: end\n"+
			"identity_prefix_bytes: 1024\n"+
			"store: memory\n",
	), 0o600))

	cfg, err := config.Load(path)
	testutil.FatalIfErr(t, err)

	if cfg.Path != "/var/log/app.log" {
		t.Fatalf("expected path from config file, got %q", cfg.Path)
	}
	if cfg.ReadInterval != time.Second {
		t.Fatalf("expected read interval 1s, got %s", cfg.ReadInterval)
	}
	if !cfg.InitialPositionEnd {
		t.Fatal("expected initial_position: end to set InitialPositionEnd")
	}
	if cfg.IdentityPrefixBytes != 1024 {
		t.Fatalf("expected identity_prefix_bytes 1024, got %d", cfg.IdentityPrefixBytes)
	}
	if cfg.Store != config.StoreMemory {
		t.Fatalf("expected store memory, got %q", cfg.Store)
	}
}

func TestLoadEnvironmentOverridesConfigFile(t *testing.T) {
	dir := testutil.TestTempDir(t)
	path := dir + "/config.yaml"
	testutil.FatalIfErr(t, os.WriteFile(path, []byte("path: /var/log/app.log\nread_interval: 1s\n"), 0o600))

	t.Setenv("FILETAILER_READ_INTERVAL", "2s")

	cfg, err := config.Load(path)
	testutil.FatalIfErr(t, err)
	if cfg.ReadInterval != 2*time.Second {
		t.Fatalf("expected environment override to win, got %s", cfg.ReadInterval)
	}
}

func TestLoadRejectsUnknownStoreKind(t *testing.T) {
	dir := testutil.TestTempDir(t)
	path := dir + "/config.yaml"
	testutil.FatalIfErr(t, os.WriteFile(path, []byte("path: /var/log/app.log\nstore: sqlite\n"), 0o600))

	_, err := config.Load(path)
	if err == nil {
		t.Fatal("expected an error for an unknown store kind")
	}
}

func TestLoadRejectsUnparseableReadInterval(t *testing.T) {
	dir := testutil.TestTempDir(t)
	path := dir + "/config.yaml"
	testutil.FatalIfErr(t, os.WriteFile(path, []byte("path: /var/log/app.log\nread_interval: not-a-duration\n"), 0o600))

	_, err := config.Load(path)
	if err == nil {
		t.Fatal("expected an error for an unparseable read_interval")
	}
}
