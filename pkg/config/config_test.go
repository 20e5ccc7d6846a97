package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	defaults := DefaultConfig()
	if cfg.RelayURL != defaults.RelayURL {
		t.Errorf("relay URL = %q, want default %q", cfg.RelayURL, defaults.RelayURL)
	}
	if cfg.WatchDebounceMS != defaults.WatchDebounceMS {
		t.Errorf("debounce = %d, want default %d", cfg.WatchDebounceMS, defaults.WatchDebounceMS)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "relay_url: http://relay.example:9999/fetch\noutput_dir: /tmp/exports\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.RelayURL != "http://relay.example:9999/fetch" {
		t.Errorf("relay URL = %q", cfg.RelayURL)
	}
	if cfg.OutputDir != "/tmp/exports" {
		t.Errorf("output dir = %q", cfg.OutputDir)
	}
	// Untouched keys keep their defaults.
	if cfg.RequestTimeoutSeconds != DefaultConfig().RequestTimeoutSeconds {
		t.Errorf("timeout = %d, want default", cfg.RequestTimeoutSeconds)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("relay_url: [broken"), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.OutputDir = "exports"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.OutputDir != "exports" {
		t.Errorf("output dir = %q, want exports", loaded.OutputDir)
	}
}
