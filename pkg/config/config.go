// Package config loads the landkit configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds user-tunable settings
type Config struct {
	// RelayURL is the fetch relay endpoint the client posts signed URLs to
	RelayURL string `yaml:"relay_url"`

	// OutputDir is where exports land by default
	OutputDir string `yaml:"output_dir"`

	// RequestTimeoutSeconds bounds a single relay round trip (0 = no limit)
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`

	// WatchDebounceMS delays re-export after a capture file change
	WatchDebounceMS int `yaml:"watch_debounce_ms"`

	// ColorTheme selects the UI theme ("auto", "dark", "light")
	ColorTheme string `yaml:"color_theme"`
}

// DefaultConfig returns a Config struct with default values
func DefaultConfig() *Config {
	return &Config{
		RelayURL:              "http://localhost:8787/fetch",
		OutputDir:             ".",
		RequestTimeoutSeconds: 30,
		WatchDebounceMS:       500,
		ColorTheme:            "auto",
	}
}

// DefaultPath returns the standard config file location
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, "landkit", "config.yaml"), nil
}

// Load reads configuration from the specified file path. A missing file is
// not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified file path
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
