// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
)

// Default client configuration values.
const (
	DefaultServerURL = "http://127.0.0.1:8888"
	DefaultFormat    = "plain"
	DefaultSince     = "24h"
)

// Config represents the lmk client configuration.
type Config struct {
	Send      SendConfig      `toml:"send"`
	Output    OutputConfig    `toml:"output"`
	History   HistoryConfig   `toml:"history"`
	Watch     WatchConfig     `toml:"watch"`
	Clipboard ClipboardConfig `toml:"clipboard"`
}

// SendConfig holds defaults for `lmk send`.
type SendConfig struct {
	URL     string   `toml:"url"`
	Urgency string   `toml:"urgency"` // Empty lets the daemon decide
	Timeout Duration `toml:"timeout"` // HTTP request timeout

	// Fallback shows the notification through the desktop's own
	// notification service when lmkd cannot be reached.
	Fallback bool `toml:"fallback"`
}

// OutputConfig holds default formatting options.
type OutputConfig struct {
	Format string `toml:"format"` // plain, json, yaml, ids
	Color  bool   `toml:"color"`
}

// HistoryConfig holds defaults for `lmk history`.
type HistoryConfig struct {
	Path  string `toml:"path"`  // Empty uses the daemon's archive
	Since string `toml:"since"` // Default time filter (0 = all time)
	Limit int    `toml:"limit"` // Max entries (0 = unlimited)
}

// WatchConfig holds options for `lmk watch`.
type WatchConfig struct {
	Refresh       Duration `toml:"refresh"` // Poll interval
	ShowDismissed bool     `toml:"show_dismissed"`
}

// ClipboardConfig holds clipboard settings for `lmk watch`.
type ClipboardConfig struct {
	Command string `toml:"command"` // Receives the text on stdin; empty uses the system clipboard
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Send: SendConfig{
			URL:     DefaultServerURL,
			Timeout: Duration(5 * time.Second),
		},
		Output: OutputConfig{
			Format: DefaultFormat,
			Color:  true,
		},
		History: HistoryConfig{
			Since: DefaultSince,
		},
		Watch: WatchConfig{
			Refresh: Duration(time.Second),
		},
	}
}

// ConfigPath returns the path to the client config file.
func ConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "lmk", "lmk.toml")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
