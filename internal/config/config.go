// Package config handles TOML-based configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration wraps time.Duration so it can be written as "500ms" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config holds all application configuration.
type Config struct {
	Player        string   `toml:"player"`
	Format        string   `toml:"format"`
	Input         string   `toml:"input"`
	YtDlpPath     string   `toml:"ytdlp_path"`
	AutoInstall   bool     `toml:"auto_install"`
	PollInterval  Duration `toml:"poll_interval"`
	SettleTimeout Duration `toml:"settle_timeout"`
	StartTimeout  Duration `toml:"start_timeout"`
	Debounce      Duration `toml:"debounce"`
	History       bool     `toml:"history"`
	Debug         bool     `toml:"debug"`
}

// Input modes.
const (
	InputAuto = "auto"
	InputKeys = "keys"
	InputLine = "line"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Player:        "mpv",
		Format:        "best",
		Input:         InputAuto,
		AutoInstall:   false,
		PollInterval:  Duration{time.Second},
		SettleTimeout: Duration{time.Second},
		StartTimeout:  Duration{5 * time.Second},
		Debounce:      Duration{400 * time.Millisecond},
		History:       true,
		Debug:         false,
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "ytplay"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "ytplay"), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file and merges with defaults.
// If the config file doesn't exist, defaults are returned.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err != nil {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	validPlayers := map[string]bool{"mpv": true, "vlc": true}
	if !validPlayers[c.Player] {
		return fmt.Errorf("unsupported player %q (valid: mpv, vlc)", c.Player)
	}

	validInputs := map[string]bool{InputAuto: true, InputKeys: true, InputLine: true}
	if !validInputs[c.Input] {
		return fmt.Errorf("unsupported input mode %q (valid: auto, keys, line)", c.Input)
	}

	if strings.TrimSpace(c.Format) == "" {
		return fmt.Errorf("format selector cannot be empty")
	}

	durations := []struct {
		name string
		d    Duration
	}{
		{"poll_interval", c.PollInterval},
		{"settle_timeout", c.SettleTimeout},
		{"start_timeout", c.StartTimeout},
		{"debounce", c.Debounce},
	}
	for _, d := range durations {
		if d.d.Duration <= 0 {
			return fmt.Errorf("%s must be positive, got %s", d.name, d.d.Duration)
		}
	}

	return nil
}

// HistoryPath returns the path to the history database.
func HistoryPath() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "ytplay", "history.db"), nil
}
