// Package config loads editor configuration from a TOML file. A
// missing file is not an error; everything has a default. Key binding
// overrides live in the same file under [bindings] and are applied by
// the keymap package from the raw document.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config is the editor configuration.
type Config struct {
	Log     LogConfig     `toml:"log"`
	Session SessionConfig `toml:"session"`
	UI      UIConfig      `toml:"ui"`

	raw []byte
}

// LogConfig controls the log file.
type LogConfig struct {
	// Level is the minimum severity to write: debug, info, warn,
	// error.
	Level string `toml:"level"`
	// File is the log file path. Empty means the default cache
	// location.
	File string `toml:"file"`
}

// SessionConfig controls session persistence.
type SessionConfig struct {
	// Path is the session database location. Empty means the default
	// cache location.
	Path string `toml:"path"`
}

// UIConfig holds layout knobs the core needs.
type UIConfig struct {
	// LineHeight is the height of one text line in layout units. A
	// terminal host uses 1 (one cell per line).
	LineHeight float64 `toml:"line_height"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info"},
		UI:  UIConfig{LineHeight: 1},
	}
}

// DefaultPath returns the expected config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "caret", "config.toml")
}

// Load reads the config file at path. A missing file yields the
// defaults; a malformed file is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.UI.LineHeight <= 0 {
		cfg.UI.LineHeight = 1
	}
	cfg.raw = data
	return cfg, nil
}

// Raw returns the raw TOML document for sections other packages own,
// such as [bindings]. Nil when the config came from defaults.
func (c Config) Raw() []byte {
	return c.raw
}

// SessionPath resolves the session database location, creating its
// parent directory.
func (c Config) SessionPath() (string, error) {
	return c.resolve(c.Session.Path, "session.db")
}

// LogPath resolves the log file location, creating its parent
// directory.
func (c Config) LogPath() (string, error) {
	return c.resolve(c.Log.File, "caret.log")
}

func (c Config) resolve(path, defaultName string) (string, error) {
	if path == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			return "", fmt.Errorf("resolve cache dir: %w", err)
		}
		path = filepath.Join(dir, "caret", defaultName)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create parent dir for %s: %w", path, err)
	}
	return path, nil
}
