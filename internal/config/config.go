// Package config handles searchc configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/lmittmann/tint"
)

// FileName is the config file looked up inside a definitions directory.
const FileName = "searchc.toml"

// Config is the searchc configuration.
type Config struct {
	// DefaultSize is the page size passed to the compiler when a command
	// does not set --size. Zero means no page size.
	DefaultSize int `toml:"default_size"`

	Log   LogConfig   `toml:"log"`
	Store StoreConfig `toml:"store"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`

	// Format is one of text, json, color.
	Format string `toml:"format"`
}

// StoreConfig locates the compile log.
type StoreConfig struct {
	// Path is the SQLite file. Relative paths resolve against the
	// directory holding the config file.
	Path string `toml:"path"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "warn", Format: "text"},
	}
}

// Load reads the config at path. When path is empty it looks for
// searchc.toml in dir and returns Default() if there is none.
func Load(path, dir string) (*Config, error) {
	if path == "" {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		path = candidate
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at a specific path. Keys missing from the
// file keep their default values.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if cfg.Store.Path != "" && !filepath.IsAbs(cfg.Store.Path) {
		cfg.Store.Path = filepath.Join(filepath.Dir(path), cfg.Store.Path)
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if c.DefaultSize < 0 {
		return fmt.Errorf("default_size must not be negative, got %d", c.DefaultSize)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json", "color":
	default:
		return fmt.Errorf("invalid log format: %s", c.Log.Format)
	}
	return nil
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level: %s", s)
	}
}

// NewLogger builds a logger writing to w with the configured handler.
func (c LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}

	var handler slog.Handler
	switch c.Format {
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	case "text":
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	case "color":
		handler = tint.NewHandler(w, &tint.Options{Level: level})
	default:
		return nil, fmt.Errorf("invalid log format: %s", c.Format)
	}
	return slog.New(handler), nil
}
