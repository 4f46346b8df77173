// Package config loads tasklist settings from TOML files in standard locations.
package config

import (
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/vinayprograms/tasklist/errors"
	"github.com/vinayprograms/tasklist/logging"
	"github.com/vinayprograms/tasklist/todo"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
	BackendNATS   = "nats"
)

// Backends lists the accepted values of storage.backend.
var Backends = []string{BackendMemory, BackendBolt, BackendSQLite, BackendNATS}

// FileName is the config file name looked up in the working directory.
const FileName = "tasklist.toml"

// Config holds settings loaded from tasklist.toml.
type Config struct {
	Storage StorageConfig `toml:"storage"`
	View    ViewConfig    `toml:"view"`
	Log     LogConfig     `toml:"log"`
}

// StorageConfig selects and configures the backend.
type StorageConfig struct {
	// Backend is one of memory, bolt, sqlite, nats.
	Backend string `toml:"backend"`

	// Path is the database file for bolt and sqlite. "~" is expanded.
	// Empty means the default under ~/.config/tasklist.
	Path string `toml:"path"`

	// Timeout bounds each backend call where the backend supports it.
	Timeout Duration `toml:"timeout"`

	NATS NATSConfig `toml:"nats"`
}

// NATSConfig configures the nats backend.
type NATSConfig struct {
	URL    string `toml:"url"`
	Bucket string `toml:"bucket"`
}

// ViewConfig holds the initial filter and sort order.
type ViewConfig struct {
	Filter string `toml:"filter"`
	Sort   string `toml:"sort"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// Duration is a time.Duration written as a string such as "5s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
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

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: BackendBolt,
			Timeout: Duration{5 * time.Second},
			NATS: NATSConfig{
				URL:    "nats://127.0.0.1:4222",
				Bucket: "tasklist",
			},
		},
		View: ViewConfig{
			Filter: todo.FilterAll.String(),
			Sort:   todo.RecentFirst.String(),
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Dir returns ~/.config/tasklist, or "" when the home directory is unknown.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "tasklist")
}

// StandardPaths returns the config file locations in order of priority.
func StandardPaths() []string {
	paths := []string{}

	// 1. Current directory
	paths = append(paths, FileName)

	// 2. ~/.config/tasklist/config.toml
	if dir := Dir(); dir != "" {
		paths = append(paths, filepath.Join(dir, "config.toml"))
	}

	return paths
}

// Load reads the config. An explicit path must exist. Otherwise the first
// standard location that exists is used, and defaults apply when none does.
// It returns the path that was read, or "" for defaults.
func Load(explicit string) (*Config, string, error) {
	if explicit != "" {
		path := ExpandPath(explicit)
		cfg, err := LoadFile(path)
		return cfg, path, err
	}

	for _, path := range StandardPaths() {
		if _, err := os.Stat(path); err == nil {
			cfg, err := LoadFile(path)
			if err != nil {
				return nil, path, err
			}
			return cfg, path, nil
		}
	}
	return Default(), "", nil
}

// LoadFile reads one TOML file over the defaults and validates the result.
// Unknown keys are rejected so typos do not silently fall back to defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("config file not found: "+path, errors.WithCause(err))
		}
		return nil, errors.InvalidInput("parse " + path + ": " + err.Error())
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, errors.InvalidInput(path+": unknown keys: "+strings.Join(keys, ", "),
			errors.WithMetadata("path", path))
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, path+": "+errors.As(err).Message())
	}
	return cfg, nil
}

// Validate checks enum values and backend requirements.
func (c *Config) Validate() error {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if !slices.Contains(Backends, c.Storage.Backend) {
		return errors.InvalidInput("storage.backend must be one of " + strings.Join(Backends, ", ") +
			", got " + strconv.Quote(c.Storage.Backend))
	}
	if c.Storage.Timeout.Duration < 0 {
		return errors.InvalidInput("storage.timeout must not be negative")
	}
	if c.Storage.Backend == BackendNATS && strings.TrimSpace(c.Storage.NATS.URL) == "" {
		return errors.InvalidInput("storage.nats.url required for the nats backend")
	}
	if _, err := todo.ParseFilter(c.View.Filter); err != nil {
		return errors.InvalidInput("view.filter: " + errors.As(err).Message())
	}
	if _, err := todo.ParseSortOrder(c.View.Sort); err != nil {
		return errors.InvalidInput("view.sort: " + errors.As(err).Message())
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return errors.InvalidInput("log.level: " + err.Error())
	}
	return nil
}

// Filter returns the configured initial filter.
func (c *Config) Filter() todo.Filter {
	f, _ := todo.ParseFilter(c.View.Filter)
	return f
}

// SortOrder returns the configured initial sort order.
func (c *Config) SortOrder() todo.SortOrder {
	o, _ := todo.ParseSortOrder(c.View.Sort)
	return o
}

// LogLevel returns the configured log level, or WARN when unset.
func (c *Config) LogLevel() logging.Level {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return logging.LevelWarn
	}
	return level
}

// StoragePath returns the expanded database path for file backends.
func (c *Config) StoragePath() string {
	if c.Storage.Path != "" {
		return ExpandPath(c.Storage.Path)
	}
	name := "tasks.db"
	if c.Storage.Backend == BackendSQLite {
		name = "tasks.sqlite"
	}
	if dir := Dir(); dir != "" {
		return filepath.Join(dir, name)
	}
	return name
}

// ExpandPath replaces a leading "~" with the home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
