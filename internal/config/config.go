package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Snapshot storage backends
const (
	StoreSQLite = "sqlite"
	StoreFile   = "file"
)

type Config struct {
	// Database settings
	Database DatabaseConfig `yaml:"database"`

	// Countdown behaviour
	Timer TimerConfig `yaml:"timer"`

	// Where the countdown snapshot lives
	Store StoreConfig `yaml:"store"`

	Log LogConfig `yaml:"log"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"` // Path to SQLite database
}

type TimerConfig struct {
	DefaultDuration time.Duration `yaml:"default_duration"` // Length of a new countdown
	TickInterval    time.Duration `yaml:"tick_interval"`    // Display refresh, must be under 1s
	CatchUp         bool          `yaml:"catch_up"`         // Notify completions found on restore
}

type StoreConfig struct {
	Backend  string `yaml:"backend"`   // "sqlite" or "file"
	FilePath string `yaml:"file_path"` // Snapshot path for the file backend
}

type LogConfig struct {
	Path  string `yaml:"path"`  // Empty disables logging
	Level string `yaml:"level"` // debug, info, warn, error
}

// configDir returns ~/.config/focusclock
func configDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home dir unavailable
		return filepath.Join(".", ".config", "focusclock")
	}
	return filepath.Join(homeDir, ".config", "focusclock")
}

// DefaultConfigPath returns ~/.config/focusclock/config.yaml
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	dir := configDir()

	return &Config{
		Database: DatabaseConfig{
			Path: filepath.Join(dir, "focusclock.db"),
		},
		Timer: TimerConfig{
			DefaultDuration: 25 * time.Minute,
			TickInterval:    250 * time.Millisecond,
			CatchUp:         false,
		},
		Store: StoreConfig{
			Backend:  StoreSQLite,
			FilePath: filepath.Join(dir, "snapshot.yaml"),
		},
		Log: LogConfig{
			Path:  filepath.Join(dir, "focusclock.log"),
			Level: "info",
		},
	}
}

// Load loads config from the given path, or returns defaults if file doesn't exist
func Load(path string) (*Config, error) {
	// If file doesn't exist, return defaults
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// LoadDefault loads from the default config path
func LoadDefault() (*Config, error) {
	return Load(DefaultConfigPath())
}

// Validate checks values the countdown engine cannot work with
func (c *Config) Validate() error {
	if c.Timer.DefaultDuration < 0 {
		return fmt.Errorf("timer.default_duration must not be negative")
	}
	if c.Timer.DefaultDuration%time.Second != 0 {
		return fmt.Errorf("timer.default_duration must be whole seconds")
	}
	if c.Timer.TickInterval <= 0 || c.Timer.TickInterval >= time.Second {
		return fmt.Errorf("timer.tick_interval must be between 0 and 1s")
	}
	switch c.Store.Backend {
	case StoreSQLite:
	case StoreFile:
		if c.Store.FilePath == "" {
			return fmt.Errorf("store.file_path is required for the file backend")
		}
	default:
		return fmt.Errorf("unknown store.backend %q", c.Store.Backend)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel maps the configured level name to a slog.Level
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	name := l.Level
	if name == "" {
		name = "info"
	}
	if err := level.UnmarshalText([]byte(strings.ToUpper(name))); err != nil {
		return 0, fmt.Errorf("invalid log.level %q", l.Level)
	}
	return level, nil
}

// Save writes the config to the given path
func (c *Config) Save(path string) error {
	// Create parent directories if they don't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// EnsureDirectories creates all necessary directories (database, snapshot, log)
func (c *Config) EnsureDirectories() error {
	dirs := []string{filepath.Dir(c.Database.Path)}
	if c.Store.Backend == StoreFile {
		dirs = append(dirs, filepath.Dir(c.Store.FilePath))
	}
	if c.Log.Path != "" {
		dirs = append(dirs, filepath.Dir(c.Log.Path))
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
