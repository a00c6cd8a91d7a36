package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the root configuration for owl, stored in ~/.owl/config.json.
// The file supports single-line // comments for documentation purposes.
type Config struct {
	// SettingsFile is the settings record. Relative paths are resolved against
	// the config directory.
	SettingsFile string `json:"settings_file"`
	// DatabaseFile is the database file name inside the storage root.
	DatabaseFile string `json:"database_file"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level"`
	// MetricsAddr enables the Prometheus endpoint of `owl watch` when set.
	MetricsAddr string `json:"metrics_addr"`
	// TickInterval is how often `owl watch` refreshes the tray title.
	TickInterval string `json:"tick_interval"`

	// Dir is the directory the config was loaded from.
	Dir string `json:"-"`
}

const (
	DefaultSettingsFile = "settings.json"
	DefaultDatabaseFile = "owl.db"
	DefaultLogLevel     = "info"
	DefaultTickInterval = "1m"

	// EnvPrefix prefixes every environment override, e.g. OWL_LOG_LEVEL.
	EnvPrefix = "OWL"
	// HomeEnv relocates the config directory.
	HomeEnv = "OWL_HOME"
)

var keys = []string{"settings_file", "database_file", "log_level", "metrics_addr", "tick_interval"}

// defaultConfig returns a Config pre-filled with sensible defaults.
func defaultConfig(dir string) Config {
	return Config{
		SettingsFile: DefaultSettingsFile,
		DatabaseFile: DefaultDatabaseFile,
		LogLevel:     DefaultLogLevel,
		TickInterval: DefaultTickInterval,
		Dir:          dir,
	}
}

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing,
// allowing human-readable documentation inside the file.
const configTemplate = `// owl configuration – ~/.owl/config.json
//
// All settings are optional; the built-in defaults shown below work out of
// the box. Every key can be overridden with an OWL_<KEY> environment variable
// or in a .env file next to this one, e.g. OWL_LOG_LEVEL=debug.
{
  // Settings record (storage path, menu bar restriction, dock icon).
  // Relative paths are resolved against this directory.
  "settings_file": "settings.json",

  // Database file name inside the storage root configured in the settings.
  // Change the root with: owl settings storage-path <dir>
  "database_file": "owl.db",

  // Log level: debug, info, warn or error. --verbose forces debug.
  "log_level": "info",

  // Address for the Prometheus /metrics endpoint of "owl watch",
  // e.g. "127.0.0.1:9477". Leave empty to disable.
  "metrics_addr": "",

  // How often "owl watch" refreshes the tray title, as a Go duration.
  "tick_interval": "1m"
}
`

// Dir returns the config directory: $OWL_HOME or ~/.owl.
func Dir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".owl"), nil
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads the config from Dir().
func Load() (Config, error) {
	dir, err := Dir()
	if err != nil {
		return defaultConfig(""), err
	}
	return LoadFrom(dir)
}

// LoadFrom reads dir/config.json, creating it with annotated defaults on
// first run, then applies overrides from dir/.env and OWL_* environment
// variables. The process environment wins over .env.
func LoadFrom(dir string) (Config, error) {
	path := filepath.Join(dir, "config.json")
	cfg := defaultConfig(dir)

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
	case err != nil:
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	default:
		if err := json.Unmarshal(stripLineComments(data), &cfg); err != nil {
			return defaultConfig(dir), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
		}
	}

	if err := applyOverrides(&cfg, filepath.Join(dir, ".env")); err != nil {
		return cfg, err
	}

	// Fill zero-value fields with built-in defaults so callers always get
	// a usable Config even if the user only partially fills in the file.
	def := defaultConfig(dir)
	if cfg.SettingsFile == "" {
		cfg.SettingsFile = def.SettingsFile
	}
	if cfg.DatabaseFile == "" {
		cfg.DatabaseFile = def.DatabaseFile
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	if cfg.TickInterval == "" {
		cfg.TickInterval = def.TickInterval
	}
	if _, err := cfg.Tick(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyOverrides(cfg *Config, envFile string) error {
	dotenv, err := godotenv.Read(envFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading %s: %w", envFile, err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("binding %s: %w", key, err)
		}
		if val, ok := dotenv[EnvPrefix+"_"+strings.ToUpper(key)]; ok {
			v.SetDefault(key, val)
		}
	}

	set := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	set("settings_file", &cfg.SettingsFile)
	set("database_file", &cfg.DatabaseFile)
	set("log_level", &cfg.LogLevel)
	set("metrics_addr", &cfg.MetricsAddr)
	set("tick_interval", &cfg.TickInterval)
	return nil
}

// SettingsPath returns SettingsFile resolved against the config directory.
func (c Config) SettingsPath() string {
	if filepath.IsAbs(c.SettingsFile) {
		return c.SettingsFile
	}
	return filepath.Join(c.Dir, c.SettingsFile)
}

// Tick parses TickInterval.
func (c Config) Tick() (time.Duration, error) {
	d, err := time.ParseDuration(c.TickInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid tick_interval %q: %w", c.TickInterval, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid tick_interval %q: must be positive", c.TickInterval)
	}
	return d, nil
}

// Level maps LogLevel to a slog.Level, defaulting to info.
func (c Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
