// Package config loads the settings a host needs to assemble a paqs session.
//
// Values are layered: built-in defaults, then an optional TOML or YAML file
// chosen by extension, then PAQS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "PAQS_"

// Storage drivers.
const (
	StorageMemory = "memory"
	StorageBolt   = "bolt"
	StorageNone   = "none"
)

// Preference sources.
const (
	PreferenceNone   = "none"
	PreferenceManual = "manual"
	PreferenceFile   = "file"
)

var (
	// ErrInvalid wraps every validation failure.
	ErrInvalid = errors.New("config: invalid configuration")
	// ErrUnsupportedFormat is returned for files that are neither TOML nor YAML.
	ErrUnsupportedFormat = errors.New("config: unsupported file format")
)

// StorageConfig selects the storage driver and the keys state is kept under.
type StorageConfig struct {
	Driver   string        `toml:"driver" yaml:"driver" env:"DRIVER"`
	Path     string        `toml:"path" yaml:"path" env:"PATH"`
	Bucket   string        `toml:"bucket" yaml:"bucket" env:"BUCKET"`
	Timeout  time.Duration `toml:"timeout" yaml:"timeout" env:"TIMEOUT"`
	UserKey  string        `toml:"user_key" yaml:"user_key" env:"USER_KEY"`
	ThemeKey string        `toml:"theme_key" yaml:"theme_key" env:"THEME_KEY"`
}

// ThemeConfig names the presentation attribute and dark class.
type ThemeConfig struct {
	Attribute string `toml:"attribute" yaml:"attribute" env:"ATTRIBUTE"`
	DarkClass string `toml:"dark_class" yaml:"dark_class" env:"DARK_CLASS"`
}

// PreferenceConfig selects where the platform color-scheme preference comes from.
type PreferenceConfig struct {
	Source string `toml:"source" yaml:"source" env:"SOURCE"`
	Path   string `toml:"path" yaml:"path" env:"PATH"`
	Dark   bool   `toml:"dark" yaml:"dark" env:"DARK"`
}

// ActivityConfig controls activity event emission.
type ActivityConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled" env:"ENABLED"`
	Channel string `toml:"channel" yaml:"channel" env:"CHANNEL"`
}

// PolicyConfig binds actions to rule expressions. Rules are file-only.
type PolicyConfig struct {
	Engine string            `toml:"engine" yaml:"engine" env:"ENGINE"`
	Rules  map[string]string `toml:"rules" yaml:"rules"`
}

// LogConfig selects the slog level and handler format.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level" env:"LEVEL"`
	Format string `toml:"format" yaml:"format" env:"FORMAT"`
}

// Config is the full host configuration.
type Config struct {
	Storage    StorageConfig    `toml:"storage" yaml:"storage" envPrefix:"STORAGE_"`
	Theme      ThemeConfig      `toml:"theme" yaml:"theme" envPrefix:"THEME_"`
	Preference PreferenceConfig `toml:"preference" yaml:"preference" envPrefix:"PREFERENCE_"`
	Activity   ActivityConfig   `toml:"activity" yaml:"activity" envPrefix:"ACTIVITY_"`
	Policy     PolicyConfig     `toml:"policy" yaml:"policy" envPrefix:"POLICY_"`
	Log        LogConfig        `toml:"log" yaml:"log" envPrefix:"LOG_"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Storage: StorageConfig{
			Driver:   StorageMemory,
			Bucket:   "paqs",
			Timeout:  time.Second,
			UserKey:  "paqs-selected-user",
			ThemeKey: "paqs-theme",
		},
		Theme: ThemeConfig{
			Attribute: "theme",
			DarkClass: "theme-dark",
		},
		Preference: PreferenceConfig{Source: PreferenceNone},
		Activity:   ActivityConfig{Channel: "paqs"},
		Policy:     PolicyConfig{Engine: "expr"},
		Log:        LogConfig{Level: "info", Format: "text"},
	}
}

// Load returns the defaults overlaid with the file at path (skipped when path
// is empty) and the environment, validated.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		if err := DecodeFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := ApplyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DecodeFile decodes path into cfg. Fields absent from the file keep their
// current values.
func DecodeFile(path string, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return fmt.Errorf("config: decode %s: %w", path, err)
		}
		return nil
	case ".yaml", ".yml":
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return fmt.Errorf("config: decode %s: %w", path, err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// ApplyEnv overlays PAQS_* environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("config: parse env: %w", err)
	}
	return nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var problems []error
	switch c.Storage.Driver {
	case StorageMemory, StorageNone:
	case StorageBolt:
		if strings.TrimSpace(c.Storage.Path) == "" {
			problems = append(problems, errors.New("storage.path is required for the bolt driver"))
		}
	default:
		problems = append(problems, fmt.Errorf("storage.driver %q is not one of memory, bolt, none", c.Storage.Driver))
	}
	if c.Storage.UserKey == "" || c.Storage.ThemeKey == "" {
		problems = append(problems, errors.New("storage keys must not be empty"))
	}
	if c.Storage.UserKey == c.Storage.ThemeKey {
		problems = append(problems, errors.New("storage.user_key and storage.theme_key must differ"))
	}
	if c.Storage.Timeout < 0 {
		problems = append(problems, errors.New("storage.timeout must not be negative"))
	}
	if c.Theme.Attribute == "" || c.Theme.DarkClass == "" {
		problems = append(problems, errors.New("theme.attribute and theme.dark_class must not be empty"))
	}
	switch c.Preference.Source {
	case PreferenceNone, PreferenceManual:
	case PreferenceFile:
		if strings.TrimSpace(c.Preference.Path) == "" {
			problems = append(problems, errors.New("preference.path is required for the file source"))
		}
	default:
		problems = append(problems, fmt.Errorf("preference.source %q is not one of none, manual, file", c.Preference.Source))
	}
	switch c.Policy.Engine {
	case "expr", "cel", "js":
	default:
		problems = append(problems, fmt.Errorf("policy.engine %q is not one of expr, cel, js", c.Policy.Engine))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		problems = append(problems, fmt.Errorf("log.format %q is not one of text, json", c.Log.Format))
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(problems...))
}
