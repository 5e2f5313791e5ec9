// Package config provides configuration management for Scriptdeck.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Default configuration values.
const (
	DefaultConfigDir  = ".config/scriptdeck"
	DefaultConfigFile = "config.yaml"
	DefaultDataDir    = ".local/share/scriptdeck"
)

// defaultTokenTTL is the download token lifetime used when none is
// configured.
const defaultTokenTTL = 24 * time.Hour

// Sentinel errors for configuration operations.
var (
	ErrInvalidKey      = errors.New("invalid configuration key")
	ErrInvalidDuration = errors.New("invalid duration value")
	ErrNoEditor        = errors.New("$EDITOR environment variable not set")
)

// validKeys is built once from Config struct reflection.
var validKeys = buildValidKeys()

// validate is the shared validator instance.
var validate = validator.New()

// Config represents the full Scriptdeck configuration.
type Config struct {
	Default  DefaultConfig  `mapstructure:"default"`
	Storage  StorageConfig  `mapstructure:"storage" validate:"required"`
	Download DownloadConfig `mapstructure:"download"`
	Alerts   AlertsConfig   `mapstructure:"alerts"`
}

// DefaultConfig holds defaults applied to new executions.
type DefaultConfig struct {
	// Owner is the audit identity used when none is supplied. Empty means a
	// generated name is used instead.
	Owner string `mapstructure:"owner"`
}

// StorageConfig holds storage location configuration.
type StorageConfig struct {
	Scripts string `mapstructure:"scripts" validate:"required"`
	Logs    string `mapstructure:"logs" validate:"required"`
	Temp    string `mapstructure:"temp" validate:"required"`
}

// DownloadConfig holds result file download configuration.
type DownloadConfig struct {
	TokenTTL time.Duration `mapstructure:"token_ttl" validate:"min=0"`
}

// AlertsConfig holds alert destination configuration.
type AlertsConfig struct {
	Webhooks []WebhookConfig `mapstructure:"webhooks" validate:"dive"`
}

// WebhookConfig describes one alert webhook destination.
type WebhookConfig struct {
	Name string `mapstructure:"name" validate:"required"`
	URL  string `mapstructure:"url" validate:"required,url"`
}

// Validate checks the configuration for errors using struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// TokenTTL returns the configured download token lifetime, falling back to
// the default when unset.
func (c *Config) TokenTTL() time.Duration {
	if c.Download.TokenTTL <= 0 {
		return defaultTokenTTL
	}
	return c.Download.TokenTTL
}

// ResultFilesDir returns the directory result files are extracted into.
func (c *Config) ResultFilesDir() string {
	return filepath.Join(c.Storage.Temp, "result_files")
}

// Loader provides configuration loading and saving.
type Loader struct {
	v       *viper.Viper
	path    string
	homeDir string
}

// NewLoader creates a new configuration loader.
func NewLoader() (*Loader, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("get home directory: %w", err)
	}

	configPath := filepath.Join(home, DefaultConfigDir, DefaultConfigFile)

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Environment variable binding
	v.SetEnvPrefix("SCRIPTDECK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Bind specific env vars to config keys.
	// We intentionally ignore errors here as BindEnv only fails if called with zero arguments.
	//nolint:errcheck // BindEnv only fails with zero arguments
	v.BindEnv("default.owner", "SCRIPTDECK_OWNER")
	//nolint:errcheck // BindEnv only fails with zero arguments
	v.BindEnv("storage.scripts", "SCRIPTDECK_SCRIPTS_DIR")
	//nolint:errcheck // BindEnv only fails with zero arguments
	v.BindEnv("storage.logs", "SCRIPTDECK_LOGS_DIR")
	//nolint:errcheck // BindEnv only fails with zero arguments
	v.BindEnv("storage.temp", "SCRIPTDECK_TEMP_DIR")

	l := &Loader{
		v:       v,
		path:    configPath,
		homeDir: home,
	}

	// Set defaults before any config reading
	l.setDefaults()

	return l, nil
}

// setDefaults sets all default configuration values using Viper.
func (l *Loader) setDefaults() {
	l.v.SetDefault("default.owner", "")
	l.v.SetDefault("storage.scripts", "~/.config/scriptdeck/scripts")
	l.v.SetDefault("storage.logs", "~/.local/share/scriptdeck/logs")
	l.v.SetDefault("storage.temp", "~/.local/share/scriptdeck/tmp")
	l.v.SetDefault("download.token_ttl", defaultTokenTTL.String())
	l.v.SetDefault("alerts.webhooks", []map[string]string{})
}

// Load reads the configuration file, creating defaults if it doesn't exist.
func (l *Loader) Load() (*Config, error) {
	if _, err := os.Stat(l.path); os.IsNotExist(err) {
		if err := l.createDefault(); err != nil {
			return nil, fmt.Errorf("create default config: %w", err)
		}
	}

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Expand paths
	cfg.Storage.Scripts = l.expandPath(cfg.Storage.Scripts)
	cfg.Storage.Logs = l.expandPath(cfg.Storage.Logs)
	cfg.Storage.Temp = l.expandPath(cfg.Storage.Temp)

	return &cfg, nil
}

// Path returns the configuration file path.
func (l *Loader) Path() string {
	return l.path
}

// Get returns a configuration value by dot-notation key.
func (l *Loader) Get(key string) (any, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	return l.v.Get(key), nil
}

// Set sets a configuration value by dot-notation key.
func (l *Loader) Set(key, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	// Durations must parse before they are persisted.
	if key == "download.token_ttl" && value != "" {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidDuration, value)
		}
	}

	l.v.Set(key, value)
	return l.v.WriteConfig()
}

// createDefault writes the default configuration file using Viper.
func (l *Loader) createDefault() error {
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	return l.v.SafeWriteConfigAs(l.path)
}

// expandPath replaces ~ with the home directory.
func (l *Loader) expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(l.homeDir, path[2:])
	}
	if path == "~" {
		return l.homeDir
	}
	return path
}

// ValidateKey checks if a key is a valid configuration key.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidKey)
	}

	if validKeys[key] {
		return nil
	}

	return fmt.Errorf("%w: %s", ErrInvalidKey, key)
}

// buildValidKeys builds the set of valid keys from Config struct using reflection.
func buildValidKeys() map[string]bool {
	keys := make(map[string]bool)
	addKeysFromType(reflect.TypeOf(Config{}), "", keys)
	return keys
}

// addKeysFromType recursively adds keys from a struct type.
func addKeysFromType(t reflect.Type, prefix string, keys map[string]bool) {
	for i := range t.NumField() {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		keys[key] = true

		// Recurse into nested structs (but not maps or slices)
		if field.Type.Kind() == reflect.Struct {
			addKeysFromType(field.Type, key, keys)
		}
	}
}
