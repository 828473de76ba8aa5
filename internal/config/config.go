// Package config loads application settings from defaults, an optional
// YAML file and EXPENSEBOOK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/spf13/viper"

	"expensebook/internal/log"
)

// EnvPrefix prefixes every environment override, e.g. EXPENSEBOOK_CURRENCY.
const EnvPrefix = "EXPENSEBOOK"

// Keys of the configuration tree.
const (
	KeyStorageBackend = "storage.backend"
	KeyStoragePath    = "storage.path"
	KeyCacheSize      = "cache.size"
	KeyCacheTTL       = "cache.ttl"
	KeyTimezone       = "timezone"
	KeyCurrency       = "currency"
	KeyLogLevel       = "logging.level"
	KeyLogFormat      = "logging.format"
)

type Config struct {
	// Storage
	StorageBackend string
	StoragePath    string

	// Read cache in front of storage; size 0 disables it
	CacheSize int
	CacheTTL  time.Duration

	// Calendar and display
	Timezone string
	Currency string

	// Logging
	LogLevel  string
	LogFormat string
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyStorageBackend, "sqlite")
	v.SetDefault(KeyStoragePath, DefaultStoragePath())
	v.SetDefault(KeyCacheSize, 64)
	v.SetDefault(KeyCacheTTL, 5*time.Minute)
	v.SetDefault(KeyTimezone, "Local")
	v.SetDefault(KeyCurrency, "CNY")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
}

// DefaultStoragePath is $HOME/.local/share/expensebook/expensebook.db.
func DefaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "expensebook.db")
	}
	return filepath.Join(home, ".local", "share", "expensebook", "expensebook.db")
}

// Load reads the configuration into v. configFile overrides the search of
// $HOME/.config/expensebook/config.yaml and ./config.yaml; a missing
// searched file is not an error.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "expensebook"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return FromViper(v), nil
}

// FromViper builds a Config from the current values of v.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		StorageBackend: strings.ToLower(v.GetString(KeyStorageBackend)),
		StoragePath:    ExpandPath(v.GetString(KeyStoragePath)),
		CacheSize:      v.GetInt(KeyCacheSize),
		CacheTTL:       v.GetDuration(KeyCacheTTL),
		Timezone:       v.GetString(KeyTimezone),
		Currency:       strings.ToUpper(v.GetString(KeyCurrency)),
		LogLevel:       v.GetString(KeyLogLevel),
		LogFormat:      v.GetString(KeyLogFormat),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate storage backend
	switch c.StorageBackend {
	case "sqlite":
		if c.StoragePath == "" {
			errors = append(errors, "storage path cannot be empty when using sqlite backend")
		}
	case "memory":
	default:
		errors = append(errors, fmt.Sprintf("invalid storage backend '%s': must be one of [sqlite memory]", c.StorageBackend))
	}

	// Validate cache
	if c.CacheSize < 0 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must not be negative", c.CacheSize))
	}
	if c.CacheSize > 0 && c.CacheTTL <= 0 {
		errors = append(errors, fmt.Sprintf("invalid cache ttl %v: must be positive when the cache is enabled", c.CacheTTL))
	}

	if _, err := c.Location(); err != nil {
		errors = append(errors, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}

	if money.GetCurrency(c.Currency) == nil {
		errors = append(errors, fmt.Sprintf("invalid currency '%s': must be an ISO 4217 code", c.Currency))
	}

	// Validate logging
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be console or json", c.LogFormat))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Location resolves the configured time zone. "Local" and "" mean the
// system zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// ExpandPath expands a leading ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	}
	return os.ExpandEnv(path)
}
