// Package config loads rifty settings from a TOML file with environment
// variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

// DirName is the per-user directory holding the config file and database.
const DirName = ".rifty"

// Config represents the application configuration.
type Config struct {
	Storage StorageConfig `toml:"storage"`
	Catalog CatalogConfig `toml:"catalog"`
	API     APIConfig     `toml:"api"`
	App     AppConfig     `toml:"app"`
}

// StorageConfig contains the collection database settings.
type StorageConfig struct {
	DBPath       string `toml:"db_path" env:"RIFTY_DB_PATH"`   // sqlite database file
	SlotKey      string `toml:"slot_key" env:"RIFTY_SLOT_KEY"` // slot holding the collection
	WriteTimeout string `toml:"write_timeout"`                 // bound per read/write (e.g., "5s")
	BackupDir    string `toml:"backup_dir"`                    // empty = next to the database
}

// CatalogConfig contains reference dataset and display settings.
type CatalogConfig struct {
	Path         string   `toml:"path" env:"RIFTY_CATALOG_PATH"` // empty = bundled dataset
	SetOrder     []string `toml:"set_order"`
	ExcludedSets []string `toml:"excluded_sets"`
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port" env:"RIFTY_API_PORT"`
	CORSOrigins    []string `toml:"cors_origins"`
	RequestTimeout string   `toml:"request_timeout"`
	RateLimit      float64  `toml:"rate_limit"` // mutations per second
	RateBurst      int      `toml:"rate_burst"`
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool   `toml:"debug_mode" env:"RIFTY_DEBUG"` // Enable debug logging
	LogFormat string `toml:"log_format"`                   // "text" or "json"
	Locale    string `toml:"locale" env:"RIFTY_LOCALE"`    // BCP 47 tag for name sorting
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			DBPath:       filepath.Join(baseDir(), "rifty.db"),
			SlotKey:      "rifty-collection",
			WriteTimeout: "5s",
		},
		Catalog: CatalogConfig{
			SetOrder:     []string{"OGN", "PG", "SFD"},
			ExcludedSets: []string{"SFD"},
		},
		API: APIConfig{
			Host:           "localhost",
			Port:           8080,
			CORSOrigins:    []string{"http://localhost:*", "http://127.0.0.1:*"},
			RequestTimeout: "30s",
			RateLimit:      20,
			RateBurst:      40,
		},
		App: AppConfig{
			DebugMode: false,
			LogFormat: "text",
			Locale:    "en",
		},
	}
}

func baseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DirName
	}
	return filepath.Join(home, DirName)
}

// DefaultPath returns ~/.rifty/config.toml.
func DefaultPath() string {
	return filepath.Join(baseDir(), "config.toml")
}

// Load reads the configuration at path, or DefaultPath when path is empty,
// then applies environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config file: %w", err)
	default:
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return config, nil
}

// Save writes the configuration to path, creating its directory.
func (c *Config) Save(path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Storage.DBPath == "" {
		return errors.New("storage db_path cannot be empty")
	}
	if c.Storage.SlotKey == "" {
		return errors.New("storage slot_key cannot be empty")
	}
	if d, err := time.ParseDuration(c.Storage.WriteTimeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid write timeout %q", c.Storage.WriteTimeout)
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		return fmt.Errorf("api port out of range: %d", c.API.Port)
	}
	if d, err := time.ParseDuration(c.API.RequestTimeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid request timeout %q", c.API.RequestTimeout)
	}
	if c.API.RateLimit <= 0 {
		return fmt.Errorf("rate limit must be positive: %v", c.API.RateLimit)
	}
	if c.API.RateBurst < 1 {
		return fmt.Errorf("rate burst must be at least 1: %d", c.API.RateBurst)
	}

	if !slices.Contains([]string{"text", "json"}, c.App.LogFormat) {
		return fmt.Errorf("unknown log format %q", c.App.LogFormat)
	}
	if _, err := language.Parse(c.App.Locale); err != nil {
		return fmt.Errorf("invalid locale %q: %w", c.App.Locale, err)
	}
	return nil
}

// WriteTimeout returns the storage timeout as a duration.
func (c *Config) WriteTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Storage.WriteTimeout)
	return d
}

// RequestTimeout returns the API request timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	d, _ := time.ParseDuration(c.API.RequestTimeout)
	return d
}

// Locale returns the parsed locale, falling back to English.
func (c *Config) Locale() language.Tag {
	tag, err := language.Parse(c.App.Locale)
	if err != nil {
		return language.English
	}
	return tag
}

// Addr returns the API listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}
