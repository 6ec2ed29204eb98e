// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Log      LogConfig      `yaml:"log"`
	Resolver ResolverConfig `yaml:"resolver"`
	Store    StoreConfig    `yaml:"store"`
	Player   PlayerConfig   `yaml:"player"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	Output string `yaml:"output" default:"console" validate:"oneof=console file"`
	Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
	File   string `yaml:"file" default:"tonearm.log"`
}

// ResolverConfig represents track search API configuration.
type ResolverConfig struct {
	BaseURL   string `yaml:"base_url" validate:"required,url"`
	TimeoutMs int    `yaml:"timeout_ms" default:"10000" validate:"gt=0,lte=60000"`
	Quality   string `yaml:"quality" default:"320kbps"`
}

// StoreConfig represents document store configuration for queue persistence.
type StoreConfig struct {
	BaseURL      string `yaml:"base_url" validate:"required,url"`
	TokenURL     string `yaml:"token_url" validate:"omitempty,url"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	UserID       string `yaml:"user_id" validate:"required"`
	TimeoutMs    int    `yaml:"timeout_ms" default:"10000" validate:"gt=0,lte=60000"`
}

// PlayerConfig represents audio output configuration.
type PlayerConfig struct {
	Volume int `yaml:"volume" default:"100" validate:"gte=0,lte=100"`
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values for sensitive fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	// Set defaults using creasty/defaults
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("RESOLVER_BASE_URL"); v != "" {
		c.Resolver.BaseURL = v
	}
	if v := os.Getenv("STORE_BASE_URL"); v != "" {
		c.Store.BaseURL = v
	}
	if v := os.Getenv("STORE_CLIENT_ID"); v != "" {
		c.Store.ClientID = v
	}
	if v := os.Getenv("STORE_CLIENT_SECRET"); v != "" {
		c.Store.ClientSecret = v
	}
	if v := os.Getenv("STORE_USER_ID"); v != "" {
		c.Store.UserID = v
	}
}

// ResolverTimeout returns the search request timeout.
func (c *Config) ResolverTimeout() time.Duration {
	return time.Duration(c.Resolver.TimeoutMs) * time.Millisecond
}

// StoreTimeout returns the document store request timeout.
func (c *Config) StoreTimeout() time.Duration {
	return time.Duration(c.Store.TimeoutMs) * time.Millisecond
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	// Token endpoint without credentials cannot authenticate
	if c.Store.TokenURL != "" && (c.Store.ClientID == "" || c.Store.ClientSecret == "") {
		return errors.New("store token_url requires client_id and client_secret")
	}

	return nil
}
