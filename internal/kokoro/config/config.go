// Package config loads and validates the service configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the service configuration.
type Config struct {
	// DatabasePath is the SQLite database file; ":memory:" is accepted.
	DatabasePath string `yaml:"database_path"`
	// HTTPAddr is the listen address for the chat API.
	HTTPAddr string `yaml:"http_addr"`
	// ServiceTimeout bounds a single domain-service call.
	ServiceTimeout time.Duration `yaml:"service_timeout"`
	// RetryAttempts is the total attempts for transient service failures.
	RetryAttempts int `yaml:"retry_attempts"`
	// SessionTTL is how long a pending confirmation stays answerable.
	SessionTTL time.Duration `yaml:"session_ttl"`
	// RateLimitPerMinute caps messages per user per minute; 0 disables.
	RateLimitPerMinute int `yaml:"rate_limit_per_minute"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Defaults applied by Validate for unset fields.
const (
	DefaultHTTPAddr           = ":8420"
	DefaultServiceTimeout     = 10 * time.Second
	DefaultRetryAttempts      = 3
	DefaultSessionTTL         = 5 * time.Minute
	DefaultRateLimitPerMinute = 30
	DefaultLogLevel           = "info"
)

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML configuration.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate fills defaults and rejects impossible values.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("config: database_path is required")
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = DefaultHTTPAddr
	}
	if c.ServiceTimeout == 0 {
		c.ServiceTimeout = DefaultServiceTimeout
	}
	if c.ServiceTimeout < 0 {
		return fmt.Errorf("config: service_timeout must be positive")
	}
	if c.RetryAttempts == 0 {
		c.RetryAttempts = DefaultRetryAttempts
	}
	if c.RetryAttempts < 0 {
		return fmt.Errorf("config: retry_attempts must be positive")
	}
	if c.SessionTTL == 0 {
		c.SessionTTL = DefaultSessionTTL
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("config: session_ttl must be positive")
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = DefaultRateLimitPerMinute
	}
	if c.RateLimitPerMinute < 0 {
		c.RateLimitPerMinute = 0 // explicit negative disables limiting
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log_level %q", c.LogLevel)
	}
	return nil
}
