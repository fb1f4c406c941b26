// Package main provides the BreachWatch server CLI.
package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the server configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Provider      ProviderConfig      `yaml:"provider"`
	Monitor       MonitorConfig       `yaml:"monitor"`
	API           APIConfig           `yaml:"api"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Verbose       bool                `yaml:"-"` // set via CLI flag
}

// ServerConfig contains listen addresses.
type ServerConfig struct {
	HTTPAddress    string `yaml:"http_address"`    // REST API listen address (default: :8080)
	MetricsAddress string `yaml:"metrics_address"` // Prometheus listen address, empty disables (default: :9090)
}

// DatabaseConfig contains SQLite settings.
type DatabaseConfig struct {
	Path string `yaml:"path"` // SQLite database path (default: data/breachwatch.db)
}

// ProviderConfig contains breach intelligence API settings. The API key is
// taken from the BREACHWATCH_API_KEY environment variable, never from the
// config file.
type ProviderConfig struct {
	BaseURL   string `yaml:"base_url"`   // defaults to the production endpoint
	UserAgent string `yaml:"user_agent"` // User-Agent header for provider calls
}

// MonitorConfig contains batch scheduling settings.
type MonitorConfig struct {
	Interval   time.Duration `yaml:"interval"`     // gap between batch runs (default: 24h)
	RunOnStart bool          `yaml:"run_on_start"` // run a batch immediately at startup
}

// APIConfig contains REST API settings.
type APIConfig struct {
	TokenTTL          time.Duration `yaml:"token_ttl"`            // JWT lifetime (default: 24h)
	RateLimitPerIP    int           `yaml:"rate_limit_per_ip"`    // requests per minute per IP
	RateLimitPerOwner int           `yaml:"rate_limit_per_owner"` // requests per minute per owner
	RequestTimeout    time.Duration `yaml:"request_timeout"`      // on-demand check timeout
}

// NotificationsConfig contains outbound notification settings.
type NotificationsConfig struct {
	MaxPerMinute int                 `yaml:"max_per_minute"` // notification rate limit (default: 20)
	Email        EmailNotifyConfig   `yaml:"email"`
	Webhook      WebhookNotifyConfig `yaml:"webhook"`
}

// EmailNotifyConfig contains SMTP settings. The password is taken from the
// BREACHWATCH_SMTP_PASSWORD environment variable.
type EmailNotifyConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Host     string   `yaml:"host"`
	Port     int      `yaml:"port"`
	Username string   `yaml:"username"`
	From     string   `yaml:"from"`
	CopyTo   []string `yaml:"copy_to"` // operators copied on every notification
}

// WebhookNotifyConfig contains webhook settings.
type WebhookNotifyConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
}

// LoadConfig loads configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// setDefaults sets default values for missing config fields.
func (c *Config) setDefaults() {
	if c.Server.HTTPAddress == "" {
		c.Server.HTTPAddress = ":8080"
	}
	if c.Server.MetricsAddress == "" {
		c.Server.MetricsAddress = ":9090"
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/breachwatch.db"
	}
	if c.Monitor.Interval == 0 {
		c.Monitor.Interval = 24 * time.Hour
	}
	if c.API.TokenTTL == 0 {
		c.API.TokenTTL = 24 * time.Hour
	}
	if c.API.RateLimitPerIP == 0 {
		c.API.RateLimitPerIP = 30
	}
	if c.API.RateLimitPerOwner == 0 {
		c.API.RateLimitPerOwner = 100
	}
	if c.API.RequestTimeout == 0 {
		c.API.RequestTimeout = 30 * time.Second
	}
	if c.Notifications.MaxPerMinute == 0 {
		c.Notifications.MaxPerMinute = 20
	}
	if c.Notifications.Email.Port == 0 {
		c.Notifications.Email.Port = 587
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Monitor.Interval < time.Minute {
		return fmt.Errorf("monitor.interval must be at least 1 minute")
	}
	if c.Notifications.Email.Enabled {
		if c.Notifications.Email.Host == "" {
			return fmt.Errorf("notifications.email.host is required when email is enabled")
		}
		if c.Notifications.Email.From == "" {
			return fmt.Errorf("notifications.email.from is required when email is enabled")
		}
	}
	if c.Notifications.Webhook.Enabled && c.Notifications.Webhook.URL == "" {
		return fmt.Errorf("notifications.webhook.url is required when webhook is enabled")
	}
	return nil
}
