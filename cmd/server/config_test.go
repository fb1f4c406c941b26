package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "server.yaml")

	configContent := `
server:
  http_address: ":9000"
  metrics_address: ":9100"

database:
  path: "/var/lib/breachwatch/watch.db"

provider:
  base_url: "https://provider.test/v1"
  user_agent: "breachwatch-test"

monitor:
  interval: 6h
  run_on_start: true

api:
  token_ttl: 12h
  rate_limit_per_ip: 10

notifications:
  max_per_minute: 5
  email:
    enabled: true
    host: "smtp.example.com"
    port: 465
    from: "alerts@example.com"
    copy_to:
      - "ops@example.com"
  webhook:
    enabled: true
    url: "https://hooks.example.com/breach"
`

	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(configFile)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Server.HTTPAddress != ":9000" {
		t.Errorf("Server.HTTPAddress = %v, want ':9000'", cfg.Server.HTTPAddress)
	}
	if cfg.Database.Path != "/var/lib/breachwatch/watch.db" {
		t.Errorf("Database.Path = %v", cfg.Database.Path)
	}
	if cfg.Provider.BaseURL != "https://provider.test/v1" {
		t.Errorf("Provider.BaseURL = %v", cfg.Provider.BaseURL)
	}
	if cfg.Monitor.Interval != 6*time.Hour {
		t.Errorf("Monitor.Interval = %v, want 6h", cfg.Monitor.Interval)
	}
	if !cfg.Monitor.RunOnStart {
		t.Error("Monitor.RunOnStart = false, want true")
	}
	if cfg.API.TokenTTL != 12*time.Hour {
		t.Errorf("API.TokenTTL = %v, want 12h", cfg.API.TokenTTL)
	}
	if cfg.API.RateLimitPerIP != 10 {
		t.Errorf("API.RateLimitPerIP = %d, want 10", cfg.API.RateLimitPerIP)
	}
	// Unset field falls back to default
	if cfg.API.RateLimitPerOwner != 100 {
		t.Errorf("API.RateLimitPerOwner = %d, want default 100", cfg.API.RateLimitPerOwner)
	}
	if cfg.Notifications.MaxPerMinute != 5 {
		t.Errorf("Notifications.MaxPerMinute = %d, want 5", cfg.Notifications.MaxPerMinute)
	}
	if cfg.Notifications.Email.Port != 465 {
		t.Errorf("Email.Port = %d, want 465", cfg.Notifications.Email.Port)
	}
	if len(cfg.Notifications.Email.CopyTo) != 1 {
		t.Errorf("Email.CopyTo = %v", cfg.Notifications.Email.CopyTo)
	}
	if cfg.Notifications.Webhook.URL != "https://hooks.example.com/breach" {
		t.Errorf("Webhook.URL = %v", cfg.Notifications.Webhook.URL)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "server.yaml")

	if err := os.WriteFile(configFile, []byte("{}\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(configFile)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Server.HTTPAddress != ":8080" {
		t.Errorf("Server.HTTPAddress = %v, want ':8080'", cfg.Server.HTTPAddress)
	}
	if cfg.Server.MetricsAddress != ":9090" {
		t.Errorf("Server.MetricsAddress = %v, want ':9090'", cfg.Server.MetricsAddress)
	}
	if cfg.Database.Path != "data/breachwatch.db" {
		t.Errorf("Database.Path = %v", cfg.Database.Path)
	}
	if cfg.Monitor.Interval != 24*time.Hour {
		t.Errorf("Monitor.Interval = %v, want 24h", cfg.Monitor.Interval)
	}
	if cfg.Notifications.MaxPerMinute != 20 {
		t.Errorf("Notifications.MaxPerMinute = %d, want 20", cfg.Notifications.MaxPerMinute)
	}
	if cfg.Notifications.Email.Port != 587 {
		t.Errorf("Email.Port = %d, want 587", cfg.Notifications.Email.Port)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(cfg *Config) {},
			wantErr: false,
		},
		{
			name: "interval too small",
			mutate: func(cfg *Config) {
				cfg.Monitor.Interval = 10 * time.Second
			},
			wantErr: true,
		},
		{
			name: "email enabled without host",
			mutate: func(cfg *Config) {
				cfg.Notifications.Email.Enabled = true
				cfg.Notifications.Email.From = "alerts@example.com"
			},
			wantErr: true,
		},
		{
			name: "email enabled without from",
			mutate: func(cfg *Config) {
				cfg.Notifications.Email.Enabled = true
				cfg.Notifications.Email.Host = "smtp.example.com"
			},
			wantErr: true,
		},
		{
			name: "webhook enabled without url",
			mutate: func(cfg *Config) {
				cfg.Notifications.Webhook.Enabled = true
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
