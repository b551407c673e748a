package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() with missing file should use defaults: %v", err)
	}

	if cfg.Steam.AppID != 730 {
		t.Errorf("Steam.AppID = %d, want 730", cfg.Steam.AppID)
	}
	if cfg.Steam.PollInterval != 60 {
		t.Errorf("Steam.PollInterval = %d, want 60", cfg.Steam.PollInterval)
	}
	if cfg.Herald.WindowSize != 200 {
		t.Errorf("Herald.WindowSize = %d, want 200", cfg.Herald.WindowSize)
	}
	if cfg.Herald.BurstMax != 5 {
		t.Errorf("Herald.BurstMax = %d, want 5", cfg.Herald.BurstMax)
	}
	if cfg.State.DatabasePath != "herald.db" {
		t.Errorf("State.DatabasePath = %q, want herald.db", cfg.State.DatabasePath)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
steam:
  app_id: 570
  poll_interval: 120
herald:
  window_size: 50
  burst_max: 2
reddit:
  client_id: abc
  client_secret: def
  subreddit: GlobalOffensive
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Steam.AppID != 570 {
		t.Errorf("Steam.AppID = %d, want 570", cfg.Steam.AppID)
	}
	if cfg.Steam.PollInterval != 120 {
		t.Errorf("Steam.PollInterval = %d, want 120", cfg.Steam.PollInterval)
	}
	if cfg.Herald.WindowSize != 50 {
		t.Errorf("Herald.WindowSize = %d, want 50", cfg.Herald.WindowSize)
	}
	if cfg.Reddit.Subreddit != "GlobalOffensive" {
		t.Errorf("Reddit.Subreddit = %q", cfg.Reddit.Subreddit)
	}
	// Defaults still apply for unset keys.
	if cfg.Steam.BatchSize != 100 {
		t.Errorf("Steam.BatchSize = %d, want default 100", cfg.Steam.BatchSize)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		cfg.Reddit.ClientID = "id"
		cfg.Reddit.ClientSecret = "secret"
		cfg.Reddit.Subreddit = "GlobalOffensive"
		cfg.Herald.BurstMax = 5
		cfg.Herald.WindowSize = 200
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing client id", func(c *Config) { c.Reddit.ClientID = "" }, true},
		{"missing client secret", func(c *Config) { c.Reddit.ClientSecret = "" }, true},
		{"missing subreddit", func(c *Config) { c.Reddit.Subreddit = "" }, true},
		{"zero burst max", func(c *Config) { c.Herald.BurstMax = 0 }, true},
		{"zero window size", func(c *Config) { c.Herald.WindowSize = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
