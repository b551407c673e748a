// Package config loads and saves the central application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lepinkainen/steam-herald/pkg/filesystem"
	"github.com/spf13/viper"
)

// Config holds the central application configuration
type Config struct {
	// Steam feed configuration
	Steam struct {
		AppID        int    `mapstructure:"app_id"`        // Steam app to watch (730 = CS2)
		Endpoint     string `mapstructure:"endpoint"`      // Partner-events endpoint
		PollInterval int    `mapstructure:"poll_interval"` // Seconds between polls
		BatchSize    int    `mapstructure:"batch_size"`    // Events requested per poll
	} `mapstructure:"steam"`

	// Novelty detection configuration
	Herald struct {
		WindowSize int    `mapstructure:"window_size"` // Bounded seen-GID window (K)
		BurstMax   int    `mapstructure:"burst_max"`   // Max posts per catch-up cycle
		FeedKey    string `mapstructure:"feed_key"`    // State row identity
	} `mapstructure:"herald"`

	// Reddit publisher configuration
	Reddit struct {
		ClientID     string    `mapstructure:"client_id"`
		ClientSecret string    `mapstructure:"client_secret"`
		RefreshToken string    `mapstructure:"refresh_token"`
		AccessToken  string    `mapstructure:"access_token"`
		ExpiresAt    time.Time `mapstructure:"expires_at"`
		RedirectURI  string    `mapstructure:"redirect_uri"`
		UserAgent    string    `mapstructure:"user_agent"`
		Subreddit    string    `mapstructure:"subreddit"`
		FlairText    string    `mapstructure:"flair_text"`
	} `mapstructure:"reddit"`

	// State persistence configuration
	State struct {
		DatabasePath string `mapstructure:"database_path"`
	} `mapstructure:"state"`
}

// PollInterval returns the poll cadence as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Steam.PollInterval) * time.Second
}

// Validate checks the fields without which the publisher cannot start.
// Only startup configuration errors are fatal to the process.
func (c *Config) Validate() error {
	if c.Reddit.ClientID == "" {
		return fmt.Errorf("reddit.client_id is required")
	}
	if c.Reddit.ClientSecret == "" {
		return fmt.Errorf("reddit.client_secret is required")
	}
	if c.Reddit.Subreddit == "" {
		return fmt.Errorf("reddit.subreddit is required")
	}
	if c.Herald.BurstMax < 1 {
		return fmt.Errorf("herald.burst_max must be >= 1")
	}
	if c.Herald.WindowSize < 1 {
		return fmt.Errorf("herald.window_size must be >= 1")
	}
	return nil
}

func resolvePath(path string) string {
	if path == "" {
		return "config.yaml"
	}

	// If path is relative, try current directory first, then executable directory
	if !filepath.IsAbs(path) {
		if _, err := os.Stat(path); err != nil {
			if execPath, err := filesystem.GetDefaultPath(path); err == nil {
				if _, err := os.Stat(execPath); err == nil {
					return execPath
				}
			}
		}
	}
	return path
}

// LoadConfig loads the configuration from a file. A missing file yields the
// defaults; a malformed file is an error.
func LoadConfig(path string) (*Config, error) {
	viper.SetConfigFile(resolvePath(path))
	viper.SetConfigType("yaml")

	viper.SetDefault("steam.app_id", 730)
	viper.SetDefault("steam.endpoint", "https://store.steampowered.com/events/ajaxgetpartnereventspageable/")
	viper.SetDefault("steam.poll_interval", 60)
	viper.SetDefault("steam.batch_size", 100)

	viper.SetDefault("herald.window_size", 200)
	viper.SetDefault("herald.burst_max", 5)
	viper.SetDefault("herald.feed_key", "steam:730")

	viper.SetDefault("reddit.redirect_uri", "http://localhost:8080/callback")
	viper.SetDefault("reddit.user_agent", "steam-herald/1.0")
	viper.SetDefault("reddit.flair_text", "Game Update")

	viper.SetDefault("state.database_path", "herald.db")

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine, defaults apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// SaveConfig saves the configuration to a file. The auth flow uses this to
// persist freshly issued tokens.
func SaveConfig(config *Config, path string) error {
	viper.SetConfigFile(resolvePath(path))
	viper.SetConfigType("yaml")

	viper.Set("steam.app_id", config.Steam.AppID)
	viper.Set("steam.endpoint", config.Steam.Endpoint)
	viper.Set("steam.poll_interval", config.Steam.PollInterval)
	viper.Set("steam.batch_size", config.Steam.BatchSize)

	viper.Set("herald.window_size", config.Herald.WindowSize)
	viper.Set("herald.burst_max", config.Herald.BurstMax)
	viper.Set("herald.feed_key", config.Herald.FeedKey)

	viper.Set("reddit.client_id", config.Reddit.ClientID)
	viper.Set("reddit.client_secret", config.Reddit.ClientSecret)
	viper.Set("reddit.refresh_token", config.Reddit.RefreshToken)
	viper.Set("reddit.access_token", config.Reddit.AccessToken)
	viper.Set("reddit.expires_at", config.Reddit.ExpiresAt)
	viper.Set("reddit.redirect_uri", config.Reddit.RedirectURI)
	viper.Set("reddit.user_agent", config.Reddit.UserAgent)
	viper.Set("reddit.subreddit", config.Reddit.Subreddit)
	viper.Set("reddit.flair_text", config.Reddit.FlairText)

	viper.Set("state.database_path", config.State.DatabasePath)

	return viper.WriteConfig()
}
