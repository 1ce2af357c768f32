// Package config loads server configuration with Viper.
//
// Configuration priority (highest to lowest):
//  1. Environment variables (FLOWBOARD_ prefix, e.g. FLOWBOARD_LISTEN_ADDR)
//  2. Config file specified by FLOWBOARD_CONFIG
//  3. ~/.flowboard/config.yaml
//  4. Defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration for the server and CLI.
type Config struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string `mapstructure:"listen_addr"`

	// BaseURL is the externally reachable address approval and decision
	// links are built against.
	BaseURL string `mapstructure:"base_url"`

	// DBPath is the SQLite mirror database path.
	DBPath string `mapstructure:"db_path"`

	// Board selects the project board backend: "github" or "memory".
	Board string `mapstructure:"board"`

	// GitHub holds the GitHub board backend settings.
	GitHub GitHubConfig `mapstructure:"github"`

	// DecisionSecret signs decision-link tokens. Required for the
	// decision endpoints.
	DecisionSecret string `mapstructure:"decision_secret"`

	// TokenBucket is the coarse validity bucket for decision tokens.
	TokenBucket time.Duration `mapstructure:"token_bucket"`

	// UndoWindow bounds how long after an action its undo still works.
	UndoWindow time.Duration `mapstructure:"undo_window"`

	// NotifyWebhookURL, when set, receives chat notifications. Empty
	// means notifications go to the process log.
	NotifyWebhookURL string `mapstructure:"notify_webhook_url"`
}

// GitHubConfig configures the GitHub board backend.
type GitHubConfig struct {
	Token string `mapstructure:"token"`
	Owner string `mapstructure:"owner"`
	Repo  string `mapstructure:"repo"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		ListenAddr:  ":8080",
		BaseURL:     "http://localhost:8080",
		Board:       "memory",
		TokenBucket: 24 * time.Hour,
		UndoWindow:  5 * time.Minute,
	}
}

// Load reads configuration from the environment and config file.
func Load() (Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("listen_addr", defaults.ListenAddr)
	v.SetDefault("base_url", defaults.BaseURL)
	v.SetDefault("db_path", "")
	v.SetDefault("board", defaults.Board)
	v.SetDefault("token_bucket", defaults.TokenBucket)
	v.SetDefault("undo_window", defaults.UndoWindow)
	// Keys without a meaningful default still need one registered, or
	// AutomaticEnv will not surface them through Unmarshal.
	v.SetDefault("decision_secret", "")
	v.SetDefault("notify_webhook_url", "")
	v.SetDefault("github.token", "")
	v.SetDefault("github.owner", "")
	v.SetDefault("github.repo", "")

	v.SetEnvPrefix("FLOWBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := os.Getenv("FLOWBOARD_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else if home, err := os.UserHomeDir(); err == nil {
		v.SetConfigFile(filepath.Join(home, ".flowboard", "config.yaml"))
		// The default config file is optional.
		_ = v.ReadInConfig()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks settings that cannot be defaulted.
func (c Config) Validate() error {
	switch c.Board {
	case "memory":
	case "github":
		if c.GitHub.Token == "" || c.GitHub.Owner == "" || c.GitHub.Repo == "" {
			return fmt.Errorf("github board requires github.token, github.owner, and github.repo")
		}
	default:
		return fmt.Errorf("unknown board backend %q", c.Board)
	}
	if c.DecisionSecret == "" {
		return fmt.Errorf("decision_secret is required")
	}
	return nil
}
