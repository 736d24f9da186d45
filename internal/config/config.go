// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/briangreenhill/trainingagent/store"
)

// Config holds all application configuration
type Config struct {
	Intervals IntervalsConfig
	Assistant AssistantConfig
	Store     StoreConfig
	Log       LogConfig

	Port         string        `env:"PORT" envDefault:"8080"`
	DashboardKey string        `env:"DASHBOARD_KEY"` // optional pre-shared key for the HTTP API
	HTTPTimeout  time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
}

// IntervalsConfig holds the training-data proxy settings
type IntervalsConfig struct {
	ProxyURL  string `env:"INTERVALS_PROXY_URL" envDefault:"https://intervals-icu-proxy.workers.dev"`
	APIKey    string `env:"INTERVALS_API_KEY"`
	AthleteID string `env:"INTERVALS_ATHLETE_ID"`
}

// AssistantConfig holds the language-model settings
type AssistantConfig struct {
	BaseURL   string `env:"ANTHROPIC_BASE_URL" envDefault:"https://api.anthropic.com"`
	APIKey    string `env:"ANTHROPIC_API_KEY"`
	Model     string `env:"ANTHROPIC_MODEL" envDefault:"claude-sonnet-4-20250514"`
	MaxTokens int    `env:"ANTHROPIC_MAX_TOKENS" envDefault:"2048"`
	Version   string `env:"ANTHROPIC_VERSION" envDefault:"2023-06-01"`
	Beta      string `env:"ANTHROPIC_BETA" envDefault:"projects-2024-12-02"`
}

// StoreConfig selects the persistence backend for learnings
type StoreConfig struct {
	Backend     string `env:"STORE_BACKEND" envDefault:"file"`
	Dir         string `env:"STORE_DIR"`
	SQLitePath  string `env:"SQLITE_PATH"`
	DatabaseURL string `env:"DATABASE_URL"`
}

type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
	JSON  bool   `env:"LOG_JSON" envDefault:"false"`
	File  string `env:"LOG_FILE"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// StoreOptions maps the store settings onto the backend options
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Backend:     c.Store.Backend,
		Dir:         c.Store.Dir,
		SQLitePath:  c.Store.SQLitePath,
		DatabaseURL: c.Store.DatabaseURL,
	}
}

// Validate checks ranges and backend requirements. A missing intervals API
// key is not an error here: connecting without one reports it to the user.
func (c *Config) Validate() error {
	if c.Assistant.MaxTokens < 1 || c.Assistant.MaxTokens > 64000 {
		return fmt.Errorf("ANTHROPIC_MAX_TOKENS must be between 1-64000, got %d", c.Assistant.MaxTokens)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout)
	}
	if c.Intervals.APIKey != "" && strings.TrimSpace(c.Intervals.AthleteID) == "" {
		return fmt.Errorf("INTERVALS_ATHLETE_ID is required when INTERVALS_API_KEY is set")
	}

	switch c.Store.Backend {
	case store.BackendMemory, store.BackendFile:
	case store.BackendSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite store")
		}
	case store.BackendPostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}
	return nil
}
