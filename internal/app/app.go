// Package app wires configuration into a ready agent for the API server and
// the CLI.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/briangreenhill/trainingagent/anthropic"
	"github.com/briangreenhill/trainingagent/intervals"
	"github.com/briangreenhill/trainingagent/internal/agent"
	"github.com/briangreenhill/trainingagent/internal/config"
	"github.com/briangreenhill/trainingagent/learnings"
	"github.com/briangreenhill/trainingagent/store"
)

// Build opens the learnings store and constructs the upstream clients. The
// returned closer releases the store.
func Build(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*agent.Agent, func() error, error) {
	kv, closeStore, err := store.Open(ctx, cfg.StoreOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	opts := agent.Options{
		AthleteID: cfg.Intervals.AthleteID,
		Assistant: anthropic.New(
			anthropic.WithHTTPClient(httpClient),
			anthropic.WithBaseURL(cfg.Assistant.BaseURL),
			anthropic.WithAPIKey(cfg.Assistant.APIKey),
			anthropic.WithModel(cfg.Assistant.Model, cfg.Assistant.MaxTokens),
			anthropic.WithVersion(cfg.Assistant.Version, cfg.Assistant.Beta),
		),
		Learnings: learnings.NewRepository(kv, logger.With().Str("component", "learnings").Logger()),
		Logger:    logger.With().Str("component", "agent").Logger(),
	}

	// Without a key the agent reports the missing key on connect.
	if cfg.Intervals.APIKey != "" {
		metrics, err := intervals.New(cfg.Intervals.APIKey,
			intervals.WithHTTPClient(httpClient),
			intervals.WithBaseURL(cfg.Intervals.ProxyURL),
		)
		if err != nil {
			_ = closeStore()
			return nil, nil, fmt.Errorf("intervals client: %w", err)
		}
		opts.Metrics = metrics
	} else {
		logger.Warn().Msg("INTERVALS_API_KEY not set")
	}

	return agent.New(opts), closeStore, nil
}
