// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briangreenhill/trainingagent/internal/app"
	"github.com/briangreenhill/trainingagent/internal/config"
	"github.com/briangreenhill/trainingagent/internal/http/routes"
	"github.com/briangreenhill/trainingagent/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		logger, _ := logging.New(logging.Params{})
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Logger
	logger, logFile := logging.New(logging.Params{Level: cfg.Log.Level, JSON: cfg.Log.JSON, File: cfg.Log.File})
	defer logFile.Close() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, closeStore, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("startup failed")
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Error().Err(err).Msg("close store")
		}
	}()

	// Router / server
	s := routes.New(routes.ServerOptions{
		Dashboard:    a,
		Logger:       logger,
		DashboardKey: cfg.DashboardKey,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown")
		}
	}()

	logger.Info().Str("port", cfg.Port).Str("store", cfg.Store.Backend).Msg("starting api")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("server stopped")
	}
}
