// Package bootstrap handles application initialization and lifecycle
// management for the docscrap service.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/octavebahoun/docscrap/internal/api"
	"github.com/octavebahoun/docscrap/internal/config"
	"github.com/octavebahoun/docscrap/internal/fetcher"
	"github.com/octavebahoun/docscrap/internal/generator"
	"github.com/octavebahoun/docscrap/internal/handlers"
	"github.com/octavebahoun/docscrap/internal/llm"
	"github.com/octavebahoun/docscrap/internal/logger"
	"github.com/octavebahoun/docscrap/internal/prompt"
	"github.com/octavebahoun/docscrap/internal/sanitizer"
	"github.com/octavebahoun/docscrap/internal/store"
)

const version = "1.0.0"

// Start initializes every component and runs the HTTP server until a
// shutdown signal arrives.
func Start() error {
	// Phase 1: config and logger.
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{Level: cfg.Logging.Level, Development: cfg.Debug})
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	if cfg.Pipeline.APIKey == "" {
		log.Warn("no model API key configured, generation requests will fail")
	}

	// Phase 2: store and generation pipeline.
	courseStore := store.New(cfg.Storage.OutputDir, log)

	gen := generator.New(
		fetcher.New(cfg.Pipeline, cfg.Storage, log),
		sanitizer.New(cfg.Pipeline, log),
		prompt.New(cfg.Pipeline.ResponseShape),
		llm.New(cfg.Pipeline, log),
		courseStore,
		log,
	)

	// Phase 3: HTTP surface.
	courseHandler := handlers.NewCourseHandler(
		courseStore, gen, cfg.Storage.LegacyMarkdownPath, cfg.Debug, log)
	router := api.NewRouter(courseHandler, cfg, log)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return run(server, cfg, log)
}

// run starts the server and blocks until it fails or a termination signal
// triggers a graceful shutdown.
func run(server *http.Server, cfg *config.Config, log logger.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting HTTP server",
			logger.String("address", server.Addr),
			logger.String("version", version),
			logger.String("response_shape", cfg.Pipeline.ResponseShape),
			logger.String("output_dir", cfg.Storage.OutputDir),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case sig := <-quit:
		log.Info("shutting down", logger.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}
