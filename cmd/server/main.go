package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"

	"storyweave/internal/app"
	"storyweave/internal/config"
	"storyweave/internal/scoring"
	"storyweave/internal/storage"
	httpTransport "storyweave/internal/transport/http"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run wires everything together so deferred cleanup executes before exit.
func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Set up logger
	var logger *slog.Logger
	logOpts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Logging.Level),
	}

	if cfg.Logging.Format == "json" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, logOpts))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, logOpts))
	}

	slog.SetDefault(logger)

	logger.Info("starting storyweave game server",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	// Open the room store
	badgerOpts := badger.DefaultOptions(cfg.Storage.BadgerPath).WithLogger(nil)
	if cfg.Storage.InMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return fmt.Errorf("opening room store: %w", err)
	}
	defer func() {
		logger.Info("closing room store")
		_ = db.Close()
	}()

	store := storage.NewBadgerRoomStore(db, logger)

	// Grammar scorer
	scorer := scoring.NewLanguageToolScorer(
		cfg.Scoring.CheckURL,
		cfg.Scoring.Language,
		cfg.Scoring.Timeout,
		logger,
	)

	// Room hub
	hub := app.NewRoomHub(scorer, store, app.SessionOptions{
		EnforceTurnOrder: cfg.Game.EnforceTurnOrder,
		ScoringTimeout:   cfg.Scoring.Timeout,
	}, cfg.Game.RoomCodeLength, logger)
	defer hub.Close()

	// Create HTTP server
	server := httpTransport.NewServer(cfg, hub, logger)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
