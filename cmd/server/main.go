package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"flashbattle/internal/config"
	"flashbattle/internal/logging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// A .env file is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.LoadConfig("")
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger := logging.New(cfg.Server.LogLevel, cfg.Server.LogFormat, os.Stderr)
	slog.SetDefault(logger)
	logger.Info("loaded configuration",
		"maxPlayersPerRoom", cfg.Battle.MaxPlayersPerRoom,
		"tickInterval", cfg.Battle.TickInterval,
		"snapshots", cfg.Snapshot.Enabled,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return NewApp(cfg, logger).Run(ctx)
}
