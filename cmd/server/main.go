package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sevigo/btca/internal/app"
	"github.com/sevigo/btca/internal/logger"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application failed to run", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := logger.NewLogger(logger.Config{
		Level:  envOr("BTCA_LOG_LEVEL", "info"),
		Format: envOr("BTCA_LOG_FORMAT", "text"),
		Output: "stdout",
	}, os.Stdout)
	slog.SetDefault(log)

	addr := envOr("BTCA_ADDR", ":8080")

	log.Info("starting btca")

	application, err := app.NewApp(ctx, addr, log)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	go func() {
		if err := application.Start(); err != nil {
			log.Error("server error", "error", err)
			cancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		log.Info("received shutdown signal")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down")
	}

	if err := application.Stop(); err != nil {
		return fmt.Errorf("failed to stop application: %w", err)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
