package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"grabyourtickets/internal/config"
	"grabyourtickets/internal/consumers"
	"grabyourtickets/internal/logger"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	slog.Info("Starting consumers service...")

	// The API and the consumers share one streaming cluster, so the
	// client IDs must differ.
	cfg.NATS.ClientID = "tickets-consumers"

	consumerService, err := consumers.NewConsumerService(cfg)
	if err != nil {
		slog.Error("Failed to create consumer service", "error", err)
		os.Exit(1)
	}

	if err := consumerService.Start(); err != nil {
		slog.Error("Failed to start consumers", "error", err)
		os.Exit(1)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down consumers service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := consumerService.Shutdown(ctx); err != nil {
		slog.Error("Error during shutdown", "error", err)
	}

	slog.Info("Consumers service stopped")
}
