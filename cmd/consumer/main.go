package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"filevault/internal/config"
	"filevault/internal/kafka"
	"filevault/pkg/logger"
)

func main() {
	cfg := config.Load()
	logger.InitLogger()

	if len(cfg.KafkaBrokers) == 0 {
		logger.Log.Fatal().Msg("KAFKA_BROKERS is required for the audit consumer")
	}

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, "audit-logger")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.StartFileEventConsumer(ctx)
	go consumer.StartShareEventConsumer(ctx)

	logger.Log.Info().Msg("Audit consumer started. Press Ctrl+C to exit.")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info().Msg("Shutting down consumer")
	cancel()

	if err := consumer.Close(); err != nil {
		logger.Log.Error().Err(err).Msg("Failed to close consumer")
	}
}
