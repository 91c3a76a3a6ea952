package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"fintrack/internal/ai"
	"fintrack/internal/amqp"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/secrets"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	logger.Info("Starting insights-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err.Error(), "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	cipher, err := secrets.NewCipher(cfg.EncryptionKeyBytes())
	if err != nil {
		logger.Error("Failed to initialize credential cipher", log.FieldError, err.Error())
		os.Exit(1)
	}

	queue, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
		os.Exit(1)
	}
	defer queue.Close()

	budget := services.NewBudgetService(repo)
	aiClient := ai.NewClient(cfg.ProviderTimeout, cfg.ProviderRetries, logger)
	insights := services.NewInsightService(repo, budget, aiClient, cipher, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go aiClient.RunCacheJanitor(ctx)

	workerLogger := logger.WithComponent(log.ComponentWorker)
	consumeErr := make(chan error, 1)
	go func() {
		consumeErr <- queue.ConsumeInsightJobs(ctx, func(msg *amqp.InsightJobMessage) error {
			generated, err := insights.GenerateForUser(ctx, msg.UserID)
			if err != nil {
				// No stored keys is a user state, not a transient failure;
				// requeueing would loop forever.
				if errors.Is(err, ai.ErrNoCredentials) {
					workerLogger.InfoContext(ctx, "Skipping user without provider credentials",
						log.FieldUserID, msg.UserID)
					return nil
				}
				return err
			}
			workerLogger.InfoContext(ctx, "Insight job complete",
				log.FieldUserID, msg.UserID,
				"count", len(generated))
			return nil
		})
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	case err := <-consumeErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Consumer stopped", log.FieldError, err.Error())
			os.Exit(1)
		}
	}

	logger.Info("Insights-worker shutdown complete")
}
