package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fintrack/internal/ai"
	"fintrack/internal/auth"
	"fintrack/internal/config"
	httpapi "fintrack/internal/http"
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

	logger.Info("Starting fintrack API")

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

	tokens := auth.NewTokenManager(cfg.JWTSecret)
	budget := services.NewBudgetService(repo)
	aiClient := ai.NewClient(cfg.ProviderTimeout, cfg.ProviderRetries, logger)
	insights := services.NewInsightService(repo, budget, aiClient, cipher, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go aiClient.RunCacheJanitor(ctx)

	server := httpapi.NewServer(":"+cfg.Port, repo, budget, insights, tokens, cipher, logger)

	go func() {
		logger.Info("HTTP server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", log.FieldError, err.Error())
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Fintrack API shutdown complete")
}
