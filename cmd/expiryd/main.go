package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	redisadapter "github.com/sashanclrp/wappa-expiry/internal/adapters/redis"
	"github.com/sashanclrp/wappa-expiry/internal/app"
	"github.com/sashanclrp/wappa-expiry/internal/config"
	"github.com/sashanclrp/wappa-expiry/internal/logging"
)

func main() {
	// Optional .env for local development.
	_ = godotenv.Load()

	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := logging.New(logging.DefaultConfig())

	cfg, err := config.LoadFromEnv()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}

	redisClient, err := redisadapter.NewClient(cfg.Redis)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		return err
	}
	defer redisClient.Close()

	logger.Info("connected to redis", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)

	application, err := app.New(app.Options{
		Config: cfg,
		Logger: logger,
		Redis:  redisClient,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	})
	if err != nil {
		logger.Error("failed to build application", "error", err)
		return err
	}

	if err := application.Run(ctx); err != nil {
		logger.Error("expiry scheduler stopped", "error", err)
		return err
	}

	return nil
}
