/**
 * @description
 * This is the main entry point for the reconciliation-service. This service
 * is a long-running process that executes the scheduled marketplace
 * reconciliation sweeps (overdue quotations and warning decay) and exposes a
 * small internal ops HTTP surface for health checks and manual triggers.
 * It initializes the configuration, database connection, Redis sweep lease,
 * RabbitMQ producer, and the cron scheduler, then starts everything.
 */
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/editlance/reconciliation-service/internal/api"
	"github.com/editlance/reconciliation-service/internal/app"
	"github.com/editlance/reconciliation-service/internal/config"
	"github.com/editlance/reconciliation-service/internal/store"
	"github.com/editlance/reconciliation-service/pkg/mailclient"
	"github.com/editlance/reconciliation-service/pkg/rabbitmq"
	"github.com/editlance/reconciliation-service/pkg/walletclient"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Load .env file for local development.
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, using environment variables")
	}

	// Load application configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Establish database connection with connection pool configuration
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Error("unable to parse database URL", "error", err)
		os.Exit(1)
	}

	poolConfig.MaxConns = 50
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	// Disable prepared statement caching to prevent conflicts
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Error("unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()
	logger.Info("database connection established")

	// Redis backs the sweep lease; without it the sweeps run unguarded.
	var jobLock app.JobLock = app.NoopJobLock{}
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("unable to parse redis URL", "error", err)
			os.Exit(1)
		}
		redisClient := redis.NewClient(redisOpts)
		defer redisClient.Close()
		jobLock = app.NewRedisJobLock(redisClient, "")
		logger.Info("redis sweep lease enabled")
	} else {
		logger.Warn("REDIS_URL not set, sweep overlap protection disabled")
	}

	// Notification fan-out degrades to a no-op when the broker is down.
	var producer rabbitmq.Publisher
	if cfg.RabbitMQURL != "" {
		eventProducer, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL)
		if err != nil {
			logger.Warn("failed to connect to RabbitMQ, notification fan-out disabled", "error", err)
			producer = &rabbitmq.EventProducerFallback{}
		} else {
			producer = eventProducer
			logger.Info("RabbitMQ producer connected")
		}
	} else {
		logger.Warn("RABBITMQ_URL not set, notification fan-out disabled")
		producer = &rabbitmq.EventProducerFallback{}
	}
	defer producer.Close()

	// Initialize dependencies
	repository := store.NewRepository(dbpool)
	walletClient := walletclient.NewClient(cfg.WalletServiceURL, cfg.WalletServiceInternalAPIKey)
	mailClient := mailclient.NewClient(cfg.MailServiceURL, cfg.MailServiceInternalAPIKey)
	notifier := app.NewEventNotifier(producer)
	jobs := app.NewJobs(repository, walletClient, mailClient, notifier, jobLock, logger, *cfg)
	scheduler := app.NewScheduler(jobs, logger, *cfg)

	// Start the cron scheduler in the background
	scheduler.Start()
	logger.Info("scheduler started")

	// Start the ops HTTP server.
	handlers := api.NewHandlers(jobs, logger)
	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: api.NewRouter(handlers, cfg.InternalAPIKey),
	}

	go func() {
		logger.Info("ops server starting", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("could not start ops server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for termination signal to gracefully shut down
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received, stopping")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("ops server shutdown failed", "error", err)
	}

	stopCtx := scheduler.Stop()
	<-stopCtx.Done() // Wait for running sweeps to finish
	logger.Info("scheduler stopped gracefully")
}
