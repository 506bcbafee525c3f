package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"contas/internal/amqp"
	"contas/internal/cache"
	"contas/internal/config"
	"contas/internal/export"
	"contas/internal/services"
	"contas/internal/storage"
	"contas/internal/worker"
	"contas/pkg/logging"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logging.Setup()

	slog.Info("Starting contas-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		slog.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		slog.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// The worker recomputes summaries itself, so it shares the same cache
	// backend as the API server when Redis is configured.
	var summaryCache cache.Cache[string]
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisTTL)
		defer redisCache.Close()
		summaryCache = redisCache
	}

	ledger := services.NewLedgerService(repo, nil, summaryCache)

	// Spreadsheet export is optional.
	var exporter worker.Exporter
	if cfg.GoogleSpreadsheetID != "" {
		sheets, err := export.NewFromEnv(context.Background(), cfg.GoogleSheetName)
		if err != nil {
			slog.Error("Failed to initialize spreadsheet exporter", "error", err)
			os.Exit(1)
		}
		exporter = sheets
		slog.Info("Spreadsheet exporter initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		slog.Info("Spreadsheet export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		slog.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snapshotWorker := worker.NewSnapshotWorker(repo, ledger, exporter, cfg.SnapshotMonths)

	// On startup, refresh the recent window to catch events missed while down.
	slog.Info("Performing startup snapshot refresh...")
	if err := snapshotWorker.RecomputeRecent(ctx); err != nil {
		slog.Error("Startup snapshot refresh failed", "error", err)
		// Don't exit - continue with normal operation
	}

	go func() {
		if err := amqpClient.ConsumeLedgerEvents(ctx, snapshotWorker.HandleLedgerEvent); err != nil {
			if err != context.Canceled {
				slog.Error("Event consumption failed", "error", err)
			}
			cancel()
		}
	}()

	// Periodic refresh covers events lost between broker and worker.
	ticker := time.NewTicker(cfg.SnapshotInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := snapshotWorker.RecomputeRecent(ctx); err != nil {
					slog.Error("Periodic snapshot refresh failed", "error", err)
				}
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		slog.Info("Context cancelled")
	}

	slog.Info("Shutting down worker...")
	cancel()

	// Give in-flight recomputes a moment to finish.
	time.Sleep(2 * time.Second)
	slog.Info("Worker shutdown complete")
}
