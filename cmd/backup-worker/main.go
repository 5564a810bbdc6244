package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/ahmedsps3/personal-budget-app/internal/amqp"
	"github.com/ahmedsps3/personal-budget-app/internal/config"
	"github.com/ahmedsps3/personal-budget-app/internal/drive"
	applog "github.com/ahmedsps3/personal-budget-app/internal/log"
	"github.com/ahmedsps3/personal-budget-app/internal/storage"
	"github.com/ahmedsps3/personal-budget-app/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Level: slog.LevelInfo, Component: applog.ComponentWorker})
	applog.SetDefault(logger)

	logger.Info("Starting backup-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	uploader, err := drive.NewUploaderFromEnv()
	if err != nil {
		logger.Error("Failed to initialize Drive uploader", "error", err)
		os.Exit(1)
	}

	backupWorker := worker.NewBackupWorker(repo, uploader, cfg.BackupBatchSize)

	// AMQP consumption is optional; the periodic scan alone keeps snapshots
	// converging when no broker is configured.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, running scan-only", "error", err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
		}
	} else {
		logger.Info("AMQP disabled - running scan-only")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	if amqpClient != nil {
		g.Go(func() error {
			err := amqpClient.ConsumeBackupRequests(gctx, func(msg *amqp.BackupRequestMessage) error {
				return backupWorker.HandleBackupRequest(gctx, msg)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(cfg.BackupInterval)
		defer ticker.Stop()

		// Catch up on startup before the first tick.
		if _, err := backupWorker.ProcessPendingBackups(gctx, cfg.BackupInterval); err != nil {
			logger.Error("Startup backup scan failed", "error", err)
		}

		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if _, err := backupWorker.ProcessPendingBackups(gctx, cfg.BackupInterval); err != nil {
					logger.Error("Periodic backup scan failed", "error", err)
				}
			}
		}
	})

	logger.Info("Backup worker running",
		"batch_size", cfg.BackupBatchSize,
		"scan_interval", cfg.BackupInterval)

	if err := g.Wait(); err != nil {
		logger.Error("Backup worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Backup-worker shutdown complete")
}
