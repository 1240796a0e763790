package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/contaflow/contaflow/internal/accounts"
	"github.com/contaflow/contaflow/internal/app"
	"github.com/contaflow/contaflow/internal/platform/db"
	"github.com/contaflow/contaflow/internal/platform/storage"
	"github.com/contaflow/contaflow/internal/profiles"
	"github.com/contaflow/contaflow/internal/shared"
	"github.com/contaflow/contaflow/jobs"
	"github.com/contaflow/contaflow/report"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.Connect(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	var store storage.ObjectStore
	if cfg.GCSBucket != "" {
		gcsStore, err := storage.NewGCSStore(ctx, cfg.GCSBucket, cfg.StoragePublicBaseURL, cfg.GCSCredentialsJSON)
		if err != nil {
			logger.Error("init object storage", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := gcsStore.Close(); err != nil {
				logger.Warn("storage close", slog.Any("error", err))
			}
		}()
		store = gcsStore
	} else {
		logger.Warn("GCS_BUCKET not set, using in-memory object store")
		store = storage.NewMemoryStore()
	}

	auditLogger := shared.NewAuditLogger(pool)
	fetcher := report.NewFetcher(cfg.AttachmentTimeout)

	profilesRepo := profiles.NewRepository(pool)
	profilesService := profiles.NewService(profilesRepo, logger)

	// The worker consumes report tasks, so it never enqueues them itself.
	accountsRepo := accounts.NewRepository(pool)
	accountsService := accounts.NewService(accountsRepo, store, profilesService, nil, fetcher, auditLogger, logger)

	accountTasks := jobs.NewAccountTasks(accountsService, logger)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskGenerateReport, Handler: accountTasks.HandleGenerateReport},
			{Type: jobs.TaskOverdueSweep, Handler: accountTasks.HandleOverdueSweep},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 3 * * *", Task: jobs.NewOverdueSweepTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("build worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker started")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
