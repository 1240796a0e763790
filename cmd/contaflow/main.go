package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/contaflow/contaflow/internal/accounts"
	"github.com/contaflow/contaflow/internal/app"
	"github.com/contaflow/contaflow/internal/auth"
	"github.com/contaflow/contaflow/internal/bankaccounts"
	"github.com/contaflow/contaflow/internal/permissions"
	"github.com/contaflow/contaflow/internal/pixkeys"
	"github.com/contaflow/contaflow/internal/platform/cache"
	"github.com/contaflow/contaflow/internal/platform/db"
	"github.com/contaflow/contaflow/internal/platform/storage"
	"github.com/contaflow/contaflow/internal/profiles"
	"github.com/contaflow/contaflow/internal/shared"
	"github.com/contaflow/contaflow/internal/users"
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

	dbpool, err := db.Connect(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.Connect(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "contaflow_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

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

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	auditLogger := shared.NewAuditLogger(dbpool)

	permService := permissions.NewService(dbpool, redisClient)
	permMiddleware := permissions.Middleware{Service: permService, Logger: logger}
	permHandler := permissions.NewHandler(logger, permService, permMiddleware)

	profilesRepo := profiles.NewRepository(dbpool)
	profilesService := profiles.NewService(profilesRepo, logger)
	profilesHandler := profiles.NewHandler(logger, profilesService, permMiddleware)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	fetcher := report.NewFetcher(cfg.AttachmentTimeout)

	accountsRepo := accounts.NewRepository(dbpool)
	accountsService := accounts.NewService(accountsRepo, store, profilesService, jobClient, fetcher, auditLogger, logger)
	accountsHandler := accounts.NewHandler(logger, accountsService, permMiddleware)

	bankRepo := bankaccounts.NewRepository(dbpool)
	bankService := bankaccounts.NewService(bankRepo, logger)
	bankHandler := bankaccounts.NewHandler(logger, bankService, permMiddleware)

	pixRepo := pixkeys.NewRepository(dbpool)
	pixService := pixkeys.NewService(pixRepo, logger)
	pixHandler := pixkeys.NewHandler(logger, pixService, permMiddleware)

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo, permService, logger)
	usersHandler := users.NewHandler(logger, usersService, permMiddleware)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		SessionManager:      sessionManager,
		CSRFManager:         csrfManager,
		AuthHandler:         authHandler,
		AccountsHandler:     accountsHandler,
		BankAccountsHandler: bankHandler,
		PixKeysHandler:      pixHandler,
		ProfilesHandler:     profilesHandler,
		UsersHandler:        usersHandler,
		PermissionsHandler:  permHandler,
		JobHandler:          jobHandler,
		Permissions:         permMiddleware,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
