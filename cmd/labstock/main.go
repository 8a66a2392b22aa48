package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/labstock/labstock/internal/analytics"
	analytichttp "github.com/labstock/labstock/internal/analytics/http"
	"github.com/labstock/labstock/internal/app"
	"github.com/labstock/labstock/internal/capacity"
	"github.com/labstock/labstock/internal/expense"
	"github.com/labstock/labstock/internal/ingest"
	"github.com/labstock/labstock/internal/platform/cache"
	"github.com/labstock/labstock/internal/platform/db"
	"github.com/labstock/labstock/internal/shared"
	"github.com/labstock/labstock/internal/stock"
	"github.com/labstock/labstock/internal/upload"
	"github.com/labstock/labstock/jobs"
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

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		client, err := cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Warn("connect redis, caching disabled", slog.Any("error", err))
		} else {
			redisClient = client
			defer func() {
				if err := redisClient.Close(); err != nil {
					logger.Warn("redis close", slog.Any("error", err))
				}
			}()
		}
	}

	auditLogger := shared.NewAuditLogger(nil)
	if cfg.PGDSN != "" {
		pool, err := db.New(ctx, cfg.PGDSN)
		if err != nil {
			logger.Warn("connect postgres, audit disabled", slog.Any("error", err))
		} else {
			defer pool.Close()
			auditLogger = shared.NewAuditLogger(pool)
		}
	}

	store := stock.NewStore()
	if err := upload.LoadDataDir(logger, store, cfg.DataDir); err != nil {
		logger.Error("load seed data", slog.Any("error", err))
		os.Exit(1)
	}

	capacityService := capacity.NewService(nil)
	expenseService := expense.NewService()
	if cfg.DataDir != "" {
		loadEquipment(logger, capacityService, filepath.Join(cfg.DataDir, "equipment_list.csv"))
		loadExpenses(logger, expenseService, filepath.Join(cfg.DataDir, "expenses.csv"))
	}

	analyticsCache := analytics.NewCache(redisClient, cfg.CacheTTL)
	analyticsService := analytics.NewService(store, analyticsCache)
	analyticsHandler := analytichttp.NewHandler(logger, analyticsService)

	var warmup upload.WarmupEnqueuer
	if cfg.RedisAddr != "" {
		client := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr}, logger)
		defer func() {
			if err := client.Close(); err != nil {
				logger.Warn("asynq client close", slog.Any("error", err))
			}
		}()
		warmup = client
	}
	uploadHandler := upload.NewHandler(logger, store, auditLogger, warmup, cfg.MaxUploadBytes)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		AnalyticsHandler: analyticsHandler,
		UploadHandler:    uploadHandler,
		CapacityHandler:  capacity.NewHandler(logger, capacityService),
		ExpenseHandler:   expense.NewHandler(logger, expenseService),
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

func loadEquipment(logger *slog.Logger, svc *capacity.Service, path string) {
	f, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("open equipment export", slog.Any("error", err))
		}
		return
	}
	defer func() { _ = f.Close() }()
	records, diags, err := capacity.ParseEquipment(f, ingest.FormatCSV)
	if err != nil {
		logger.Warn("parse equipment export", slog.Any("error", err))
		return
	}
	if len(diags) > 0 {
		logger.Warn("equipment export coercion warnings", slog.Int("count", len(diags)))
	}
	svc.Replace(records)
	logger.Info("equipment ledger loaded", slog.Int("rows", len(records)))
}

func loadExpenses(logger *slog.Logger, svc *expense.Service, path string) {
	f, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("open expense export", slog.Any("error", err))
		}
		return
	}
	defer func() { _ = f.Close() }()
	records, diags, err := expense.ParseExpenses(f, ingest.FormatCSV)
	if err != nil {
		logger.Warn("parse expense export", slog.Any("error", err))
		return
	}
	if len(diags) > 0 {
		logger.Warn("expense export coercion warnings", slog.Int("count", len(diags)))
	}
	svc.Replace(records)
	logger.Info("expense ledger loaded", slog.Int("rows", len(records)))
}
