package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/labstock/labstock/internal/analytics"
	"github.com/labstock/labstock/internal/app"
	"github.com/labstock/labstock/internal/platform/cache"
	"github.com/labstock/labstock/internal/stock"
	"github.com/labstock/labstock/internal/upload"
	"github.com/labstock/labstock/jobs"
)

// The worker warms the shared Redis cache from its own copy of the seed
// snapshot. Cache keys carry the snapshot version, so warmup only helps
// while the worker and the server hold the same data; tasks for versions
// the worker has not seen are skipped.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if cfg.RedisAddr == "" {
		logger.Error("REDIS_ADDR is required for the worker")
		os.Exit(1)
	}
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	store := stock.NewStore()
	if err := upload.LoadDataDir(logger, store, cfg.DataDir); err != nil {
		logger.Error("load seed data", slog.Any("error", err))
		os.Exit(1)
	}

	analyticsCache := analytics.NewCache(redisClient, cfg.CacheTTL)
	analyticsService := analytics.NewService(store, analyticsCache)
	warmupJob := jobs.NewWarmupJob(analyticsService, store, logger)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Warmup:    warmupJob,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
