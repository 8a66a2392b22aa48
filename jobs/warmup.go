package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/labstock/labstock/internal/analytics"
	"github.com/labstock/labstock/internal/recon"
)

// WarmupJob pre-computes the dashboard views so the first request after a
// snapshot apply is served from cache.
type WarmupJob struct {
	Analytics *analytics.Service
	Source    analytics.SnapshotSource
	Logger    *slog.Logger
	clock     func() time.Time
}

// NewWarmupJob wires dependencies for the warmup handler.
func NewWarmupJob(svc *analytics.Service, source analytics.SnapshotSource, logger *slog.Logger) *WarmupJob {
	return &WarmupJob{
		Analytics: svc,
		Source:    source,
		Logger:    logger,
		clock:     func() time.Time { return time.Now().UTC() },
	}
}

// Handle processes analytics warmup tasks. Tasks enqueued for a version
// that has since been superseded are dropped without work.
func (j *WarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Analytics == nil {
		return errors.New("analytics warmup: handler not configured")
	}
	var payload WarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	logger := j.logger().With(slog.Int64("version", payload.Version))
	if current := j.currentVersion(); payload.Version != 0 && current != payload.Version {
		logger.Info("skipping warmup for superseded version", slog.Int64("current", current))
		return nil
	}

	start := j.now()
	if err := j.warm(ctx); err != nil {
		logger.Error("analytics warmup", slog.Any("error", err))
		return err
	}
	logger.Info("analytics warmup complete", slog.Duration("duration", time.Since(start)))
	return nil
}

func (j *WarmupJob) warm(ctx context.Context) error {
	warmCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	if _, err := j.Analytics.Reconcile(warmCtx, recon.Filter{}); err != nil {
		return err
	}
	if _, err := j.Analytics.MonthlyUsage(warmCtx); err != nil {
		return err
	}
	if _, err := j.Analytics.CommodityBreakdownByMonth(warmCtx, 0); err != nil {
		return err
	}
	if _, err := j.Analytics.TopItems(warmCtx, analytics.DefaultTopItemsLimit, 0); err != nil {
		return err
	}
	if _, err := j.Analytics.KPISummary(warmCtx); err != nil {
		return err
	}
	return nil
}

func (j *WarmupJob) currentVersion() int64 {
	if j.Source == nil {
		return 0
	}
	if snap := j.Source.Snapshot(); snap != nil {
		return snap.Version
	}
	return 0
}

func (j *WarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskAnalyticsWarmup))
	}
	return slog.Default().With(slog.String("job", TaskAnalyticsWarmup))
}

func (j *WarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
