// Package jobs contains the background task definitions and the Asynq
// worker that runs them.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAnalyticsWarmup pre-populates the dashboard caches after a new
	// snapshot version is applied.
	TaskAnalyticsWarmup = "analytics:warmup"
)

// WarmupPayload names the snapshot version the warmup should build caches
// for. A stale version is skipped by the handler.
type WarmupPayload struct {
	Version int64 `json:"version"`
}

// NewWarmupTask constructs an analytics warmup task.
func NewWarmupTask(payload WarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAnalyticsWarmup, data), nil
}
