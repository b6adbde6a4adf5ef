package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSessionsPurge removes expired session records.
	TaskSessionsPurge = "sessions:purge"
)

// SessionsPurgePayload bounds a purge run. Zero Before means "now".
type SessionsPurgePayload struct {
	Before time.Time `json:"before"`
}

// SessionPurger is implemented by the auth service.
type SessionPurger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// NewSessionsPurgeTask constructs an Asynq task.
func NewSessionsPurgeTask(payload SessionsPurgePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSessionsPurge, data), nil
}

// NewSessionsPurgeHandler returns the handler for TaskSessionsPurge tasks.
func NewSessionsPurgeHandler(purger SessionPurger, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload SessionsPurgePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		cutoff := payload.Before
		if cutoff.IsZero() {
			cutoff = time.Now().UTC()
		}
		purged, err := purger.PurgeExpired(ctx, cutoff)
		if err != nil {
			logger.Error("purge sessions", slog.Any("error", err))
			return err
		}
		if purged > 0 {
			logger.Info("purged sessions", slog.Int64("count", purged))
		}
		return nil
	}
}
