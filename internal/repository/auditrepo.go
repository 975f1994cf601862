package repository

import (
	"context"
	"time"

	"github.com/and161185/minuteminds/internal/model"
)

// AuditRepository stores append-only action logs and metrics.
type AuditRepository interface {
	// AppendLog stores an action log entry.
	AppendLog(ctx context.Context, e *model.LogEntry) error
	// AppendMetric stores a metric sample.
	AppendMetric(ctx context.Context, m *model.Metric) error
	// ListLogs returns log entries newest first.
	ListLogs(ctx context.Context, f model.LogFilter) ([]model.LogEntry, error)
	// CountLogs counts log entries with the given action.
	CountLogs(ctx context.Context, action string) (int64, error)
	// MetricsSince returns metrics recorded at or after since, newest first.
	MetricsSince(ctx context.Context, since time.Time) ([]model.Metric, error)
}

// Store bundles the repositories of one storage backend.
type Store struct {
	Users          UserRepository
	Transcriptions TranscriptionRepository
	Audit          AuditRepository
}
