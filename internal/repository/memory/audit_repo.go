package memory

import (
	"context"
	"sort"
	"time"

	"github.com/and161185/minuteminds/internal/model"
)

// AuditRepo implements AuditRepository in memory.
type AuditRepo struct{ db *DB }

// AppendLog stores an action log entry.
func (r *AuditRepo) AppendLog(_ context.Context, e *model.LogEntry) error {
	entry := *e
	if entry.Details == nil {
		entry.Details = map[string]any{}
	}
	r.db.mu.Lock()
	r.db.logs = append(r.db.logs, entry)
	r.db.mu.Unlock()
	return nil
}

// AppendMetric stores a metric sample.
func (r *AuditRepo) AppendMetric(_ context.Context, m *model.Metric) error {
	r.db.mu.Lock()
	r.db.metrics = append(r.db.metrics, *m)
	r.db.mu.Unlock()
	return nil
}

// ListLogs returns log entries newest first.
func (r *AuditRepo) ListLogs(_ context.Context, f model.LogFilter) ([]model.LogEntry, error) {
	r.db.mu.RLock()
	out := []model.LogEntry{}
	for _, e := range r.db.logs {
		if f.Action == "" || e.Action == f.Action {
			out = append(out, e)
		}
	}
	r.db.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// CountLogs counts log entries with the given action.
func (r *AuditRepo) CountLogs(_ context.Context, action string) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var n int64
	for _, e := range r.db.logs {
		if e.Action == action {
			n++
		}
	}
	return n, nil
}

// MetricsSince returns metrics recorded at or after since, newest first.
func (r *AuditRepo) MetricsSince(_ context.Context, since time.Time) ([]model.Metric, error) {
	r.db.mu.RLock()
	out := []model.Metric{}
	for _, m := range r.db.metrics {
		if !m.Timestamp.Before(since) {
			out = append(out, m)
		}
	}
	r.db.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}
