package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/and161185/minuteminds/internal/model"
	"github.com/gofrs/uuid/v5"
)

// AuditRepo implements AuditRepository over the action_logs and metrics tables.
type AuditRepo struct{ db *DB }

// NewAuditRepo constructs an audit repository.
func NewAuditRepo(db *DB) *AuditRepo { return &AuditRepo{db: db} }

// AppendLog inserts an action log row.
func (r *AuditRepo) AppendLog(ctx context.Context, e *model.LogEntry) error {
	details := e.Details
	if details == nil {
		details = map[string]any{}
	}
	b, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("encode details: %w", err)
	}
	const q = `INSERT INTO action_logs (id, action, user_id, details, ts) VALUES ($1, $2, $3, $4, $5)`
	_, err = r.db.Pool.Exec(ctx, q, e.ID, e.Action, nullID(e.UserID), b, e.Timestamp)
	return err
}

// AppendMetric inserts a metric row.
func (r *AuditRepo) AppendMetric(ctx context.Context, m *model.Metric) error {
	const q = `INSERT INTO metrics (id, type, value, user_id, ts) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Pool.Exec(ctx, q, m.ID, m.Type, m.Value, nullID(m.UserID), m.Timestamp)
	return err
}

// ListLogs returns log entries newest first, optionally filtered by action.
func (r *AuditRepo) ListLogs(ctx context.Context, f model.LogFilter) ([]model.LogEntry, error) {
	q := `SELECT id, action, user_id, details, ts FROM action_logs`
	args := []any{f.Limit}
	if f.Action != "" {
		q += ` WHERE action=$2`
		args = append(args, f.Action)
	}
	q += ` ORDER BY ts DESC LIMIT $1`

	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.LogEntry{}
	for rows.Next() {
		var e model.LogEntry
		var uid uuid.NullUUID
		var details []byte
		if err := rows.Scan(&e.ID, &e.Action, &uid, &details, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan log entry: %w", err)
		}
		e.UserID = idPtr(uid)
		if err := jsonScan(details, &e.Details); err != nil {
			return nil, fmt.Errorf("decode details: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CountLogs counts log entries with the given action.
func (r *AuditRepo) CountLogs(ctx context.Context, action string) (int64, error) {
	var n int64
	err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM action_logs WHERE action=$1`, action).Scan(&n)
	return n, err
}

// MetricsSince returns metrics recorded at or after since, newest first.
func (r *AuditRepo) MetricsSince(ctx context.Context, since time.Time) ([]model.Metric, error) {
	const q = `SELECT id, type, value, user_id, ts FROM metrics WHERE ts >= $1 ORDER BY ts DESC`
	rows, err := r.db.Pool.Query(ctx, q, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Metric{}
	for rows.Next() {
		var m model.Metric
		var uid uuid.NullUUID
		if err := rows.Scan(&m.ID, &m.Type, &m.Value, &uid, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan metric: %w", err)
		}
		m.UserID = idPtr(uid)
		out = append(out, m)
	}
	return out, rows.Err()
}

func nullID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func idPtr(n uuid.NullUUID) *uuid.UUID {
	if !n.Valid {
		return nil
	}
	id := n.UUID
	return &id
}
