package service

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/minuteminds/internal/model"
	"github.com/and161185/minuteminds/internal/repository"
)

// Action names written to the audit log.
const (
	ActionUserRegistered       = "user_registered"
	ActionUserLogin            = "user_login"
	ActionTranscriptionCreated = "transcription_created"
	ActionSummarization        = "summarization"
	ActionExtractKeyItems      = "extract_key_items"
	ActionUpdateKeyItems       = "update_key_items"
	ActionSearch               = "search"
	ActionExport               = "export"
	ActionTranslation          = "translation"
	ActionAdminViewUsers       = "admin_view_users"
	ActionAdminDeleteUser      = "admin_delete_user"
	ActionAdminViewLogs        = "admin_view_logs"
	ActionAdminViewAnalytics   = "admin_view_analytics"
	ActionAdminProvisioned     = "admin_provisioned"
)

// Recorder appends action logs and metrics. Writes are best-effort: a failure is
// logged and never returned to the caller.
type Recorder struct {
	repo repository.AuditRepository
	log  *zap.Logger
	now  func() time.Time
}

// NewRecorder constructs a Recorder; a nil logger is replaced with a no-op one.
func NewRecorder(repo repository.AuditRepository, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{repo: repo, log: log, now: time.Now}
}

// Log appends an action log entry.
func (r *Recorder) Log(ctx context.Context, action string, userID *uuid.UUID, details map[string]any) {
	if r == nil {
		return
	}
	e := &model.LogEntry{
		ID:        uuid.Must(uuid.NewV4()),
		Action:    action,
		UserID:    userID,
		Details:   details,
		Timestamp: r.now().UTC(),
	}
	if err := r.repo.AppendLog(ctx, e); err != nil {
		r.log.Warn("audit log write failed", zap.String("action", action), zap.Error(err))
	}
}

// Metric appends a metric sample.
func (r *Recorder) Metric(ctx context.Context, typ string, value float64, userID *uuid.UUID) {
	if r == nil {
		return
	}
	m := &model.Metric{
		ID:        uuid.Must(uuid.NewV4()),
		Type:      typ,
		Value:     value,
		UserID:    userID,
		Timestamp: r.now().UTC(),
	}
	if err := r.repo.AppendMetric(ctx, m); err != nil {
		r.log.Warn("metric write failed", zap.String("type", typ), zap.Error(err))
	}
}
