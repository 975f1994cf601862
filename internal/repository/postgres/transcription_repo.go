package postgres

import (
	"context"
	"fmt"

	"github.com/and161185/minuteminds/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// TranscriptionRepo implements TranscriptionRepository using PostgreSQL.
// Segments, bullet points and key items live in jsonb columns.
type TranscriptionRepo struct{ db *DB }

// NewTranscriptionRepo constructs a transcription repository.
func NewTranscriptionRepo(db *DB) *TranscriptionRepo { return &TranscriptionRepo{db: db} }

const transcriptionColumns = `id, user_id, filename, text, segments, summary, bullet_points, key_items, artifact_uri, created_at`

// Create inserts a transcription row.
func (r *TranscriptionRepo) Create(ctx context.Context, t *model.Transcription) error {
	segments := t.Segments
	if segments == nil {
		segments = []model.Segment{}
	}
	segJSON, err := jsonArg(segments)
	if err != nil {
		return fmt.Errorf("encode segments: %w", err)
	}
	const q = `
INSERT INTO transcriptions (id, user_id, filename, text, segments, artifact_uri, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = r.db.Pool.Exec(ctx, q, t.ID, t.UserID, t.Filename, t.Text, segJSON, t.ArtifactURI, t.CreatedAt)
	return err
}

// Get selects one transcription by id and owner.
func (r *TranscriptionRepo) Get(ctx context.Context, userID, id uuid.UUID) (*model.Transcription, error) {
	const q = `SELECT ` + transcriptionColumns + ` FROM transcriptions WHERE id=$1 AND user_id=$2`
	t, err := scanTranscription(r.db.Pool.QueryRow(ctx, q, id, userID))
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

// ListByUser returns the owner's transcriptions, newest first.
func (r *TranscriptionRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Transcription, error) {
	const q = `SELECT ` + transcriptionColumns + ` FROM transcriptions WHERE user_id=$1 ORDER BY created_at DESC`
	return r.list(ctx, q, userID)
}

// SetSummary overwrites summary and bullet points of an owned transcription.
func (r *TranscriptionRepo) SetSummary(ctx context.Context, userID, id uuid.UUID, summary string, bullets []string) error {
	if bullets == nil {
		bullets = []string{}
	}
	b, err := jsonArg(bullets)
	if err != nil {
		return fmt.Errorf("encode bullet points: %w", err)
	}
	const q = `UPDATE transcriptions SET summary=$3, bullet_points=$4 WHERE id=$1 AND user_id=$2`
	return mustAffect(r.db.Pool.Exec(ctx, q, id, userID, summary, b))
}

// SetKeyItems replaces the key item list of an owned transcription.
func (r *TranscriptionRepo) SetKeyItems(ctx context.Context, userID, id uuid.UUID, items []model.KeyItem) error {
	if items == nil {
		items = []model.KeyItem{}
	}
	b, err := jsonArg(items)
	if err != nil {
		return fmt.Errorf("encode key items: %w", err)
	}
	const q = `UPDATE transcriptions SET key_items=$3 WHERE id=$1 AND user_id=$2`
	return mustAffect(r.db.Pool.Exec(ctx, q, id, userID, b))
}

// Search runs a Postgres full-text match over the owner's transcription text.
func (r *TranscriptionRepo) Search(ctx context.Context, userID uuid.UUID, query string) ([]model.Transcription, error) {
	const q = `SELECT ` + transcriptionColumns + ` FROM transcriptions
WHERE user_id=$1 AND to_tsvector('english', text) @@ plainto_tsquery('english', $2)
ORDER BY created_at DESC`
	return r.list(ctx, q, userID, query)
}

// Count returns the number of transcriptions.
func (r *TranscriptionRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM transcriptions`).Scan(&n)
	return n, err
}

// TopUsers ranks owners by transcription count.
func (r *TranscriptionRepo) TopUsers(ctx context.Context, limit int) ([]model.UserCount, error) {
	const q = `
SELECT user_id, count(*) AS cnt FROM transcriptions
GROUP BY user_id ORDER BY cnt DESC, user_id LIMIT $1`
	rows, err := r.db.Pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.UserCount{}
	for rows.Next() {
		var uc model.UserCount
		if err := rows.Scan(&uc.UserID, &uc.Count); err != nil {
			return nil, fmt.Errorf("scan user count: %w", err)
		}
		out = append(out, uc)
	}
	return out, rows.Err()
}

func (r *TranscriptionRepo) list(ctx context.Context, q string, args ...any) ([]model.Transcription, error) {
	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Transcription{}
	for rows.Next() {
		t, err := scanTranscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transcription: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func scanTranscription(row pgx.Row) (*model.Transcription, error) {
	var t model.Transcription
	var segments, bullets, items []byte
	if err := row.Scan(&t.ID, &t.UserID, &t.Filename, &t.Text, &segments, &t.Summary, &bullets, &items, &t.ArtifactURI, &t.CreatedAt); err != nil {
		return nil, err
	}
	if err := jsonScan(segments, &t.Segments); err != nil {
		return nil, fmt.Errorf("decode segments: %w", err)
	}
	if t.Segments == nil {
		t.Segments = []model.Segment{}
	}
	if err := jsonScan(bullets, &t.BulletPoints); err != nil {
		return nil, fmt.Errorf("decode bullet points: %w", err)
	}
	if err := jsonScan(items, &t.KeyItems); err != nil {
		return nil, fmt.Errorf("decode key items: %w", err)
	}
	return &t, nil
}
