package memory

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/and161185/minuteminds/internal/errs"
	"github.com/and161185/minuteminds/internal/model"
	"github.com/gofrs/uuid/v5"
)

// TranscriptionRepo implements TranscriptionRepository in memory.
type TranscriptionRepo struct{ db *DB }

// Create stores a transcription.
func (r *TranscriptionRepo) Create(_ context.Context, t *model.Transcription) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.transcriptions[t.ID]; ok {
		return errs.ErrAlreadyExists
	}
	r.db.transcriptions[t.ID] = cloneTranscription(*t)
	return nil
}

// Get returns the transcription with id owned by userID.
func (r *TranscriptionRepo) Get(_ context.Context, userID, id uuid.UUID) (*model.Transcription, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	t, ok := r.db.transcriptions[id]
	if !ok || t.UserID != userID {
		return nil, errs.ErrNotFound
	}
	t = cloneTranscription(t)
	return &t, nil
}

// ListByUser returns the owner's transcriptions, newest first.
func (r *TranscriptionRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]model.Transcription, error) {
	return r.filter(userID, func(model.Transcription) bool { return true }), nil
}

// SetSummary overwrites summary and bullet points.
func (r *TranscriptionRepo) SetSummary(_ context.Context, userID, id uuid.UUID, summary string, bullets []string) error {
	if bullets == nil {
		bullets = []string{}
	}
	return r.update(userID, id, func(t *model.Transcription) {
		t.Summary = &summary
		t.BulletPoints = bullets
	})
}

// SetKeyItems replaces the whole key item list.
func (r *TranscriptionRepo) SetKeyItems(_ context.Context, userID, id uuid.UUID, items []model.KeyItem) error {
	if items == nil {
		items = []model.KeyItem{}
	}
	return r.update(userID, id, func(t *model.Transcription) { t.KeyItems = items })
}

// Search matches transcriptions whose text contains every query word as a whole word, ignoring case.
func (r *TranscriptionRepo) Search(_ context.Context, userID uuid.UUID, query string) ([]model.Transcription, error) {
	terms := words(query)
	if len(terms) == 0 {
		return []model.Transcription{}, nil
	}
	return r.filter(userID, func(t model.Transcription) bool {
		have := make(map[string]struct{})
		for _, w := range words(t.Text) {
			have[w] = struct{}{}
		}
		for _, term := range terms {
			if _, ok := have[term]; !ok {
				return false
			}
		}
		return true
	}), nil
}

// Count returns the number of transcriptions.
func (r *TranscriptionRepo) Count(_ context.Context) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return int64(len(r.db.transcriptions)), nil
}

// TopUsers ranks owners by transcription count.
func (r *TranscriptionRepo) TopUsers(_ context.Context, limit int) ([]model.UserCount, error) {
	r.db.mu.RLock()
	counts := make(map[uuid.UUID]int64)
	for _, t := range r.db.transcriptions {
		counts[t.UserID]++
	}
	r.db.mu.RUnlock()

	out := make([]model.UserCount, 0, len(counts))
	for id, n := range counts {
		out = append(out, model.UserCount{UserID: id, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return bytes.Compare(out[i].UserID.Bytes(), out[j].UserID.Bytes()) < 0
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *TranscriptionRepo) filter(userID uuid.UUID, keep func(model.Transcription) bool) []model.Transcription {
	r.db.mu.RLock()
	out := []model.Transcription{}
	for _, t := range r.db.transcriptions {
		if t.UserID == userID && keep(t) {
			out = append(out, cloneTranscription(t))
		}
	}
	r.db.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *TranscriptionRepo) update(userID, id uuid.UUID, fn func(*model.Transcription)) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.transcriptions[id]
	if !ok || t.UserID != userID {
		return errs.ErrNotFound
	}
	fn(&t)
	r.db.transcriptions[id] = cloneTranscription(t)
	return nil
}

func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
