// Package memory contains in-memory implementations of repository interfaces.
// It backs development runs without PostgreSQL and service tests.
package memory

import (
	"sync"

	"github.com/and161185/minuteminds/internal/model"
	"github.com/and161185/minuteminds/internal/repository"
	"github.com/gofrs/uuid/v5"
)

// DB holds all collections behind one lock. It is safe for concurrent use.
type DB struct {
	mu             sync.RWMutex
	users          map[uuid.UUID]model.User
	transcriptions map[uuid.UUID]model.Transcription
	logs           []model.LogEntry
	metrics        []model.Metric
}

// New creates an empty in-memory database.
func New() *DB {
	return &DB{
		users:          make(map[uuid.UUID]model.User),
		transcriptions: make(map[uuid.UUID]model.Transcription),
	}
}

// NewStore wires all in-memory repositories over one database.
func NewStore(db *DB) repository.Store {
	return repository.Store{
		Users:          &UserRepo{db: db},
		Transcriptions: &TranscriptionRepo{db: db},
		Audit:          &AuditRepo{db: db},
	}
}

func cloneTranscription(t model.Transcription) model.Transcription {
	t.Segments = append([]model.Segment{}, t.Segments...)
	if t.Summary != nil {
		s := *t.Summary
		t.Summary = &s
	}
	if t.BulletPoints != nil {
		t.BulletPoints = append([]string{}, t.BulletPoints...)
	}
	if t.KeyItems != nil {
		items := make([]model.KeyItem, len(t.KeyItems))
		for i, it := range t.KeyItems {
			if it.Assignee != nil {
				a := *it.Assignee
				it.Assignee = &a
			}
			items[i] = it
		}
		t.KeyItems = items
	}
	return t
}
