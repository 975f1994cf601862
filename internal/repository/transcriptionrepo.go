package repository

import (
	"context"

	"github.com/and161185/minuteminds/internal/model"
	"github.com/gofrs/uuid/v5"
)

// TranscriptionRepository persists transcriptions. Every read and write is scoped by owner.
type TranscriptionRepository interface {
	// Create inserts a new transcription.
	Create(ctx context.Context, t *model.Transcription) error
	// Get returns the transcription with id owned by userID, or errs.ErrNotFound.
	Get(ctx context.Context, userID, id uuid.UUID) (*model.Transcription, error)
	// ListByUser returns the owner's transcriptions, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Transcription, error)
	// SetSummary overwrites summary and bullet points.
	SetSummary(ctx context.Context, userID, id uuid.UUID, summary string, bullets []string) error
	// SetKeyItems replaces the whole key item list.
	SetKeyItems(ctx context.Context, userID, id uuid.UUID, items []model.KeyItem) error
	// Search runs the store-native full-text match over the owner's transcription text.
	Search(ctx context.Context, userID uuid.UUID, query string) ([]model.Transcription, error)
	// Count returns the number of transcriptions of all users.
	Count(ctx context.Context) (int64, error)
	// TopUsers ranks users by transcription count, descending.
	TopUsers(ctx context.Context, limit int) ([]model.UserCount, error)
}
