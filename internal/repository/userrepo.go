// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/minuteminds/internal/model"
	"github.com/gofrs/uuid/v5"
)

// UserRepository provides CRUD access for user accounts.
type UserRepository interface {
	// Create inserts a new user; returns errs.ErrAlreadyExists on a duplicate email.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetByEmail loads a user by (lowercase) email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// List returns all users ordered by creation time.
	List(ctx context.Context) ([]model.User, error)
	// Delete removes a user; returns errs.ErrNotFound when nothing was deleted.
	Delete(ctx context.Context, id uuid.UUID) error
	// SetRole updates the role of a user.
	SetRole(ctx context.Context, id uuid.UUID, role string) error
	// SetPasswordHash replaces the stored password hash.
	SetPasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	// Count returns the number of users.
	Count(ctx context.Context) (int64, error)
}
