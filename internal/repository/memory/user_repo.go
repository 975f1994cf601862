package memory

import (
	"context"
	"sort"
	"time"

	"github.com/and161185/minuteminds/internal/errs"
	"github.com/and161185/minuteminds/internal/model"
	"github.com/gofrs/uuid/v5"
)

// UserRepo implements UserRepository in memory.
type UserRepo struct{ db *DB }

// Create stores a new user; emails are unique.
func (r *UserRepo) Create(_ context.Context, u *model.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.users {
		if existing.Email == u.Email {
			return errs.ErrAlreadyExists
		}
	}
	if _, ok := r.db.users[u.ID]; ok {
		return errs.ErrAlreadyExists
	}
	r.db.users[u.ID] = *u
	return nil
}

// GetByID loads a user by ID.
func (r *UserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &u, nil
}

// GetByEmail loads a user by email.
func (r *UserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, u := range r.db.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, errs.ErrNotFound
}

// List returns all users ordered by creation time.
func (r *UserRepo) List(_ context.Context) ([]model.User, error) {
	r.db.mu.RLock()
	out := make([]model.User, 0, len(r.db.users))
	for _, u := range r.db.users {
		out = append(out, u)
	}
	r.db.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Delete removes a user.
func (r *UserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.users[id]; !ok {
		return errs.ErrNotFound
	}
	delete(r.db.users, id)
	return nil
}

// SetRole updates the role of a user.
func (r *UserRepo) SetRole(_ context.Context, id uuid.UUID, role string) error {
	return r.update(id, func(u *model.User) { u.Role = role })
}

// SetPasswordHash replaces the stored password hash.
func (r *UserRepo) SetPasswordHash(_ context.Context, id uuid.UUID, hash string) error {
	return r.update(id, func(u *model.User) { u.PasswordHash = hash })
}

// Count returns the number of users.
func (r *UserRepo) Count(_ context.Context) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return int64(len(r.db.users)), nil
}

func (r *UserRepo) update(id uuid.UUID, fn func(*model.User)) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return errs.ErrNotFound
	}
	fn(&u)
	u.UpdatedAt = time.Now().UTC()
	r.db.users[id] = u
	return nil
}
