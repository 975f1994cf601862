package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	pkgcrypto "github.com/and161185/minuteminds/internal/crypto"
	"github.com/and161185/minuteminds/internal/errs"
	"github.com/and161185/minuteminds/internal/model"
	"github.com/and161185/minuteminds/internal/repository"
)

// Admin listing limits.
const (
	DefaultLogLimit = 100
	MaxLogLimit     = 1000
	topUsersLimit   = 10
	metricsWindow   = 7 * 24 * time.Hour
)

// AdminService defines user management and usage reporting for administrators.
type AdminService interface {
	// ListUsers returns all accounts.
	ListUsers(ctx context.Context, caller uuid.UUID) ([]model.User, error)
	// DeleteUser removes an account other than the caller's own.
	DeleteUser(ctx context.Context, caller, id uuid.UUID) error
	// ListLogs returns recent audit entries, optionally of one action.
	ListLogs(ctx context.Context, caller uuid.UUID, action string, limit int) ([]model.LogEntry, error)
	// Analytics aggregates usage counters.
	Analytics(ctx context.Context, caller uuid.UUID) (model.Analytics, error)
}

type AdminServiceImpl struct {
	store repository.Store
	rec   *Recorder
	now   func() time.Time
}

// NewAdminService constructs AdminService over all repositories.
func NewAdminService(store repository.Store, rec *Recorder) *AdminServiceImpl {
	return &AdminServiceImpl{store: store, rec: rec, now: time.Now}
}

// ListUsers returns every user; password hashes never leave the model layer.
func (s *AdminServiceImpl) ListUsers(ctx context.Context, caller uuid.UUID) ([]model.User, error) {
	users, err := s.store.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	s.rec.Log(ctx, ActionAdminViewUsers, &caller, nil)
	return users, nil
}

// DeleteUser rejects self-deletion even for admins.
func (s *AdminServiceImpl) DeleteUser(ctx context.Context, caller, id uuid.UUID) error {
	if caller == id {
		return fmt.Errorf("%w: cannot delete your own account", errs.ErrValidation)
	}
	if err := s.store.Users.Delete(ctx, id); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return fmt.Errorf("%w: user not found", errs.ErrNotFound)
		}
		return err
	}
	s.rec.Log(ctx, ActionAdminDeleteUser, &caller, map[string]any{"deleted_user_id": id.String()})
	return nil
}

// ListLogs clamps limit to [1, MaxLogLimit]; zero or negative selects the default.
func (s *AdminServiceImpl) ListLogs(ctx context.Context, caller uuid.UUID, action string, limit int) ([]model.LogEntry, error) {
	switch {
	case limit <= 0:
		limit = DefaultLogLimit
	case limit > MaxLogLimit:
		limit = MaxLogLimit
	}
	logs, err := s.store.Audit.ListLogs(ctx, model.LogFilter{Action: strings.TrimSpace(action), Limit: limit})
	if err != nil {
		return nil, err
	}
	s.rec.Log(ctx, ActionAdminViewLogs, &caller, map[string]any{"action": action, "limit": limit})
	return logs, nil
}

// Analytics counts users, transcriptions and logins, ranks the top users and
// returns the metrics of the last seven days.
func (s *AdminServiceImpl) Analytics(ctx context.Context, caller uuid.UUID) (model.Analytics, error) {
	var a model.Analytics
	var err error
	if a.TotalUsers, err = s.store.Users.Count(ctx); err != nil {
		return model.Analytics{}, fmt.Errorf("count users: %w", err)
	}
	if a.TotalTranscriptions, err = s.store.Transcriptions.Count(ctx); err != nil {
		return model.Analytics{}, fmt.Errorf("count transcriptions: %w", err)
	}
	if a.TotalLogins, err = s.store.Audit.CountLogs(ctx, ActionUserLogin); err != nil {
		return model.Analytics{}, fmt.Errorf("count logins: %w", err)
	}
	if a.TopUsers, err = s.store.Transcriptions.TopUsers(ctx, topUsersLimit); err != nil {
		return model.Analytics{}, fmt.Errorf("top users: %w", err)
	}
	if a.RecentMetrics, err = s.store.Audit.MetricsSince(ctx, s.now().UTC().Add(-metricsWindow)); err != nil {
		return model.Analytics{}, fmt.Errorf("recent metrics: %w", err)
	}
	s.rec.Log(ctx, ActionAdminViewAnalytics, &caller, nil)
	return a, nil
}

// ProvisionResult reports what ProvisionAdmin did.
type ProvisionResult struct {
	User            model.User
	Created         bool
	Promoted        bool
	PasswordChanged bool
}

// ProvisionAdmin creates an admin account, or promotes an existing account to
// admin and optionally resets its password. It runs against the store directly
// and is used by the offline admin tool.
func ProvisionAdmin(ctx context.Context, users repository.UserRepository, rec *Recorder, email, name, password string, resetPassword bool) (ProvisionResult, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return ProvisionResult{}, fmt.Errorf("%w: email is required", errs.ErrValidation)
	}

	u, err := users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		if strings.TrimSpace(name) == "" {
			return ProvisionResult{}, fmt.Errorf("%w: name is required for a new admin", errs.ErrValidation)
		}
		if len(password) < MinPasswordLen {
			return ProvisionResult{}, fmt.Errorf("%w: password must be at least %d characters", errs.ErrValidation, MinPasswordLen)
		}
		hash, err := pkgcrypto.HashPassword(password)
		if err != nil {
			return ProvisionResult{}, err
		}
		now := time.Now().UTC()
		nu := model.User{
			ID:           uuid.Must(uuid.NewV4()),
			Name:         strings.TrimSpace(name),
			Email:        email,
			PasswordHash: hash,
			Role:         model.RoleAdmin,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := users.Create(ctx, &nu); err != nil {
			return ProvisionResult{}, err
		}
		rec.Log(ctx, ActionAdminProvisioned, &nu.ID, map[string]any{"email": email, "created": true})
		return ProvisionResult{User: nu, Created: true}, nil
	case err != nil:
		return ProvisionResult{}, err
	}

	// No writes until the new password is validated and hashed.
	var hash string
	if resetPassword {
		if len(password) < MinPasswordLen {
			return ProvisionResult{}, fmt.Errorf("%w: password must be at least %d characters", errs.ErrValidation, MinPasswordLen)
		}
		if hash, err = pkgcrypto.HashPassword(password); err != nil {
			return ProvisionResult{}, err
		}
	}

	res := ProvisionResult{User: *u}
	if !u.IsAdmin() {
		if err := users.SetRole(ctx, u.ID, model.RoleAdmin); err != nil {
			return ProvisionResult{}, err
		}
		res.User.Role, res.Promoted = model.RoleAdmin, true
	}
	if resetPassword {
		if err := users.SetPasswordHash(ctx, u.ID, hash); err != nil {
			return ProvisionResult{}, err
		}
		res.PasswordChanged = true
	}
	rec.Log(ctx, ActionAdminProvisioned, &u.ID, map[string]any{
		"email":            email,
		"promoted":         res.Promoted,
		"password_changed": res.PasswordChanged,
	})
	return res, nil
}
