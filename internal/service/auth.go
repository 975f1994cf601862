// Package service contains the application services behind the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	pkgcrypto "github.com/and161185/minuteminds/internal/crypto"
	"github.com/and161185/minuteminds/internal/errs"
	"github.com/and161185/minuteminds/internal/limiter"
	"github.com/and161185/minuteminds/internal/model"
	"github.com/and161185/minuteminds/internal/repository"
)

// MinPasswordLen is the shortest accepted password.
const MinPasswordLen = 6

// AuthService defines account and session operations.
type AuthService interface {
	// Register creates a new user with secure password hashing.
	Register(ctx context.Context, email, name, password string) (uuid.UUID, error)
	// Login applies rate-limiting and authenticates the user.
	Login(ctx context.Context, email, password, ip string) (model.Tokens, model.User, error)
	// VerifyToken validates a token and returns the current profile of its subject.
	VerifyToken(ctx context.Context, token string) (model.Identity, error)
	// Authenticate validates a token and returns its subject.
	Authenticate(ctx context.Context, token string) (uuid.UUID, error)
	// AuthorizeAdmin additionally requires the subject to hold the admin role.
	AuthorizeAdmin(ctx context.Context, token string) (uuid.UUID, error)
}

type AuthServiceImpl struct {
	users     repository.UserRepository
	signKey   []byte
	accessTTL time.Duration
	lim       limiter.Limiter
	rec       *Recorder
	now       func() time.Time
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, signKey []byte, accessTTL time.Duration, lim limiter.Limiter, rec *Recorder) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, signKey: signKey, accessTTL: accessTTL, lim: lim, rec: rec, now: time.Now}
}

// sessionClaims are the JWT claims of a session token.
type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register validates input and creates a user with role "user".
func (s *AuthServiceImpl) Register(ctx context.Context, email, name, password string) (uuid.UUID, error) {
	email = NormalizeEmail(email)
	name = strings.TrimSpace(name)
	if email == "" || name == "" || strings.TrimSpace(password) == "" {
		return uuid.Nil, fmt.Errorf("%w: email, name and password are required", errs.ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid email address", errs.ErrValidation)
	}
	if len(password) < MinPasswordLen {
		return uuid.Nil, fmt.Errorf("%w: password must be at least %d characters", errs.ErrValidation, MinPasswordLen)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return uuid.Nil, fmt.Errorf("%w: email already registered", errs.ErrAlreadyExists)
	} else if !errors.Is(err, errs.ErrNotFound) {
		return uuid.Nil, err
	}

	hash, err := pkgcrypto.HashPassword(password)
	if err != nil {
		return uuid.Nil, err
	}
	uid, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, err
	}
	now := s.now().UTC()
	u := &model.User{
		ID:           uid,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			return uuid.Nil, fmt.Errorf("%w: email already registered", errs.ErrAlreadyExists)
		}
		return uuid.Nil, err
	}
	s.rec.Log(ctx, ActionUserRegistered, &uid, map[string]any{"email": email})
	return uid, nil
}

// Login authenticates with rate limiting by (email, ip).
func (s *AuthServiceImpl) Login(ctx context.Context, email, password, ip string) (model.Tokens, model.User, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return model.Tokens{}, model.User{}, fmt.Errorf("%w: email and password are required", errs.ErrValidation)
	}
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, email, ipHash)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	if !allowed {
		return model.Tokens{}, model.User{}, errs.ErrRateLimited
	}

	u, err := s.users.GetByEmail(ctx, email)
	ok := false
	if err == nil {
		ok, err = pkgcrypto.VerifyPassword(u.PasswordHash, password)
	}
	if err != nil && !errors.Is(err, errs.ErrNotFound) && !errors.Is(err, pkgcrypto.ErrMalformedHash) {
		return model.Tokens{}, model.User{}, err
	}
	if !ok {
		// Record failure; if threshold reached return rate-limited.
		if blocked, _, ferr := s.lim.Failure(ctx, email, ipHash); ferr == nil && blocked {
			return model.Tokens{}, model.User{}, errs.ErrRateLimited
		}
		// unknown email and wrong password are indistinguishable
		return model.Tokens{}, model.User{}, fmt.Errorf("%w: invalid email or password", errs.ErrUnauthorized)
	}

	// Success: reset counters (best-effort).
	_ = s.lim.Success(ctx, email, ipHash)

	access, exp, err := s.issueAccessToken(u.ID, u.Email)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	s.rec.Log(ctx, ActionUserLogin, &u.ID, map[string]any{"email": u.Email})
	return model.Tokens{AccessToken: access, ExpiresAt: exp}, *u, nil
}

// issueAccessToken creates a signed HS256 JWT for the given subject.
func (s *AuthServiceImpl) issueAccessToken(userID uuid.UUID, email string) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.accessTTL)
	claims := sessionClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.signKey)
	return signed, exp, err
}

// parse validates signature, algorithm and expiry and returns the subject and email.
func (s *AuthServiceImpl) parse(token string) (uuid.UUID, string, error) {
	if token == "" {
		return uuid.Nil, "", fmt.Errorf("%w: token is missing", errs.ErrUnauthorized)
	}
	var c sessionClaims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) { return s.signKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, "", fmt.Errorf("%w: token has expired", errs.ErrUnauthorized)
		}
		return uuid.Nil, "", fmt.Errorf("%w: invalid token", errs.ErrUnauthorized)
	}
	uid, err := uuid.FromString(c.Subject)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("%w: invalid token subject", errs.ErrUnauthorized)
	}
	return uid, c.Email, nil
}

// Authenticate returns the subject of a valid token.
func (s *AuthServiceImpl) Authenticate(_ context.Context, token string) (uuid.UUID, error) {
	uid, _, err := s.parse(token)
	return uid, err
}

// AuthorizeAdmin returns the subject of a valid token held by an admin.
func (s *AuthServiceImpl) AuthorizeAdmin(ctx context.Context, token string) (uuid.UUID, error) {
	uid, _, err := s.parse(token)
	if err != nil {
		return uuid.Nil, err
	}
	u, err := s.users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return uuid.Nil, fmt.Errorf("%w: admin access required", errs.ErrForbidden)
		}
		return uuid.Nil, err
	}
	if !u.IsAdmin() {
		return uuid.Nil, fmt.Errorf("%w: admin access required", errs.ErrForbidden)
	}
	return uid, nil
}

// VerifyToken returns the identity of a valid token. Name and role come from the
// store; a deleted user keeps the token's id and email with role "user".
func (s *AuthServiceImpl) VerifyToken(ctx context.Context, token string) (model.Identity, error) {
	uid, email, err := s.parse(token)
	if err != nil {
		return model.Identity{}, err
	}
	id := model.Identity{ID: uid, Email: email, Role: model.RoleUser}
	u, err := s.users.GetByID(ctx, uid)
	switch {
	case err == nil:
		id.Name, id.Role = u.Name, u.Role
	case !errors.Is(err, errs.ErrNotFound):
		return model.Identity{}, err
	}
	return id, nil
}
