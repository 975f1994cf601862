// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Roles a user may hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// KeyItemStatusOpen is the default status of an extracted key item.
const KeyItemStatusOpen = "open"

// Tokens collects an issued session token.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time // access token expiry (for diagnostics)
}

// Identity is the decoded content of a valid session token plus the stored profile.
type Identity struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Role  string    `json:"role"`
}

// User represents an account. The password is only ever stored as an argon2id PHC string.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"` // unique, lowercase
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

// Segment is a timestamped span of transcribed speech. Start and End are seconds.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// KeyItem is an extracted action item or decision.
type KeyItem struct {
	Text     string  `json:"text"`
	Assignee *string `json:"assignee"`
	Status   string  `json:"status"`
}

// Transcription is the stored record of one processed audio artifact.
type Transcription struct {
	ID           uuid.UUID `json:"_id"`
	UserID       uuid.UUID `json:"user_id"`
	Filename     string    `json:"filename"`
	Text         string    `json:"transcription"`
	Segments     []Segment `json:"segments"`
	Summary      *string   `json:"summary"`
	BulletPoints []string  `json:"bullet_points,omitempty"`
	KeyItems     []KeyItem `json:"key_items"` // nil until extracted or replaced
	ArtifactURI  string    `json:"artifact_uri,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// SearchResult is a full-text hit together with the segments that contain the query.
type SearchResult struct {
	Transcription
	MatchingSegments []Segment `json:"matching_segments"`
}

// LogEntry is an append-only audit record of a user or system action.
type LogEntry struct {
	ID        uuid.UUID      `json:"_id"`
	Action    string         `json:"action"`
	UserID    *uuid.UUID     `json:"user_id"`
	Details   map[string]any `json:"details"`
	Timestamp time.Time      `json:"timestamp"`
}

// Metric is an append-only usage measurement.
type Metric struct {
	ID        uuid.UUID  `json:"_id"`
	Type      string     `json:"type"`
	Value     float64    `json:"value"`
	UserID    *uuid.UUID `json:"user_id"`
	Timestamp time.Time  `json:"timestamp"`
}

// UserCount is one row of the transcriptions-per-user ranking.
type UserCount struct {
	UserID uuid.UUID `json:"_id"`
	Count  int64     `json:"count"`
}

// Analytics aggregates usage for the admin dashboard.
type Analytics struct {
	TotalUsers          int64       `json:"total_users"`
	TotalTranscriptions int64       `json:"total_transcriptions"`
	TotalLogins         int64       `json:"total_logins"`
	TopUsers            []UserCount `json:"top_users"`
	RecentMetrics       []Metric    `json:"recent_metrics"`
}

// LogFilter narrows audit log listings.
type LogFilter struct {
	Action string // empty = any
	Limit  int
}
