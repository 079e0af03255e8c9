package entity

import (
	"time"

	"github.com/google/uuid"
)

// ProviderType names a login method.
type ProviderType string

const (
	ProviderTypeEmail  ProviderType = "email"
	ProviderTypeGoogle ProviderType = "google"
)

// Authentication is one credential of a user. Email credentials are keyed by the
// address and carry a bcrypt hash; Google credentials are keyed by the 'sub' claim.
type Authentication struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Provider       ProviderType
	ProviderUserID string
	PasswordHash   string
	CreatedAt      time.Time
}

// RefreshToken is a long-lived session. Only the SHA-256 of the raw token is stored.
type RefreshToken struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	TokenHash  string
	UserAgent  string
	IPAddress  string
	ExpiresAt  time.Time
	LastUsedAt *time.Time
	CreatedAt  time.Time
}

// IsExpired reports whether the session is past its expiry at now.
func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// PendingRegistration is a password sign-up waiting for its email code.
type PendingRegistration struct {
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"password_hash"`
	CodeHash     string    `json:"code_hash"`
	Attempts     int       `json:"attempts"`
	CreatedAt    time.Time `json:"created_at"`
}
