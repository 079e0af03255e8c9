package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrRefreshTokenNotFound is returned when no session matches.
var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// RefreshTokenRepository stores sessions for multi-device login and remote logout.
type RefreshTokenRepository interface {
	// CreateRefreshToken persists a new session.
	CreateRefreshToken(ctx context.Context, token *entity.RefreshToken) error

	// FindRefreshTokenByHash retrieves a session by the hash of its raw token.
	FindRefreshTokenByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error)

	// FindRefreshTokenByID retrieves a session by ID.
	FindRefreshTokenByID(ctx context.Context, id uuid.UUID) (*entity.RefreshToken, error)

	// FindRefreshTokensByUserID returns the user's unexpired sessions, newest first.
	FindRefreshTokensByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.RefreshToken, error)

	// TouchRefreshToken stamps the last-used time of a session.
	TouchRefreshToken(ctx context.Context, id uuid.UUID) error

	// DeleteRefreshToken ends one session.
	DeleteRefreshToken(ctx context.Context, id uuid.UUID) error

	// DeleteRefreshTokenByHash ends the session holding tokenHash.
	DeleteRefreshTokenByHash(ctx context.Context, tokenHash string) error

	// DeleteRefreshTokensByUserID ends every session of a user.
	DeleteRefreshTokensByUserID(ctx context.Context, userID uuid.UUID) error

	// DeleteOldestRefreshTokens removes sessions beyond the newest keep ones.
	DeleteOldestRefreshTokens(ctx context.Context, userID uuid.UUID, keep int) error

	// CountActiveSessionsByUserID returns the number of unexpired sessions.
	CountActiveSessionsByUserID(ctx context.Context, userID uuid.UUID) (int, error)
}
