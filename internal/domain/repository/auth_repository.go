package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrAuthNotFound is returned when no credential matches.
var ErrAuthNotFound = errors.New("authentication method not found")

// AuthRepository persists login credentials.
type AuthRepository interface {
	// CreateAuthentication persists a new credential.
	CreateAuthentication(ctx context.Context, auth *entity.Authentication) error

	// FindAuthentication looks a credential up by provider and provider-specific ID.
	FindAuthentication(ctx context.Context, provider entity.ProviderType, providerUserID string) (*entity.Authentication, error)

	// FindAuthenticationByUser returns the user's credential for provider.
	FindAuthenticationByUser(ctx context.Context, userID uuid.UUID, provider entity.ProviderType) (*entity.Authentication, error)

	// UpdatePasswordHash replaces the hash on an email credential.
	UpdatePasswordHash(ctx context.Context, authID uuid.UUID, passwordHash string) error
}
