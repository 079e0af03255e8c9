// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"time"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
)

// UserRepository defines the standard operations for user persistence.
type UserRepository interface {
	// FindByID retrieves a single user by their unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByEmail retrieves a single user by email, case-insensitively.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// Create persists a new user and fills in generated fields.
	Create(ctx context.Context, user *entity.User) error

	// Update writes profile, verification and lockout fields.
	Update(ctx context.Context, user *entity.User) error

	// RecordFailedLogin counts a bad password in a single atomic update. When the
	// count reaches threshold the account is locked until now+lockout and the
	// counter restarts. It returns the lock expiry when this attempt locked the account.
	RecordFailedLogin(ctx context.Context, id uuid.UUID, now time.Time, threshold int, lockout time.Duration) (*time.Time, error)

	// List returns users newest first.
	List(ctx context.Context, limit int) ([]*entity.User, error)

	// Count returns the number of users.
	Count(ctx context.Context) (int64, error)
}
