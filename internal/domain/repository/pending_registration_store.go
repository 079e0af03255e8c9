package repository

import (
	"context"
	"time"

	"storefront/internal/domain/entity"
)

// PendingRegistrationStore keeps unverified sign-ups until their code is confirmed
// or they expire.
type PendingRegistrationStore interface {
	// Put stores or replaces the pending sign-up for its email with a fresh ttl.
	Put(ctx context.Context, pending *entity.PendingRegistration, ttl time.Duration) error

	// Get returns the pending sign-up, or nil when none is stored.
	Get(ctx context.Context, email string) (*entity.PendingRegistration, error)

	// IncrementAttempts bumps the failed-code counter and returns the new value.
	IncrementAttempts(ctx context.Context, email string) (int, error)

	// Delete removes the pending sign-up.
	Delete(ctx context.Context, email string) error
}
