package repository

import (
	"context"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
)

// ContactRepository persists contact-form submissions.
type ContactRepository interface {
	Create(ctx context.Context, contact *entity.Contact) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Contact, error)

	// List returns contacts newest first, optionally narrowed to one status.
	List(ctx context.Context, status *entity.ContactStatus) ([]*entity.Contact, error)

	// UpdateStatus moves a contact from expected to next and reports whether it did.
	UpdateStatus(ctx context.Context, id uuid.UUID, expected, next entity.ContactStatus) (bool, error)

	Delete(ctx context.Context, id uuid.UUID) error

	// CountByStatus returns the number of contacts in status.
	CountByStatus(ctx context.Context, status entity.ContactStatus) (int64, error)
}
