// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
)

// ContactInput is a contact-form submission.
type ContactInput struct {
	Name    string
	Email   string
	Subject entity.ContactSubject
	Message string
}

// ContactUsecase defines the contact form and its back-office handling.
type ContactUsecase interface {
	Submit(ctx context.Context, input *ContactInput, images []entity.MediaFile) (*entity.Contact, error)
	List(ctx context.Context, status *entity.ContactStatus) ([]*entity.Contact, error)

	// UpdateStatus moves a contact forward. Resolving it deletes the record and its images.
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ContactStatus) (*entity.Contact, error)
}
