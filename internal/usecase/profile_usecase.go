// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
)

// ProfileUsecase defines the interface for profile-related business operations.
type ProfileUsecase interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileOutput, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input *UpdateProfileInput) (*ProfileOutput, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, input *ChangePasswordInput) error
}

// --- Input DTOs ---

// UpdateProfileInput holds the editable profile fields. Nil fields are left unchanged.
type UpdateProfileInput struct {
	Name  *string
	Phone *string
}

// ChangePasswordInput defines the data required to replace a password.
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

// --- Output DTOs ---

// ProfileOutput is a user together with the roles granted to it.
type ProfileOutput struct {
	User  *entity.User
	Roles entity.Roles
}
