// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
)

// HeroImageInput holds the editable fields of a carousel slide.
type HeroImageInput struct {
	Title        string
	Subtitle     string
	Category     string
	Link         string
	DisplayOrder int
}

// HeroUsecase defines the landing-page carousel operations.
type HeroUsecase interface {
	List(ctx context.Context) ([]*entity.HeroImage, error)
	Create(ctx context.Context, input *HeroImageInput, image *entity.MediaFile) (*entity.HeroImage, error)

	// Update edits a slide. A nil image keeps the current one.
	Update(ctx context.Context, id uuid.UUID, input *HeroImageInput, image *entity.MediaFile) (*entity.HeroImage, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
