package repository

import (
	"context"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
)

// HeroImageRepository persists carousel slides.
type HeroImageRepository interface {
	Create(ctx context.Context, hero *entity.HeroImage) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.HeroImage, error)

	// List returns slides by ascending display order.
	List(ctx context.Context) ([]*entity.HeroImage, error)

	Update(ctx context.Context, hero *entity.HeroImage) error
	Delete(ctx context.Context, id uuid.UUID) error
}
