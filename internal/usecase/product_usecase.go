// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
)

// ProductInput holds the catalog fields an administrator edits.
type ProductInput struct {
	Name          string
	Description   string
	Price         entity.Money
	DiscountPrice *entity.Money
	Category      entity.Category
	InStock       bool
	Featured      bool
}

// ProductMedia holds uploads sent with a create or update. On update a nil Image keeps
// the current one, a non-empty AdditionalImages replaces the gallery and RemoveVideo
// drops the video when no new one is sent.
type ProductMedia struct {
	Image            *entity.MediaFile
	AdditionalImages []entity.MediaFile
	Video            *entity.MediaFile
	RemoveVideo      bool
}

// ProductUsecase defines catalog reads and administration.
type ProductUsecase interface {
	ListProducts(ctx context.Context, filter entity.ProductFilter) ([]*entity.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	CreateProduct(ctx context.Context, input *ProductInput, media *ProductMedia) (*entity.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input *ProductInput, media *ProductMedia) (*entity.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}
