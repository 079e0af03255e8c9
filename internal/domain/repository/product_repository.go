package repository

import (
	"context"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
)

// ProductRepository persists the catalog.
type ProductRepository interface {
	// FindByID retrieves a product. Missing products yield domain ErrProductNotFound.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)

	// FindByIDs retrieves several products in one query, keyed by ID.
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entity.Product, error)

	// List returns products matching filter, featured first then newest.
	List(ctx context.Context, filter entity.ProductFilter) ([]*entity.Product, error)

	// Create persists a validated product.
	Create(ctx context.Context, product *entity.Product) error

	// Update writes every mutable field of a validated product.
	Update(ctx context.Context, product *entity.Product) error

	// LockForUpdate takes a row lock on the product for the rest of the transaction.
	// Missing products yield domain ErrProductNotFound.
	LockForUpdate(ctx context.Context, id uuid.UUID) error

	// UpdateRating stores a recomputed rating aggregate.
	UpdateRating(ctx context.Context, id uuid.UUID, rating float64, reviewCount int) error

	// Delete removes a product.
	Delete(ctx context.Context, id uuid.UUID) error

	// Count returns the number of products.
	Count(ctx context.Context) (int64, error)
}
