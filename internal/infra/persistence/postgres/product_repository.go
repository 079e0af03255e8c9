package postgres

import (
	"context"

	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// productRepository implements repository.ProductRepository.
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository is the constructor for productRepository.
func NewProductRepository(db *gorm.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

// FindByID retrieves a product by ID.
func (repo *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var productM model.ProductModel
	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&productM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.WithStack(domainerrors.ErrProductNotFound)
		}

		return nil, errors.Wrap(err, "failed to find product")
	}

	return toProductDomain(&productM), nil
}

// FindByIDs loads several products at once. Unknown IDs are absent from the map.
func (repo *productRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entity.Product, error) {
	products := make(map[uuid.UUID]*entity.Product, len(ids))
	if len(ids) == 0 {
		return products, nil
	}

	var rows []model.ProductModel
	if err := repo.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find products")
	}

	for i := range rows {
		products[rows[i].ID] = toProductDomain(&rows[i])
	}

	return products, nil
}

// List returns products matching filter, featured first then newest.
func (repo *productRepository) List(ctx context.Context, filter entity.ProductFilter) ([]*entity.Product, error) {
	query := repo.db.WithContext(ctx).Model(&model.ProductModel{})
	if filter.Category != nil {
		query = query.Where("category = ?", string(*filter.Category))
	}
	if filter.Featured != nil {
		query = query.Where("featured = ?", *filter.Featured)
	}
	if filter.InStock != nil {
		query = query.Where("in_stock = ?", *filter.InStock)
	}

	var rows []model.ProductModel
	if err := query.Order("featured DESC").Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list products")
	}

	products := make([]*entity.Product, 0, len(rows))
	for i := range rows {
		products = append(products, toProductDomain(&rows[i]))
	}

	return products, nil
}

// Create persists a product and copies generated values back.
func (repo *productRepository) Create(ctx context.Context, product *entity.Product) error {
	productM := fromProductDomain(product)

	if err := repo.db.WithContext(ctx).Create(productM).Error; err != nil {
		if isCheckConstraintViolation(err) || isNotNullConstraintViolation(err) {
			return domainerrors.ErrInvalidProduct.WrapMessage(err.Error())
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create product")
	}

	product.ID = productM.ID
	product.CreatedAt = productM.CreatedAt
	product.UpdatedAt = productM.UpdatedAt

	return nil
}

// Update writes every mutable column. Rating aggregates are left alone.
func (repo *productRepository) Update(ctx context.Context, product *entity.Product) error {
	productM := fromProductDomain(product)

	result := repo.db.WithContext(ctx).
		Model(&model.ProductModel{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{
			"name":                 productM.Name,
			"description":          productM.Description,
			"price":                productM.Price,
			"discount_price":       productM.DiscountPrice,
			"image_url":            productM.ImageURL,
			"image_id":             productM.ImageID,
			"additional_image_url": productM.AdditionalImageURL,
			"additional_image_id":  productM.AdditionalImageID,
			"video_url":            productM.VideoURL,
			"video_id":             productM.VideoID,
			"category":             productM.Category,
			"in_stock":             productM.InStock,
			"featured":             productM.Featured,
			"updated_at":           gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		if isCheckConstraintViolation(result.Error) {
			return domainerrors.ErrInvalidProduct.WrapMessage(result.Error.Error())
		}

		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update product")
	}
	if result.RowsAffected == 0 {
		return errors.WithStack(domainerrors.ErrProductNotFound)
	}

	return nil
}

// LockForUpdate issues SELECT ... FOR UPDATE on the product row. Concurrent
// rating transactions for the same product queue behind it, so each one
// recomputes the aggregate from ratings the others have committed.
func (repo *productRepository) LockForUpdate(ctx context.Context, id uuid.UUID) error {
	var productM model.ProductModel
	err := repo.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", id).
		First(&productM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.WithStack(domainerrors.ErrProductNotFound)
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to lock product")
	}

	return nil
}

// UpdateRating stores a recomputed aggregate.
func (repo *productRepository) UpdateRating(ctx context.Context, id uuid.UUID, rating float64, reviewCount int) error {
	result := repo.db.WithContext(ctx).
		Model(&model.ProductModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"rating":       rating,
			"review_count": reviewCount,
		})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update product rating")
	}
	if result.RowsAffected == 0 {
		return errors.WithStack(domainerrors.ErrProductNotFound)
	}

	return nil
}

// Delete removes a product. Past order items keep their snapshot.
func (repo *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&model.ProductModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete product")
	}
	if result.RowsAffected == 0 {
		return errors.WithStack(domainerrors.ErrProductNotFound)
	}

	return nil
}

// Count returns the number of products.
func (repo *productRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := repo.db.WithContext(ctx).Model(&model.ProductModel{}).Count(&n).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count products")
	}

	return n, nil
}

// --- Mapper Functions ---

func toProductDomain(data *model.ProductModel) *entity.Product {
	product := &entity.Product{
		ID:          data.ID,
		Name:        data.Name,
		Description: data.Description,
		Price:       entity.Money(data.Price),
		Image:       entity.MediaRef{URL: data.ImageURL, ID: data.ImageID},
		Category:    entity.Category(data.Category),
		InStock:     data.InStock,
		Rating:      data.Rating,
		ReviewCount: data.ReviewCount,
		Featured:    data.Featured,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}

	if data.DiscountPrice != nil {
		discount := entity.Money(*data.DiscountPrice)
		product.DiscountPrice = &discount
	}

	product.AdditionalImages = make([]entity.MediaRef, 0, len(data.AdditionalImageURL))
	for i, url := range data.AdditionalImageURL {
		ref := entity.MediaRef{URL: url}
		if i < len(data.AdditionalImageID) {
			ref.ID = data.AdditionalImageID[i]
		}
		product.AdditionalImages = append(product.AdditionalImages, ref)
	}

	if data.VideoURL != nil && *data.VideoURL != "" {
		video := entity.MediaRef{URL: *data.VideoURL}
		if data.VideoID != nil {
			video.ID = *data.VideoID
		}
		product.Video = &video
	}

	return product
}

func fromProductDomain(data *entity.Product) *model.ProductModel {
	productM := &model.ProductModel{
		ID:                 data.ID,
		Name:               data.Name,
		Description:        data.Description,
		Price:              data.Price.Int64(),
		ImageURL:           data.Image.URL,
		ImageID:            data.Image.ID,
		AdditionalImageURL: pq.StringArray{},
		AdditionalImageID:  pq.StringArray{},
		Category:           string(data.Category),
		InStock:            data.InStock,
		Rating:             data.Rating,
		ReviewCount:        data.ReviewCount,
		Featured:           data.Featured,
	}

	if data.DiscountPrice != nil {
		discount := data.DiscountPrice.Int64()
		productM.DiscountPrice = &discount
	}

	for _, img := range data.AdditionalImages {
		productM.AdditionalImageURL = append(productM.AdditionalImageURL, img.URL)
		productM.AdditionalImageID = append(productM.AdditionalImageID, img.ID)
	}

	if data.Video != nil && !data.Video.IsZero() {
		productM.VideoURL = &data.Video.URL
		productM.VideoID = &data.Video.ID
	}

	return productM
}
