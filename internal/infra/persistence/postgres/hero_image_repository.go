package postgres

import (
	"context"

	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type heroImageRepository struct {
	db *gorm.DB
}

// NewHeroImageRepository is the constructor for heroImageRepository.
func NewHeroImageRepository(db *gorm.DB) repository.HeroImageRepository {
	return &heroImageRepository{db: db}
}

func (repo *heroImageRepository) Create(ctx context.Context, hero *entity.HeroImage) error {
	heroM := fromHeroImageDomain(hero)

	if err := repo.db.WithContext(ctx).Create(heroM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to create hero image")
	}

	hero.ID = heroM.ID
	hero.CreatedAt = heroM.CreatedAt
	hero.UpdatedAt = heroM.UpdatedAt

	return nil
}

func (repo *heroImageRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.HeroImage, error) {
	var heroM model.HeroImageModel
	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&heroM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.WithStack(domainerrors.ErrHeroImageNotFound)
		}

		return nil, errors.Wrap(err, "failed to find hero image")
	}

	return toHeroImageDomain(&heroM), nil
}

func (repo *heroImageRepository) List(ctx context.Context) ([]*entity.HeroImage, error) {
	var rows []model.HeroImageModel
	if err := repo.db.WithContext(ctx).Order("display_order ASC").Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list hero images")
	}

	heroes := make([]*entity.HeroImage, 0, len(rows))
	for i := range rows {
		heroes = append(heroes, toHeroImageDomain(&rows[i]))
	}

	return heroes, nil
}

func (repo *heroImageRepository) Update(ctx context.Context, hero *entity.HeroImage) error {
	result := repo.db.WithContext(ctx).
		Model(&model.HeroImageModel{}).
		Where("id = ?", hero.ID).
		Updates(map[string]any{
			"title":         hero.Title,
			"subtitle":      hero.Subtitle,
			"category":      hero.Category,
			"image_url":     hero.Image.URL,
			"image_id":      hero.Image.ID,
			"link":          hero.Link,
			"display_order": hero.DisplayOrder,
			"updated_at":    gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update hero image")
	}
	if result.RowsAffected == 0 {
		return errors.WithStack(domainerrors.ErrHeroImageNotFound)
	}

	return nil
}

func (repo *heroImageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&model.HeroImageModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete hero image")
	}
	if result.RowsAffected == 0 {
		return errors.WithStack(domainerrors.ErrHeroImageNotFound)
	}

	return nil
}

func toHeroImageDomain(data *model.HeroImageModel) *entity.HeroImage {
	return &entity.HeroImage{
		ID:           data.ID,
		Title:        data.Title,
		Subtitle:     data.Subtitle,
		Category:     data.Category,
		Image:        entity.MediaRef{URL: data.ImageURL, ID: data.ImageID},
		Link:         data.Link,
		DisplayOrder: data.DisplayOrder,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}

func fromHeroImageDomain(data *entity.HeroImage) *model.HeroImageModel {
	return &model.HeroImageModel{
		ID:           data.ID,
		Title:        data.Title,
		Subtitle:     data.Subtitle,
		Category:     data.Category,
		ImageURL:     data.Image.URL,
		ImageID:      data.Image.ID,
		Link:         data.Link,
		DisplayOrder: data.DisplayOrder,
	}
}
