package postgres

import (
	"context"

	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type contactRepository struct {
	db *gorm.DB
}

// NewContactRepository is the constructor for contactRepository.
func NewContactRepository(db *gorm.DB) repository.ContactRepository {
	return &contactRepository{db: db}
}

func (repo *contactRepository) Create(ctx context.Context, contact *entity.Contact) error {
	contactM := fromContactDomain(contact)

	if err := repo.db.WithContext(ctx).Create(contactM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to create contact")
	}

	contact.ID = contactM.ID
	contact.CreatedAt = contactM.CreatedAt
	contact.UpdatedAt = contactM.UpdatedAt

	return nil
}

func (repo *contactRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Contact, error) {
	var contactM model.ContactModel
	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&contactM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.WithStack(domainerrors.ErrContactNotFound)
		}

		return nil, errors.Wrap(err, "failed to find contact")
	}

	return toContactDomain(&contactM), nil
}

func (repo *contactRepository) List(ctx context.Context, status *entity.ContactStatus) ([]*entity.Contact, error) {
	query := repo.db.WithContext(ctx)
	if status != nil {
		query = query.Where("status = ?", string(*status))
	}

	var rows []model.ContactModel
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list contacts")
	}

	contacts := make([]*entity.Contact, 0, len(rows))
	for i := range rows {
		contacts = append(contacts, toContactDomain(&rows[i]))
	}

	return contacts, nil
}

func (repo *contactRepository) UpdateStatus(ctx context.Context, id uuid.UUID, expected, next entity.ContactStatus) (bool, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.ContactModel{}).
		Where("id = ? AND status = ?", id, string(expected)).
		Updates(map[string]any{
			"status":     string(next),
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return false, domainerrors.NewDatabaseExecuteError(result.Error, "failed to update contact status")
	}

	return result.RowsAffected == 1, nil
}

func (repo *contactRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&model.ContactModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete contact")
	}
	if result.RowsAffected == 0 {
		return errors.WithStack(domainerrors.ErrContactNotFound)
	}

	return nil
}

func (repo *contactRepository) CountByStatus(ctx context.Context, status entity.ContactStatus) (int64, error) {
	var n int64
	err := repo.db.WithContext(ctx).
		Model(&model.ContactModel{}).
		Where("status = ?", string(status)).
		Count(&n).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to count contacts")
	}

	return n, nil
}

func toContactDomain(data *model.ContactModel) *entity.Contact {
	images := make([]entity.MediaRef, 0, len(data.Images))
	for _, img := range data.Images {
		images = append(images, entity.MediaRef{URL: img.URL, ID: img.ID})
	}

	return &entity.Contact{
		ID:        data.ID,
		Name:      data.Name,
		Email:     data.Email,
		Subject:   entity.ContactSubject(data.Subject),
		Message:   data.Message,
		Images:    images,
		Status:    entity.ContactStatus(data.Status),
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}

func fromContactDomain(data *entity.Contact) *model.ContactModel {
	images := make([]model.MediaJSON, 0, len(data.Images))
	for _, img := range data.Images {
		images = append(images, model.MediaJSON{URL: img.URL, ID: img.ID})
	}

	return &model.ContactModel{
		ID:      data.ID,
		Name:    data.Name,
		Email:   data.Email,
		Subject: string(data.Subject),
		Message: data.Message,
		Images:  datatypes.NewJSONSlice(images),
		Status:  string(data.Status),
	}
}
