package postgres

import (
	"context"
	"time"

	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// refreshTokenRepository implements repository.RefreshTokenRepository.
type refreshTokenRepository struct {
	db *gorm.DB
}

// NewRefreshTokenRepository is the constructor for refreshTokenRepository.
func NewRefreshTokenRepository(db *gorm.DB) repository.RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

// CreateRefreshToken persists a new session.
func (repo *refreshTokenRepository) CreateRefreshToken(ctx context.Context, token *entity.RefreshToken) error {
	tokenM := fromRefreshTokenDomain(token)

	if err := repo.db.WithContext(ctx).Create(tokenM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrRefreshTokenInvalid.WrapMessage("refresh token already exists")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrUserNotFound.WrapMessage("session references unknown user")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create refresh token")
	}

	token.ID = tokenM.ID
	token.CreatedAt = tokenM.CreatedAt

	return nil
}

// FindRefreshTokenByHash retrieves a session by token hash. Expired sessions are
// returned as-is; callers decide.
func (repo *refreshTokenRepository) FindRefreshTokenByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error) {
	return repo.findOne(ctx, "token_hash = ?", tokenHash)
}

// FindRefreshTokenByID retrieves a session by ID.
func (repo *refreshTokenRepository) FindRefreshTokenByID(ctx context.Context, id uuid.UUID) (*entity.RefreshToken, error) {
	return repo.findOne(ctx, "id = ?", id)
}

func (repo *refreshTokenRepository) findOne(ctx context.Context, query string, arg any) (*entity.RefreshToken, error) {
	var tokenM model.RefreshTokenModel
	if err := repo.db.WithContext(ctx).Where(query, arg).First(&tokenM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.WithStack(repository.ErrRefreshTokenNotFound)
		}

		return nil, errors.Wrap(err, "failed to find refresh token")
	}

	return toRefreshTokenDomain(&tokenM), nil
}

// FindRefreshTokensByUserID returns unexpired sessions newest first.
func (repo *refreshTokenRepository) FindRefreshTokensByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.RefreshToken, error) {
	var rows []model.RefreshTokenModel
	err := repo.db.WithContext(ctx).
		Where("user_id = ? AND expires_at > ?", userID, time.Now()).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list refresh tokens")
	}

	tokens := make([]*entity.RefreshToken, 0, len(rows))
	for i := range rows {
		tokens = append(tokens, toRefreshTokenDomain(&rows[i]))
	}

	return tokens, nil
}

// TouchRefreshToken stamps last_used_at.
func (repo *refreshTokenRepository) TouchRefreshToken(ctx context.Context, id uuid.UUID) error {
	err := repo.db.WithContext(ctx).
		Model(&model.RefreshTokenModel{}).
		Where("id = ?", id).
		Update("last_used_at", time.Now()).Error

	return errors.Wrap(err, "failed to touch refresh token")
}

// DeleteRefreshToken ends one session.
func (repo *refreshTokenRepository) DeleteRefreshToken(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&model.RefreshTokenModel{})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete refresh token")
	}
	if result.RowsAffected == 0 {
		return errors.WithStack(repository.ErrRefreshTokenNotFound)
	}

	return nil
}

// DeleteRefreshTokenByHash ends the session holding tokenHash. Deleting an
// unknown hash is not an error so logout stays idempotent.
func (repo *refreshTokenRepository) DeleteRefreshTokenByHash(ctx context.Context, tokenHash string) error {
	err := repo.db.WithContext(ctx).Where("token_hash = ?", tokenHash).Delete(&model.RefreshTokenModel{}).Error

	return errors.Wrap(err, "failed to delete refresh token by hash")
}

// DeleteRefreshTokensByUserID ends every session of a user.
func (repo *refreshTokenRepository) DeleteRefreshTokensByUserID(ctx context.Context, userID uuid.UUID) error {
	err := repo.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.RefreshTokenModel{}).Error

	return errors.Wrap(err, "failed to delete user refresh tokens")
}

// DeleteOldestRefreshTokens keeps the newest keep sessions and removes the rest.
func (repo *refreshTokenRepository) DeleteOldestRefreshTokens(ctx context.Context, userID uuid.UUID, keep int) error {
	newest := repo.db.Model(&model.RefreshTokenModel{}).
		Select("id").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(keep)

	err := repo.db.WithContext(ctx).
		Where("user_id = ? AND id NOT IN (?)", userID, newest).
		Delete(&model.RefreshTokenModel{}).Error

	return errors.Wrap(err, "failed to trim refresh tokens")
}

// CountActiveSessionsByUserID returns the number of unexpired sessions.
func (repo *refreshTokenRepository) CountActiveSessionsByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int64
	err := repo.db.WithContext(ctx).
		Model(&model.RefreshTokenModel{}).
		Where("user_id = ? AND expires_at > ?", userID, time.Now()).
		Count(&n).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to count sessions")
	}

	return int(n), nil
}

func toRefreshTokenDomain(data *model.RefreshTokenModel) *entity.RefreshToken {
	return &entity.RefreshToken{
		ID:         data.ID,
		UserID:     data.UserID,
		TokenHash:  data.TokenHash,
		UserAgent:  data.UserAgent,
		IPAddress:  data.IPAddress,
		ExpiresAt:  data.ExpiresAt,
		LastUsedAt: data.LastUsedAt,
		CreatedAt:  data.CreatedAt,
	}
}

func fromRefreshTokenDomain(data *entity.RefreshToken) *model.RefreshTokenModel {
	return &model.RefreshTokenModel{
		ID:         data.ID,
		UserID:     data.UserID,
		TokenHash:  data.TokenHash,
		UserAgent:  data.UserAgent,
		IPAddress:  data.IPAddress,
		ExpiresAt:  data.ExpiresAt,
		LastUsedAt: data.LastUsedAt,
	}
}
