// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"strings"
	"time"

	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// userRepository implements repository.UserRepository using GORM.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository is the constructor for userRepository.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// FindByID retrieves a single user by their unique ID.
func (repo *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var userM model.UserModel
	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&userM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.WithStack(domainerrors.ErrUserNotFound)
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	return toUserDomain(&userM), nil
}

// FindByEmail retrieves a single user by email, ignoring case.
func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var userM model.UserModel
	err := repo.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&userM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.WithStack(domainerrors.ErrUserNotFound)
		}

		return nil, errors.Wrap(err, "failed to find user by email")
	}

	return toUserDomain(&userM), nil
}

// Create persists a new user and copies generated values back.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)

	if err := repo.db.WithContext(ctx).Create(userM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrUserAlreadyExists.WrapMessage("email already exists")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create user")
	}

	user.ID = userM.ID
	user.CreatedAt = userM.CreatedAt
	user.UpdatedAt = userM.UpdatedAt

	return nil
}

// Update writes the mutable user columns.
func (repo *userRepository) Update(ctx context.Context, user *entity.User) error {
	result := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"name":                  user.Name,
			"phone":                 user.Phone,
			"is_verified":           user.IsVerified,
			"failed_login_attempts": user.FailedLoginAttempts,
			"locked_until":          user.LockedUntil,
			"last_login_at":         user.LastLoginAt,
			"updated_at":            gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update user")
	}
	if result.RowsAffected == 0 {
		return errors.WithStack(domainerrors.ErrUserNotFound)
	}

	return nil
}

const recordFailedLoginQuery = `UPDATE users SET
    failed_login_attempts = CASE WHEN @threshold > 0 AND failed_login_attempts + 1 >= @threshold
        THEN 0 ELSE failed_login_attempts + 1 END,
    locked_until = CASE WHEN @threshold > 0 AND failed_login_attempts + 1 >= @threshold
        THEN @until ELSE locked_until END,
    updated_at = NOW()
WHERE id = @id
RETURNING failed_login_attempts`

// RecordFailedLogin increments the counter in the database so concurrent bad
// attempts are all counted and no other column is rewritten.
func (repo *userRepository) RecordFailedLogin(ctx context.Context, id uuid.UUID, now time.Time, threshold int, lockout time.Duration) (*time.Time, error) {
	until := now.Add(lockout)

	var attempts []int
	err := repo.db.WithContext(ctx).Raw(recordFailedLoginQuery, map[string]any{
		"id":        id,
		"threshold": threshold,
		"until":     until,
	}).Scan(&attempts).Error
	if err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to record failed login")
	}
	if len(attempts) == 0 {
		return nil, errors.WithStack(domainerrors.ErrUserNotFound)
	}
	// The counter only reads zero after an increment when the lock fired.
	if attempts[0] == 0 {
		return &until, nil
	}

	return nil, nil
}

// List returns users newest first.
func (repo *userRepository) List(ctx context.Context, limit int) ([]*entity.User, error) {
	var rows []model.UserModel
	if err := repo.db.WithContext(ctx).Order("created_at DESC").Limit(normalizeLimit(limit)).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}

	users := make([]*entity.User, 0, len(rows))
	for i := range rows {
		users = append(users, toUserDomain(&rows[i]))
	}

	return users, nil
}

// Count returns the number of users.
func (repo *userRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := repo.db.WithContext(ctx).Model(&model.UserModel{}).Count(&n).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count users")
	}

	return n, nil
}

// --- Mapper Functions ---

func toUserDomain(data *model.UserModel) *entity.User {
	if data == nil {
		return nil
	}

	return &entity.User{
		ID:                  data.ID,
		Email:               data.Email,
		Name:                data.Name,
		Phone:               data.Phone,
		IsVerified:          data.IsVerified,
		FailedLoginAttempts: data.FailedLoginAttempts,
		LockedUntil:         data.LockedUntil,
		LastLoginAt:         data.LastLoginAt,
		CreatedAt:           data.CreatedAt,
		UpdatedAt:           data.UpdatedAt,
	}
}

func fromUserDomain(data *entity.User) *model.UserModel {
	if data == nil {
		return nil
	}

	return &model.UserModel{
		ID:                  data.ID,
		Email:               strings.TrimSpace(data.Email),
		Name:                data.Name,
		Phone:               data.Phone,
		IsVerified:          data.IsVerified,
		FailedLoginAttempts: data.FailedLoginAttempts,
		LockedUntil:         data.LockedUntil,
		LastLoginAt:         data.LastLoginAt,
	}
}

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}

	return limit
}
