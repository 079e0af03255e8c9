// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"storefront/config"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/policy"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// profileService implements the ProfileUsecase interface.
type profileService struct {
	txManager      repository.TransactionManager
	userRepo       repository.UserRepository
	hasher         service.PasswordHasher
	adminPolicy    *policy.AdminPolicy
	passwordPolicy *config.PasswordStrengthConfig
	logger         *slog.Logger
}

// NewProfileService is the constructor for profileService.
func NewProfileService(
	txManager repository.TransactionManager,
	userRepo repository.UserRepository,
	hasher service.PasswordHasher,
	adminPolicy *policy.AdminPolicy,
	cfg *config.Config,
	logger *slog.Logger,
) usecase.ProfileUsecase {
	return &profileService{
		txManager:      txManager,
		userRepo:       userRepo,
		hasher:         hasher,
		adminPolicy:    adminPolicy,
		passwordPolicy: cfg.PasswordStrength,
		logger:         logger,
	}
}

// GetProfile retrieves the user and the roles it currently holds.
func (srv *profileService) GetProfile(ctx context.Context, userID uuid.UUID) (*usecase.ProfileOutput, error) {
	srv.logger.Debug("Getting user profile", "userID", userID)

	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user profile")
	}

	return &usecase.ProfileOutput{User: user, Roles: srv.adminPolicy.RolesFor(user)}, nil
}

// UpdateProfile edits name and phone.
func (srv *profileService) UpdateProfile(ctx context.Context, userID uuid.UUID, input *usecase.UpdateProfileInput) (*usecase.ProfileOutput, error) {
	var user *entity.User

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.NewUserRepository()

		found, err := userRepo.FindByID(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "failed to find user")
		}

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if n := utf8.RuneCountInString(name); n < 2 || n > 100 {
				return domainerrors.ErrValidationFailed.WrapMessage("name must be between 2 and 100 characters")
			}
			found.Name = name
		}
		if input.Phone != nil {
			found.Phone = strings.TrimSpace(*input.Phone)
		}

		if err := userRepo.Update(ctx, found); err != nil {
			return errors.Wrap(err, "failed to update user")
		}
		user = found

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to update user profile")
	}

	srv.logger.Info("User profile updated", "userID", userID)

	return &usecase.ProfileOutput{User: user, Roles: srv.adminPolicy.RolesFor(user)}, nil
}

// ChangePassword replaces the email credential's password and ends every session.
func (srv *profileService) ChangePassword(ctx context.Context, userID uuid.UUID, input *usecase.ChangePasswordInput) error {
	if err := validatePasswordStrength(srv.passwordPolicy, input.NewPassword); err != nil {
		return err
	}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		authRepo := repoFactory.NewAuthRepository()

		authRecord, err := authRepo.FindAuthenticationByUser(ctx, userID, entity.ProviderTypeEmail)
		if errors.Is(err, repository.ErrAuthNotFound) {
			return domainerrors.ErrInvalidCredentials.WrapMessage("account has no password")
		}
		if err != nil {
			return errors.Wrap(err, "failed to find credential")
		}

		if !srv.hasher.Check(input.CurrentPassword, authRecord.PasswordHash) {
			return errors.WithStack(domainerrors.ErrInvalidCredentials)
		}

		hash, err := srv.hasher.Hash(input.NewPassword)
		if err != nil {
			return errors.Wrap(err, "failed to hash password")
		}

		if err := authRepo.UpdatePasswordHash(ctx, authRecord.ID, hash); err != nil {
			return errors.Wrap(err, "failed to update password")
		}

		return errors.Wrap(repoFactory.NewRefreshTokenRepository().DeleteRefreshTokensByUserID(ctx, userID), "failed to end sessions")
	})
	if err != nil {
		return errors.Wrap(err, "failed to change password")
	}

	srv.logger.Info("Password changed", "userID", userID)

	return nil
}
