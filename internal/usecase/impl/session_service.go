// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"log/slog"

	deliverycontext "storefront/internal/delivery/context"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// sessionService implements the SessionUsecase interface.
type sessionService struct {
	refreshTokenRepo repository.RefreshTokenRepository
	logger           *slog.Logger
}

// NewSessionService is the constructor for sessionService.
func NewSessionService(
	refreshTokenRepo repository.RefreshTokenRepository,
	logger *slog.Logger,
) usecase.SessionUsecase {
	return &sessionService{
		refreshTokenRepo: refreshTokenRepo,
		logger:           logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *sessionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetActiveSessions retrieves all unexpired sessions for a user.
func (srv *sessionService) GetActiveSessions(ctx context.Context, userID uuid.UUID) ([]*usecase.SessionInfo, error) {
	srv.log(ctx).Debug("Getting active sessions", slog.Any("user_id", userID))

	tokens, err := srv.refreshTokenRepo.FindRefreshTokensByUserID(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find refresh tokens")
	}

	sessions := make([]*usecase.SessionInfo, 0, len(tokens))
	for _, token := range tokens {
		sessions = append(sessions, &usecase.SessionInfo{
			ID:         token.ID,
			UserAgent:  token.UserAgent,
			IPAddress:  token.IPAddress,
			CreatedAt:  token.CreatedAt,
			LastUsedAt: token.LastUsedAt,
			ExpiresAt:  token.ExpiresAt,
		})
	}

	return sessions, nil
}

// RevokeSession ends one of the user's sessions. Sessions of other users are reported as missing.
func (srv *sessionService) RevokeSession(ctx context.Context, userID, sessionID uuid.UUID) error {
	token, err := srv.refreshTokenRepo.FindRefreshTokenByID(ctx, sessionID)
	if errors.Is(err, repository.ErrRefreshTokenNotFound) {
		return errors.WithStack(domainerrors.ErrSessionNotFound)
	}
	if err != nil {
		return errors.Wrap(err, "failed to find session")
	}
	if token.UserID != userID {
		return errors.WithStack(domainerrors.ErrSessionNotFound)
	}

	if err := srv.refreshTokenRepo.DeleteRefreshToken(ctx, sessionID); err != nil && !errors.Is(err, repository.ErrRefreshTokenNotFound) {
		return errors.Wrap(err, "failed to delete session")
	}

	srv.log(ctx).Info("Session revoked", slog.Any("user_id", userID), slog.Any("session_id", sessionID))

	return nil
}

// RevokeAllSessions logs the user out of every device.
func (srv *sessionService) RevokeAllSessions(ctx context.Context, userID uuid.UUID) error {
	if err := srv.refreshTokenRepo.DeleteRefreshTokensByUserID(ctx, userID); err != nil {
		return errors.Wrap(err, "failed to delete sessions")
	}

	srv.log(ctx).Info("All sessions revoked", slog.Any("user_id", userID))

	return nil
}
