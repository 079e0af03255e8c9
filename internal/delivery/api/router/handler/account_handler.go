package handler

import (
	"net/http"

	"storefront/internal/delivery/api/response"
	"storefront/internal/errors"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type updateProfileRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=2,max=80"`
	Phone *string `json:"phone" validate:"omitempty,max=20"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required,max=72"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

// AccountHandler serves the signed-in user's profile and sessions.
type AccountHandler struct {
	profileUC usecase.ProfileUsecase
	sessionUC usecase.SessionUsecase
}

// NewAccountHandler is the constructor for AccountHandler, injected by Fx.
func NewAccountHandler(profileUC usecase.ProfileUsecase, sessionUC usecase.SessionUsecase) *AccountHandler {
	return &AccountHandler{
		profileUC: profileUC,
		sessionUC: sessionUC,
	}
}

// GetProfile handles the request to get the current user's profile.
func (h *AccountHandler) GetProfile(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	output, err := h.profileUC.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toUserResponse(output.User, output.Roles))
}

// UpdateProfile edits name and phone. Omitted fields are kept.
func (h *AccountHandler) UpdateProfile(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	output, err := h.profileUC.UpdateProfile(c.Request().Context(), userID, &usecase.UpdateProfileInput{
		Name:  req.Name,
		Phone: req.Phone,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toUserResponse(output.User, output.Roles))
}

// ChangePassword replaces the password and signs out every device.
func (h *AccountHandler) ChangePassword(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	err = h.profileUC.ChangePassword(c.Request().Context(), userID, &usecase.ChangePasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Message(c, http.StatusOK, "Password changed")
}

// ListSessions returns the user's active sessions.
func (h *AccountHandler) ListSessions(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	sessions, err := h.sessionUC.GetActiveSessions(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toSessionResponses(sessions))
}

// RevokeSession signs out one device.
func (h *AccountHandler) RevokeSession(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	sessionID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.sessionUC.RevokeSession(c.Request().Context(), userID, sessionID); err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// LogoutAllDevices revokes every session of the user.
func (h *AccountHandler) LogoutAllDevices(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	if err := h.sessionUC.RevokeAllSessions(c.Request().Context(), userID); err != nil {
		return errors.WithStack(err)
	}

	return response.Message(c, http.StatusOK, "Logged out from all devices")
}
