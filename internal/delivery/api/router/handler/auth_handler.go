// Package handler contains the HTTP handlers for the storefront API.
package handler

import (
	"net/http"
	"strings"

	"storefront/internal/delivery/api/response"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/errors"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=80"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type verifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type googleCallbackRequest struct {
	IDToken string `json:"id_token" form:"id_token"`
}

type pendingVerificationResponse struct {
	Email            string `json:"email"`
	ExpiresInSeconds int64  `json:"expires_in_seconds"`
}

// AuthHandler serves sign-up, login and token endpoints.
type AuthHandler struct {
	uc usecase.UserUsecase
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(uc usecase.UserUsecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// Register starts a password sign-up and emails a verification code.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	output, err := h.uc.Register(c.Request().Context(), usecase.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusAccepted, &pendingVerificationResponse{
		Email:            output.Email,
		ExpiresInSeconds: int64(output.ExpiresIn.Seconds()),
	})
}

// VerifyEmail completes sign-up and logs the new user in.
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	var req verifyEmailRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	output, err := h.uc.VerifyEmail(c.Request().Context(), usecase.VerifyEmailInput{
		Email:      req.Email,
		Code:       req.Code,
		ClientInfo: clientInfo(c),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, toAuthResponse(output))
}

// ResendVerification issues a fresh code for a pending sign-up.
func (h *AuthHandler) ResendVerification(c echo.Context) error {
	var req emailRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	output, err := h.uc.ResendVerification(c.Request().Context(), req.Email)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusAccepted, &pendingVerificationResponse{
		Email:            output.Email,
		ExpiresInSeconds: int64(output.ExpiresIn.Seconds()),
	})
}

// Login handles the user login request.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	output, err := h.uc.Login(c.Request().Context(), usecase.LoginInput{
		Email:      req.Email,
		Password:   req.Password,
		ClientInfo: clientInfo(c),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toAuthResponse(output))
}

// RefreshToken handles the token refresh request.
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	var req refreshTokenRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	output, err := h.uc.RefreshToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"access_token": output.AccessToken})
}

// Logout revokes the session behind a refresh token.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshTokenRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.uc.Logout(c.Request().Context(), req.RefreshToken); err != nil {
		return errors.WithStack(err)
	}

	return response.Message(c, http.StatusOK, "Successfully logged out")
}

// GoogleCallback signs in with a Google ID token sent as a form field or JSON body.
func (h *AuthHandler) GoogleCallback(c echo.Context) error {
	var req googleCallbackRequest
	if err := c.Bind(&req); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails("request body is malformed")
	}

	idToken := strings.TrimSpace(req.IDToken)
	if idToken == "" {
		return domainerrors.ErrValidationFailed.WithDetails("id_token is required")
	}

	output, err := h.uc.GoogleLogin(c.Request().Context(), usecase.GoogleLoginInput{
		IDToken:    idToken,
		ClientInfo: clientInfo(c),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	status := http.StatusOK
	if output.IsNewUser {
		status = http.StatusCreated
	}

	return response.Success(c, status, toAuthResponse(output))
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"})
}
