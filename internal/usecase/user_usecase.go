// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"storefront/internal/domain/entity"
)

// --- Input DTOs ---

// RegisterInput defines the data required to start a password sign-up.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// VerifyEmailInput confirms a pending sign-up with the emailed code.
type VerifyEmailInput struct {
	Email string
	Code  string
	ClientInfo
}

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string
	Password string
	ClientInfo
}

// GoogleLoginInput carries the ID token obtained by the client from Google.
type GoogleLoginInput struct {
	IDToken string
	ClientInfo
}

// ClientInfo describes the device a session is opened from.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

// --- Output DTOs ---

// RegisterOutput tells the client where the code went and how long it is valid.
type RegisterOutput struct {
	Email     string
	ExpiresIn time.Duration
}

// LoginOutput returns the generated tokens after a successful login.
type LoginOutput struct {
	AccessToken  string
	RefreshToken string
	User         *entity.User
	Roles        entity.Roles
	IsNewUser    bool
}

// RefreshTokenOutput carries a fresh access token. The refresh token is unchanged.
type RefreshTokenOutput struct {
	AccessToken string
}

// UserUsecase defines the interface for sign-up, login and token operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type UserUsecase interface {
	Register(ctx context.Context, input RegisterInput) (*RegisterOutput, error)
	VerifyEmail(ctx context.Context, input VerifyEmailInput) (*LoginOutput, error)
	ResendVerification(ctx context.Context, email string) (*RegisterOutput, error)
	Login(ctx context.Context, input LoginInput) (*LoginOutput, error)
	GoogleLogin(ctx context.Context, input GoogleLoginInput) (*LoginOutput, error)
	RefreshToken(ctx context.Context, refreshToken string) (*RefreshTokenOutput, error)
	Logout(ctx context.Context, refreshToken string) error
}
