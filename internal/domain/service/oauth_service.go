package service

import (
	"context"

	"storefront/internal/domain/entity"
)

// OAuthUser represents user information from OAuth providers
type OAuthUser struct {
	ID            string // Provider-specific user ID (Google 'sub')
	Email         string
	Name          string
	Provider      entity.ProviderType
	AvatarURL     string
	EmailVerified bool
}

// OAuthAuthService verifies ID tokens sent by clients that signed in with a provider.
type OAuthAuthService interface {
	VerifyIDToken(ctx context.Context, idToken string) (*OAuthUser, error)
	GetProvider() entity.ProviderType
}
