package middleware

import (
	"strings"

	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/service"
	"storefront/internal/errors"

	"github.com/labstack/echo/v4"
)

const bearerPrefix = "Bearer "

// AuthMiddleware provides middleware for JWT authentication and authorization.
type AuthMiddleware struct {
	tokenSvc service.TokenService
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc}
}

// Authenticate accepts only server-issued access tokens sent as "Authorization: Bearer <jwt>".
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return domainerrors.ErrUnauthorized.WrapMessage("authorization header is missing")
		}

		if len(authHeader) <= len(bearerPrefix) || !strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			return domainerrors.ErrUnauthorized.WrapMessage("authorization header must be a bearer token")
		}

		claims, err := m.tokenSvc.ValidateToken(strings.TrimSpace(authHeader[len(bearerPrefix):]))
		if err != nil {
			return errors.Wrap(domainerrors.ErrUnauthorized, err.Error())
		}
		if claims.Type != service.TokenTypeAccess {
			return domainerrors.ErrUnauthorized.WrapMessage("token is not an access token")
		}

		deliverycontext.SetPrincipal(c, claims.UserID, claims.Roles)

		return next(c)
	}
}

// RequireRole rejects principals lacking role. It must run after Authenticate.
func (m *AuthMiddleware) RequireRole(role entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roles, ok := deliverycontext.GetRoles(c)
			if !ok {
				return domainerrors.ErrForbidden.WrapMessage("role information missing")
			}

			if !entity.RolesFromStrings(roles).Contains(role) {
				return domainerrors.ErrForbidden.WrapMessage("requires role " + role.String())
			}

			return next(c)
		}
	}
}
