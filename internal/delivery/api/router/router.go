// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"storefront/config"
	"storefront/internal/delivery/api/middleware"
	"storefront/internal/delivery/api/router/handler"
	"storefront/internal/domain/entity"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler    *handler.AuthHandler
	AccountHandler *handler.AccountHandler
	OrderHandler   *handler.OrderHandler
	ProductHandler *handler.ProductHandler
	ContactHandler *handler.ContactHandler
	HeroHandler    *handler.HeroHandler
	AdminHandler   *handler.AdminHandler
	MediaHandler   *handler.MediaHandler
	AuthMiddleware *middleware.AuthMiddleware
	Config         *config.Config
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler    *handler.AuthHandler
	accountHandler *handler.AccountHandler
	orderHandler   *handler.OrderHandler
	productHandler *handler.ProductHandler
	contactHandler *handler.ContactHandler
	heroHandler    *handler.HeroHandler
	adminHandler   *handler.AdminHandler
	mediaHandler   *handler.MediaHandler
	authMiddleware *middleware.AuthMiddleware
	config         *config.Config
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:    params.AuthHandler,
		accountHandler: params.AccountHandler,
		orderHandler:   params.OrderHandler,
		productHandler: params.ProductHandler,
		contactHandler: params.ContactHandler,
		heroHandler:    params.HeroHandler,
		adminHandler:   params.AdminHandler,
		mediaHandler:   params.MediaHandler,
		authMiddleware: params.AuthMiddleware,
		config:         params.Config,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Multipart routes get the larger upload ceiling; the global limit skips them.
	uploadLimit := echomiddleware.BodyLimit(r.config.Media.MaxUploadBody)

	e.GET("/health", handler.HealthCheck)
	e.GET("/media/*", r.mediaHandler.Serve)

	authGroup := e.Group("/auth")
	{
		authGroup.POST("/register", r.authHandler.Register)
		authGroup.POST("/verify-email", r.authHandler.VerifyEmail)
		authGroup.POST("/resend-verification", r.authHandler.ResendVerification)
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.POST("/refresh", r.authHandler.RefreshToken)
		authGroup.POST("/logout", r.authHandler.Logout)
	}

	oauthGroup := e.Group("/oauth")
	{
		oauthGroup.POST("/google/callback", r.authHandler.GoogleCallback)
	}

	apiV1 := e.Group("/api/v1")

	// Public catalog and contact form
	{
		apiV1.GET("/products", r.productHandler.ListProducts)
		apiV1.GET("/products/:id", r.productHandler.GetProduct)
		apiV1.GET("/hero-images", r.heroHandler.List)
		apiV1.POST("/contacts", r.contactHandler.Submit, uploadLimit)
	}

	profileGroup := apiV1.Group("/profile", r.authMiddleware.Authenticate)
	{
		profileGroup.GET("", r.accountHandler.GetProfile)
		profileGroup.PUT("", r.accountHandler.UpdateProfile)
		profileGroup.PUT("/password", r.accountHandler.ChangePassword)
	}

	sessionsGroup := apiV1.Group("/sessions", r.authMiddleware.Authenticate)
	{
		sessionsGroup.GET("", r.accountHandler.ListSessions)
		sessionsGroup.DELETE("/:id", r.accountHandler.RevokeSession)
		sessionsGroup.POST("/logout-all", r.accountHandler.LogoutAllDevices)
	}

	ordersGroup := apiV1.Group("/orders", r.authMiddleware.Authenticate)
	{
		ordersGroup.POST("", r.orderHandler.CreateOrder)
		ordersGroup.POST("/verify", r.orderHandler.VerifyPayment)
		ordersGroup.GET("", r.orderHandler.ListOrders)
		ordersGroup.GET("/:id", r.orderHandler.GetOrder)
		ordersGroup.POST("/:id/rate-item", r.orderHandler.RateItem)
	}

	adminGroup := apiV1.Group("/admin")
	adminGroup.Use(r.authMiddleware.Authenticate)                  // First, check if logged in
	adminGroup.Use(r.authMiddleware.RequireRole(entity.RoleAdmin)) // Then, check for the role
	{
		adminGroup.GET("/dashboard", r.adminHandler.Dashboard)
		adminGroup.GET("/users", r.adminHandler.ListUsers)

		adminGroup.GET("/orders", r.adminHandler.ListOrders)
		adminGroup.PATCH("/orders/:id/status", r.orderHandler.UpdateOrderStatus)

		adminGroup.POST("/products", r.productHandler.CreateProduct, uploadLimit)
		adminGroup.PUT("/products/:id", r.productHandler.UpdateProduct, uploadLimit)
		adminGroup.DELETE("/products/:id", r.productHandler.DeleteProduct)

		adminGroup.GET("/contacts", r.contactHandler.List)
		adminGroup.PATCH("/contacts/:id/status", r.contactHandler.UpdateStatus)

		adminGroup.POST("/hero-images", r.heroHandler.Create, uploadLimit)
		adminGroup.PUT("/hero-images/:id", r.heroHandler.Update, uploadLimit)
		adminGroup.DELETE("/hero-images/:id", r.heroHandler.Delete)
	}
}
