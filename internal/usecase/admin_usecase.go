// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"storefront/internal/domain/entity"
)

// RecentOrderLimit is how many orders the dashboard shows.
const RecentOrderLimit = 5

// DashboardOutput summarises the store for the back office.
type DashboardOutput struct {
	TotalUsers     int64
	TotalProducts  int64
	TotalOrders    int64
	OrdersByStatus map[entity.OrderStatus]int64
	Revenue        entity.Money
	NewContacts    int64
	RecentOrders   []*entity.Order
}

// UserSummary is an account as listed in the back office.
type UserSummary struct {
	User  *entity.User
	Roles entity.Roles
}

// AdminUsecase defines back-office reporting.
type AdminUsecase interface {
	Dashboard(ctx context.Context) (*DashboardOutput, error)
	ListOrders(ctx context.Context, filter entity.OrderFilter) ([]*entity.Order, error)
	ListUsers(ctx context.Context, limit int) ([]*UserSummary, error)
}
