package impl

import (
	"context"
	"log/slog"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/policy"
	"storefront/internal/domain/repository"
	"storefront/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const defaultUserListLimit = 100

// adminService implements the AdminUsecase interface.
type adminService struct {
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	contactRepo repository.ContactRepository
	adminPolicy *policy.AdminPolicy
	logger      *slog.Logger
}

// AdminServiceParams holds dependencies for AdminService, injected by Fx.
type AdminServiceParams struct {
	fx.In

	UserRepo    repository.UserRepository
	ProductRepo repository.ProductRepository
	OrderRepo   repository.OrderRepository
	ContactRepo repository.ContactRepository
	AdminPolicy *policy.AdminPolicy
	Logger      *slog.Logger
}

// NewAdminService is the constructor for adminService.
func NewAdminService(params AdminServiceParams) usecase.AdminUsecase {
	return &adminService{
		userRepo:    params.UserRepo,
		productRepo: params.ProductRepo,
		orderRepo:   params.OrderRepo,
		contactRepo: params.ContactRepo,
		adminPolicy: params.AdminPolicy,
		logger:      params.Logger,
	}
}

// Dashboard gathers store totals, the order breakdown and revenue.
func (srv *adminService) Dashboard(ctx context.Context) (*usecase.DashboardOutput, error) {
	users, err := srv.userRepo.Count(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count users")
	}

	products, err := srv.productRepo.Count(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count products")
	}

	orders, err := srv.orderRepo.Count(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count orders")
	}

	counts, err := srv.orderRepo.CountByStatus(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count orders by status")
	}

	byStatus := make(map[entity.OrderStatus]int64, len(entity.AllOrderStatuses()))
	var revenueStatuses []entity.OrderStatus
	for _, status := range entity.AllOrderStatuses() {
		byStatus[status] = 0
		if status.CountsAsRevenue() {
			revenueStatuses = append(revenueStatuses, status)
		}
	}
	for _, c := range counts {
		byStatus[c.Status] = c.Count
	}

	revenue, err := srv.orderRepo.SumRevenue(ctx, revenueStatuses)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sum revenue")
	}

	newContacts, err := srv.contactRepo.CountByStatus(ctx, entity.ContactStatusNew)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count contacts")
	}

	recent, err := srv.orderRepo.List(ctx, entity.OrderFilter{Limit: usecase.RecentOrderLimit})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list recent orders")
	}

	srv.logger.Debug("Dashboard computed", slog.Int64("orders", orders), slog.Int64("revenue", revenue.Int64()))

	return &usecase.DashboardOutput{
		TotalUsers:     users,
		TotalProducts:  products,
		TotalOrders:    orders,
		OrdersByStatus: byStatus,
		Revenue:        revenue,
		NewContacts:    newContacts,
		RecentOrders:   recent,
	}, nil
}

// ListOrders returns orders for the back office.
func (srv *adminService) ListOrders(ctx context.Context, filter entity.OrderFilter) ([]*entity.Order, error) {
	orders, err := srv.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list orders")
	}

	return orders, nil
}

// ListUsers returns accounts newest first with their roles.
func (srv *adminService) ListUsers(ctx context.Context, limit int) ([]*usecase.UserSummary, error) {
	if limit <= 0 {
		limit = defaultUserListLimit
	}

	users, err := srv.userRepo.List(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}

	summaries := make([]*usecase.UserSummary, 0, len(users))
	for _, user := range users {
		summaries = append(summaries, &usecase.UserSummary{User: user, Roles: srv.adminPolicy.RolesFor(user)})
	}

	return summaries, nil
}
