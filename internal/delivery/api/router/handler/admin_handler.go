package handler

import (
	"net/http"
	"strings"
	"time"

	"storefront/internal/delivery/api/response"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/errors"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// List bounds for back-office queries.
const (
	defaultAdminListLimit = 50
	maxAdminListLimit     = 200
)

// AdminUserResponse is an account as listed in the back office.
type AdminUserResponse struct {
	*UserResponse
	FailedLoginAttempts int  `json:"failed_login_attempts"`
	Locked              bool `json:"locked"`
}

// AdminHandler serves back-office reporting.
type AdminHandler struct {
	uc usecase.AdminUsecase
}

// NewAdminHandler is the constructor for AdminHandler, injected by Fx.
func NewAdminHandler(uc usecase.AdminUsecase) *AdminHandler {
	return &AdminHandler{uc: uc}
}

// Dashboard returns store totals and the most recent orders.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	output, err := h.uc.Dashboard(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toDashboardResponse(output))
}

// ListOrders supports ?status= and ?limit=.
func (h *AdminHandler) ListOrders(c echo.Context) error {
	limit, err := limitQuery(c, defaultAdminListLimit, maxAdminListLimit)
	if err != nil {
		return err
	}

	filter := entity.OrderFilter{Limit: limit}
	if raw := strings.TrimSpace(c.QueryParam("status")); raw != "" {
		status := entity.OrderStatus(raw)
		if !status.IsValid() {
			return domainerrors.ErrValidationFailed.WithDetails("status is not a known order status")
		}
		filter.Status = &status
	}

	orders, err := h.uc.ListOrders(c.Request().Context(), filter)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toOrderResponses(orders))
}

// ListUsers returns accounts newest first.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	limit, err := limitQuery(c, defaultAdminListLimit, maxAdminListLimit)
	if err != nil {
		return err
	}

	users, err := h.uc.ListUsers(c.Request().Context(), limit)
	if err != nil {
		return errors.WithStack(err)
	}

	now := time.Now()
	out := make([]*AdminUserResponse, 0, len(users))
	for _, summary := range users {
		out = append(out, &AdminUserResponse{
			UserResponse:        toUserResponse(summary.User, summary.Roles),
			FailedLoginAttempts: summary.User.FailedLoginAttempts,
			Locked:              summary.User.IsLocked(now),
		})
	}

	return response.Success(c, http.StatusOK, out)
}
