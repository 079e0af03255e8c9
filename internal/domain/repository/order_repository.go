package repository

import (
	"context"
	"time"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
)

// PaymentConfirmation carries what the gateway returned for a paid order.
type PaymentConfirmation struct {
	PaymentID string
	Signature string
	PaidAt    time.Time
}

// OrderRepository persists orders and their items.
type OrderRepository interface {
	// Create persists an order with its items.
	Create(ctx context.Context, order *entity.Order) error

	// FindByID retrieves an order with its items.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)

	// FindByGatewayOrderID retrieves an order by payment-session ID, reading from the primary.
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*entity.Order, error)

	// ListByUser returns the user's orders newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Order, error)

	// List returns orders for the back office, newest first.
	List(ctx context.Context, filter entity.OrderFilter) ([]*entity.Order, error)

	// MarkPaid moves a pending order to paid. It reports false, without error,
	// when the order had already left pending.
	MarkPaid(ctx context.Context, id uuid.UUID, confirmation PaymentConfirmation) (bool, error)

	// TransitionStatus moves an order from expected to next. It reports false when
	// the stored status no longer equals expected.
	TransitionStatus(ctx context.Context, id uuid.UUID, expected, next entity.OrderStatus, at time.Time) (bool, error)

	// RateItem records a rating on an unrated item. It reports false when the item
	// already carries a rating.
	RateItem(ctx context.Context, orderID, itemID uuid.UUID, rating int, at time.Time) (bool, error)

	// ListProductRatings returns every recorded rating for a product.
	ListProductRatings(ctx context.Context, productID uuid.UUID) ([]int, error)

	// Count returns the number of orders.
	Count(ctx context.Context) (int64, error)

	// CountByStatus returns the number of orders per status.
	CountByStatus(ctx context.Context) ([]entity.OrderStatusCount, error)

	// SumRevenue totals the amounts of orders in the given statuses.
	SumRevenue(ctx context.Context, statuses []entity.OrderStatus) (entity.Money, error)
}
