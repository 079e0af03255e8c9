// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
)

// Checkout bounds.
const (
	MaxOrderLines   = 20
	MaxLineQuantity = 10
)

// --- Input DTOs ---

// OrderItemInput is one requested line of a checkout.
type OrderItemInput struct {
	ProductID uuid.UUID
	Quantity  int
	Variant   string
}

// CreateOrderInput defines the data required to start a checkout.
type CreateOrderInput struct {
	Items           []OrderItemInput
	ShippingAddress entity.ShippingAddress
}

// VerifyPaymentInput is what the checkout widget hands back after payment.
type VerifyPaymentInput struct {
	GatewayOrderID string
	PaymentID      string
	Signature      string
}

// RateItemInput rates one item of a delivered order.
type RateItemInput struct {
	ItemID uuid.UUID
	Rating int
}

// --- Output DTOs ---

// CreateOrderOutput is everything the client needs to open the payment widget.
type CreateOrderOutput struct {
	GatewayOrderID string
	Amount         entity.Money
	Currency       string
	KeyID          string
	Order          *entity.Order
}

// OrderUsecase defines checkout, payment verification and order lifecycle operations.
type OrderUsecase interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, input *CreateOrderInput) (*CreateOrderOutput, error)
	VerifyPayment(ctx context.Context, userID uuid.UUID, input *VerifyPaymentInput) (*entity.Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID) ([]*entity.Order, error)
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*entity.Order, error)
	RateItem(ctx context.Context, userID, orderID uuid.UUID, input *RateItemInput) (*entity.Order, error)

	// UpdateOrderStatus is the administrator's transition into processing, delivered or cancelled.
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, next entity.OrderStatus) (*entity.Order, error)
}
