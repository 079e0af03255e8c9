package service

import (
	"context"
	"time"
)

// Order event types.
const (
	EventOrderCreated       = "order.created"
	EventOrderPaid          = "order.paid"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent is published after an order changes. Consumers must tolerate
// duplicates and gaps; publishing is best-effort.
type OrderEvent struct {
	Type        string    `json:"type"`
	RequestID   string    `json:"request_id,omitempty"`
	OrderID     string    `json:"order_id"`
	UserID      string    `json:"user_id"`
	Status      string    `json:"status"`
	TotalAmount int64     `json:"total_amount"`
	Currency    string    `json:"currency"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// EventPublisher publishes integration events to a message transport.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event *OrderEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
