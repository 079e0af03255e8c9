package usecase

import (
	"context"

	"storefront/internal/domain/service"
)

// OrderEventUsecase consumes order integration events delivered to the worker.
type OrderEventUsecase interface {
	// HandleOrderEvent reacts to one event. Unknown event types are acknowledged without effect.
	HandleOrderEvent(ctx context.Context, event *service.OrderEvent) error
}
