package impl

import (
	"context"
	"log/slog"
	"time"

	"storefront/config"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/internal/errors"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// orderEventService implements the OrderEventUsecase interface.
type orderEventService struct {
	orderRepo   repository.OrderRepository
	adminEmails []string
	notifier    *notifier
	logger      *slog.Logger
}

// OrderEventServiceParams holds dependencies for OrderEventService, injected by Fx.
type OrderEventServiceParams struct {
	fx.In

	OrderRepo repository.OrderRepository
	Mailer    service.Mailer
	Config    *config.Config
	Logger    *slog.Logger
}

// NewOrderEventService is the constructor for orderEventService.
func NewOrderEventService(params OrderEventServiceParams) usecase.OrderEventUsecase {
	var emails []string
	if params.Config.Admin != nil {
		emails = params.Config.Admin.Emails
	}

	var mailTimeout time.Duration
	if params.Config.Mail != nil {
		mailTimeout = params.Config.Mail.Timeout
	}

	return &orderEventService{
		orderRepo:   params.OrderRepo,
		adminEmails: emails,
		notifier:    newNotifier(params.Mailer, nil, mailTimeout, params.Logger),
		logger:      params.Logger,
	}
}

func (srv *orderEventService) HandleOrderEvent(ctx context.Context, event *service.OrderEvent) error {
	logger := srv.notifier.log(ctx).With(
		slog.String("event_type", event.Type),
		slog.String("order_id", event.OrderID))

	switch event.Type {
	case service.EventOrderPaid:
		return srv.alertAdmins(ctx, logger, event)
	default:
		logger.Debug("Ignoring order event")

		return nil
	}
}

// alertAdmins emails every configured admin about a freshly paid order. A redelivered
// event sends the alert again.
func (srv *orderEventService) alertAdmins(ctx context.Context, logger *slog.Logger, event *service.OrderEvent) error {
	orderID, err := uuid.Parse(event.OrderID)
	if err != nil {
		return domainerrors.ErrValidationFailed.WithDetails("order_id must be a valid UUID")
	}

	if len(srv.adminEmails) == 0 {
		logger.Warn("No admin recipients configured for order alerts")

		return nil
	}

	order, err := srv.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return errors.Wrap(err, "failed to load paid order")
	}

	data := orderAlertData(order)
	var failed []error
	for _, recipient := range srv.adminEmails {
		if err := srv.notifier.sendWithRetry(ctx, service.MailTemplateAdminOrderAlert, recipient, data); err != nil {
			failed = append(failed, err)
		}
	}

	if len(failed) > 0 {
		return errors.Wrapf(errors.Join(failed...), "failed to alert %d of %d admins", len(failed), len(srv.adminEmails))
	}

	logger.Info("Admins alerted about paid order", slog.Int("recipients", len(srv.adminEmails)))

	return nil
}

func orderAlertData(order *entity.Order) map[string]any {
	data := orderEmailData(order.ShippingAddress.Name, order)
	data["ShipTo"] = order.ShippingAddress.Name
	data["City"] = order.ShippingAddress.City

	return data
}
