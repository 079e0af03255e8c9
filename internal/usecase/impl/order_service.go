package impl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"storefront/config"
	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const defaultCurrency = "INR"

// orderService implements the OrderUsecase interface.
type orderService struct {
	txManager      repository.TransactionManager
	productRepo    repository.ProductRepository
	orderRepo      repository.OrderRepository
	userRepo       repository.UserRepository
	gateway        service.PaymentGateway
	notifier       *notifier
	currency       string
	taxBasisPoints int64
	now            func() time.Time
	logger         *slog.Logger
}

// OrderServiceParams holds dependencies for OrderService, injected by Fx.
type OrderServiceParams struct {
	fx.In

	TxManager   repository.TransactionManager
	ProductRepo repository.ProductRepository
	OrderRepo   repository.OrderRepository
	UserRepo    repository.UserRepository
	Gateway     service.PaymentGateway
	Mailer      service.Mailer
	Publisher   service.EventPublisher
	Config      *config.Config
	Logger      *slog.Logger
}

// NewOrderService is the constructor for orderService.
func NewOrderService(params OrderServiceParams) usecase.OrderUsecase {
	currency := defaultCurrency
	taxBasisPoints := entity.DefaultTaxBasisPoints
	if params.Config.Order != nil {
		if params.Config.Order.Currency != "" {
			currency = params.Config.Order.Currency
		}
		taxBasisPoints = params.Config.Order.TaxBasisPoints
	}

	var mailTimeout time.Duration
	if params.Config.Mail != nil {
		mailTimeout = params.Config.Mail.Timeout
	}

	return &orderService{
		txManager:      params.TxManager,
		productRepo:    params.ProductRepo,
		orderRepo:      params.OrderRepo,
		userRepo:       params.UserRepo,
		gateway:        params.Gateway,
		notifier:       newNotifier(params.Mailer, params.Publisher, mailTimeout, params.Logger),
		currency:       currency,
		taxBasisPoints: taxBasisPoints,
		now:            time.Now,
		logger:         params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *orderService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateOrder prices the requested items, opens a payment session and records a pending order.
func (srv *orderService) CreateOrder(ctx context.Context, userID uuid.UUID, input *usecase.CreateOrderInput) (*usecase.CreateOrderOutput, error) {
	if err := validateOrderItems(input.Items); err != nil {
		return nil, err
	}

	items, err := srv.snapshotItems(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	totals := entity.PriceItems(items, srv.taxBasisPoints)

	session, err := srv.gateway.CreateSession(ctx, service.SessionRequest{
		Amount:   totals.Total,
		Currency: srv.currency,
		Receipt:  fmt.Sprintf("rcpt_%d", srv.now().UnixNano()),
		Notes:    map[string]string{"user_id": userID.String()},
	})
	if err != nil {
		srv.log(ctx).Error("Failed to create payment session", slog.Any("userID", userID), slog.Any("error", err))

		if errors.Is(err, domainerrors.ErrPaymentGatewayFailed) {
			return nil, errors.Wrap(err, "failed to create payment session")
		}

		return nil, errors.Wrap(domainerrors.ErrPaymentGatewayFailed, err.Error())
	}

	order := &entity.Order{
		ID:              uuid.New(),
		UserID:          userID,
		Items:           items,
		Subtotal:        totals.Subtotal,
		Tax:             totals.Tax,
		TotalAmount:     totals.Total,
		Currency:        srv.currency,
		GatewayOrderID:  session.ID,
		ShippingAddress: input.ShippingAddress,
		Status:          entity.OrderStatusPending,
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.NewOrderRepository().Create(ctx, order)
	})
	if err != nil {
		srv.log(ctx).Error("Failed to persist order, orphaned payment session",
			slog.String("gatewayOrderID", session.ID),
			slog.Any("userID", userID),
			slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to persist order")
	}

	srv.log(ctx).Info("Order created",
		slog.Any("orderID", order.ID),
		slog.String("gatewayOrderID", session.ID),
		slog.Int64("total", order.TotalAmount.Int64()))

	srv.notifier.publish(ctx, newOrderEvent(service.EventOrderCreated, order, srv.now()))

	return &usecase.CreateOrderOutput{
		GatewayOrderID: session.ID,
		Amount:         order.TotalAmount,
		Currency:       order.Currency,
		KeyID:          srv.gateway.PublicKeyID(),
		Order:          order,
	}, nil
}

func validateOrderItems(items []usecase.OrderItemInput) error {
	if len(items) == 0 || len(items) > usecase.MaxOrderLines {
		return domainerrors.ErrValidationFailed.WrapMessage(
			fmt.Sprintf("an order must have between 1 and %d items", usecase.MaxOrderLines))
	}
	for _, item := range items {
		if item.Quantity < 1 || item.Quantity > usecase.MaxLineQuantity {
			return domainerrors.ErrValidationFailed.WrapMessage(
				fmt.Sprintf("quantity must be between 1 and %d", usecase.MaxLineQuantity))
		}
	}

	return nil
}

// snapshotItems loads the products and freezes name and selling price onto each line.
func (srv *orderService) snapshotItems(ctx context.Context, inputs []usecase.OrderItemInput) ([]entity.OrderItem, error) {
	ids := make([]uuid.UUID, 0, len(inputs))
	for _, in := range inputs {
		ids = append(ids, in.ProductID)
	}

	products, err := srv.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load products")
	}

	items := make([]entity.OrderItem, 0, len(inputs))
	for _, in := range inputs {
		product, ok := products[in.ProductID]
		if !ok {
			return nil, errors.WithStack(domainerrors.ErrProductNotFound.WithDetails(in.ProductID.String()))
		}
		if !product.IsInStock() {
			return nil, errors.WithStack(domainerrors.ErrOutOfStock.WithDetails(product.Name))
		}

		items = append(items, entity.OrderItem{
			ID:          uuid.New(),
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    in.Quantity,
			UnitPrice:   product.EffectivePrice(),
			Variant:     in.Variant,
		})
	}

	return items, nil
}

// VerifyPayment checks the gateway signature and marks the order paid exactly once.
func (srv *orderService) VerifyPayment(ctx context.Context, userID uuid.UUID, input *usecase.VerifyPaymentInput) (*entity.Order, error) {
	if !srv.gateway.VerifySignature(input.GatewayOrderID, input.PaymentID, input.Signature) {
		srv.log(ctx).Warn("Payment signature mismatch",
			slog.String("gatewayOrderID", input.GatewayOrderID),
			slog.Any("userID", userID))

		return nil, errors.WithStack(domainerrors.ErrInvalidPaymentSignature)
	}

	order, err := srv.orderRepo.FindByGatewayOrderID(ctx, input.GatewayOrderID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find order")
	}
	if !order.IsOwnedBy(userID) {
		return nil, errors.WithStack(domainerrors.ErrForbidden)
	}

	paidAt := srv.now()
	updated, err := srv.orderRepo.MarkPaid(ctx, order.ID, repository.PaymentConfirmation{
		PaymentID: input.PaymentID,
		Signature: input.Signature,
		PaidAt:    paidAt,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to mark order paid")
	}

	if !updated {
		current, err := srv.orderRepo.FindByGatewayOrderID(ctx, input.GatewayOrderID)
		if err != nil {
			return nil, errors.Wrap(err, "failed to reload order")
		}
		if current.Status == entity.OrderStatusCancelled || current.Status == entity.OrderStatusPending {
			return nil, domainerrors.ErrInvalidStatusTransition.WrapMessage("order can no longer be paid")
		}
		srv.log(ctx).Info("Payment already verified", slog.Any("orderID", current.ID))

		return current, nil
	}

	order, err = srv.orderRepo.FindByGatewayOrderID(ctx, input.GatewayOrderID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to reload order")
	}

	srv.log(ctx).Info("Order paid", slog.Any("orderID", order.ID), slog.String("paymentID", input.PaymentID))

	srv.sendOrderEmail(ctx, service.MailTemplateOrderConfirmation, order)
	srv.notifier.publish(ctx, newOrderEvent(service.EventOrderPaid, order, paidAt))

	return order, nil
}

// ListOrders returns the caller's orders newest first.
func (srv *orderService) ListOrders(ctx context.Context, userID uuid.UUID) ([]*entity.Order, error) {
	orders, err := srv.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list orders")
	}

	return orders, nil
}

// refreshProductRating recomputes the aggregate while holding the product row
// lock. A product deleted since the order was placed is skipped.
func (srv *orderService) refreshProductRating(ctx context.Context, orderRepo repository.OrderRepository, productRepo repository.ProductRepository, productID uuid.UUID) error {
	err := productRepo.LockForUpdate(ctx, productID)
	if errors.Is(err, domainerrors.ErrProductNotFound) {
		srv.log(ctx).Warn("Rated product no longer exists", slog.Any("productID", productID))

		return nil
	}
	if err != nil {
		return errors.Wrap(err, "failed to lock product")
	}

	ratings, err := orderRepo.ListProductRatings(ctx, productID)
	if err != nil {
		return errors.Wrap(err, "failed to list product ratings")
	}

	mean, count := entity.AggregateRatings(ratings)
	if err := productRepo.UpdateRating(ctx, productID, mean, count); err != nil {
		return errors.Wrap(err, "failed to update product rating")
	}

	return nil
}

// GetOrder returns one of the caller's orders. Other users' orders are reported as missing.
func (srv *orderService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*entity.Order, error) {
	order, err := srv.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find order")
	}
	if !order.IsOwnedBy(userID) {
		return nil, errors.WithStack(domainerrors.ErrOrderNotFound)
	}

	return order, nil
}

// RateItem records a rating and refreshes the product aggregate in one transaction.
func (srv *orderService) RateItem(ctx context.Context, userID, orderID uuid.UUID, input *usecase.RateItemInput) (*entity.Order, error) {
	if !entity.IsValidRating(input.Rating) {
		return nil, domainerrors.ErrValidationFailed.WrapMessage(
			fmt.Sprintf("rating must be between %d and %d", entity.MinRating, entity.MaxRating))
	}

	var rated *entity.Order
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		orderRepo := repoFactory.NewOrderRepository()
		productRepo := repoFactory.NewProductRepository()

		order, err := orderRepo.FindByID(ctx, orderID)
		if err != nil {
			return errors.Wrap(err, "failed to find order")
		}
		if !order.IsOwnedBy(userID) {
			return errors.WithStack(domainerrors.ErrOrderNotFound)
		}
		if order.Status != entity.OrderStatusDelivered {
			return errors.WithStack(domainerrors.ErrOrderNotDelivered)
		}

		item := order.FindItem(input.ItemID)
		if item == nil {
			return errors.WithStack(domainerrors.ErrOrderItemNotFound)
		}
		if item.Rating != nil {
			return errors.WithStack(domainerrors.ErrAlreadyRated)
		}

		ok, err := orderRepo.RateItem(ctx, orderID, item.ID, input.Rating, srv.now())
		if err != nil {
			return errors.Wrap(err, "failed to rate item")
		}
		if !ok {
			return errors.WithStack(domainerrors.ErrAlreadyRated)
		}

		if err := srv.refreshProductRating(ctx, orderRepo, productRepo, item.ProductID); err != nil {
			return err
		}

		rated, err = orderRepo.FindByID(ctx, orderID)

		return errors.Wrap(err, "failed to reload order")
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute rating transaction")
	}

	srv.log(ctx).Info("Order item rated", slog.Any("orderID", orderID), slog.Any("itemID", input.ItemID), slog.Int("rating", input.Rating))

	return rated, nil
}

// UpdateOrderStatus applies an administrator transition guarded by the current status.
func (srv *orderService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, next entity.OrderStatus) (*entity.Order, error) {
	if !next.IsAdminTarget() {
		return nil, domainerrors.ErrInvalidStatusTransition.WrapMessage(
			fmt.Sprintf("status %q cannot be set by an administrator", next))
	}

	order, err := srv.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find order")
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, domainerrors.ErrInvalidStatusTransition.WrapMessage(
			fmt.Sprintf("cannot move order from %s to %s", order.Status, next))
	}

	at := srv.now()
	ok, err := srv.orderRepo.TransitionStatus(ctx, orderID, order.Status, next, at)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update order status")
	}
	if !ok {
		return nil, domainerrors.ErrConflict.WrapMessage("order status changed concurrently")
	}

	updated, err := srv.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to reload order")
	}

	srv.log(ctx).Info("Order status updated",
		slog.Any("orderID", orderID),
		slog.String("from", string(order.Status)),
		slog.String("to", string(next)))

	if next == entity.OrderStatusDelivered {
		srv.sendOrderEmail(ctx, service.MailTemplateDelivery, updated)
	}
	srv.notifier.publish(ctx, newOrderEvent(service.EventOrderStatusChanged, updated, at))

	return updated, nil
}

// sendOrderEmail notifies the buyer, preferring the account address over the shipping one.
func (srv *orderService) sendOrderEmail(ctx context.Context, template service.MailTemplate, order *entity.Order) {
	recipient := order.ShippingAddress.Email
	name := order.ShippingAddress.Name

	user, err := srv.userRepo.FindByID(ctx, order.UserID)
	if err != nil {
		srv.log(ctx).Warn("Falling back to shipping email", slog.Any("orderID", order.ID), slog.Any("error", err))
	} else {
		recipient = user.Email
		if user.Name != "" {
			name = user.Name
		}
	}

	if recipient == "" {
		srv.log(ctx).Warn("Order has no recipient", slog.Any("orderID", order.ID))

		return
	}

	srv.notifier.notifyWithRetry(ctx, template, recipient, orderEmailData(name, order))
}

func orderEmailData(name string, order *entity.Order) map[string]any {
	items := make([]map[string]any, 0, len(order.Items))
	for i := range order.Items {
		item := &order.Items[i]
		items = append(items, map[string]any{
			"Name":      item.ProductName,
			"Quantity":  item.Quantity,
			"LineTotal": item.LineTotal().String(),
			"Variant":   item.Variant,
		})
	}

	return map[string]any{
		"Name":     name,
		"OrderID":  order.ID.String(),
		"Items":    items,
		"Subtotal": order.Subtotal.String(),
		"Tax":      order.Tax.String(),
		"Total":    order.TotalAmount.String(),
		"Currency": order.Currency,
	}
}

func newOrderEvent(eventType string, order *entity.Order, at time.Time) *service.OrderEvent {
	return &service.OrderEvent{
		Type:        eventType,
		OrderID:     order.ID.String(),
		UserID:      order.UserID.String(),
		Status:      string(order.Status),
		TotalAmount: order.TotalAmount.Int64(),
		Currency:    order.Currency,
		OccurredAt:  at.UTC(),
	}
}
