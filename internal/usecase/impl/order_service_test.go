package impl

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/service"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// orderServiceFixtures holds all test dependencies for order service tests.
type orderServiceFixtures struct {
	service   *orderService
	store     *memStore
	gateway   *mockGateway
	mailer    *mockMailer
	publisher *mockPublisher
	buyer     *entity.User
}

func createTestOrderService(t *testing.T) orderServiceFixtures {
	t.Helper()

	store := newMemStore()
	gateway := &mockGateway{}
	mailer := &mockMailer{}
	publisher := &mockPublisher{}

	svc := NewOrderService(OrderServiceParams{
		TxManager:   store,
		ProductRepo: store.NewProductRepository(),
		OrderRepo:   store.NewOrderRepository(),
		UserRepo:    store.NewUserRepository(),
		Gateway:     gateway,
		Mailer:      mailer,
		Publisher:   publisher,
		Config:      newTestConfig(),
		Logger:      newDiscardLogger(),
	}).(*orderService)
	svc.now = func() time.Time { return fixedNow }

	buyer := &entity.User{Email: "buyer@example.com", Name: "Asha", IsVerified: true}
	require.NoError(t, store.NewUserRepository().Create(context.Background(), buyer))

	return orderServiceFixtures{
		service:   svc,
		store:     store,
		gateway:   gateway,
		mailer:    mailer,
		publisher: publisher,
		buyer:     buyer,
	}
}

func (f orderServiceFixtures) addProduct(t *testing.T, price entity.Money, discount *entity.Money, inStock bool) *entity.Product {
	t.Helper()

	product := &entity.Product{
		ID:            uuid.New(),
		Name:          "Monsoon Study",
		Price:         price,
		DiscountPrice: discount,
		Category:      entity.CategoryPainting,
		InStock:       inStock,
	}
	require.NoError(t, f.store.NewProductRepository().Create(context.Background(), product))

	return product
}

func (f orderServiceFixtures) addOrder(t *testing.T, userID uuid.UUID, productID uuid.UUID, status entity.OrderStatus) *entity.Order {
	t.Helper()

	order := &entity.Order{
		ID:             uuid.New(),
		UserID:         userID,
		GatewayOrderID: "order_" + uuid.NewString(),
		Status:         status,
		Currency:       "INR",
		TotalAmount:    118000,
		Items: []entity.OrderItem{
			{ID: uuid.New(), ProductID: productID, ProductName: "Monsoon Study", Quantity: 1, UnitPrice: 100000},
		},
		ShippingAddress: entity.ShippingAddress{Name: "Asha", Email: "ship@example.com"},
	}
	require.NoError(t, f.store.NewOrderRepository().Create(context.Background(), order))

	return order
}

func shippingAddress() entity.ShippingAddress {
	return entity.ShippingAddress{
		Name:       "Asha Rao",
		Email:      "asha@example.com",
		Phone:      "9876543210",
		Street:     "12 Lake Road",
		City:       "Pune",
		State:      "Maharashtra",
		PostalCode: "411001",
	}
}

func eventOfType(eventType string) any {
	return mock.MatchedBy(func(e *service.OrderEvent) bool { return e.Type == eventType })
}

func TestOrderService_CreateOrder_Success(t *testing.T) {
	fx := createTestOrderService(t)
	ctx := context.Background()

	product := fx.addProduct(t, 100000, nil, true)

	fx.gateway.On("CreateSession", mock.Anything, mock.MatchedBy(func(req service.SessionRequest) bool {
		return req.Amount == 236000 &&
			req.Currency == "INR" &&
			strings.HasPrefix(req.Receipt, "rcpt_") &&
			req.Notes["user_id"] == fx.buyer.ID.String()
	})).Return(&service.PaymentSession{ID: "order_abc", Amount: 236000, Currency: "INR"}, nil).Once()
	fx.publisher.On("PublishOrderEvent", mock.Anything, eventOfType(service.EventOrderCreated)).Return(nil).Once()

	out, err := fx.service.CreateOrder(ctx, fx.buyer.ID, &usecase.CreateOrderInput{
		Items:           []usecase.OrderItemInput{{ProductID: product.ID, Quantity: 2, Variant: "A3"}},
		ShippingAddress: shippingAddress(),
	})

	require.NoError(t, err)
	assert.Equal(t, "order_abc", out.GatewayOrderID)
	assert.Equal(t, entity.Money(236000), out.Amount)
	assert.Equal(t, "INR", out.Currency)
	assert.Equal(t, "rzp_test_key", out.KeyID)

	stored, err := fx.store.NewOrderRepository().FindByGatewayOrderID(ctx, "order_abc")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPending, stored.Status)
	assert.Equal(t, entity.Money(200000), stored.Subtotal)
	assert.Equal(t, entity.Money(36000), stored.Tax)
	assert.Equal(t, entity.Money(236000), stored.TotalAmount)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, entity.Money(100000), stored.Items[0].UnitPrice)
	assert.Equal(t, "A3", stored.Items[0].Variant)
	assert.Equal(t, "Pune", stored.ShippingAddress.City)

	fx.gateway.AssertExpectations(t)
	fx.publisher.AssertExpectations(t)
}

func TestOrderService_CreateOrder_UsesDiscountPrice(t *testing.T) {
	fx := createTestOrderService(t)
	discount := entity.Money(80000)
	product := fx.addProduct(t, 100000, &discount, true)

	fx.gateway.On("CreateSession", mock.Anything, mock.MatchedBy(func(req service.SessionRequest) bool {
		return req.Amount == 94400
	})).Return(&service.PaymentSession{ID: "order_disc"}, nil)
	fx.publisher.On("PublishOrderEvent", mock.Anything, mock.Anything).Return(nil)

	out, err := fx.service.CreateOrder(context.Background(), fx.buyer.ID, &usecase.CreateOrderInput{
		Items:           []usecase.OrderItemInput{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: shippingAddress(),
	})

	require.NoError(t, err)
	assert.Equal(t, discount, out.Order.Items[0].UnitPrice)
	assert.Equal(t, entity.Money(94400), out.Order.TotalAmount)
}

func TestOrderService_CreateOrder_PriceIsSnapshotted(t *testing.T) {
	fx := createTestOrderService(t)
	ctx := context.Background()
	discount := entity.Money(80000)
	product := fx.addProduct(t, 100000, &discount, true)

	fx.gateway.On("CreateSession", mock.Anything, mock.Anything).
		Return(&service.PaymentSession{ID: "order_snap"}, nil)
	fx.publisher.On("PublishOrderEvent", mock.Anything, mock.Anything).Return(nil)

	out, err := fx.service.CreateOrder(ctx, fx.buyer.ID, &usecase.CreateOrderInput{
		Items:           []usecase.OrderItemInput{{ProductID: product.ID, Quantity: 2}},
		ShippingAddress: shippingAddress(),
	})
	require.NoError(t, err)

	repriced := *product
	newDiscount := entity.Money(150000)
	repriced.Price = 250000
	repriced.DiscountPrice = &newDiscount
	require.NoError(t, fx.store.NewProductRepository().Update(ctx, &repriced))

	reloaded, err := fx.service.GetOrder(ctx, fx.buyer.ID, out.Order.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Items, 1)
	assert.Equal(t, entity.Money(80000), reloaded.Items[0].UnitPrice)
	assert.Equal(t, entity.Money(160000), reloaded.Subtotal)
	assert.Equal(t, entity.Money(188800), reloaded.TotalAmount)
}

func TestOrderService_CreateOrder_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		items   func(t *testing.T, fx orderServiceFixtures) []usecase.OrderItemInput
		wantErr error
	}{
		{
			name:    "no items",
			items:   func(*testing.T, orderServiceFixtures) []usecase.OrderItemInput { return nil },
			wantErr: domainerrors.ErrValidationFailed,
		},
		{
			name: "quantity above limit",
			items: func(*testing.T, orderServiceFixtures) []usecase.OrderItemInput {
				return []usecase.OrderItemInput{{ProductID: uuid.New(), Quantity: usecase.MaxLineQuantity + 1}}
			},
			wantErr: domainerrors.ErrValidationFailed,
		},
		{
			name: "unknown product",
			items: func(*testing.T, orderServiceFixtures) []usecase.OrderItemInput {
				return []usecase.OrderItemInput{{ProductID: uuid.New(), Quantity: 1}}
			},
			wantErr: domainerrors.ErrProductNotFound,
		},
		{
			name: "out of stock",
			items: func(t *testing.T, fx orderServiceFixtures) []usecase.OrderItemInput {
				return []usecase.OrderItemInput{{ProductID: fx.addProduct(t, 5000, nil, false).ID, Quantity: 1}}
			},
			wantErr: domainerrors.ErrOutOfStock,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := createTestOrderService(t)

			_, err := fx.service.CreateOrder(context.Background(), fx.buyer.ID, &usecase.CreateOrderInput{
				Items:           tt.items(t, fx),
				ShippingAddress: shippingAddress(),
			})

			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			fx.gateway.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
			assert.Empty(t, fx.store.orders)
		})
	}
}

func TestOrderService_CreateOrder_GatewayFailure(t *testing.T) {
	fx := createTestOrderService(t)
	product := fx.addProduct(t, 100000, nil, true)

	fx.gateway.On("CreateSession", mock.Anything, mock.Anything).
		Return(nil, domainerrors.ErrPaymentGatewayFailed.WrapMessage("gateway returned status 503"))

	out, err := fx.service.CreateOrder(context.Background(), fx.buyer.ID, &usecase.CreateOrderInput{
		Items:           []usecase.OrderItemInput{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: shippingAddress(),
	})

	assert.Nil(t, out)
	assert.True(t, errors.Is(err, domainerrors.ErrPaymentGatewayFailed))
	assert.Empty(t, fx.store.orders)
	fx.publisher.AssertNotCalled(t, "PublishOrderEvent", mock.Anything, mock.Anything)
}

func TestOrderService_CreateOrder_PersistFailureAfterSession(t *testing.T) {
	fx := createTestOrderService(t)
	product := fx.addProduct(t, 100000, nil, true)
	fx.store.createOrderErr = errors.New("connection reset")

	fx.gateway.On("CreateSession", mock.Anything, mock.Anything).Return(&service.PaymentSession{ID: "order_orphan"}, nil)

	out, err := fx.service.CreateOrder(context.Background(), fx.buyer.ID, &usecase.CreateOrderInput{
		Items:           []usecase.OrderItemInput{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: shippingAddress(),
	})

	assert.Nil(t, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Empty(t, fx.store.orders)
}

func TestOrderService_VerifyPayment_TamperedSignature(t *testing.T) {
	fx := createTestOrderService(t)
	order := fx.addOrder(t, fx.buyer.ID, uuid.New(), entity.OrderStatusPending)

	fx.gateway.On("VerifySignature", order.GatewayOrderID, "pay_1", "forged").Return(false)

	got, err := fx.service.VerifyPayment(context.Background(), fx.buyer.ID, &usecase.VerifyPaymentInput{
		GatewayOrderID: order.GatewayOrderID,
		PaymentID:      "pay_1",
		Signature:      "forged",
	})

	assert.Nil(t, got)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidPaymentSignature))
	assert.Equal(t, 0, fx.store.markPaidCalls)

	stored, _ := fx.store.NewOrderRepository().FindByID(context.Background(), order.ID)
	assert.Equal(t, entity.OrderStatusPending, stored.Status)
	fx.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_VerifyPayment_PaysOnce(t *testing.T) {
	fx := createTestOrderService(t)
	order := fx.addOrder(t, fx.buyer.ID, uuid.New(), entity.OrderStatusPending)
	input := &usecase.VerifyPaymentInput{GatewayOrderID: order.GatewayOrderID, PaymentID: "pay_1", Signature: "good"}

	fx.gateway.On("VerifySignature", order.GatewayOrderID, "pay_1", "good").Return(true)
	fx.mailer.On("Send", mock.Anything, service.MailTemplateOrderConfirmation, "buyer@example.com", mock.Anything).Return(nil).Once()
	fx.publisher.On("PublishOrderEvent", mock.Anything, eventOfType(service.EventOrderPaid)).Return(nil).Once()

	first, err := fx.service.VerifyPayment(context.Background(), fx.buyer.ID, input)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPaid, first.Status)
	assert.Equal(t, "pay_1", first.PaymentID)
	require.NotNil(t, first.PaidAt)
	assert.Equal(t, fixedNow, *first.PaidAt)

	second, err := fx.service.VerifyPayment(context.Background(), fx.buyer.ID, input)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPaid, second.Status)

	fx.mailer.AssertNumberOfCalls(t, "Send", 1)
	fx.publisher.AssertNumberOfCalls(t, "PublishOrderEvent", 1)
}

func TestOrderService_VerifyPayment_ConcurrentCallersNotifyOnce(t *testing.T) {
	fx := createTestOrderService(t)
	order := fx.addOrder(t, fx.buyer.ID, uuid.New(), entity.OrderStatusPending)
	input := &usecase.VerifyPaymentInput{GatewayOrderID: order.GatewayOrderID, PaymentID: "pay_1", Signature: "good"}

	fx.gateway.On("VerifySignature", mock.Anything, mock.Anything, mock.Anything).Return(true)
	fx.mailer.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	fx.publisher.On("PublishOrderEvent", mock.Anything, mock.Anything).Return(nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := fx.service.VerifyPayment(context.Background(), fx.buyer.ID, input)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	fx.mailer.AssertNumberOfCalls(t, "Send", 1)
	fx.publisher.AssertNumberOfCalls(t, "PublishOrderEvent", 1)
}

func TestOrderService_VerifyPayment_Rejections(t *testing.T) {
	t.Run("other user's order", func(t *testing.T) {
		fx := createTestOrderService(t)
		order := fx.addOrder(t, uuid.New(), uuid.New(), entity.OrderStatusPending)
		fx.gateway.On("VerifySignature", mock.Anything, mock.Anything, mock.Anything).Return(true)

		_, err := fx.service.VerifyPayment(context.Background(), fx.buyer.ID, &usecase.VerifyPaymentInput{
			GatewayOrderID: order.GatewayOrderID, PaymentID: "pay_1", Signature: "good",
		})

		assert.True(t, errors.Is(err, domainerrors.ErrForbidden))
		assert.Equal(t, 0, fx.store.markPaidCalls)
	})

	t.Run("unknown order", func(t *testing.T) {
		fx := createTestOrderService(t)
		fx.gateway.On("VerifySignature", mock.Anything, mock.Anything, mock.Anything).Return(true)

		_, err := fx.service.VerifyPayment(context.Background(), fx.buyer.ID, &usecase.VerifyPaymentInput{
			GatewayOrderID: "order_missing", PaymentID: "pay_1", Signature: "good",
		})

		assert.True(t, errors.Is(err, domainerrors.ErrOrderNotFound))
	})

	t.Run("cancelled order", func(t *testing.T) {
		fx := createTestOrderService(t)
		order := fx.addOrder(t, fx.buyer.ID, uuid.New(), entity.OrderStatusCancelled)
		fx.gateway.On("VerifySignature", mock.Anything, mock.Anything, mock.Anything).Return(true)

		_, err := fx.service.VerifyPayment(context.Background(), fx.buyer.ID, &usecase.VerifyPaymentInput{
			GatewayOrderID: order.GatewayOrderID, PaymentID: "pay_1", Signature: "good",
		})

		assert.True(t, errors.Is(err, domainerrors.ErrInvalidStatusTransition))
	})
}

func TestOrderService_VerifyPayment_EmailFailureIsRetriedThenIgnored(t *testing.T) {
	fx := createTestOrderService(t)
	order := fx.addOrder(t, fx.buyer.ID, uuid.New(), entity.OrderStatusPending)

	fx.gateway.On("VerifySignature", mock.Anything, mock.Anything, mock.Anything).Return(true)
	fx.mailer.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))
	fx.publisher.On("PublishOrderEvent", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	got, err := fx.service.VerifyPayment(context.Background(), fx.buyer.ID, &usecase.VerifyPaymentInput{
		GatewayOrderID: order.GatewayOrderID, PaymentID: "pay_1", Signature: "good",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPaid, got.Status)
	fx.mailer.AssertNumberOfCalls(t, "Send", 2)
}

func TestOrderService_RateItem(t *testing.T) {
	fx := createTestOrderService(t)
	ctx := context.Background()
	product := fx.addProduct(t, 100000, nil, true)

	var orders []*entity.Order
	for range 3 {
		orders = append(orders, fx.addOrder(t, fx.buyer.ID, product.ID, entity.OrderStatusDelivered))
	}

	for i, rating := range []int{4, 5, 3} {
		rated, err := fx.service.RateItem(ctx, fx.buyer.ID, orders[i].ID, &usecase.RateItemInput{
			ItemID: orders[i].Items[0].ID,
			Rating: rating,
		})
		require.NoError(t, err)
		require.NotNil(t, rated.Items[0].Rating)
		assert.Equal(t, rating, *rated.Items[0].Rating)
	}

	stored, err := fx.store.NewProductRepository().FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, stored.Rating, 1e-9)
	assert.Equal(t, 3, stored.ReviewCount)

	_, err = fx.service.RateItem(ctx, fx.buyer.ID, orders[0].ID, &usecase.RateItemInput{ItemID: orders[0].Items[0].ID, Rating: 1})
	assert.True(t, errors.Is(err, domainerrors.ErrAlreadyRated))
}

func TestOrderService_RateItem_Rejections(t *testing.T) {
	tests := []struct {
		name string
		setup   func(t *testing.T, fx orderServiceFixtures) (uuid.UUID, *usecase.RateItemInput)
		wantErr error
	}{
		{
			name: "not delivered",
			setup: func(t *testing.T, fx orderServiceFixtures) (uuid.UUID, *usecase.RateItemInput) {
				order := fx.addOrder(t, fx.buyer.ID, uuid.New(), entity.OrderStatusProcessing)

				return order.ID, &usecase.RateItemInput{ItemID: order.Items[0].ID, Rating: 5}
			},
			wantErr: domainerrors.ErrOrderNotDelivered,
		},
		{
			name: "unknown item",
			setup: func(t *testing.T, fx orderServiceFixtures) (uuid.UUID, *usecase.RateItemInput) {
				order := fx.addOrder(t, fx.buyer.ID, uuid.New(), entity.OrderStatusDelivered)

				return order.ID, &usecase.RateItemInput{ItemID: uuid.New(), Rating: 5}
			},
			wantErr: domainerrors.ErrOrderItemNotFound,
		},
		{
			name: "someone else's order",
			setup: func(t *testing.T, fx orderServiceFixtures) (uuid.UUID, *usecase.RateItemInput) {
				order := fx.addOrder(t, uuid.New(), uuid.New(), entity.OrderStatusDelivered)

				return order.ID, &usecase.RateItemInput{ItemID: order.Items[0].ID, Rating: 5}
			},
			wantErr: domainerrors.ErrOrderNotFound,
		},
		{
			name: "rating out of range",
			setup: func(t *testing.T, fx orderServiceFixtures) (uuid.UUID, *usecase.RateItemInput) {
				order := fx.addOrder(t, fx.buyer.ID, uuid.New(), entity.OrderStatusDelivered)

				return order.ID, &usecase.RateItemInput{ItemID: order.Items[0].ID, Rating: 6}
			},
			wantErr: domainerrors.ErrValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := createTestOrderService(t)
			orderID, input := tt.setup(t, fx)

			got, err := fx.service.RateItem(context.Background(), fx.buyer.ID, orderID, input)

			assert.Nil(t, got)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestOrderService_RateItem_LocksProductBeforeAggregating(t *testing.T) {
	fx := createTestOrderService(t)
	product := fx.addProduct(t, 100000, nil, true)
	order := fx.addOrder(t, fx.buyer.ID, product.ID, entity.OrderStatusDelivered)

	_, err := fx.service.RateItem(context.Background(), fx.buyer.ID, order.ID, &usecase.RateItemInput{
		ItemID: order.Items[0].ID,
		Rating: 5,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"lock:" + product.ID.String(), "ratings:" + product.ID.String()}, fx.store.ratingTrace)
}

func TestOrderService_RateItem_DeletedProductSkipsAggregate(t *testing.T) {
	fx := createTestOrderService(t)
	ctx := context.Background()
	product := fx.addProduct(t, 100000, nil, true)
	order := fx.addOrder(t, fx.buyer.ID, product.ID, entity.OrderStatusDelivered)
	require.NoError(t, fx.store.NewProductRepository().Delete(ctx, product.ID))

	rated, err := fx.service.RateItem(ctx, fx.buyer.ID, order.ID, &usecase.RateItemInput{
		ItemID: order.Items[0].ID,
		Rating: 4,
	})

	require.NoError(t, err)
	require.NotNil(t, rated.Items[0].Rating)
	assert.Equal(t, 4, *rated.Items[0].Rating)
	assert.Empty(t, fx.store.ratingTrace)
}

func TestOrderService_UpdateOrderStatus(t *testing.T) {
	tests := []struct {
		name    string
		from    entity.OrderStatus
		to      entity.OrderStatus
		wantErr error
	}{
		{name: "paid to processing", from: entity.OrderStatusPaid, to: entity.OrderStatusProcessing},
		{name: "processing to cancelled", from: entity.OrderStatusProcessing, to: entity.OrderStatusCancelled},
		{name: "pending to processing", from: entity.OrderStatusPending, to: entity.OrderStatusProcessing, wantErr: domainerrors.ErrInvalidStatusTransition},
		{name: "delivered to cancelled", from: entity.OrderStatusDelivered, to: entity.OrderStatusCancelled, wantErr: domainerrors.ErrInvalidStatusTransition},
		{name: "admin cannot mark paid", from: entity.OrderStatusPending, to: entity.OrderStatusPaid, wantErr: domainerrors.ErrInvalidStatusTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := createTestOrderService(t)
			order := fx.addOrder(t, fx.buyer.ID, uuid.New(), tt.from)
			fx.publisher.On("PublishOrderEvent", mock.Anything, eventOfType(service.EventOrderStatusChanged)).Return(nil)

			got, err := fx.service.UpdateOrderStatus(context.Background(), order.ID, tt.to)

			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				fx.publisher.AssertNotCalled(t, "PublishOrderEvent", mock.Anything, mock.Anything)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, got.Status)
			fx.publisher.AssertNumberOfCalls(t, "PublishOrderEvent", 1)
			fx.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestOrderService_UpdateOrderStatus_DeliveredSendsEmail(t *testing.T) {
	fx := createTestOrderService(t)
	order := fx.addOrder(t, fx.buyer.ID, uuid.New(), entity.OrderStatusProcessing)

	fx.mailer.On("Send", mock.Anything, service.MailTemplateDelivery, "buyer@example.com",
		mock.MatchedBy(func(data map[string]any) bool { return data["OrderID"] == order.ID.String() })).Return(nil).Once()
	fx.publisher.On("PublishOrderEvent", mock.Anything, mock.Anything).Return(nil)

	got, err := fx.service.UpdateOrderStatus(context.Background(), order.ID, entity.OrderStatusDelivered)

	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusDelivered, got.Status)
	require.NotNil(t, got.DeliveredAt)
	assert.Equal(t, fixedNow, *got.DeliveredAt)
	fx.mailer.AssertExpectations(t)
}

func TestOrderService_OwnerScopedReads(t *testing.T) {
	fx := createTestOrderService(t)
	ctx := context.Background()
	mine := fx.addOrder(t, fx.buyer.ID, uuid.New(), entity.OrderStatusPaid)
	theirs := fx.addOrder(t, uuid.New(), uuid.New(), entity.OrderStatusPaid)

	list, err := fx.service.ListOrders(ctx, fx.buyer.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)

	got, err := fx.service.GetOrder(ctx, fx.buyer.ID, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, mine.ID, got.ID)

	_, err = fx.service.GetOrder(ctx, fx.buyer.ID, theirs.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrOrderNotFound))
}
