package impl

import (
	"context"
	"testing"

	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func createTestOrderEventService(t *testing.T, adminEmails ...string) (*orderEventService, *memStore, *mockMailer) {
	t.Helper()

	store := newMemStore()
	mailer := &mockMailer{}
	cfg := newTestConfig()
	cfg.Admin.Emails = adminEmails

	svc := NewOrderEventService(OrderEventServiceParams{
		OrderRepo: store.NewOrderRepository(),
		Mailer:    mailer,
		Config:    cfg,
		Logger:    newDiscardLogger(),
	}).(*orderEventService)

	return svc, store, mailer
}

func paidOrder(t *testing.T, store *memStore) *entity.Order {
	t.Helper()

	order := &entity.Order{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		GatewayOrderID: "order_" + uuid.NewString(),
		Status:         entity.OrderStatusPaid,
		Currency:       "INR",
		TotalAmount:    118000,
		Items: []entity.OrderItem{
			{ID: uuid.New(), ProductID: uuid.New(), ProductName: "Monsoon Study", Quantity: 1, UnitPrice: 100000},
		},
		ShippingAddress: shippingAddress(),
	}
	require.NoError(t, store.NewOrderRepository().Create(context.Background(), order))

	return order
}

func TestOrderEventService_PaidOrderAlertsEveryAdmin(t *testing.T) {
	svc, store, mailer := createTestOrderEventService(t, "owner@example.com", "ops@example.com")
	order := paidOrder(t, store)

	alertData := mock.MatchedBy(func(data map[string]any) bool {
		return data["OrderID"] == order.ID.String() && data["City"] == "Pune" && data["Total"] == "1180.00"
	})
	mailer.On("Send", mock.Anything, service.MailTemplateAdminOrderAlert, "owner@example.com", alertData).Return(nil).Once()
	mailer.On("Send", mock.Anything, service.MailTemplateAdminOrderAlert, "ops@example.com", alertData).Return(nil).Once()

	err := svc.HandleOrderEvent(context.Background(), &service.OrderEvent{
		Type:    service.EventOrderPaid,
		OrderID: order.ID.String(),
	})

	require.NoError(t, err)
	mailer.AssertExpectations(t)
}

func TestOrderEventService_IgnoresOtherEvents(t *testing.T) {
	svc, store, mailer := createTestOrderEventService(t, "owner@example.com")
	order := paidOrder(t, store)

	for _, eventType := range []string{service.EventOrderCreated, service.EventOrderStatusChanged, "order.refunded"} {
		err := svc.HandleOrderEvent(context.Background(), &service.OrderEvent{Type: eventType, OrderID: order.ID.String()})
		assert.NoError(t, err, eventType)
	}

	mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderEventService_Failures(t *testing.T) {
	tests := []struct {
		name    string
		orderID func(t *testing.T, store *memStore) string
		setup   func(mailer *mockMailer)
		wantErr error
	}{
		{
			name:    "malformed order id",
			orderID: func(*testing.T, *memStore) string { return "not-a-uuid" },
			wantErr: domainerrors.ErrValidationFailed,
		},
		{
			name:    "unknown order",
			orderID: func(*testing.T, *memStore) string { return uuid.NewString() },
			wantErr: domainerrors.ErrOrderNotFound,
		},
		{
			name: "mailer keeps failing",
			orderID: func(t *testing.T, store *memStore) string {
				return paidOrder(t, store).ID.String()
			},
			setup: func(mailer *mockMailer) {
				mailer.On("Send", mock.Anything, service.MailTemplateAdminOrderAlert, "owner@example.com", mock.Anything).
					Return(errors.New("smtp unavailable")).Twice()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, mailer := createTestOrderEventService(t, "owner@example.com")
			if tt.setup != nil {
				tt.setup(mailer)
			}

			err := svc.HandleOrderEvent(context.Background(), &service.OrderEvent{
				Type:    service.EventOrderPaid,
				OrderID: tt.orderID(t, store),
			})

			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
			}
			mailer.AssertExpectations(t)
		})
	}
}

func TestOrderEventService_NoRecipients(t *testing.T) {
	svc, store, mailer := createTestOrderEventService(t)
	order := paidOrder(t, store)

	err := svc.HandleOrderEvent(context.Background(), &service.OrderEvent{Type: service.EventOrderPaid, OrderID: order.ID.String()})

	require.NoError(t, err)
	mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestNewOrderEventService_WithoutSections(t *testing.T) {
	cfg := newTestConfig()
	cfg.Mail = nil
	cfg.Admin = nil

	svc := NewOrderEventService(OrderEventServiceParams{
		OrderRepo: newMemStore().NewOrderRepository(),
		Mailer:    &mockMailer{},
		Config:    cfg,
		Logger:    newDiscardLogger(),
	}).(*orderEventService)

	assert.Equal(t, defaultNotifyTimeout, svc.notifier.timeout)
	assert.Empty(t, svc.adminEmails)
}
