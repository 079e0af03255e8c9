package impl

import (
	"context"
	"testing"
	"time"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/policy"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminService_Dashboard(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	svc := NewAdminService(AdminServiceParams{
		UserRepo:    store.NewUserRepository(),
		ProductRepo: store.NewProductRepository(),
		OrderRepo:   store.NewOrderRepository(),
		ContactRepo: &memContactRepo{store},
		AdminPolicy: policy.NewAdminPolicy([]string{"owner@example.com"}),
		Logger:      newDiscardLogger(),
	})

	owner := &entity.User{Email: "owner@example.com"}
	buyer := &entity.User{Email: "buyer@example.com"}
	require.NoError(t, store.NewUserRepository().Create(ctx, owner))
	require.NoError(t, store.NewUserRepository().Create(ctx, buyer))
	require.NoError(t, store.NewProductRepository().Create(ctx, &entity.Product{ID: uuid.New(), Name: "Print"}))

	statuses := []entity.OrderStatus{
		entity.OrderStatusPending,
		entity.OrderStatusPaid,
		entity.OrderStatusPaid,
		entity.OrderStatusDelivered,
		entity.OrderStatusCancelled,
		entity.OrderStatusProcessing,
	}
	for i, status := range statuses {
		require.NoError(t, store.NewOrderRepository().Create(ctx, &entity.Order{
			ID:             uuid.New(),
			UserID:         buyer.ID,
			GatewayOrderID: uuid.NewString(),
			Status:         status,
			TotalAmount:    entity.Money(1000 * (i + 1)),
		}))
		time.Sleep(time.Millisecond)
	}
	require.NoError(t, (&memContactRepo{store}).Create(ctx, &entity.Contact{ID: uuid.New(), Status: entity.ContactStatusNew}))
	require.NoError(t, (&memContactRepo{store}).Create(ctx, &entity.Contact{ID: uuid.New(), Status: entity.ContactStatusRead}))

	dash, err := svc.Dashboard(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(2), dash.TotalUsers)
	assert.Equal(t, int64(1), dash.TotalProducts)
	assert.Equal(t, int64(6), dash.TotalOrders)
	assert.Equal(t, int64(2), dash.OrdersByStatus[entity.OrderStatusPaid])
	assert.Equal(t, int64(1), dash.OrdersByStatus[entity.OrderStatusCancelled])
	// paid 2000 + paid 3000 + delivered 4000 + processing 6000
	assert.Equal(t, entity.Money(15000), dash.Revenue)
	assert.Equal(t, int64(1), dash.NewContacts)
	require.Len(t, dash.RecentOrders, usecase.RecentOrderLimit)
	assert.Equal(t, entity.OrderStatusProcessing, dash.RecentOrders[0].Status)

	users, err := svc.ListUsers(ctx, 0)
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, u := range users {
		assert.Equal(t, u.User.Email == "owner@example.com", u.Roles.Contains(entity.RoleAdmin))
	}

	paid := entity.OrderStatusPaid
	orders, err := svc.ListOrders(ctx, entity.OrderFilter{Status: &paid})
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}
