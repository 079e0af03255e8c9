package postgres

import (
	"testing"

	"storefront/internal/domain/entity"
	"storefront/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderMapping_KeepsCartOrder(t *testing.T) {
	order := &entity.Order{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Status: entity.OrderStatusPending,
		Items: []entity.OrderItem{
			{ID: uuid.New(), ProductName: "Zebra print", Quantity: 1, UnitPrice: 50000},
			{ID: uuid.New(), ProductName: "Art hoodie", Quantity: 2, UnitPrice: 120000},
			{ID: uuid.New(), ProductName: "Monsoon Study", Quantity: 1, UnitPrice: 90000},
		},
	}

	stored := fromOrderDomain(order)
	require.Len(t, stored.Items, 3)
	for i, item := range stored.Items {
		assert.Equal(t, i, item.Position)
	}

	// Rows may come back from the database in any order.
	stored.Items = []model.OrderItemModel{stored.Items[2], stored.Items[0], stored.Items[1]}

	loaded := toOrderDomain(stored)
	require.Len(t, loaded.Items, 3)
	assert.Equal(t, "Zebra print", loaded.Items[0].ProductName)
	assert.Equal(t, "Art hoodie", loaded.Items[1].ProductName)
	assert.Equal(t, "Monsoon Study", loaded.Items[2].ProductName)
	assert.Equal(t, entity.Money(120000), loaded.Items[1].UnitPrice)
}
