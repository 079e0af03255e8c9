package entity

import (
	"time"

	"github.com/google/uuid"
)

// DefaultTaxBasisPoints is the flat 18% tax applied to the subtotal.
const DefaultTaxBasisPoints int64 = 1800

// ShippingAddress is snapshotted onto the order at checkout.
type ShippingAddress struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
}

// OrderItem is one product line with its price frozen at checkout.
type OrderItem struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	UnitPrice   Money
	Variant     string
	Rating      *int
	RatedAt     *time.Time
}

// LineTotal is unit price times quantity.
func (i *OrderItem) LineTotal() Money {
	return i.UnitPrice.Times(i.Quantity)
}

// Order is a checkout and its payment state.
type Order struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	Items            []OrderItem
	Subtotal         Money
	Tax              Money
	TotalAmount      Money
	Currency         string
	GatewayOrderID   string
	PaymentID        string
	PaymentSignature string
	ShippingAddress  ShippingAddress
	Status           OrderStatus
	PaidAt           *time.Time
	DeliveredAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// OrderTotals is the priced breakdown of a set of items.
type OrderTotals struct {
	Subtotal Money
	Tax      Money
	Total    Money
}

// PriceItems sums the line totals and applies tax. The tax line is derived from the
// rounded total so that subtotal + tax always equals total.
func PriceItems(items []OrderItem, taxBasisPoints int64) OrderTotals {
	var subtotal Money
	for i := range items {
		subtotal += items[i].LineTotal()
	}

	total := subtotal.WithTax(taxBasisPoints)

	return OrderTotals{
		Subtotal: subtotal,
		Tax:      total - subtotal,
		Total:    total,
	}
}

// FindItem returns the item with the given ID, or nil.
func (o *Order) FindItem(itemID uuid.UUID) *OrderItem {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return &o.Items[i]
		}
	}

	return nil
}

// IsOwnedBy reports whether userID placed the order.
func (o *Order) IsOwnedBy(userID uuid.UUID) bool {
	return o.UserID == userID
}

// OrderFilter narrows admin order listings.
type OrderFilter struct {
	Status *OrderStatus
	Limit  int
}

// OrderStatusCount is one row of the status breakdown.
type OrderStatusCount struct {
	Status OrderStatus
	Count  int64
}
