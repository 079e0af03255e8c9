package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ShippingAddressJSON is the order's address snapshot as stored in jsonb.
type ShippingAddressJSON struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
}

// OrderModel mirrors the 'orders' table.
type OrderModel struct {
	ID               uuid.UUID                               `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID           uuid.UUID                               `gorm:"type:uuid;not null;index"`
	Subtotal         int64                                   `gorm:"not null"`
	Tax              int64                                   `gorm:"not null"`
	TotalAmount      int64                                   `gorm:"not null"`
	Currency         string                                  `gorm:"type:char(3);not null"`
	GatewayOrderID   string                                  `gorm:"type:varchar(64);uniqueIndex;not null"`
	PaymentID        *string                                 `gorm:"type:varchar(64)"`
	PaymentSignature *string                                 `gorm:"type:varchar(128)"`
	ShippingAddress  datatypes.JSONType[ShippingAddressJSON] `gorm:"type:jsonb;not null"`
	Status           string                                  `gorm:"type:varchar(20);not null;index"`
	PaidAt           *time.Time
	DeliveredAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Items []OrderItemModel `gorm:"foreignKey:OrderID"`
}

// TableName explicitly sets the table name for GORM.
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel mirrors the 'order_items' table.
type OrderItemModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrderID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Position    int       `gorm:"type:smallint;not null"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductName string    `gorm:"type:varchar(120);not null"`
	Quantity    int       `gorm:"not null"`
	UnitPrice   int64     `gorm:"not null"`
	Variant     string    `gorm:"type:varchar(32)"`
	Rating      *int
	RatedAt     *time.Time
}

// TableName explicitly sets the table name for GORM.
func (OrderItemModel) TableName() string {
	return "order_items"
}
