package entity

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:       {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusDelivered, OrderStatusCancelled},
}

// adminTargets are the states an administrator may move an order into.
// pending and paid belong to the payment flow.
var adminTargets = map[OrderStatus]bool{
	OrderStatusProcessing: true,
	OrderStatusDelivered:  true,
	OrderStatusCancelled:  true,
}

// IsValid checks if the status is a known value.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusProcessing, OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition exists.
func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

// CanTransitionTo reports whether next directly follows s.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

// IsAdminTarget reports whether an administrator may request this status.
func (s OrderStatus) IsAdminTarget() bool {
	return adminTargets[s]
}

// CountsAsRevenue reports whether orders in this status have been paid for.
func (s OrderStatus) CountsAsRevenue() bool {
	return s == OrderStatusPaid || s == OrderStatusProcessing || s == OrderStatusDelivered
}

// AllOrderStatuses lists every status in lifecycle order.
func AllOrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusPending,
		OrderStatusPaid,
		OrderStatusProcessing,
		OrderStatusDelivered,
		OrderStatusCancelled,
	}
}
