package enums

import "fmt"

// OrderStatus tracks the lifecycle of an order from cart to completion.
type OrderStatus string

const (
	// OrderStatusOpen marks the mutable cart state.
	OrderStatusOpen      OrderStatus = "open"
	OrderStatusSubmitted OrderStatus = "submitted"
	OrderStatusDelivery  OrderStatus = "delivery"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
	// OrderStatusClosed marks an abandoned empty cart, e.g. when the buyer
	// switched to a different location.
	OrderStatusClosed OrderStatus = "closed"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusOpen,
	OrderStatusSubmitted,
	OrderStatusDelivery,
	OrderStatusDelivered,
	OrderStatusCompleted,
	OrderStatusCancelled,
	OrderStatusClosed,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// CountsTowardRedemption reports whether promotions applied on an order in
// this status consume one-time-use allowances. Open carts and voided orders
// do not.
func (o OrderStatus) CountsTowardRedemption() bool {
	switch o {
	case OrderStatusOpen, OrderStatusCancelled, OrderStatusClosed:
		return false
	default:
		return true
	}
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
