package domain

import "time"

type OrderStatus string

const (
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCooking   OrderStatus = "cooking"
	OrderStatusCheckout  OrderStatus = "checkout"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusConfirmed, OrderStatusCooking, OrderStatusCheckout,
		OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal statuses have no outgoing edges; orders in them reject all
// mutation.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

type Order struct {
	ID            uint
	OrderNumber   string
	RestaurantID  int
	TableID       *uint
	CustomerName  string
	CustomerPhone string
	Status        OrderStatus
	Instructions  string
	FinalTotal    *float64
	Items         []OrderItem

	CreatedAt   time.Time
	ConfirmedAt *time.Time
	PreparedAt  *time.Time
	ReadyAt     *time.Time
	ServedAt    *time.Time
	CompletedAt *time.Time
	CancelledAt *time.Time
	UpdatedAt   time.Time
}

// OrderFilter narrows order listings. ExcludeCompleted hides closed orders
// from floor staff.
type OrderFilter struct {
	Status           *OrderStatus
	TableID          *uint
	ExcludeCompleted bool
}

// Total is always recomputed from the items, never read from a stored column.
func (o *Order) Total() float64 {
	total := 0.0
	for _, item := range o.Items {
		total += item.Subtotal()
	}
	return total
}
