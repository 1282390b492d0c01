package domain

import "time"

type ItemStatus string

const (
	ItemStatusPending   ItemStatus = "pending"
	ItemStatusPreparing ItemStatus = "preparing"
	ItemStatusReady     ItemStatus = "ready"
	ItemStatusServed    ItemStatus = "served"
)

func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusPending, ItemStatusPreparing, ItemStatusReady, ItemStatusServed:
		return true
	}
	return false
}

// OrderItem is one line of an order. The name/description/category/price
// fields are snapshots taken from the catalog at insertion time and are never
// re-read, so later menu edits do not change past orders.
type OrderItem struct {
	ID                  uint
	OrderID             uint
	MenuItemID          int
	NameSnapshot        string
	DescriptionSnapshot string
	CategorySnapshot    string
	Quantity            int
	UnitPrice           float64
	Status              ItemStatus
	Instructions        string
	CreatedAt           time.Time
}

func (i *OrderItem) Subtotal() float64 {
	return float64(i.Quantity) * i.UnitPrice
}
