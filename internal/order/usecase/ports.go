package usecase

import (
	"context"

	"kalpa/internal/domain"
)

type OrderRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.Order, error)
	ListByRestaurant(ctx context.Context, restaurantID int, filter domain.OrderFilter) ([]domain.Order, error)
}

type OrderItemRepository interface {
	FindByOrder(ctx context.Context, orderID uint) ([]domain.OrderItem, error)
}

// CatalogGateway is the read-only menu lookup this subsystem consumes. The
// catalog itself is owned by menu management.
type CatalogGateway interface {
	FindByID(ctx context.Context, id int) (*domain.CatalogItem, error)
	FindByIDs(ctx context.Context, ids []int) ([]domain.CatalogItem, error)
}

type TableRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.Table, error)
}

type Workflow interface {
	CreateOrder(ctx context.Context, order *domain.Order, items []domain.OrderItem) (uint, error)
	AddItem(ctx context.Context, orderID uint, item domain.OrderItem) error
	TransitionOrder(ctx context.Context, orderID uint, from, to domain.OrderStatus) error
	TransitionItem(ctx context.Context, orderID, itemID uint, from, to domain.ItemStatus) error
	Checkout(ctx context.Context, orderID uint, finalTotal float64) error
}
