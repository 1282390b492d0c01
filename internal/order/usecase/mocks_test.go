package usecase

import (
	"context"
	"time"

	"github.com/go-sql-driver/mysql"

	"kalpa/internal/domain"
)

// Helper to create a MySQL deadlock error for testing
func createDeadlockError() error {
	return &mysql.MySQLError{Number: 1213}
}

// Mock implementations

type mockOrderRepository struct {
	FindByIDFunc         func(ctx context.Context, id uint) (*domain.Order, error)
	ListByRestaurantFunc func(ctx context.Context, restaurantID int, filter domain.OrderFilter) ([]domain.Order, error)
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id uint) (*domain.Order, error) {
	return m.FindByIDFunc(ctx, id)
}

func (m *mockOrderRepository) ListByRestaurant(ctx context.Context, restaurantID int, filter domain.OrderFilter) ([]domain.Order, error) {
	return m.ListByRestaurantFunc(ctx, restaurantID, filter)
}

type mockOrderItemRepository struct {
	FindByOrderFunc func(ctx context.Context, orderID uint) ([]domain.OrderItem, error)
}

func (m *mockOrderItemRepository) FindByOrder(ctx context.Context, orderID uint) ([]domain.OrderItem, error) {
	if m.FindByOrderFunc == nil {
		return nil, nil
	}
	return m.FindByOrderFunc(ctx, orderID)
}

type mockCatalogGateway struct {
	FindByIDFunc  func(ctx context.Context, id int) (*domain.CatalogItem, error)
	FindByIDsFunc func(ctx context.Context, ids []int) ([]domain.CatalogItem, error)
}

func (m *mockCatalogGateway) FindByID(ctx context.Context, id int) (*domain.CatalogItem, error) {
	return m.FindByIDFunc(ctx, id)
}

func (m *mockCatalogGateway) FindByIDs(ctx context.Context, ids []int) ([]domain.CatalogItem, error) {
	return m.FindByIDsFunc(ctx, ids)
}

type mockTableRepository struct {
	FindByIDFunc func(ctx context.Context, id uint) (*domain.Table, error)
}

func (m *mockTableRepository) FindByID(ctx context.Context, id uint) (*domain.Table, error) {
	return m.FindByIDFunc(ctx, id)
}

type mockWorkflow struct {
	CreateOrderFunc     func(ctx context.Context, order *domain.Order, items []domain.OrderItem) (uint, error)
	AddItemFunc         func(ctx context.Context, orderID uint, item domain.OrderItem) error
	TransitionOrderFunc func(ctx context.Context, orderID uint, from, to domain.OrderStatus) error
	TransitionItemFunc  func(ctx context.Context, orderID, itemID uint, from, to domain.ItemStatus) error
	CheckoutFunc        func(ctx context.Context, orderID uint, finalTotal float64) error
}

func (m *mockWorkflow) CreateOrder(ctx context.Context, order *domain.Order, items []domain.OrderItem) (uint, error) {
	return m.CreateOrderFunc(ctx, order, items)
}

func (m *mockWorkflow) AddItem(ctx context.Context, orderID uint, item domain.OrderItem) error {
	return m.AddItemFunc(ctx, orderID, item)
}

func (m *mockWorkflow) TransitionOrder(ctx context.Context, orderID uint, from, to domain.OrderStatus) error {
	return m.TransitionOrderFunc(ctx, orderID, from, to)
}

func (m *mockWorkflow) TransitionItem(ctx context.Context, orderID, itemID uint, from, to domain.ItemStatus) error {
	return m.TransitionItemFunc(ctx, orderID, itemID, from, to)
}

func (m *mockWorkflow) Checkout(ctx context.Context, orderID uint, finalTotal float64) error {
	return m.CheckoutFunc(ctx, orderID, finalTotal)
}

// Fixtures

func testActor(role domain.Role) domain.Actor {
	return domain.Actor{RestaurantID: 1, Role: role}
}

func testOrder(status domain.OrderStatus) *domain.Order {
	now := time.Now()
	return &domain.Order{
		ID:           42,
		OrderNumber:  "ORD-20260901-A3F9B2C1",
		RestaurantID: 1,
		Status:       status,
		CreatedAt:    now,
		ConfirmedAt:  &now,
		UpdatedAt:    now,
	}
}

func testCatalogItem(id int) *domain.CatalogItem {
	return &domain.CatalogItem{
		ID:           id,
		RestaurantID: 1,
		Name:         "Margherita Pizza",
		Description:  "Tomato, mozzarella, basil",
		CategoryName: "Mains",
		Price:        12.99,
		IsAvailable:  true,
	}
}

// orderRepoReturning serves the same order on every load.
func orderRepoReturning(order *domain.Order) *mockOrderRepository {
	return &mockOrderRepository{
		FindByIDFunc: func(ctx context.Context, id uint) (*domain.Order, error) {
			copied := *order
			return &copied, nil
		},
	}
}
