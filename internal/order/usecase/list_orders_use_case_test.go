package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kalpa/internal/domain"
	apperrors "kalpa/internal/errors"
)

func TestListOrders_InvalidStatusFilter(t *testing.T) {
	uc := NewListOrdersUseCase(nil, nil)

	_, err := uc.ListOrders(context.Background(), testActor(domain.RoleManager), "frying", nil)

	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok, "expected ValidationError, got %v", err)
}

func TestListOrders_StatusFilterApplied(t *testing.T) {
	var gotFilter domain.OrderFilter
	orderRepo := &mockOrderRepository{
		ListByRestaurantFunc: func(ctx context.Context, restaurantID int, filter domain.OrderFilter) ([]domain.Order, error) {
			gotFilter = filter
			return nil, nil
		},
	}

	uc := NewListOrdersUseCase(orderRepo, &mockOrderItemRepository{})

	resp, err := uc.ListOrders(context.Background(), testActor(domain.RoleManager), "cooking", nil)

	require.NoError(t, err)
	assert.Empty(t, resp)
	require.NotNil(t, gotFilter.Status)
	assert.Equal(t, domain.OrderStatusCooking, *gotFilter.Status)
	assert.False(t, gotFilter.ExcludeCompleted)
}

func TestListOrders_FloorRolesNeverSeeCompleted(t *testing.T) {
	for _, role := range []domain.Role{domain.RoleWaiter, domain.RoleCook, domain.RoleStaff} {
		var gotFilter domain.OrderFilter
		orderRepo := &mockOrderRepository{
			ListByRestaurantFunc: func(ctx context.Context, restaurantID int, filter domain.OrderFilter) ([]domain.Order, error) {
				gotFilter = filter
				return nil, nil
			},
		}

		uc := NewListOrdersUseCase(orderRepo, &mockOrderItemRepository{})

		_, err := uc.ListOrders(context.Background(), testActor(role), "", nil)

		require.NoError(t, err)
		assert.True(t, gotFilter.ExcludeCompleted, "role %s should not see completed orders", role)
	}
}

func TestListOrders_ManagerSeesCompleted(t *testing.T) {
	var gotFilter domain.OrderFilter
	orderRepo := &mockOrderRepository{
		ListByRestaurantFunc: func(ctx context.Context, restaurantID int, filter domain.OrderFilter) ([]domain.Order, error) {
			gotFilter = filter
			return nil, nil
		},
	}

	uc := NewListOrdersUseCase(orderRepo, &mockOrderItemRepository{})

	_, err := uc.ListOrders(context.Background(), testActor(domain.RoleManager), "", nil)

	require.NoError(t, err)
	assert.False(t, gotFilter.ExcludeCompleted)
}

func TestListOrders_TableFilterApplied(t *testing.T) {
	var gotFilter domain.OrderFilter
	orderRepo := &mockOrderRepository{
		ListByRestaurantFunc: func(ctx context.Context, restaurantID int, filter domain.OrderFilter) ([]domain.Order, error) {
			gotFilter = filter
			return nil, nil
		},
	}

	uc := NewListOrdersUseCase(orderRepo, &mockOrderItemRepository{})

	tableID := uint(3)
	_, err := uc.ListOrders(context.Background(), testActor(domain.RoleManager), "", &tableID)

	require.NoError(t, err)
	require.NotNil(t, gotFilter.TableID)
	assert.Equal(t, uint(3), *gotFilter.TableID)
}

func TestListOrders_ItemsAttached(t *testing.T) {
	orderRepo := &mockOrderRepository{
		ListByRestaurantFunc: func(ctx context.Context, restaurantID int, filter domain.OrderFilter) ([]domain.Order, error) {
			return []domain.Order{*testOrder(domain.OrderStatusCooking)}, nil
		},
	}
	itemRepo := itemRepoWith(domain.OrderItem{ID: 1, OrderID: 42, Quantity: 1, UnitPrice: 5.99, Status: domain.ItemStatusPending})

	uc := NewListOrdersUseCase(orderRepo, itemRepo)

	resp, err := uc.ListOrders(context.Background(), testActor(domain.RoleManager), "", nil)

	require.NoError(t, err)
	require.Len(t, resp, 1)
	require.Len(t, resp[0].Items, 1)
	assert.InDelta(t, 5.99, resp[0].Total, 0.001)
}
