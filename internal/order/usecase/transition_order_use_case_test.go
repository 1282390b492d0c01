package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kalpa/internal/domain"
	apperrors "kalpa/internal/errors"
)

func newTestTransitionOrderUseCase(
	orderRepo OrderRepository,
	itemRepo OrderItemRepository,
	workflow Workflow,
) *TransitionOrderUseCase {
	return NewTransitionOrderUseCase(orderRepo, itemRepo, workflow, zap.NewNop(), 3)
}

func TestTransitionOrder_InvalidStatus(t *testing.T) {
	uc := newTestTransitionOrderUseCase(nil, nil, nil)

	_, err := uc.TransitionOrder(context.Background(), testActor(domain.RoleManager), 42, "frying")

	ve, ok := apperrors.IsValidationError(err)
	require.True(t, ok, "expected ValidationError, got %v", err)
	assert.Equal(t, "status", ve.Details[0].Field)
}

func TestTransitionOrder_OrderNotFound(t *testing.T) {
	orderRepo := &mockOrderRepository{
		FindByIDFunc: func(ctx context.Context, id uint) (*domain.Order, error) {
			return nil, apperrors.NewNotFoundError("order with id 42 not found")
		},
	}

	uc := newTestTransitionOrderUseCase(orderRepo, &mockOrderItemRepository{}, nil)

	_, err := uc.TransitionOrder(context.Background(), testActor(domain.RoleManager), 42, "cooking")

	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok, "expected NotFoundError, got %v", err)
}

func TestTransitionOrder_ForeignRestaurantReadsAsNotFound(t *testing.T) {
	order := testOrder(domain.OrderStatusConfirmed)
	order.RestaurantID = 2

	uc := newTestTransitionOrderUseCase(orderRepoReturning(order), &mockOrderItemRepository{}, nil)

	_, err := uc.TransitionOrder(context.Background(), testActor(domain.RoleManager), 42, "cooking")

	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok, "expected NotFoundError, got %v", err)
}

func TestTransitionOrder_CookStartsCooking(t *testing.T) {
	order := testOrder(domain.OrderStatusConfirmed)

	var gotFrom, gotTo domain.OrderStatus
	workflow := &mockWorkflow{
		TransitionOrderFunc: func(ctx context.Context, orderID uint, from, to domain.OrderStatus) error {
			gotFrom, gotTo = from, to
			order.Status = to
			return nil
		},
	}

	uc := newTestTransitionOrderUseCase(orderRepoReturning(order), &mockOrderItemRepository{}, workflow)

	resp, err := uc.TransitionOrder(context.Background(), testActor(domain.RoleCook), 42, "cooking")

	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusConfirmed, gotFrom)
	assert.Equal(t, domain.OrderStatusCooking, gotTo)
	assert.Equal(t, "cooking", resp.Status)
}

func TestTransitionOrder_CookCannotMoveToCheckout(t *testing.T) {
	order := testOrder(domain.OrderStatusCooking)

	workflowCalled := false
	workflow := &mockWorkflow{
		TransitionOrderFunc: func(ctx context.Context, orderID uint, from, to domain.OrderStatus) error {
			workflowCalled = true
			return nil
		},
	}

	uc := newTestTransitionOrderUseCase(orderRepoReturning(order), &mockOrderItemRepository{}, workflow)

	_, err := uc.TransitionOrder(context.Background(), testActor(domain.RoleCook), 42, "checkout")

	_, ok := apperrors.IsForbiddenError(err)
	assert.True(t, ok, "expected ForbiddenError, got %v", err)
	assert.False(t, workflowCalled)
}

func TestTransitionOrder_CookJumpingToCheckoutReadsForbidden(t *testing.T) {
	order := testOrder(domain.OrderStatusConfirmed)

	workflowCalled := false
	workflow := &mockWorkflow{
		TransitionOrderFunc: func(ctx context.Context, orderID uint, from, to domain.OrderStatus) error {
			workflowCalled = true
			return nil
		},
	}

	uc := newTestTransitionOrderUseCase(orderRepoReturning(order), &mockOrderItemRepository{}, workflow)

	// The request both skips a state and sits outside the cook's row; the
	// role denial must win.
	_, err := uc.TransitionOrder(context.Background(), testActor(domain.RoleCook), 42, "checkout")

	_, ok := apperrors.IsForbiddenError(err)
	assert.True(t, ok, "expected ForbiddenError, got %v", err)
	assert.False(t, workflowCalled)
}

func TestTransitionOrder_SkippingStates(t *testing.T) {
	order := testOrder(domain.OrderStatusConfirmed)

	uc := newTestTransitionOrderUseCase(orderRepoReturning(order), &mockOrderItemRepository{}, nil)

	_, err := uc.TransitionOrder(context.Background(), testActor(domain.RoleManager), 42, "completed")

	_, ok := apperrors.IsInvalidTransitionError(err)
	assert.True(t, ok, "expected InvalidTransitionError, got %v", err)
}

func TestTransitionOrder_NoOpReturnsUnchangedOrder(t *testing.T) {
	order := testOrder(domain.OrderStatusCooking)

	uc := newTestTransitionOrderUseCase(orderRepoReturning(order), &mockOrderItemRepository{}, nil)

	resp, err := uc.TransitionOrder(context.Background(), testActor(domain.RoleWaiter), 42, "cooking")

	_, ok := apperrors.IsNoOpError(err)
	require.True(t, ok, "expected NoOpError, got %v", err)
	require.NotNil(t, resp)
	assert.Equal(t, "cooking", resp.Status)
}

func TestTransitionOrder_DeadlockRetriedThenSucceeds(t *testing.T) {
	order := testOrder(domain.OrderStatusConfirmed)

	attempts := 0
	workflow := &mockWorkflow{
		TransitionOrderFunc: func(ctx context.Context, orderID uint, from, to domain.OrderStatus) error {
			attempts++
			if attempts < 3 {
				return createDeadlockError()
			}
			order.Status = to
			return nil
		},
	}

	uc := newTestTransitionOrderUseCase(orderRepoReturning(order), &mockOrderItemRepository{}, workflow)

	resp, err := uc.TransitionOrder(context.Background(), testActor(domain.RoleManager), 42, "cooking")

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, "cooking", resp.Status)
}

func TestTransitionOrder_DeadlockRetriesExhausted(t *testing.T) {
	order := testOrder(domain.OrderStatusConfirmed)

	attempts := 0
	workflow := &mockWorkflow{
		TransitionOrderFunc: func(ctx context.Context, orderID uint, from, to domain.OrderStatus) error {
			attempts++
			return createDeadlockError()
		},
	}

	uc := newTestTransitionOrderUseCase(orderRepoReturning(order), &mockOrderItemRepository{}, workflow)

	_, err := uc.TransitionOrder(context.Background(), testActor(domain.RoleManager), 42, "cooking")

	_, ok := apperrors.IsBusyError(err)
	assert.True(t, ok, "expected BusyError, got %v", err)
	assert.Equal(t, 3, attempts)
}

func TestTransitionOrder_ConflictPassesThrough(t *testing.T) {
	order := testOrder(domain.OrderStatusConfirmed)

	attempts := 0
	workflow := &mockWorkflow{
		TransitionOrderFunc: func(ctx context.Context, orderID uint, from, to domain.OrderStatus) error {
			attempts++
			return apperrors.NewConflictError("order status changed from confirmed to cooking, reload and retry")
		},
	}

	uc := newTestTransitionOrderUseCase(orderRepoReturning(order), &mockOrderItemRepository{}, workflow)

	_, err := uc.TransitionOrder(context.Background(), testActor(domain.RoleManager), 42, "cooking")

	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok, "expected ConflictError, got %v", err)
	assert.Equal(t, 1, attempts, "conflicts must not be retried blindly")
}

func TestTransitionOrder_WaiterCannotCancel(t *testing.T) {
	order := testOrder(domain.OrderStatusConfirmed)

	uc := newTestTransitionOrderUseCase(orderRepoReturning(order), &mockOrderItemRepository{}, nil)

	_, err := uc.TransitionOrder(context.Background(), testActor(domain.RoleWaiter), 42, "cancelled")

	_, ok := apperrors.IsForbiddenError(err)
	assert.True(t, ok, "expected ForbiddenError, got %v", err)
}

func TestTransitionOrder_ManagerCancels(t *testing.T) {
	order := testOrder(domain.OrderStatusCooking)

	workflow := &mockWorkflow{
		TransitionOrderFunc: func(ctx context.Context, orderID uint, from, to domain.OrderStatus) error {
			order.Status = to
			return nil
		},
	}

	uc := newTestTransitionOrderUseCase(orderRepoReturning(order), &mockOrderItemRepository{}, workflow)

	resp, err := uc.TransitionOrder(context.Background(), testActor(domain.RoleManager), 42, "cancelled")

	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Status)
}
