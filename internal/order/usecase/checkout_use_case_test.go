package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kalpa/internal/domain"
	"kalpa/internal/dto"
	apperrors "kalpa/internal/errors"
)

func newTestCheckoutUseCase(
	orderRepo OrderRepository,
	itemRepo OrderItemRepository,
	workflow Workflow,
) *CheckoutUseCase {
	return NewCheckoutUseCase(orderRepo, itemRepo, workflow, zap.NewNop(), 3)
}

func TestCheckout_NonPositiveTotal(t *testing.T) {
	uc := newTestCheckoutUseCase(nil, nil, nil)

	_, err := uc.Checkout(context.Background(), testActor(domain.RoleStaff), 42, dto.CheckoutRequest{FinalTotal: 0})

	ve, ok := apperrors.IsValidationError(err)
	require.True(t, ok, "expected ValidationError, got %v", err)
	assert.Equal(t, "finalTotal", ve.Details[0].Field)
}

func TestCheckout_CookForbidden(t *testing.T) {
	uc := newTestCheckoutUseCase(nil, nil, nil)

	_, err := uc.Checkout(context.Background(), testActor(domain.RoleCook), 42, dto.CheckoutRequest{FinalTotal: 31.97})

	_, ok := apperrors.IsForbiddenError(err)
	assert.True(t, ok, "expected ForbiddenError, got %v", err)
}

func TestCheckout_StaffForbidden(t *testing.T) {
	uc := newTestCheckoutUseCase(nil, nil, nil)

	_, err := uc.Checkout(context.Background(), testActor(domain.RoleStaff), 42, dto.CheckoutRequest{FinalTotal: 31.97})

	_, ok := apperrors.IsForbiddenError(err)
	assert.True(t, ok, "expected ForbiddenError, got %v", err)
}

func TestCheckout_WrongStatus(t *testing.T) {
	order := testOrder(domain.OrderStatusCooking)

	uc := newTestCheckoutUseCase(orderRepoReturning(order), &mockOrderItemRepository{}, nil)

	_, err := uc.Checkout(context.Background(), testActor(domain.RoleManager), 42, dto.CheckoutRequest{FinalTotal: 31.97})

	_, ok := apperrors.IsInvalidStateError(err)
	assert.True(t, ok, "expected InvalidStateError, got %v", err)
}

func TestCheckout_Success(t *testing.T) {
	order := testOrder(domain.OrderStatusCheckout)

	var gotTotal float64
	workflow := &mockWorkflow{
		CheckoutFunc: func(ctx context.Context, orderID uint, finalTotal float64) error {
			gotTotal = finalTotal
			order.Status = domain.OrderStatusCompleted
			order.FinalTotal = &finalTotal
			return nil
		},
	}

	uc := newTestCheckoutUseCase(orderRepoReturning(order), &mockOrderItemRepository{}, workflow)

	resp, err := uc.Checkout(context.Background(), testActor(domain.RoleManager), 42, dto.CheckoutRequest{FinalTotal: 31.97})

	require.NoError(t, err)
	assert.Equal(t, 31.97, gotTotal)
	assert.Equal(t, "completed", resp.Status)
	require.NotNil(t, resp.FinalTotal)
	assert.Equal(t, 31.97, *resp.FinalTotal)
}

func TestCheckout_RepeatWithSameAmountIsIdempotent(t *testing.T) {
	total := 31.97
	order := testOrder(domain.OrderStatusCompleted)
	order.FinalTotal = &total

	// The workflow resolves the repeat as a no-op success on the locked row.
	workflow := &mockWorkflow{
		CheckoutFunc: func(ctx context.Context, orderID uint, finalTotal float64) error {
			return nil
		},
	}

	uc := newTestCheckoutUseCase(orderRepoReturning(order), &mockOrderItemRepository{}, workflow)

	resp, err := uc.Checkout(context.Background(), testActor(domain.RoleManager), 42, dto.CheckoutRequest{FinalTotal: total})

	require.NoError(t, err)
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, total, *resp.FinalTotal)
}

func TestCheckout_RepeatWithDifferentAmountConflicts(t *testing.T) {
	total := 31.97
	order := testOrder(domain.OrderStatusCompleted)
	order.FinalTotal = &total

	workflow := &mockWorkflow{
		CheckoutFunc: func(ctx context.Context, orderID uint, finalTotal float64) error {
			return apperrors.NewConflictError("order already completed with a different final total")
		},
	}

	uc := newTestCheckoutUseCase(orderRepoReturning(order), &mockOrderItemRepository{}, workflow)

	_, err := uc.Checkout(context.Background(), testActor(domain.RoleManager), 42, dto.CheckoutRequest{FinalTotal: 40.00})

	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok, "expected ConflictError, got %v", err)
}
