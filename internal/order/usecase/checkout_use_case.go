package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"kalpa/internal/domain"
	"kalpa/internal/dto"
	apperrors "kalpa/internal/errors"
	"kalpa/internal/policy"
)

type CheckoutUseCase struct {
	orderRepo        OrderRepository
	itemRepo         OrderItemRepository
	workflow         Workflow
	logger           *zap.Logger
	maxRetryAttempts int
}

func NewCheckoutUseCase(
	orderRepo OrderRepository,
	itemRepo OrderItemRepository,
	workflow Workflow,
	logger *zap.Logger,
	maxRetryAttempts int,
) *CheckoutUseCase {
	return &CheckoutUseCase{
		orderRepo:        orderRepo,
		itemRepo:         itemRepo,
		workflow:         workflow,
		logger:           logger,
		maxRetryAttempts: maxRetryAttempts,
	}
}

// Checkout records the final billed total and completes the order in one
// atomic step. This is the only path that marks an order completed; serving
// the last item never does it implicitly. Repeating a checkout with the same
// amount succeeds idempotently, a different amount is a conflict.
func (uc *CheckoutUseCase) Checkout(ctx context.Context, actor domain.Actor, orderID uint, req dto.CheckoutRequest) (*dto.OrderResponse, error) {
	if req.FinalTotal <= 0 {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "finalTotal",
			Message: "finalTotal must be greater than zero",
		})
	}

	// Role gate on the checkout -> completed edge, independent of the
	// order's current status so a forbidden role gets Forbidden and not a
	// state error.
	if err := policy.DecideOrder(domain.OrderStatusCheckout, domain.OrderStatusCompleted, actor.Role); err != nil {
		uc.logger.Warn("checkout denied",
			zap.Uint("orderId", orderID),
			zap.String("role", string(actor.Role)),
			zap.Error(err))
		return nil, err
	}

	order, err := loadAggregate(ctx, uc.orderRepo, uc.itemRepo, actor, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status != domain.OrderStatusCheckout && order.Status != domain.OrderStatusCompleted {
		return nil, apperrors.NewInvalidStateError(
			fmt.Sprintf("cannot checkout an order in %s status", order.Status),
		)
	}

	err = withDeadlockRetry(uc.logger, uc.maxRetryAttempts, func() error {
		return uc.workflow.Checkout(ctx, orderID, req.FinalTotal)
	})
	if err != nil {
		return nil, err
	}

	updated, err := loadAggregate(ctx, uc.orderRepo, uc.itemRepo, actor, orderID)
	if err != nil {
		return nil, err
	}

	return dto.NewOrderResponse(updated), nil
}
