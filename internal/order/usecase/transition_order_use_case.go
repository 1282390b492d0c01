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

type TransitionOrderUseCase struct {
	orderRepo        OrderRepository
	itemRepo         OrderItemRepository
	workflow         Workflow
	logger           *zap.Logger
	maxRetryAttempts int
}

func NewTransitionOrderUseCase(
	orderRepo OrderRepository,
	itemRepo OrderItemRepository,
	workflow Workflow,
	logger *zap.Logger,
	maxRetryAttempts int,
) *TransitionOrderUseCase {
	return &TransitionOrderUseCase{
		orderRepo:        orderRepo,
		itemRepo:         itemRepo,
		workflow:         workflow,
		logger:           logger,
		maxRetryAttempts: maxRetryAttempts,
	}
}

// TransitionOrder moves an order along the lifecycle graph. The policy
// decision is made against the loaded status; the workflow re-checks that
// status under the order lock and returns ConflictError if another actor got
// there first.
//
// A no-op request (requested == current) returns the unchanged order together
// with a NoOpError, so the caller can render an idempotent retry as success
// without mistaking it for an authorization failure.
func (uc *TransitionOrderUseCase) TransitionOrder(ctx context.Context, actor domain.Actor, orderID uint, requestedStatus string) (*dto.OrderResponse, error) {
	requested := domain.OrderStatus(requestedStatus)
	if !requested.Valid() {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "status",
			Message: fmt.Sprintf("%q is not a valid order status", requestedStatus),
		})
	}

	order, err := loadAggregate(ctx, uc.orderRepo, uc.itemRepo, actor, orderID)
	if err != nil {
		return nil, err
	}

	if err := policy.DecideOrder(order.Status, requested, actor.Role); err != nil {
		if _, ok := apperrors.IsNoOpError(err); ok {
			return dto.NewOrderResponse(order), err
		}
		uc.logger.Warn("order transition denied",
			zap.Uint("orderId", orderID),
			zap.String("from", string(order.Status)),
			zap.String("to", string(requested)),
			zap.String("role", string(actor.Role)),
			zap.Error(err))
		return nil, err
	}

	err = withDeadlockRetry(uc.logger, uc.maxRetryAttempts, func() error {
		return uc.workflow.TransitionOrder(ctx, orderID, order.Status, requested)
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
