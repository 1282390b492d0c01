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

type TransitionItemUseCase struct {
	orderRepo        OrderRepository
	itemRepo         OrderItemRepository
	workflow         Workflow
	logger           *zap.Logger
	maxRetryAttempts int
}

func NewTransitionItemUseCase(
	orderRepo OrderRepository,
	itemRepo OrderItemRepository,
	workflow Workflow,
	logger *zap.Logger,
	maxRetryAttempts int,
) *TransitionItemUseCase {
	return &TransitionItemUseCase{
		orderRepo:        orderRepo,
		itemRepo:         itemRepo,
		workflow:         workflow,
		logger:           logger,
		maxRetryAttempts: maxRetryAttempts,
	}
}

// TransitionItem moves one line item through the kitchen pipeline,
// independently of the order-level status. Items of a completed or cancelled
// order are frozen.
func (uc *TransitionItemUseCase) TransitionItem(ctx context.Context, actor domain.Actor, orderID, itemID uint, requestedStatus string) (*dto.OrderResponse, error) {
	requested := domain.ItemStatus(requestedStatus)
	if !requested.Valid() {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "status",
			Message: fmt.Sprintf("%q is not a valid item status", requestedStatus),
		})
	}

	order, err := loadAggregate(ctx, uc.orderRepo, uc.itemRepo, actor, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status.Terminal() {
		return nil, apperrors.NewInvalidStateError(
			fmt.Sprintf("cannot update items of a %s order", order.Status),
		)
	}

	var item *domain.OrderItem
	for i := range order.Items {
		if order.Items[i].ID == itemID {
			item = &order.Items[i]
			break
		}
	}
	if item == nil {
		return nil, apperrors.NewNotFoundError(
			fmt.Sprintf("item %d not found in order %d", itemID, orderID),
		)
	}

	if err := policy.DecideItem(item.Status, requested, actor.Role); err != nil {
		if _, ok := apperrors.IsNoOpError(err); ok {
			return dto.NewOrderResponse(order), err
		}
		uc.logger.Warn("item transition denied",
			zap.Uint("orderId", orderID),
			zap.Uint("itemId", itemID),
			zap.String("from", string(item.Status)),
			zap.String("to", string(requested)),
			zap.String("role", string(actor.Role)),
			zap.Error(err))
		return nil, err
	}

	err = withDeadlockRetry(uc.logger, uc.maxRetryAttempts, func() error {
		return uc.workflow.TransitionItem(ctx, orderID, itemID, item.Status, requested)
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
