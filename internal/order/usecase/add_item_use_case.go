package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"kalpa/internal/domain"
	"kalpa/internal/dto"
	apperrors "kalpa/internal/errors"
)

type AddItemUseCase struct {
	orderRepo        OrderRepository
	itemRepo         OrderItemRepository
	catalog          CatalogGateway
	workflow         Workflow
	logger           *zap.Logger
	maxRetryAttempts int
}

func NewAddItemUseCase(
	orderRepo OrderRepository,
	itemRepo OrderItemRepository,
	catalog CatalogGateway,
	workflow Workflow,
	logger *zap.Logger,
	maxRetryAttempts int,
) *AddItemUseCase {
	return &AddItemUseCase{
		orderRepo:        orderRepo,
		itemRepo:         itemRepo,
		catalog:          catalog,
		workflow:         workflow,
		logger:           logger,
		maxRetryAttempts: maxRetryAttempts,
	}
}

// AddItem adds a menu item to an open order, or bumps the quantity when the
// order already carries it. Only floor and management roles may change what a
// table ordered; kitchen and cashier roles may not.
func (uc *AddItemUseCase) AddItem(ctx context.Context, actor domain.Actor, orderID uint, req dto.OrderItemRequest) (*dto.OrderResponse, error) {
	switch actor.Role {
	case domain.RoleWaiter, domain.RoleManager, domain.RoleOwner:
	default:
		return nil, apperrors.NewForbiddenError(
			fmt.Sprintf("role %s may not add items to orders", actor.Role),
		)
	}

	if req.Quantity < 1 || req.Quantity > maxItemQuantity {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "quantity",
			Message: fmt.Sprintf("quantity must be between 1 and %d", maxItemQuantity),
		})
	}

	order, err := loadAggregate(ctx, uc.orderRepo, uc.itemRepo, actor, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status.Terminal() {
		return nil, apperrors.NewInvalidStateError(
			fmt.Sprintf("cannot add items to a %s order", order.Status),
		)
	}

	catalogItem, err := uc.catalog.FindByID(ctx, req.MenuItemID)
	if err != nil {
		return nil, err
	}

	if detail := validateCatalogItem(catalogItem, actor); detail != nil {
		return nil, apperrors.NewValidationError("validation failed", *detail)
	}

	item := newOrderItem(catalogItem, req.Quantity, req.Instructions)

	err = withDeadlockRetry(uc.logger, uc.maxRetryAttempts, func() error {
		return uc.workflow.AddItem(ctx, orderID, item)
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
