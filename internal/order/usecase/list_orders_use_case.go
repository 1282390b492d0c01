package usecase

import (
	"context"

	"kalpa/internal/domain"
	"kalpa/internal/dto"
	apperrors "kalpa/internal/errors"
)

type ListOrdersUseCase struct {
	orderRepo OrderRepository
	itemRepo  OrderItemRepository
}

func NewListOrdersUseCase(orderRepo OrderRepository, itemRepo OrderItemRepository) *ListOrdersUseCase {
	return &ListOrdersUseCase{
		orderRepo: orderRepo,
		itemRepo:  itemRepo,
	}
}

// ListOrders returns the restaurant's orders, newest first. Floor and kitchen
// roles never see completed orders; closed history is a management concern.
func (uc *ListOrdersUseCase) ListOrders(ctx context.Context, actor domain.Actor, statusFilter string, tableID *uint) ([]dto.OrderResponse, error) {
	filter := domain.OrderFilter{TableID: tableID}

	if statusFilter != "" {
		status := domain.OrderStatus(statusFilter)
		if !status.Valid() {
			return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
				Field:   "status",
				Message: "unknown order status",
			})
		}
		filter.Status = &status
	}

	switch actor.Role {
	case domain.RoleWaiter, domain.RoleCook, domain.RoleStaff:
		filter.ExcludeCompleted = true
	}

	orders, err := uc.orderRepo.ListByRestaurant(ctx, actor.RestaurantID, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		items, err := uc.itemRepo.FindByOrder(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
		responses = append(responses, *dto.NewOrderResponse(&orders[i]))
	}

	return responses, nil
}
