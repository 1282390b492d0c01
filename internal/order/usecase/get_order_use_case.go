package usecase

import (
	"context"

	"kalpa/internal/domain"
	"kalpa/internal/dto"
)

type GetOrderUseCase struct {
	orderRepo OrderRepository
	itemRepo  OrderItemRepository
}

func NewGetOrderUseCase(orderRepo OrderRepository, itemRepo OrderItemRepository) *GetOrderUseCase {
	return &GetOrderUseCase{
		orderRepo: orderRepo,
		itemRepo:  itemRepo,
	}
}

func (uc *GetOrderUseCase) GetOrder(ctx context.Context, actor domain.Actor, orderID uint) (*dto.OrderResponse, error) {
	order, err := loadAggregate(ctx, uc.orderRepo, uc.itemRepo, actor, orderID)
	if err != nil {
		return nil, err
	}

	return dto.NewOrderResponse(order), nil
}
