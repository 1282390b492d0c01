package usecase

import (
	"context"

	"kalpa/internal/domain"
	apperrors "kalpa/internal/errors"
)

// loadAggregate reads the order and its items, scoped to the actor's
// restaurant. Orders of other tenants read as not found rather than
// forbidden, so ids do not leak across restaurants.
func loadAggregate(ctx context.Context, orders OrderRepository, items OrderItemRepository, actor domain.Actor, orderID uint) (*domain.Order, error) {
	order, err := orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.RestaurantID != actor.RestaurantID {
		return nil, apperrors.NewNotFoundError("order not found")
	}

	orderItems, err := items.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order.Items = orderItems

	return order, nil
}
