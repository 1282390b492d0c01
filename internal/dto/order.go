package dto

import (
	"time"

	"kalpa/internal/domain"
)

type OrderItemRequest struct {
	MenuItemID   int    `json:"menuItemId"`
	Quantity     int    `json:"quantity"`
	Instructions string `json:"instructions,omitempty"`
}

type CreateOrderRequest struct {
	TableID       *uint              `json:"tableId,omitempty"`
	CustomerName  string             `json:"customerName,omitempty"`
	CustomerPhone string             `json:"customerPhone,omitempty"`
	Instructions  string             `json:"instructions,omitempty"`
	Items         []OrderItemRequest `json:"items"`
}

type StatusUpdateRequest struct {
	Status string `json:"status"`
}

type CheckoutRequest struct {
	FinalTotal float64 `json:"finalTotal"`
}

type OrderItemResponse struct {
	ID           uint    `json:"id"`
	MenuItemID   int     `json:"menuItemId"`
	Name         string  `json:"name"`
	Description  string  `json:"description,omitempty"`
	Category     string  `json:"category,omitempty"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unitPrice"`
	Subtotal     float64 `json:"subtotal"`
	Status       string  `json:"status"`
	Instructions string  `json:"instructions,omitempty"`
}

type OrderResponse struct {
	ID            uint                `json:"id"`
	OrderNumber   string              `json:"orderNumber"`
	RestaurantID  int                 `json:"restaurantId"`
	TableID       *uint               `json:"tableId,omitempty"`
	CustomerName  string              `json:"customerName,omitempty"`
	CustomerPhone string              `json:"customerPhone,omitempty"`
	Status        string              `json:"status"`
	Instructions  string              `json:"instructions,omitempty"`
	Items         []OrderItemResponse `json:"items"`
	Total         float64             `json:"total"`
	FinalTotal    *float64            `json:"finalTotal,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
	ConfirmedAt   *time.Time          `json:"confirmedAt,omitempty"`
	PreparedAt    *time.Time          `json:"preparedAt,omitempty"`
	ReadyAt       *time.Time          `json:"readyAt,omitempty"`
	ServedAt      *time.Time          `json:"servedAt,omitempty"`
	CompletedAt   *time.Time          `json:"completedAt,omitempty"`
	CancelledAt   *time.Time          `json:"cancelledAt,omitempty"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

func NewOrderResponse(order *domain.Order) *OrderResponse {
	items := make([]OrderItemResponse, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemResponse{
			ID:           item.ID,
			MenuItemID:   item.MenuItemID,
			Name:         item.NameSnapshot,
			Description:  item.DescriptionSnapshot,
			Category:     item.CategorySnapshot,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			Subtotal:     item.Subtotal(),
			Status:       string(item.Status),
			Instructions: item.Instructions,
		}
	}

	return &OrderResponse{
		ID:            order.ID,
		OrderNumber:   order.OrderNumber,
		RestaurantID:  order.RestaurantID,
		TableID:       order.TableID,
		CustomerName:  order.CustomerName,
		CustomerPhone: order.CustomerPhone,
		Status:        string(order.Status),
		Instructions:  order.Instructions,
		Items:         items,
		Total:         order.Total(),
		FinalTotal:    order.FinalTotal,
		CreatedAt:     order.CreatedAt,
		ConfirmedAt:   order.ConfirmedAt,
		PreparedAt:    order.PreparedAt,
		ReadyAt:       order.ReadyAt,
		ServedAt:      order.ServedAt,
		CompletedAt:   order.CompletedAt,
		CancelledAt:   order.CancelledAt,
		UpdatedAt:     order.UpdatedAt,
	}
}
