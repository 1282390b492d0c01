package dto

import (
	"time"

	"kalpa/internal/domain"
)

type CreateTableRequest struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

type TableResponse struct {
	ID           uint      `json:"id"`
	RestaurantID int       `json:"restaurantId"`
	Name         string    `json:"name"`
	Capacity     int       `json:"capacity"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}

func NewTableResponse(table *domain.Table) *TableResponse {
	return &TableResponse{
		ID:           table.ID,
		RestaurantID: table.RestaurantID,
		Name:         table.Name,
		Capacity:     table.Capacity,
		IsActive:     table.IsActive,
		CreatedAt:    table.CreatedAt,
	}
}
