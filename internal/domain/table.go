package domain

import "time"

type Table struct {
	ID           uint
	RestaurantID int
	Name         string
	Capacity     int
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
