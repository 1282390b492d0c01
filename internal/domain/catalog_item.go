package domain

// CatalogItem is the read-only view of a menu item this subsystem consumes.
// Menu management owns the underlying rows.
type CatalogItem struct {
	ID           int
	RestaurantID int
	Name         string
	Description  string
	CategoryName string
	Price        float64
	IsAvailable  bool
	IsDisabled   bool
}
