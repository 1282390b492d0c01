// Package repository gives the order workflow its read-only view of the menu
// catalog. Menu management (categories, pricing, availability toggles) is
// owned elsewhere; nothing here writes.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"kalpa/internal/domain"
	apperrors "kalpa/internal/errors"
)

const menuItemColumns = `id, restaurantId, name, description, categoryName, price, isAvailable, isDisabled`

type MySQLMenuItemRepository struct {
	db *sql.DB
}

func NewMySQLMenuItemRepository(db *sql.DB) *MySQLMenuItemRepository {
	return &MySQLMenuItemRepository{db: db}
}

func (r *MySQLMenuItemRepository) FindByID(ctx context.Context, id int) (*domain.CatalogItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM MenuItems WHERE id = ?`, menuItemColumns)

	var item domain.CatalogItem
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&item.ID, &item.RestaurantID, &item.Name, &item.Description,
		&item.CategoryName, &item.Price, &item.IsAvailable, &item.IsDisabled,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("menu item with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying menu item by id: %w", err)
	}

	return &item, nil
}

func (r *MySQLMenuItemRepository) FindByIDs(ctx context.Context, ids []int) ([]domain.CatalogItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	query := fmt.Sprintf(`SELECT %s FROM MenuItems WHERE id IN (%s)`, menuItemColumns, placeholders)

	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying menu items: %w", err)
	}
	defer rows.Close()

	var items []domain.CatalogItem
	for rows.Next() {
		var item domain.CatalogItem
		err := rows.Scan(
			&item.ID, &item.RestaurantID, &item.Name, &item.Description,
			&item.CategoryName, &item.Price, &item.IsAvailable, &item.IsDisabled,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning menu item row: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}
