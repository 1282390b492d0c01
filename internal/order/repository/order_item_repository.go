package repository

import (
	"context"
	"database/sql"
	"fmt"

	"kalpa/internal/domain"
	apperrors "kalpa/internal/errors"
)

const itemColumns = `id, orderId, menuItemId, nameSnapshot, descriptionSnapshot,
		       categorySnapshot, quantity, unitPrice, status, instructions, createdAt`

type MySQLOrderItemRepository struct {
	db *sql.DB
}

func NewMySQLOrderItemRepository(db *sql.DB) *MySQLOrderItemRepository {
	return &MySQLOrderItemRepository{db: db}
}

func (r *MySQLOrderItemRepository) BulkInsert(ctx context.Context, tx *sql.Tx, items []domain.OrderItem) error {
	query := `
		INSERT INTO OrderItems (orderId, menuItemId, nameSnapshot, descriptionSnapshot,
		                        categorySnapshot, quantity, unitPrice, status, instructions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	for _, item := range items {
		_, err := tx.ExecContext(ctx, query,
			item.OrderID, item.MenuItemID, item.NameSnapshot, item.DescriptionSnapshot,
			item.CategorySnapshot, item.Quantity, item.UnitPrice, string(item.Status),
			item.Instructions,
		)
		if err != nil {
			return fmt.Errorf("inserting order item: %w", err)
		}
	}

	return nil
}

// UpsertIncrement adds an item to an order, or bumps its quantity when the
// order already carries that menu item. The unique key on (orderId,
// menuItemId) makes this a single atomic statement, so two concurrent adds of
// the same item can never both insert. Snapshot fields and unit price keep
// their first-write values on the increment path.
func (r *MySQLOrderItemRepository) UpsertIncrement(ctx context.Context, tx *sql.Tx, item domain.OrderItem) error {
	query := `
		INSERT INTO OrderItems (orderId, menuItemId, nameSnapshot, descriptionSnapshot,
		                        categorySnapshot, quantity, unitPrice, status, instructions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE quantity = quantity + VALUES(quantity)
	`

	_, err := tx.ExecContext(ctx, query,
		item.OrderID, item.MenuItemID, item.NameSnapshot, item.DescriptionSnapshot,
		item.CategorySnapshot, item.Quantity, item.UnitPrice, string(item.Status),
		item.Instructions,
	)
	if err != nil {
		return fmt.Errorf("upserting order item: %w", err)
	}

	return nil
}

func (r *MySQLOrderItemRepository) FindByOrder(ctx context.Context, orderID uint) ([]domain.OrderItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM OrderItems WHERE orderId = ? ORDER BY id`, itemColumns)

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("listing order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}

	return items, rows.Err()
}

// FindInOrder loads one item, scoped to its parent order so an item id from a
// different order reads as not found.
func (r *MySQLOrderItemRepository) FindInOrder(ctx context.Context, tx *sql.Tx, orderID, itemID uint) (*domain.OrderItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM OrderItems WHERE id = ? AND orderId = ?`, itemColumns)

	rows, err := tx.QueryContext(ctx, query, itemID, orderID)
	if err != nil {
		return nil, fmt.Errorf("querying order item: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("querying order item: %w", err)
		}
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("item %d not found in order %d", itemID, orderID))
	}

	return scanItem(rows)
}

func (r *MySQLOrderItemRepository) UpdateStatus(ctx context.Context, tx *sql.Tx, itemID uint, status domain.ItemStatus) error {
	query := `UPDATE OrderItems SET status = ? WHERE id = ?`

	result, err := tx.ExecContext(ctx, query, string(status), itemID)
	if err != nil {
		return fmt.Errorf("updating item status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("order item with id %d not found", itemID))
	}

	return nil
}

func (r *MySQLOrderItemRepository) CountUnserved(ctx context.Context, tx *sql.Tx, orderID uint) (int, error) {
	query := `SELECT COUNT(*) FROM OrderItems WHERE orderId = ? AND status <> ?`

	var count int
	err := tx.QueryRowContext(ctx, query, orderID, string(domain.ItemStatusServed)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting unserved items: %w", err)
	}

	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (*domain.OrderItem, error) {
	var item domain.OrderItem
	var status string
	err := row.Scan(
		&item.ID, &item.OrderID, &item.MenuItemID, &item.NameSnapshot,
		&item.DescriptionSnapshot, &item.CategorySnapshot, &item.Quantity,
		&item.UnitPrice, &status, &item.Instructions, &item.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning order item row: %w", err)
	}
	item.Status = domain.ItemStatus(status)
	return &item, nil
}
