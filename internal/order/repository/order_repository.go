package repository

import (
	"context"
	"database/sql"
	"fmt"

	"kalpa/internal/domain"
	apperrors "kalpa/internal/errors"
)

const orderColumns = `id, orderNumber, restaurantId, tableId, customerName, customerPhone,
		       status, instructions, finalTotal, createdAt, confirmedAt, preparedAt,
		       readyAt, servedAt, completedAt, cancelledAt, updatedAt`

// timestampColumns whitelists the write-once stamp columns UpdateStatus may
// touch. The column name is interpolated into the statement, so it must never
// come from user input.
var timestampColumns = map[string]bool{
	"confirmedAt": true,
	"preparedAt":  true,
	"readyAt":     true,
	"servedAt":    true,
	"completedAt": true,
	"cancelledAt": true,
}

type MySQLOrderRepository struct {
	db *sql.DB
}

func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db}
}

func (r *MySQLOrderRepository) Insert(ctx context.Context, tx *sql.Tx, order *domain.Order) (uint, error) {
	query := `
		INSERT INTO Orders (orderNumber, restaurantId, tableId, customerName, customerPhone,
		                    status, instructions, confirmedAt)
		VALUES (?, ?, ?, ?, ?, ?, ?, NOW())
	`

	result, err := tx.ExecContext(ctx, query,
		order.OrderNumber, order.RestaurantID, order.TableID, order.CustomerName,
		order.CustomerPhone, string(order.Status), order.Instructions,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting order: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return uint(lastInsertID), nil
}

func (r *MySQLOrderRepository) FindByID(ctx context.Context, id uint) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM Orders WHERE id = ?`, orderColumns)
	return r.scanOrder(r.db.QueryRowContext(ctx, query, id), id)
}

// FindByIDForUpdate locks the order row for the duration of the transaction.
// Every mutation of an order or its items goes through this lock, which is
// what serializes concurrent writers on the same order.
func (r *MySQLOrderRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id uint) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM Orders WHERE id = ? FOR UPDATE`, orderColumns)
	return r.scanOrder(tx.QueryRowContext(ctx, query, id), id)
}

// UpdateStatus sets the order status and stamps the matching timestamp column
// if it is still null. COALESCE keeps the stamp write-once: a retried or
// re-entered transition never rewrites history.
func (r *MySQLOrderRepository) UpdateStatus(ctx context.Context, tx *sql.Tx, id uint, status domain.OrderStatus, stampColumn string) error {
	var query string
	if stampColumn != "" {
		if !timestampColumns[stampColumn] {
			return apperrors.NewInternalError(fmt.Sprintf("unknown timestamp column %q", stampColumn), nil)
		}
		query = fmt.Sprintf(`UPDATE Orders SET status = ?, %s = COALESCE(%s, NOW()) WHERE id = ?`, stampColumn, stampColumn)
	} else {
		query = `UPDATE Orders SET status = ? WHERE id = ?`
	}

	result, err := tx.ExecContext(ctx, query, string(status), id)
	if err != nil {
		return fmt.Errorf("updating order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}

	return nil
}

// Complete finalizes billing in one statement: final total, completed status
// and the completion stamp move together or not at all.
func (r *MySQLOrderRepository) Complete(ctx context.Context, tx *sql.Tx, id uint, finalTotal float64) error {
	query := `
		UPDATE Orders
		SET status = ?, finalTotal = ?, completedAt = COALESCE(completedAt, NOW())
		WHERE id = ?
	`

	result, err := tx.ExecContext(ctx, query, string(domain.OrderStatusCompleted), finalTotal, id)
	if err != nil {
		return fmt.Errorf("completing order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}

	return nil
}

// StampServedAt records when the last item of the order was served. Write-once
// and informational only; it never changes the order status.
func (r *MySQLOrderRepository) StampServedAt(ctx context.Context, tx *sql.Tx, id uint) error {
	query := `UPDATE Orders SET servedAt = COALESCE(servedAt, NOW()) WHERE id = ?`

	if _, err := tx.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("stamping servedAt: %w", err)
	}
	return nil
}

func (r *MySQLOrderRepository) ListByRestaurant(ctx context.Context, restaurantID int, filter domain.OrderFilter) ([]domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM Orders WHERE restaurantId = ?`, orderColumns)
	args := []interface{}{restaurantID}

	if filter.Status != nil {
		query += ` AND status = ?`
		args = append(args, string(*filter.Status))
	}
	if filter.TableID != nil {
		query += ` AND tableId = ?`
		args = append(args, *filter.TableID)
	}
	if filter.ExcludeCompleted {
		query += ` AND status <> ?`
		args = append(args, string(domain.OrderStatusCompleted))
	}
	query += ` ORDER BY createdAt DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var order domain.Order
		var status string
		err := rows.Scan(
			&order.ID, &order.OrderNumber, &order.RestaurantID, &order.TableID,
			&order.CustomerName, &order.CustomerPhone, &status, &order.Instructions,
			&order.FinalTotal, &order.CreatedAt, &order.ConfirmedAt, &order.PreparedAt,
			&order.ReadyAt, &order.ServedAt, &order.CompletedAt, &order.CancelledAt,
			&order.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}
		order.Status = domain.OrderStatus(status)
		orders = append(orders, order)
	}

	return orders, rows.Err()
}

func (r *MySQLOrderRepository) scanOrder(row *sql.Row, id uint) (*domain.Order, error) {
	var order domain.Order
	var status string
	err := row.Scan(
		&order.ID, &order.OrderNumber, &order.RestaurantID, &order.TableID,
		&order.CustomerName, &order.CustomerPhone, &status, &order.Instructions,
		&order.FinalTotal, &order.CreatedAt, &order.ConfirmedAt, &order.PreparedAt,
		&order.ReadyAt, &order.ServedAt, &order.CompletedAt, &order.CancelledAt,
		&order.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by id: %w", err)
	}

	order.Status = domain.OrderStatus(status)
	return &order, nil
}
