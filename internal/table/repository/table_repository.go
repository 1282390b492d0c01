package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"kalpa/internal/domain"
	apperrors "kalpa/internal/errors"
)

type MySQLTableRepository struct {
	db *sql.DB
}

func NewMySQLTableRepository(db *sql.DB) *MySQLTableRepository {
	return &MySQLTableRepository{db: db}
}

func (r *MySQLTableRepository) Insert(ctx context.Context, table *domain.Table) (uint, error) {
	query := `INSERT INTO Tables (restaurantId, name, capacity, isActive) VALUES (?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, table.RestaurantID, table.Name, table.Capacity, table.IsActive)
	if err != nil {
		// Unique key on (restaurantId, name).
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return 0, apperrors.NewConflictError(fmt.Sprintf("table %q already exists in this restaurant", table.Name))
		}
		return 0, fmt.Errorf("inserting table: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return uint(lastInsertID), nil
}

func (r *MySQLTableRepository) FindByID(ctx context.Context, id uint) (*domain.Table, error) {
	query := `SELECT id, restaurantId, name, capacity, isActive, createdAt, updatedAt FROM Tables WHERE id = ?`

	var table domain.Table
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&table.ID, &table.RestaurantID, &table.Name, &table.Capacity,
		&table.IsActive, &table.CreatedAt, &table.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("table with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying table by id: %w", err)
	}

	return &table, nil
}

func (r *MySQLTableRepository) ListByRestaurant(ctx context.Context, restaurantID int) ([]domain.Table, error) {
	query := `SELECT id, restaurantId, name, capacity, isActive, createdAt, updatedAt FROM Tables WHERE restaurantId = ? ORDER BY name, id`

	rows, err := r.db.QueryContext(ctx, query, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	var tables []domain.Table
	for rows.Next() {
		var table domain.Table
		err := rows.Scan(
			&table.ID, &table.RestaurantID, &table.Name, &table.Capacity,
			&table.IsActive, &table.CreatedAt, &table.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning table row: %w", err)
		}
		tables = append(tables, table)
	}

	return tables, rows.Err()
}

// Deactivate soft-deletes: tables referenced by past orders are never removed.
func (r *MySQLTableRepository) Deactivate(ctx context.Context, id uint) error {
	query := `UPDATE Tables SET isActive = 0 WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deactivating table: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("table with id %d not found", id))
	}

	return nil
}
