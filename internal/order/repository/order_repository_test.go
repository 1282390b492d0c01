package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kalpa/internal/domain"
	apperrors "kalpa/internal/errors"
	"kalpa/internal/testutil"
)

// Unit Tests

func TestNewMySQLOrderRepository(t *testing.T) {
	db := &sql.DB{}
	repo := NewMySQLOrderRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestOrderRepository_UpdateStatus_RejectsUnknownStampColumn(t *testing.T) {
	repo := NewMySQLOrderRepository(&sql.DB{})

	err := repo.UpdateStatus(context.Background(), nil, 1, domain.OrderStatusCooking, "status; DROP TABLE Orders")

	assert.Error(t, err)
}

// Integration Tests

func insertOrder(t *testing.T, db *sql.DB, repo *MySQLOrderRepository, order *domain.Order) uint {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	id, err := repo.Insert(context.Background(), tx, order)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	return id
}

func TestOrderRepository_InsertAndFindByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLOrderRepository(db)

	order := &domain.Order{
		OrderNumber:   "ORD-20260901-AAAA1111",
		RestaurantID:  1,
		CustomerName:  "Ana",
		CustomerPhone: "555-0101",
		Status:        domain.OrderStatusConfirmed,
		Instructions:  "no onions",
	}

	id := insertOrder(t, db, repo, order)
	assert.Greater(t, id, uint(0))

	found, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, "ORD-20260901-AAAA1111", found.OrderNumber)
	assert.Equal(t, 1, found.RestaurantID)
	assert.Equal(t, "Ana", found.CustomerName)
	assert.Equal(t, domain.OrderStatusConfirmed, found.Status)
	assert.NotNil(t, found.ConfirmedAt, "insert must stamp confirmedAt")
	assert.Nil(t, found.PreparedAt)
	assert.Nil(t, found.FinalTotal)
}

func TestOrderRepository_FindByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLOrderRepository(db)

	_, err := repo.FindByID(context.Background(), 99999)

	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok, "expected NotFoundError, got %v", err)
}

func TestOrderRepository_UpdateStatus_StampsTimestampOnce(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLOrderRepository(db)

	id := insertOrder(t, db, repo, &domain.Order{
		OrderNumber:  "ORD-20260901-BBBB2222",
		RestaurantID: 1,
		Status:       domain.OrderStatusConfirmed,
	})

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(context.Background(), tx, id, domain.OrderStatusCooking, "preparedAt"))
	require.NoError(t, tx.Commit())

	first, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, first.PreparedAt)
	firstStamp := *first.PreparedAt

	// A second transition writing the same column must not move the stamp.
	time.Sleep(1100 * time.Millisecond)

	tx, err = db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(context.Background(), tx, id, domain.OrderStatusCooking, "preparedAt"))
	require.NoError(t, tx.Commit())

	second, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, second.PreparedAt)
	assert.True(t, second.PreparedAt.Equal(firstStamp), "preparedAt must be write-once")
}

func TestOrderRepository_UpdateStatus_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLOrderRepository(db)

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	defer tx.Rollback()

	err = repo.UpdateStatus(context.Background(), tx, 99999, domain.OrderStatusCooking, "preparedAt")

	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok, "expected NotFoundError, got %v", err)
}

func TestOrderRepository_Complete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLOrderRepository(db)

	id := insertOrder(t, db, repo, &domain.Order{
		OrderNumber:  "ORD-20260901-CCCC3333",
		RestaurantID: 1,
		Status:       domain.OrderStatusCheckout,
	})

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, repo.Complete(context.Background(), tx, id, 31.97))
	require.NoError(t, tx.Commit())

	found, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCompleted, found.Status)
	require.NotNil(t, found.FinalTotal)
	assert.InDelta(t, 31.97, *found.FinalTotal, 0.001)
	assert.NotNil(t, found.CompletedAt)
}

func TestOrderRepository_StampServedAt_WriteOnce(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLOrderRepository(db)

	id := insertOrder(t, db, repo, &domain.Order{
		OrderNumber:  "ORD-20260901-DDDD4444",
		RestaurantID: 1,
		Status:       domain.OrderStatusCooking,
	})

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, repo.StampServedAt(context.Background(), tx, id))
	require.NoError(t, tx.Commit())

	first, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, first.ServedAt)
	firstStamp := *first.ServedAt

	time.Sleep(1100 * time.Millisecond)

	tx, err = db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, repo.StampServedAt(context.Background(), tx, id))
	require.NoError(t, tx.Commit())

	second, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, second.ServedAt.Equal(firstStamp), "servedAt must be write-once")
}

func TestOrderRepository_ListByRestaurant(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLOrderRepository(db)

	insertOrder(t, db, repo, &domain.Order{OrderNumber: "ORD-20260901-EEEE0001", RestaurantID: 1, Status: domain.OrderStatusConfirmed})
	insertOrder(t, db, repo, &domain.Order{OrderNumber: "ORD-20260901-EEEE0002", RestaurantID: 1, Status: domain.OrderStatusCooking})
	insertOrder(t, db, repo, &domain.Order{OrderNumber: "ORD-20260901-EEEE0003", RestaurantID: 2, Status: domain.OrderStatusConfirmed})

	orders, err := repo.ListByRestaurant(context.Background(), 1, domain.OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, orders, 2, "orders of other restaurants must not leak")

	cooking := domain.OrderStatusCooking
	orders, err = repo.ListByRestaurant(context.Background(), 1, domain.OrderFilter{Status: &cooking})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "ORD-20260901-EEEE0002", orders[0].OrderNumber)
}

func TestOrderRepository_ListByRestaurant_ExcludeCompleted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLOrderRepository(db)

	openID := insertOrder(t, db, repo, &domain.Order{OrderNumber: "ORD-20260901-FFFF0001", RestaurantID: 1, Status: domain.OrderStatusCooking})
	doneID := insertOrder(t, db, repo, &domain.Order{OrderNumber: "ORD-20260901-FFFF0002", RestaurantID: 1, Status: domain.OrderStatusCheckout})

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, repo.Complete(context.Background(), tx, doneID, 10.00))
	require.NoError(t, tx.Commit())

	orders, err := repo.ListByRestaurant(context.Background(), 1, domain.OrderFilter{ExcludeCompleted: true})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, openID, orders[0].ID)
}
