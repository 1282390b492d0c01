package testutil

import (
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

// SetupTestDB opens the integration test database. Expects a local MySQL on
// localhost:3306 with a database named 'kalpa_test'; tests are skipped when
// it is not reachable.
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := "root:@tcp(localhost:3306)/kalpa_test?parseTime=true"
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("test database not available: %v", err)
	}

	return db
}

func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	tables := []string{"OrderItems", "Orders", "Tables", "MenuItems"}
	for _, table := range tables {
		if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}

func SetupTestTables(t *testing.T, db *sql.DB) {
	createMenuItemsTable := `
	CREATE TABLE IF NOT EXISTS MenuItems (
		id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		restaurantId INT NOT NULL,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		categoryName VARCHAR(100) NOT NULL DEFAULT '',
		price DECIMAL(10,2) NOT NULL,
		isAvailable TINYINT(1) NOT NULL DEFAULT 1,
		isDisabled TINYINT(1) NOT NULL DEFAULT 0,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_restaurant (restaurantId)
	)`

	createTablesTable := `
	CREATE TABLE IF NOT EXISTS Tables (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		restaurantId INT NOT NULL,
		name VARCHAR(50) NOT NULL,
		capacity INT NOT NULL DEFAULT 0,
		isActive TINYINT(1) NOT NULL DEFAULT 1,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_restaurant_name (restaurantId, name)
	)`

	createOrdersTable := `
	CREATE TABLE IF NOT EXISTS Orders (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		orderNumber VARCHAR(50) NOT NULL UNIQUE,
		restaurantId INT NOT NULL,
		tableId INT UNSIGNED,
		customerName VARCHAR(100) NOT NULL DEFAULT '',
		customerPhone VARCHAR(20) NOT NULL DEFAULT '',
		status VARCHAR(20) NOT NULL DEFAULT 'confirmed',
		instructions TEXT NOT NULL,
		finalTotal DECIMAL(10,2),
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		confirmedAt DATETIME,
		preparedAt DATETIME,
		readyAt DATETIME,
		servedAt DATETIME,
		completedAt DATETIME,
		cancelledAt DATETIME,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_restaurant_status (restaurantId, status),
		INDEX idx_restaurant_created (restaurantId, createdAt)
	)`

	createOrderItemsTable := `
	CREATE TABLE IF NOT EXISTS OrderItems (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		orderId INT UNSIGNED NOT NULL,
		menuItemId INT NOT NULL,
		nameSnapshot VARCHAR(255) NOT NULL,
		descriptionSnapshot TEXT NOT NULL,
		categorySnapshot VARCHAR(100) NOT NULL DEFAULT '',
		quantity INT NOT NULL DEFAULT 1,
		unitPrice DECIMAL(10,2) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		instructions TEXT NOT NULL,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (orderId) REFERENCES Orders(id) ON DELETE CASCADE,
		UNIQUE KEY uq_order_menu_item (orderId, menuItemId),
		INDEX idx_order (orderId)
	)`

	tables := []struct {
		name  string
		query string
	}{
		{"MenuItems", createMenuItemsTable},
		{"Tables", createTablesTable},
		{"Orders", createOrdersTable},
		{"OrderItems", createOrderItemsTable},
	}

	for _, tbl := range tables {
		if _, err := db.Exec(tbl.query); err != nil {
			t.Logf("failed to create table %s: %v", tbl.name, err)
		}
	}
}

// InsertMenuItem seeds one catalog row and returns its id.
func InsertMenuItem(t *testing.T, db *sql.DB, restaurantID int, name string, price float64, available, disabled bool) int {
	result, err := db.Exec(
		`INSERT INTO MenuItems (restaurantId, name, description, categoryName, price, isAvailable, isDisabled)
		 VALUES (?, ?, '', 'Mains', ?, ?, ?)`,
		restaurantID, name, price, available, disabled,
	)
	if err != nil {
		t.Fatalf("seeding menu item: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("seeding menu item: %v", err)
	}
	return int(id)
}
