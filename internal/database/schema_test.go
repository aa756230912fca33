package database

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMigrationFilesExist(t *testing.T) {
	migrationsDir := "../../migrations"

	// Check if migrations directory exists
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		t.Fatal("Migrations directory does not exist")
	}

	// Expected migration files
	expectedMigrations := []string{
		"00001_create_users_table.sql",
		"00002_create_refresh_tokens_table.sql",
		"00003_create_products_table.sql",
		"00004_create_shipping_addresses_table.sql",
		"00005_create_orders_table.sql",
		"00006_create_order_items_table.sql",
		"00007_create_product_reviews_table.sql",
		"00008_create_wishlist_items_table.sql",
		"00009_create_updated_at_trigger.sql",
	}

	for _, migration := range expectedMigrations {
		path := filepath.Join(migrationsDir, migration)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Errorf("Migration file %s does not exist", migration)
		}
	}
}

func TestMigrationFilesHaveUpAndDown(t *testing.T) {
	migrationsDir := "../../migrations"

	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("Failed to read migrations directory: %v", err)
	}

	sqlFileCount := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		sqlFileCount++
		content, err := os.ReadFile(filepath.Join(migrationsDir, file.Name()))
		if err != nil {
			t.Errorf("Failed to read migration file %s: %v", file.Name(), err)
			continue
		}

		contentStr := string(content)

		// Check for goose Up directive
		if !strings.Contains(contentStr, "-- +goose Up") {
			t.Errorf("Migration file %s missing '-- +goose Up' directive", file.Name())
		}

		// Check for goose Down directive
		if !strings.Contains(contentStr, "-- +goose Down") {
			t.Errorf("Migration file %s missing '-- +goose Down' directive", file.Name())
		}

		// Check for StatementBegin/End
		if !strings.Contains(contentStr, "-- +goose StatementBegin") {
			t.Errorf("Migration file %s missing '-- +goose StatementBegin' directive", file.Name())
		}

		if !strings.Contains(contentStr, "-- +goose StatementEnd") {
			t.Errorf("Migration file %s missing '-- +goose StatementEnd' directive", file.Name())
		}
	}

	if sqlFileCount == 0 {
		t.Error("No SQL migration files found")
	}
}

func TestMigrationFilesCreateExpectedTables(t *testing.T) {
	migrationsDir := "../../migrations"

	expectedTables := map[string]string{
		"users":              "00001_create_users_table.sql",
		"refresh_tokens":     "00002_create_refresh_tokens_table.sql",
		"products":           "00003_create_products_table.sql",
		"shipping_addresses": "00004_create_shipping_addresses_table.sql",
		"orders":             "00005_create_orders_table.sql",
		"order_items":        "00006_create_order_items_table.sql",
		"product_reviews":    "00007_create_product_reviews_table.sql",
		"wishlist_items":     "00008_create_wishlist_items_table.sql",
	}

	for tableName, migrationFile := range expectedTables {
		path := filepath.Join(migrationsDir, migrationFile)
		content, err := os.ReadFile(path)
		if err != nil {
			t.Errorf("Failed to read migration file %s: %v", migrationFile, err)
			continue
		}

		contentStr := string(content)

		// Check if migration creates the table
		createTableStmt := "CREATE TABLE IF NOT EXISTS " + tableName
		if !strings.Contains(contentStr, createTableStmt) {
			t.Errorf("Migration file %s does not create table %s", migrationFile, tableName)
		}

		// Check if migration has drop table in down section
		dropTableStmt := "DROP TABLE IF EXISTS " + tableName
		if !strings.Contains(contentStr, dropTableStmt) {
			t.Errorf("Migration file %s does not drop table %s in down section", migrationFile, tableName)
		}
	}
}

func TestProductsTableHasStockAndPriceGuards(t *testing.T) {
	migrationsDir := "../../migrations"
	path := filepath.Join(migrationsDir, "00003_create_products_table.sql")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read products migration: %v", err)
	}

	contentStr := string(content)

	// Negative stock and non-positive prices must be impossible at the schema level
	if !strings.Contains(contentStr, "CHECK (stock >= 0)") {
		t.Error("Products table missing non-negative stock constraint")
	}
	if !strings.Contains(contentStr, "CHECK (price > 0)") {
		t.Error("Products table missing positive price constraint")
	}
}

func TestOrdersTableHasStatusConstraint(t *testing.T) {
	migrationsDir := "../../migrations"
	path := filepath.Join(migrationsDir, "00005_create_orders_table.sql")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read orders migration: %v", err)
	}

	contentStr := string(content)

	// Check for status constraint with valid values
	requiredStatuses := []string{"pending", "processing", "in_transit", "delivered", "cancelled", "refunded"}
	for _, status := range requiredStatuses {
		if !strings.Contains(contentStr, status) {
			t.Errorf("Orders table status constraint missing value: %s", status)
		}
	}

	// Order numbers are unique by construction
	if !strings.Contains(contentStr, "order_number VARCHAR(40) UNIQUE NOT NULL") {
		t.Error("Orders table missing unique order_number column")
	}
}

func TestReviewsTableEnforcesOneReviewPerPurchase(t *testing.T) {
	migrationsDir := "../../migrations"
	path := filepath.Join(migrationsDir, "00007_create_product_reviews_table.sql")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read product_reviews migration: %v", err)
	}

	contentStr := string(content)

	if !strings.Contains(contentStr, "UNIQUE (user_id, product_id, order_id)") {
		t.Error("Reviews table missing unique constraint on (user_id, product_id, order_id)")
	}
	if !strings.Contains(contentStr, "CHECK (rating >= 1 AND rating <= 5)") {
		t.Error("Reviews table missing rating range constraint")
	}
}

func TestWishlistTableHasUniqueConstraint(t *testing.T) {
	migrationsDir := "../../migrations"
	path := filepath.Join(migrationsDir, "00008_create_wishlist_items_table.sql")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read wishlist_items migration: %v", err)
	}

	contentStr := string(content)

	// Check for unique constraint on user_id and product_id
	if !strings.Contains(contentStr, "UNIQUE (user_id, product_id)") {
		t.Error("Wishlist items table missing unique constraint on (user_id, product_id)")
	}
}

func TestAddressesTableHasSingleDefaultIndex(t *testing.T) {
	migrationsDir := "../../migrations"
	path := filepath.Join(migrationsDir, "00004_create_shipping_addresses_table.sql")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read shipping_addresses migration: %v", err)
	}

	contentStr := string(content)

	// A partial unique index keeps at most one default address per user
	if !strings.Contains(contentStr, "uq_shipping_addresses_default") {
		t.Error("Addresses table missing single-default unique index")
	}
}
