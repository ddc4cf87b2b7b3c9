// Package dbtest opens the Postgres database used by repository tests.
// Tests are skipped unless BIKURIM_TEST_DB_DSN is set.
package dbtest

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/bikurim/procurement-backend/pkg/config"
	"github.com/bikurim/procurement-backend/pkg/db"
	"github.com/bikurim/procurement-backend/pkg/db/models"
	"github.com/bikurim/procurement-backend/pkg/enums"
	"github.com/bikurim/procurement-backend/pkg/migrate"
)

var migrateOnce sync.Once
var migrateErr error

// Open returns a client for the test database with all migrations applied.
func Open(t testing.TB) *db.Client {
	t.Helper()

	dsn := os.Getenv(config.EnvTestDBDSN)
	if dsn == "" {
		t.Skipf("%s is not set", config.EnvTestDBDSN)
	}

	migrateOnce.Do(func() { migrateErr = applyMigrations(dsn) })
	if migrateErr != nil {
		t.Fatalf("apply migrations: %v", migrateErr)
	}

	conn, err := gorm.Open(dialector(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	client := db.NewFromGorm(conn)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func applyMigrations(dsn string) error {
	conn, err := gorm.Open(dialector(dsn), &gorm.Config{})
	if err != nil {
		return err
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	runner, err := migrate.NewRunner(sqlDB, migrate.Embedded(), nil)
	if err != nil {
		return err
	}
	return runner.Up(context.Background())
}

func dialector(dsn string) gorm.Dialector {
	return postgres.New(postgres.Config{DSN: dsn, PreferSimpleProtocol: true})
}

func suffix() string {
	return uuid.NewString()[:8]
}

func Warehouse(t testing.TB, conn *gorm.DB) *models.Warehouse {
	t.Helper()
	w := &models.Warehouse{Name: "מחסן " + suffix(), IsActive: true}
	if err := conn.Create(w).Error; err != nil {
		t.Fatalf("create warehouse: %v", err)
	}
	return w
}

func Product(t testing.TB, conn *gorm.DB, unit string) *models.Product {
	t.Helper()
	code := "P-" + suffix()
	p := &models.Product{Name: "מוצר " + code, Code: &code, DefaultUnit: unit}
	if err := conn.Create(p).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

func Supplier(t testing.TB, conn *gorm.DB, status enums.SupplierStatus) *models.Supplier {
	t.Helper()
	s := &models.Supplier{Name: "ספק " + suffix(), Status: status}
	if err := conn.Create(s).Error; err != nil {
		t.Fatalf("create supplier: %v", err)
	}
	return s
}

func Price(t testing.TB, conn *gorm.DB, supplierID, productID uuid.UUID, price string) *models.SupplierProduct {
	t.Helper()
	sp := &models.SupplierProduct{
		SupplierID:      supplierID,
		ProductID:       productID,
		PricePerUnit:    decimal.RequireFromString(price),
		Unit:            "ק\"ג",
		LastPriceUpdate: time.Now().UTC().Truncate(24 * time.Hour),
	}
	if err := conn.Create(sp).Error; err != nil {
		t.Fatalf("create supplier product: %v", err)
	}
	return sp
}

func ShoppingList(t testing.TB, conn *gorm.DB, status enums.ShoppingListStatus, warehouseID *uuid.UUID) *models.ShoppingList {
	t.Helper()
	l := &models.ShoppingList{
		Name:        "הזמנה " + suffix(),
		ListDate:    time.Now().UTC().Truncate(24 * time.Hour),
		Status:      status,
		WarehouseID: warehouseID,
	}
	if err := conn.Create(l).Error; err != nil {
		t.Fatalf("create shopping list: %v", err)
	}
	return l
}

func Item(t testing.TB, conn *gorm.DB, listID, productID uuid.UUID, qty string, sortOrder int) *models.ShoppingListItem {
	t.Helper()
	item := &models.ShoppingListItem{
		ShoppingListID: listID,
		ProductID:      productID,
		Quantity:       decimal.RequireFromString(qty),
		Unit:           "יח'",
		SortOrder:      sortOrder,
	}
	if err := conn.Create(item).Error; err != nil {
		t.Fatalf("create item: %v", err)
	}
	return item
}
