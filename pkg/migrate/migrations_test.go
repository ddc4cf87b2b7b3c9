package migrate_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"go.uber.org/multierr"

	"github.com/bikurim/procurement-backend/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected one %s migration, found %d", suffix, len(matches))
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func assertContains(t *testing.T, content string, checks ...string) {
	t.Helper()
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationDirectoryIsValid(t *testing.T) {
	if err := migrate.Validate(os.DirFS("migrations")); err != nil {
		t.Fatalf("validate migrations: %v", err)
	}
}

func TestEmbeddedMigrationsMatchSourceDir(t *testing.T) {
	embedded, err := fs.Glob(migrate.Embedded(), "*.sql")
	if err != nil {
		t.Fatalf("glob embedded: %v", err)
	}
	onDisk, err := filepath.Glob(filepath.Join("migrations", "*.sql"))
	if err != nil {
		t.Fatalf("glob source: %v", err)
	}
	if len(embedded) == 0 || len(embedded) != len(onDisk) {
		t.Fatalf("embedded %d migrations, source dir has %d", len(embedded), len(onDisk))
	}
	if err := migrate.Validate(migrate.Embedded()); err != nil {
		t.Fatalf("validate embedded: %v", err)
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	fsys := fstest.MapFS{
		"20260301090000_ok.sql":         {Data: []byte("-- +goose Up\nSELECT 1;\n-- +goose Down\nSELECT 1;\n")},
		"20260301090000_duplicate.sql":  {Data: []byte("-- +goose Up\n-- +goose Down\n")},
		"2026_short.sql":                {Data: []byte("-- +goose Up\n-- +goose Down\n")},
		"20260301090100_no_down.sql":    {Data: []byte("-- +goose Up\nSELECT 1;\n")},
		"20260301090200_open_block.sql": {Data: []byte("-- +goose Up\n-- +goose StatementBegin\n-- +goose Down\n")},
		"README.md":                     {Data: []byte("ignored")},
	}
	err := migrate.Validate(fsys)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	if got := len(multierr.Errors(err)); got != 4 {
		t.Fatalf("expected 4 problems, got %d: %v", got, err)
	}
	if err := migrate.Validate(fstest.MapFS{}); err == nil {
		t.Fatal("empty directory should not validate")
	}
}

func TestCatalogMigrationKeepsPriceListUnique(t *testing.T) {
	content := readMigration(t, "create_catalog")
	assertContains(t, content,
		"CONSTRAINT products_code_key UNIQUE (code)",
		"CONSTRAINT supplier_products_supplier_product_key UNIQUE (supplier_id, product_id)",
		"CREATE TABLE IF NOT EXISTS price_history",
		"DROP TABLE IF EXISTS supplier_products",
	)
}

func TestWarehouseMigrationProtectsLedger(t *testing.T) {
	content := readMigration(t, "create_warehouses")
	assertContains(t, content,
		"CONSTRAINT warehouse_inventory_warehouse_product_key UNIQUE (warehouse_id, product_id)",
		"CHECK (quantity >= 0)",
		"BEFORE UPDATE OR DELETE ON inventory_movements",
		"DROP TABLE IF EXISTS inventory_movements",
	)
}

func TestShoppingListMigrationCascadesItems(t *testing.T) {
	content := readMigration(t, "create_shopping_lists")
	assertContains(t, content,
		"order_number BIGSERIAL NOT NULL UNIQUE",
		"FOREIGN KEY (shopping_list_id) REFERENCES shopping_lists(id) ON DELETE CASCADE",
		"CREATE TABLE IF NOT EXISTS receipt_discrepancy_alerts",
		"details JSONB NOT NULL",
	)
}

func TestCreateSQLMigrationSanitizesName(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 4, 2, 8, 30, 0, 0, time.UTC)
	path, err := migrate.NewSQLFile(dir, "  Add Supplier--Ratings! ", now)
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if filepath.Base(path) != "20260402083000_add_supplier_ratings.sql" {
		t.Fatalf("unexpected filename %s", path)
	}
	if err := migrate.Validate(os.DirFS(dir)); err != nil {
		t.Fatalf("created migration should validate: %v", err)
	}
	if _, err := migrate.NewSQLFile(dir, "add supplier ratings", now); err == nil {
		t.Fatal("expected an error when the file already exists")
	}
	if _, err := migrate.NewSQLFile(dir, "!!!", now); err == nil {
		t.Fatal("expected an error for an unusable name")
	}
}
