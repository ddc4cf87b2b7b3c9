package db

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bikurim/procurement-backend/pkg/config"
	"github.com/bikurim/procurement-backend/pkg/logger"
)

type sku struct {
	ID   int
	Code string
}

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&sku{}))
	return gdb
}

func countSKUs(t *testing.T, gdb *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, gdb.Model(&sku{}).Count(&n).Error)
	return n
}

func TestWithTxCommitsOrRollsBack(t *testing.T) {
	gdb := openSQLite(t)
	client := NewFromGorm(gdb)
	ctx := context.Background()

	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&sku{Code: "MILK-1L"}).Error
	}))

	errStock := errors.New("stock would go negative")
	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&sku{Code: "EGGS-30"}).Error; err != nil {
			return err
		}
		return errStock
	})
	assert.ErrorIs(t, err, errStock)
	assert.Equal(t, int64(1), countSKUs(t, gdb))
}

func TestWithTxRollsBackAndRepanics(t *testing.T) {
	gdb := openSQLite(t)
	client := NewFromGorm(gdb)

	assert.Panics(t, func() {
		_ = client.WithTx(context.Background(), func(tx *gorm.DB) error {
			if err := tx.Create(&sku{Code: "FLOUR-1KG"}).Error; err != nil {
				return err
			}
			panic("receipt diff")
		})
	})
	assert.Zero(t, countSKUs(t, gdb))
}

func TestPingAndSQLHandle(t *testing.T) {
	client := NewFromGorm(openSQLite(t))
	require.NoError(t, client.Ping(context.Background()))

	pool, err := client.SQL()
	require.NoError(t, err)
	assert.NoError(t, pool.PingContext(context.Background()))
}

func TestConfigurePool(t *testing.T) {
	pool, err := NewFromGorm(openSQLite(t)).SQL()
	require.NoError(t, err)
	configurePool(pool, config.DBConfig{MaxOpenConns: 7, MaxIdleConns: 3})
	assert.Equal(t, 7, pool.Stats().MaxOpenConnections)
}

func TestNewRequiresDSN(t *testing.T) {
	_, err := New(context.Background(), config.DBConfig{}, nil)
	assert.Error(t, err)
}

func TestQueryLoggerLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "db-test", Format: logger.FormatJSON, Output: buf})
	ql := newQueryLogger(logg, 100*time.Millisecond)
	stmt := func() (string, int64) { return `SELECT * FROM "products"`, 1 }

	ql.Trace(context.Background(), time.Now(), stmt, nil)
	ql.Trace(context.Background(), time.Now(), stmt, gorm.ErrRecordNotFound)
	assert.Zero(t, buf.Len(), "fast and not-found queries are silent")

	ql.Trace(context.Background(), time.Now().Add(-time.Second), stmt, nil)
	assert.Contains(t, buf.String(), "db.slow_query")

	buf.Reset()
	ql.Trace(context.Background(), time.Now(), stmt, &pgconn.PgError{Code: "23505"})
	assert.Contains(t, buf.String(), "db.constraint_violation")
	assert.Contains(t, buf.String(), `"level":"warn"`)

	buf.Reset()
	ql.Trace(context.Background(), time.Now(), stmt, errors.New("connection reset"))
	assert.Contains(t, buf.String(), "db.query_failed")
	assert.Contains(t, buf.String(), `"level":"error"`)
}

func TestViolationClassifiers(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "products_code_key"})
	assert.True(t, IsUniqueViolation(unique, ""))
	assert.True(t, IsUniqueViolation(unique, "products_code_key"))
	assert.False(t, IsUniqueViolation(unique, "other_key"))
	assert.False(t, IsForeignKeyViolation(unique))

	fk := &pq.Error{Code: "23503", Constraint: "warehouse_inventory_product_id_fkey"}
	assert.True(t, IsForeignKeyViolation(fk))

	assert.True(t, IsUniqueViolation(errors.New(`ERROR: duplicate key value violates unique constraint "x"`), ""))
	assert.False(t, IsUniqueViolation(nil, ""))
	assert.True(t, IsNotFound(fmt.Errorf("find: %w", gorm.ErrRecordNotFound)))
}
