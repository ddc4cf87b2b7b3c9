package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bikurim/procurement-backend/internal/repo"
	"github.com/bikurim/procurement-backend/pkg/db"
	"github.com/bikurim/procurement-backend/pkg/db/models"
	"github.com/bikurim/procurement-backend/pkg/pagination"
)

type Repository struct {
	repo.Base
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(tx)}
}

// LockBalance reads the (warehouse, product) row FOR UPDATE. With create set, a
// missing row is inserted first; ON CONFLICT DO NOTHING lets concurrent first
// inserts converge on the same row. Returns nil when the row does not exist.
func (r *Repository) LockBalance(ctx context.Context, warehouseID, productID uuid.UUID, unit string, create bool) (*models.WarehouseInventory, error) {
	if create {
		seed := models.WarehouseInventory{
			WarehouseID:   warehouseID,
			ProductID:     productID,
			Quantity:      decimal.Zero,
			Unit:          unit,
			LastUpdatedAt: time.Now().UTC(),
		}
		err := r.DB(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "warehouse_id"}, {Name: "product_id"}},
			DoNothing: true,
		}).Create(&seed).Error
		if err != nil {
			return nil, err
		}
	}

	var row models.WarehouseInventory
	err := r.ForUpdate(ctx).
		Where("warehouse_id = ? AND product_id = ?", warehouseID, productID).
		Take(&row).Error
	if db.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) SaveBalance(ctx context.Context, row *models.WarehouseInventory) error {
	return r.DB(ctx).Model(&models.WarehouseInventory{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{
			"quantity":        row.Quantity,
			"last_updated_at": row.LastUpdatedAt,
			"updated_at":      time.Now().UTC(),
		}).Error
}

func (r *Repository) InsertMovement(ctx context.Context, movement *models.InventoryMovement) error {
	return r.DB(ctx).Create(movement).Error
}

func (r *Repository) FindWarehouse(ctx context.Context, id uuid.UUID) (*models.Warehouse, error) {
	var w models.Warehouse
	if err := r.DB(ctx).Where("id = ?", id).Take(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *Repository) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	if err := r.DB(ctx).Where("id = ?", id).Take(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// BalanceRow is an inventory row joined with product display fields.
type BalanceRow struct {
	models.WarehouseInventory
	ProductName string  `gorm:"column:product_name"`
	ProductCode *string `gorm:"column:product_code"`
}

func (r *Repository) ListBalances(ctx context.Context, warehouseID uuid.UUID) ([]BalanceRow, error) {
	var rows []BalanceRow
	err := r.DB(ctx).Raw(`SELECT wi.*, p.name AS product_name, p.code AS product_code
FROM warehouse_inventory wi
JOIN products p ON p.id = wi.product_id
WHERE wi.warehouse_id = ?
ORDER BY p.name ASC`, warehouseID).Scan(&rows).Error
	return rows, err
}

// SetMinQuantity upserts the minimum, creating a zero balance when the product
// has never been stocked in the warehouse.
func (r *Repository) SetMinQuantity(ctx context.Context, warehouseID, productID uuid.UUID, unit string, minQty decimal.NullDecimal) error {
	return r.DB(ctx).Exec(`INSERT INTO warehouse_inventory (warehouse_id, product_id, quantity, unit_of_measure, min_quantity, last_updated_at)
VALUES (?, ?, 0, ?, ?, NOW())
ON CONFLICT (warehouse_id, product_id)
DO UPDATE SET min_quantity = EXCLUDED.min_quantity, updated_at = NOW()`,
		warehouseID, productID, unit, minQty).Error
}

func (r *Repository) FindBalance(ctx context.Context, warehouseID, productID uuid.UUID) (*BalanceRow, error) {
	var row BalanceRow
	err := r.DB(ctx).Raw(`SELECT wi.*, p.name AS product_name, p.code AS product_code
FROM warehouse_inventory wi
JOIN products p ON p.id = wi.product_id
WHERE wi.warehouse_id = ? AND wi.product_id = ?`, warehouseID, productID).Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// MovementRow is a ledger row joined with the product name.
type MovementRow struct {
	models.InventoryMovement
	ProductName string `gorm:"column:product_name"`
}

// ListMovements returns newest-first movements of a warehouse after the cursor.
func (r *Repository) ListMovements(ctx context.Context, warehouseID uuid.UUID, cursor *pagination.Cursor, limit int) ([]MovementRow, error) {
	q := r.DB(ctx).Table("inventory_movements AS m").
		Select("m.*, p.name AS product_name").
		Joins("JOIN products p ON p.id = m.product_id").
		Where("m.warehouse_id = ?", warehouseID).
		Scopes(pagination.After(cursor, "m.created_at", "m.id"))
	var rows []MovementRow
	err := q.Order("m.created_at DESC").Order("m.id DESC").Limit(limit).Scan(&rows).Error
	return rows, err
}

// LowStockRow is a balance at or below its minimum in an active warehouse.
type LowStockRow struct {
	WarehouseID   uuid.UUID           `gorm:"column:warehouse_id"`
	WarehouseName string              `gorm:"column:warehouse_name"`
	ProductID     uuid.UUID           `gorm:"column:product_id"`
	ProductName   string              `gorm:"column:product_name"`
	ProductCode   *string             `gorm:"column:product_code"`
	Quantity      decimal.Decimal     `gorm:"column:quantity"`
	MinQuantity   decimal.NullDecimal `gorm:"column:min_quantity"`
	Unit          string              `gorm:"column:unit_of_measure"`
}

func (r *Repository) LowStock(ctx context.Context, warehouseID *uuid.UUID) ([]LowStockRow, error) {
	q := r.DB(ctx).Table("warehouse_inventory AS wi").
		Select(`wi.warehouse_id, w.name AS warehouse_name, wi.product_id, p.name AS product_name,
p.code AS product_code, wi.quantity, wi.min_quantity, wi.unit_of_measure`).
		Joins("JOIN warehouses w ON w.id = wi.warehouse_id").
		Joins("JOIN products p ON p.id = wi.product_id").
		Where("w.is_active = ?", true).
		Where("wi.min_quantity IS NOT NULL AND wi.quantity <= wi.min_quantity")
	if warehouseID != nil {
		q = q.Where("wi.warehouse_id = ?", *warehouseID)
	}
	var rows []LowStockRow
	err := q.Order("w.name ASC").Order("p.name ASC").Scan(&rows).Error
	return rows, err
}
