package dashboard

import (
	"context"

	"gorm.io/gorm"

	"github.com/bikurim/procurement-backend/internal/repo"
)

type Repository struct {
	repo.Base
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

func (r *Repository) KPIs(ctx context.Context) (KPIs, error) {
	var k KPIs
	err := r.DB(ctx).Raw(`SELECT
    (SELECT COUNT(*) FROM warehouses WHERE is_active = true) AS active_warehouses,
    (SELECT COUNT(DISTINCT product_id) FROM warehouse_inventory WHERE quantity <= 0) AS products_zero_stock,
    (SELECT COUNT(*) FROM warehouse_inventory WHERE min_quantity IS NOT NULL AND quantity <= min_quantity) AS products_below_min`).
		Scan(&k).Error
	return k, err
}

func (r *Repository) ActiveWarehouses(ctx context.Context) ([]WarehouseRef, error) {
	var rows []WarehouseRef
	err := r.DB(ctx).Raw(`SELECT id, name FROM warehouses WHERE is_active = true ORDER BY name ASC`).Scan(&rows).Error
	return rows, err
}

func (r *Repository) Stock(ctx context.Context) ([]StockRow, error) {
	var rows []StockRow
	err := r.DB(ctx).Raw(`SELECT wi.warehouse_id, wi.product_id, wi.quantity, wi.min_quantity,
       p.name AS product_name, p.code AS product_code
FROM warehouse_inventory wi
JOIN products p ON p.id = wi.product_id
ORDER BY p.name ASC`).Scan(&rows).Error
	return rows, err
}

// Alerts lists balances at zero or at/below their minimum in active warehouses.
func (r *Repository) Alerts(ctx context.Context) ([]AlertDTO, error) {
	var rows []AlertDTO
	err := r.DB(ctx).Raw(`SELECT wi.warehouse_id, w.name AS warehouse_name, wi.product_id, p.name AS product_name,
       wi.quantity, wi.min_quantity, wi.unit_of_measure
FROM warehouse_inventory wi
JOIN warehouses w ON w.id = wi.warehouse_id AND w.is_active = true
JOIN products p ON p.id = wi.product_id
WHERE wi.quantity <= 0 OR (wi.min_quantity IS NOT NULL AND wi.quantity <= wi.min_quantity)
ORDER BY wi.quantity ASC, w.name ASC, p.name ASC`).Scan(&rows).Error
	return rows, err
}
