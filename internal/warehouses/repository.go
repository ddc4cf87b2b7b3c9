package warehouses

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bikurim/procurement-backend/internal/repo"
	"github.com/bikurim/procurement-backend/pkg/db/models"
	"github.com/bikurim/procurement-backend/pkg/enums"
)

// WarehouseRow is a warehouse with its responsible user and stock counters.
type WarehouseRow struct {
	models.Warehouse
	ResponsibleUserName *string `gorm:"column:responsible_user_name"`
	ProductCount        int64   `gorm:"column:product_count"`
	LowStockCount       int64   `gorm:"column:low_stock_count"`
}

const warehouseSelect = `SELECT w.*,
       u.full_name AS responsible_user_name,
       (SELECT COUNT(*) FROM warehouse_inventory wi WHERE wi.warehouse_id = w.id) AS product_count,
       (SELECT COUNT(*) FROM warehouse_inventory wi
         WHERE wi.warehouse_id = w.id AND wi.min_quantity IS NOT NULL AND wi.quantity <= wi.min_quantity) AS low_stock_count
FROM warehouses w
LEFT JOIN users u ON u.id = w.responsible_user_id`

type Repository struct {
	repo.Base
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

func (r *Repository) List(ctx context.Context) ([]WarehouseRow, error) {
	var rows []WarehouseRow
	err := r.DB(ctx).Raw(warehouseSelect + "\nORDER BY w.name ASC").Scan(&rows).Error
	return rows, err
}

func (r *Repository) Find(ctx context.Context, id uuid.UUID) (*WarehouseRow, error) {
	var row WarehouseRow
	if err := r.DB(ctx).Raw(warehouseSelect+"\nWHERE w.id = ?", id).Take(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) Create(ctx context.Context, w *models.Warehouse) error {
	return r.DB(ctx).Create(w).Error
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (bool, error) {
	updates["updated_at"] = time.Now().UTC()
	res := r.DB(ctx).Model(&models.Warehouse{}).Where("id = ?", id).Updates(updates)
	return res.RowsAffected > 0, res.Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.Warehouse{})
	return res.RowsAffected > 0, res.Error
}

// DeliveryRow aggregates an approved order for the expected deliveries view.
type DeliveryRow struct {
	ID          uuid.UUID       `gorm:"column:id"`
	OrderNumber int64           `gorm:"column:order_number"`
	Name        string          `gorm:"column:name"`
	ListDate    time.Time       `gorm:"column:list_date"`
	ItemCount   int64           `gorm:"column:item_count"`
	TotalAmount decimal.Decimal `gorm:"column:total_amount"`
}

func (r *Repository) ExpectedDeliveries(ctx context.Context, warehouseID uuid.UUID) ([]DeliveryRow, error) {
	var rows []DeliveryRow
	err := r.DB(ctx).Raw(`SELECT sl.id, sl.order_number, sl.name, sl.list_date,
       COUNT(i.id) AS item_count,
       COALESCE(SUM(i.quantity * COALESCE(i.price_at_selection, 0)), 0) AS total_amount
FROM shopping_lists sl
LEFT JOIN shopping_list_items i ON i.shopping_list_id = sl.id
WHERE sl.warehouse_id = ? AND sl.status = ?
GROUP BY sl.id
ORDER BY sl.list_date ASC, sl.order_number ASC`, warehouseID, enums.ShoppingListStatusApproved).
		Scan(&rows).Error
	return rows, err
}
