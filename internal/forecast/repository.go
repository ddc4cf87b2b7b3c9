package forecast

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bikurim/procurement-backend/internal/repo"
	"github.com/bikurim/procurement-backend/pkg/db/models"
)

// UsageRow is a product with its stock across warehouses and outbound
// quantity since the window start.
type UsageRow struct {
	ProductID   uuid.UUID       `gorm:"column:product_id"`
	ProductName string          `gorm:"column:product_name"`
	ProductCode *string         `gorm:"column:product_code"`
	TotalStock  decimal.Decimal `gorm:"column:total_stock"`
	TotalOut    decimal.Decimal `gorm:"column:total_out"`
}

type Repository struct {
	repo.Base
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

func (r *Repository) Usage(ctx context.Context, since time.Time) ([]UsageRow, error) {
	var rows []UsageRow
	err := r.DB(ctx).Raw(`SELECT p.id AS product_id,
       p.name AS product_name,
       p.code AS product_code,
       COALESCE(stock.total, 0) AS total_stock,
       COALESCE(usage.total_out, 0) AS total_out
FROM products p
LEFT JOIN (
    SELECT product_id, SUM(quantity) AS total
    FROM warehouse_inventory
    GROUP BY product_id
) stock ON stock.product_id = p.id
LEFT JOIN (
    SELECT product_id, SUM(quantity) AS total_out
    FROM inventory_movements
    WHERE movement_type = 'out' AND movement_date >= ?
    GROUP BY product_id
) usage ON usage.product_id = p.id
ORDER BY p.name ASC`, since.Format("2006-01-02")).Scan(&rows).Error
	return rows, err
}

func (r *Repository) InsertSnapshots(ctx context.Context, rows []models.ForecastAnalysis) error {
	if len(rows) == 0 {
		return nil
	}
	return r.DB(ctx).CreateInBatches(&rows, 200).Error
}
