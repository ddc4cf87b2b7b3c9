package receiving

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bikurim/procurement-backend/internal/inventory"
	"github.com/bikurim/procurement-backend/pkg/db/models"
)

// Repository adds order and alert access on top of the inventory ledger.
type Repository struct {
	*inventory.Repository
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Repository: inventory.NewRepository(conn)}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Repository: inventory.NewRepository(tx)}
}

func (r *Repository) FindOrder(ctx context.Context, id uuid.UUID) (*models.ShoppingList, error) {
	var list models.ShoppingList
	if err := r.DB(ctx).Where("id = ?", id).Take(&list).Error; err != nil {
		return nil, err
	}
	return &list, nil
}

// OrderedLines sums the order's items per product.
func (r *Repository) OrderedLines(ctx context.Context, listID uuid.UUID) ([]Line, error) {
	var rows []Line
	err := r.DB(ctx).Raw(`SELECT i.product_id,
       p.name AS product_name,
       SUM(i.quantity) AS quantity,
       MIN(i.unit_of_measure) AS unit
FROM shopping_list_items i
JOIN products p ON p.id = i.product_id
WHERE i.shopping_list_id = ?
GROUP BY i.product_id, p.name
ORDER BY MIN(i.sort_order) ASC, p.name ASC`, listID).Scan(&rows).Error
	return rows, err
}

func (r *Repository) FindProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	out := make(map[uuid.UUID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Product
	if err := r.DB(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, p := range rows {
		out[p.ID] = p
	}
	return out, nil
}

func (r *Repository) InsertAlert(ctx context.Context, alert *models.ReceiptDiscrepancyAlert) error {
	return r.DB(ctx).Create(alert).Error
}
