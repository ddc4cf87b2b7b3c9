package shoppinglists

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

// ListRow is an order header with its warehouse name and item aggregates.
type ListRow struct {
	models.ShoppingList
	WarehouseName *string         `gorm:"column:warehouse_name"`
	ItemCount     int64           `gorm:"column:item_count"`
	TotalAmount   decimal.Decimal `gorm:"column:total_amount"`
}

// ItemRow is an order line joined with product, supplier and the number of
// active suppliers offering the product.
type ItemRow struct {
	models.ShoppingListItem
	ProductName   string  `gorm:"column:product_name"`
	ProductCode   *string `gorm:"column:product_code"`
	SupplierName  *string `gorm:"column:supplier_name"`
	SupplierCount int64   `gorm:"column:supplier_count"`
}

type ListFilter struct {
	Status      *enums.ShoppingListStatus
	WarehouseID *uuid.UUID
}

const listSelect = `SELECT sl.*,
       w.name AS warehouse_name,
       (SELECT COUNT(*) FROM shopping_list_items i WHERE i.shopping_list_id = sl.id) AS item_count,
       (SELECT COALESCE(SUM(i.quantity * COALESCE(i.price_at_selection, 0)), 0)
          FROM shopping_list_items i WHERE i.shopping_list_id = sl.id) AS total_amount
FROM shopping_lists sl
LEFT JOIN warehouses w ON w.id = sl.warehouse_id`

const itemSelect = `SELECT i.*,
       p.name AS product_name,
       p.code AS product_code,
       s.name AS supplier_name,
       (SELECT COUNT(*) FROM supplier_products sp
          JOIN suppliers s2 ON s2.id = sp.supplier_id AND s2.status = 'active'
         WHERE sp.product_id = i.product_id) AS supplier_count
FROM shopping_list_items i
JOIN products p ON p.id = i.product_id
LEFT JOIN suppliers s ON s.id = i.selected_supplier_id`

type Repository struct {
	repo.Base
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(tx)}
}

func (r *Repository) List(ctx context.Context, filter ListFilter) ([]ListRow, error) {
	query := listSelect + "\nWHERE 1=1"
	var args []any
	if filter.Status != nil {
		query += " AND sl.status = ?"
		args = append(args, *filter.Status)
	}
	if filter.WarehouseID != nil {
		query += " AND sl.warehouse_id = ?"
		args = append(args, *filter.WarehouseID)
	}
	query += "\nORDER BY sl.list_date DESC, sl.order_number DESC"

	var rows []ListRow
	err := r.DB(ctx).Raw(query, args...).Scan(&rows).Error
	return rows, err
}

func (r *Repository) Find(ctx context.Context, id uuid.UUID) (*ListRow, error) {
	var row ListRow
	if err := r.DB(ctx).Raw(listSelect+"\nWHERE sl.id = ?", id).Take(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Lock reads the order header FOR UPDATE so status checks and the writes they
// guard see the same row.
func (r *Repository) Lock(ctx context.Context, id uuid.UUID) (*models.ShoppingList, error) {
	var row models.ShoppingList
	err := r.ForUpdate(ctx).Where("id = ?", id).Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) Create(ctx context.Context, list *models.ShoppingList) error {
	return r.DB(ctx).Create(list).Error
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	updates["updated_at"] = time.Now().UTC()
	return r.DB(ctx).Model(&models.ShoppingList{}).Where("id = ?", id).Updates(updates).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.DB(ctx).Where("id = ?", id).Delete(&models.ShoppingList{}).Error
}

func (r *Repository) Items(ctx context.Context, listID uuid.UUID) ([]ItemRow, error) {
	var rows []ItemRow
	err := r.DB(ctx).Raw(itemSelect+"\nWHERE i.shopping_list_id = ?\nORDER BY i.sort_order ASC, i.id ASC", listID).
		Scan(&rows).Error
	return rows, err
}

// ItemsBySupplier orders lines by supplier name with unassigned lines last.
func (r *Repository) ItemsBySupplier(ctx context.Context, listID uuid.UUID) ([]ItemRow, error) {
	var rows []ItemRow
	err := r.DB(ctx).Raw(itemSelect+"\nWHERE i.shopping_list_id = ?\nORDER BY s.name ASC NULLS LAST, i.sort_order ASC", listID).
		Scan(&rows).Error
	return rows, err
}

func (r *Repository) FindItem(ctx context.Context, listID, itemID uuid.UUID) (*ItemRow, error) {
	var row ItemRow
	err := r.DB(ctx).Raw(itemSelect+"\nWHERE i.shopping_list_id = ? AND i.id = ?", listID, itemID).Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) NextSortOrder(ctx context.Context, listID uuid.UUID) (int, error) {
	var next int
	err := r.DB(ctx).Raw(`SELECT COALESCE(MAX(sort_order), 0) + 1 FROM shopping_list_items WHERE shopping_list_id = ?`, listID).
		Scan(&next).Error
	return next, err
}

func (r *Repository) InsertItem(ctx context.Context, item *models.ShoppingListItem) error {
	return r.DB(ctx).Create(item).Error
}

func (r *Repository) InsertItems(ctx context.Context, items []models.ShoppingListItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.DB(ctx).Create(&items).Error
}

func (r *Repository) UpdateItem(ctx context.Context, itemID uuid.UUID, updates map[string]any) error {
	updates["updated_at"] = time.Now().UTC()
	return r.DB(ctx).Model(&models.ShoppingListItem{}).Where("id = ?", itemID).Updates(updates).Error
}

func (r *Repository) DeleteItem(ctx context.Context, listID, itemID uuid.UUID) (bool, error) {
	res := r.DB(ctx).Where("id = ? AND shopping_list_id = ?", itemID, listID).Delete(&models.ShoppingListItem{})
	return res.RowsAffected > 0, res.Error
}

func (r *Repository) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	if err := r.DB(ctx).Where("id = ?", id).Take(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}
