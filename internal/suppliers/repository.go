package suppliers

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bikurim/procurement-backend/internal/repo"
	"github.com/bikurim/procurement-backend/pkg/db"
	"github.com/bikurim/procurement-backend/pkg/db/models"
	"github.com/bikurim/procurement-backend/pkg/enums"
)

// ListFilter narrows the supplier list. Query matches name, contact person or email.
type ListFilter struct {
	Status *enums.SupplierStatus
	Query  string
}

type Repository struct {
	repo.Base
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(tx)}
}

func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Supplier, error) {
	q := r.DB(ctx).Model(&models.Supplier{})
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if term := strings.TrimSpace(filter.Query); term != "" {
		like := repo.Contains(term)
		q = q.Where("(name ILIKE ? OR contact_person ILIKE ? OR email ILIKE ?)", like, like, like)
	}
	var rows []models.Supplier
	err := q.Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *Repository) Find(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	var s models.Supplier
	if err := r.DB(ctx).Where("id = ?", id).Take(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) Create(ctx context.Context, s *models.Supplier) error {
	return r.DB(ctx).Create(s).Error
}

// Update applies column updates and reports whether the row exists.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (bool, error) {
	updates["updated_at"] = time.Now().UTC()
	res := r.DB(ctx).Model(&models.Supplier{}).Where("id = ?", id).Updates(updates)
	return res.RowsAffected > 0, res.Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.Supplier{})
	return res.RowsAffected > 0, res.Error
}

func (r *Repository) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	if err := r.DB(ctx).Where("id = ?", id).Take(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// PriceRow is a price list entry joined with product display fields.
type PriceRow struct {
	models.SupplierProduct
	ProductName string  `gorm:"column:product_name"`
	ProductCode *string `gorm:"column:product_code"`
}

func (r *Repository) PriceList(ctx context.Context, supplierID uuid.UUID) ([]PriceRow, error) {
	var rows []PriceRow
	err := r.DB(ctx).Raw(`SELECT sp.*, p.name AS product_name, p.code AS product_code
FROM supplier_products sp
JOIN products p ON p.id = sp.product_id
WHERE sp.supplier_id = ?
ORDER BY p.name ASC`, supplierID).Scan(&rows).Error
	return rows, err
}

// LockPrice reads the (supplier, product) entry FOR UPDATE, or nil when absent.
func (r *Repository) LockPrice(ctx context.Context, supplierID, productID uuid.UUID) (*models.SupplierProduct, error) {
	var row models.SupplierProduct
	err := r.ForUpdate(ctx).
		Where("supplier_id = ? AND product_id = ?", supplierID, productID).
		Take(&row).Error
	if db.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// UpsertPrice inserts or updates the entry. Omitted min_order_quantity and
// internal_code keep their stored values. row is refreshed from RETURNING.
func (r *Repository) UpsertPrice(ctx context.Context, row *models.SupplierProduct) error {
	return r.DB(ctx).Raw(`INSERT INTO supplier_products
    (supplier_id, product_id, price_per_unit, unit_of_measure, min_order_quantity, internal_code, last_price_update)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (supplier_id, product_id) DO UPDATE SET
    price_per_unit = EXCLUDED.price_per_unit,
    unit_of_measure = EXCLUDED.unit_of_measure,
    min_order_quantity = COALESCE(EXCLUDED.min_order_quantity, supplier_products.min_order_quantity),
    internal_code = COALESCE(EXCLUDED.internal_code, supplier_products.internal_code),
    last_price_update = EXCLUDED.last_price_update,
    updated_at = NOW()
RETURNING *`,
		row.SupplierID, row.ProductID, row.PricePerUnit, row.Unit, row.MinOrderQuantity, row.InternalCode, row.LastPriceUpdate,
	).Scan(row).Error
}

func (r *Repository) InsertPriceHistory(ctx context.Context, entry *models.PriceHistory) error {
	return r.DB(ctx).Create(entry).Error
}

func (r *Repository) DeletePrice(ctx context.Context, supplierID, productID uuid.UUID) (bool, error) {
	res := r.DB(ctx).Where("supplier_id = ? AND product_id = ?", supplierID, productID).Delete(&models.SupplierProduct{})
	return res.RowsAffected > 0, res.Error
}
