package pricing

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bikurim/procurement-backend/internal/repo"
	"github.com/bikurim/procurement-backend/pkg/db"
	"github.com/bikurim/procurement-backend/pkg/enums"
)

const offerColumns = `sp.id AS supplier_product_id,
       sp.supplier_id,
       s.name AS supplier_name,
       sp.product_id,
       sp.price_per_unit,
       sp.unit_of_measure,
       sp.min_order_quantity,
       sp.internal_code,
       sp.last_price_update`

type Repository struct {
	repo.Base
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(tx)}
}

// ActiveOffers lists active suppliers' prices for a product, cheapest first.
func (r *Repository) ActiveOffers(ctx context.Context, productID uuid.UUID) ([]Offer, error) {
	var rows []Offer
	err := r.DB(ctx).Raw(`SELECT `+offerColumns+`
FROM supplier_products sp
JOIN suppliers s ON s.id = sp.supplier_id
WHERE sp.product_id = ? AND s.status = ?
ORDER BY sp.price_per_unit ASC, sp.supplier_id ASC`, productID, enums.SupplierStatusActive).
		Scan(&rows).Error
	return rows, err
}

// CheapestOffer returns the single cheapest active offer or nil.
func (r *Repository) CheapestOffer(ctx context.Context, productID uuid.UUID) (*Offer, error) {
	var rows []Offer
	err := r.DB(ctx).Raw(`SELECT `+offerColumns+`
FROM supplier_products sp
JOIN suppliers s ON s.id = sp.supplier_id
WHERE sp.product_id = ? AND s.status = ?
ORDER BY sp.price_per_unit ASC, sp.supplier_id ASC
LIMIT 1`, productID, enums.SupplierStatusActive).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	rows[0].IsCheapest = true
	return &rows[0], nil
}

// OfferFor returns a specific supplier's price for a product regardless of
// supplier status, or nil when the pair is not listed.
func (r *Repository) OfferFor(ctx context.Context, supplierID, productID uuid.UUID) (*Offer, error) {
	var row Offer
	err := r.DB(ctx).Raw(`SELECT `+offerColumns+`
FROM supplier_products sp
JOIN suppliers s ON s.id = sp.supplier_id
WHERE sp.supplier_id = ? AND sp.product_id = ?`, supplierID, productID).
		Take(&row).Error
	if db.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
