package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Offer is one active supplier's price for a product.
type Offer struct {
	SupplierProductID uuid.UUID           `json:"supplier_product_id" gorm:"column:supplier_product_id"`
	SupplierID        uuid.UUID           `json:"supplier_id" gorm:"column:supplier_id"`
	SupplierName      string              `json:"supplier_name" gorm:"column:supplier_name"`
	ProductID         uuid.UUID           `json:"product_id" gorm:"column:product_id"`
	PricePerUnit      decimal.Decimal     `json:"price_per_unit" gorm:"column:price_per_unit"`
	Unit              string              `json:"unit" gorm:"column:unit_of_measure"`
	MinOrderQuantity  decimal.NullDecimal `json:"min_order_quantity" gorm:"column:min_order_quantity"`
	InternalCode      *string             `json:"internal_code,omitempty" gorm:"column:internal_code"`
	LastPriceUpdate   time.Time           `json:"last_price_update" gorm:"column:last_price_update"`
	IsCheapest        bool                `json:"is_cheapest" gorm:"-"`
}

// Cheapest picks the lowest price; ties go to the smallest supplier id so the
// answer does not depend on row order.
func Cheapest(offers []Offer) *Offer {
	var best *Offer
	for i := range offers {
		o := &offers[i]
		if best == nil || lessOffer(o, best) {
			best = o
		}
	}
	if best == nil {
		return nil
	}
	out := *best
	out.IsCheapest = true
	return &out
}

// MarkCheapest flags every offer whose price equals the minimum.
func MarkCheapest(offers []Offer) []Offer {
	if len(offers) == 0 {
		return offers
	}
	lowest := offers[0].PricePerUnit
	for _, o := range offers[1:] {
		if o.PricePerUnit.LessThan(lowest) {
			lowest = o.PricePerUnit
		}
	}
	for i := range offers {
		offers[i].IsCheapest = offers[i].PricePerUnit.Equal(lowest)
	}
	return offers
}

func lessOffer(a, b *Offer) bool {
	if c := a.PricePerUnit.Cmp(b.PricePerUnit); c != 0 {
		return c < 0
	}
	return a.SupplierID.String() < b.SupplierID.String()
}
