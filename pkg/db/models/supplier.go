package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bikurim/procurement-backend/pkg/enums"
)

// Supplier is a vendor that sells products at a listed price.
type Supplier struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string               `gorm:"column:name;not null"`
	TaxID         *string              `gorm:"column:tax_id"`
	ContactPerson *string              `gorm:"column:contact_person"`
	Phone         *string              `gorm:"column:phone"`
	Email         *string              `gorm:"column:email"`
	Address       *string              `gorm:"column:address"`
	PaymentTerms  *string              `gorm:"column:payment_terms"`
	Notes         *string              `gorm:"column:notes"`
	Status        enums.SupplierStatus `gorm:"column:status;type:supplier_status;not null;default:active"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// SupplierProduct is one price list entry; (supplier_id, product_id) is unique.
type SupplierProduct struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SupplierID       uuid.UUID           `gorm:"column:supplier_id;type:uuid;not null"`
	ProductID        uuid.UUID           `gorm:"column:product_id;type:uuid;not null"`
	PricePerUnit     decimal.Decimal     `gorm:"column:price_per_unit;type:numeric(12,2);not null"`
	Unit             string              `gorm:"column:unit_of_measure;not null"`
	MinOrderQuantity decimal.NullDecimal `gorm:"column:min_order_quantity;type:numeric(12,3)"`
	InternalCode     *string             `gorm:"column:internal_code"`
	LastPriceUpdate  time.Time           `gorm:"column:last_price_update;type:date;not null"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// PriceHistory records every price a supplier quoted for a product.
type PriceHistory struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SupplierProductID uuid.UUID       `gorm:"column:supplier_product_id;type:uuid;not null"`
	PricePerUnit      decimal.Decimal `gorm:"column:price_per_unit;type:numeric(12,2);not null"`
	RecordedAt        time.Time       `gorm:"column:recorded_at;autoCreateTime"`
}

func (PriceHistory) TableName() string {
	return "price_history"
}
