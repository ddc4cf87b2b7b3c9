package suppliers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bikurim/procurement-backend/pkg/db/models"
	"github.com/bikurim/procurement-backend/pkg/enums"
	"github.com/bikurim/procurement-backend/pkg/types"
)

type SupplierDTO struct {
	ID            uuid.UUID            `json:"id"`
	Name          string               `json:"name"`
	TaxID         *string              `json:"tax_id"`
	ContactPerson *string              `json:"contact_person"`
	Phone         *string              `json:"phone"`
	Email         *string              `json:"email"`
	Address       *string              `json:"address"`
	PaymentTerms  *string              `json:"payment_terms"`
	Notes         *string              `json:"notes"`
	Status        enums.SupplierStatus `json:"status"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// SupplierDetailDTO is a supplier with its full price list.
type SupplierDetailDTO struct {
	SupplierDTO
	Products []PriceEntryDTO `json:"products"`
}

type PriceEntryDTO struct {
	ID               uuid.UUID           `json:"id"`
	SupplierID       uuid.UUID           `json:"supplier_id"`
	ProductID        uuid.UUID           `json:"product_id"`
	ProductName      string              `json:"product_name,omitempty"`
	ProductCode      *string             `json:"product_code,omitempty"`
	PricePerUnit     decimal.Decimal     `json:"price_per_unit"`
	Unit             string              `json:"unit_of_measure"`
	MinOrderQuantity decimal.NullDecimal `json:"min_order_quantity"`
	InternalCode     *string             `json:"internal_code"`
	LastPriceUpdate  types.Date          `json:"last_price_update"`
}

func FromModel(s models.Supplier) SupplierDTO {
	return SupplierDTO{
		ID:            s.ID,
		Name:          s.Name,
		TaxID:         s.TaxID,
		ContactPerson: s.ContactPerson,
		Phone:         s.Phone,
		Email:         s.Email,
		Address:       s.Address,
		PaymentTerms:  s.PaymentTerms,
		Notes:         s.Notes,
		Status:        s.Status,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func priceEntryFromModel(sp models.SupplierProduct, productName string, productCode *string) PriceEntryDTO {
	return PriceEntryDTO{
		ID:               sp.ID,
		SupplierID:       sp.SupplierID,
		ProductID:        sp.ProductID,
		ProductName:      productName,
		ProductCode:      productCode,
		PricePerUnit:     sp.PricePerUnit,
		Unit:             sp.Unit,
		MinOrderQuantity: sp.MinOrderQuantity,
		InternalCode:     sp.InternalCode,
		LastPriceUpdate:  types.NewDate(sp.LastPriceUpdate),
	}
}
