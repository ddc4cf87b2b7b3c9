package shoppinglists

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bikurim/procurement-backend/api/validators"
	internallists "github.com/bikurim/procurement-backend/internal/shoppinglists"
	"github.com/bikurim/procurement-backend/pkg/enums"
	pkgerrors "github.com/bikurim/procurement-backend/pkg/errors"
	"github.com/bikurim/procurement-backend/pkg/types"
)

type createRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	ListDate    *string `json:"list_date"`
	Notes       *string `json:"notes"`
	WarehouseID *string `json:"warehouse_id"`
	CreatedBy   *string `json:"created_by"`
}

type updateRequest struct {
	Name        *string                   `json:"name" validate:"omitempty,max=255"`
	ListDate    *string                   `json:"list_date"`
	Notes       types.Nullable[string]    `json:"notes"`
	Status      *string                   `json:"status"`
	WarehouseID types.Nullable[string]    `json:"warehouse_id"`
	EmailSentAt types.Nullable[time.Time] `json:"email_sent_at"`
}

type addItemRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity" validate:"qty,gt=0"`
	Unit      *string         `json:"unit_of_measure"`
	Notes     *string         `json:"notes"`
}

type updateItemRequest struct {
	Quantity           *decimal.Decimal                `json:"quantity" validate:"omitempty,qty,gt=0"`
	Unit               *string                         `json:"unit_of_measure"`
	SelectedSupplierID types.Nullable[string]          `json:"selected_supplier_id"`
	PriceAtSelection   types.Nullable[decimal.Decimal] `json:"price_at_selection"`
	Notes              types.Nullable[string]          `json:"notes"`
}

func (p createRequest) toInput() (internallists.CreateInput, error) {
	date, err := validators.ParseOptionalDate("list_date", p.ListDate)
	if err != nil {
		return internallists.CreateInput{}, err
	}
	warehouseID, err := validators.ParseOptionalUUID("warehouse_id", p.WarehouseID)
	if err != nil {
		return internallists.CreateInput{}, err
	}
	createdBy, err := validators.ParseOptionalUUID("created_by", p.CreatedBy)
	if err != nil {
		return internallists.CreateInput{}, err
	}
	return internallists.CreateInput{
		Name:        p.Name,
		ListDate:    date,
		Notes:       validators.OptionalString(p.Notes),
		WarehouseID: warehouseID,
		CreatedBy:   createdBy,
	}, nil
}

func (p updateRequest) toPatch() (internallists.HeaderPatch, error) {
	patch := internallists.HeaderPatch{
		Name:        p.Name,
		Notes:       p.Notes,
		EmailSentAt: p.EmailSentAt,
	}
	date, err := validators.ParseOptionalDate("list_date", p.ListDate)
	if err != nil {
		return patch, err
	}
	patch.ListDate = date
	if p.Status != nil {
		status, err := enums.ParseShoppingListStatus(strings.TrimSpace(*p.Status))
		if err != nil {
			return patch, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").WithDetails(map[string]any{"field": "status"})
		}
		patch.Status = &status
	}
	if p.WarehouseID.Set {
		patch.WarehouseID, err = nullableUUID("warehouse_id", p.WarehouseID)
		if err != nil {
			return patch, err
		}
	}
	return patch, nil
}

func (p addItemRequest) toInput() (internallists.AddItemInput, error) {
	productID, err := validators.ParseUUIDString("product_id", p.ProductID)
	if err != nil {
		return internallists.AddItemInput{}, err
	}
	return internallists.AddItemInput{
		ProductID: productID,
		Quantity:  p.Quantity,
		Unit:      validators.OptionalString(p.Unit),
		Notes:     validators.OptionalString(p.Notes),
	}, nil
}

func (p updateItemRequest) toInput() (internallists.UpdateItemInput, error) {
	supplierID, err := nullableUUID("selected_supplier_id", p.SelectedSupplierID)
	if err != nil {
		return internallists.UpdateItemInput{}, err
	}
	if price := p.PriceAtSelection.Value; price != nil && !types.PriceFits(*price) {
		return internallists.UpdateItemInput{}, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{"price_at_selection": "must have at most 10 integer digits and 2 decimal places"})
	}
	return internallists.UpdateItemInput{
		Quantity:           p.Quantity,
		Unit:               validators.OptionalString(p.Unit),
		SelectedSupplierID: supplierID,
		PriceAtSelection:   p.PriceAtSelection,
		Notes:              p.Notes,
	}, nil
}

func nullableUUID(field string, raw types.Nullable[string]) (types.Nullable[uuid.UUID], error) {
	if !raw.Set {
		return types.Nullable[uuid.UUID]{}, nil
	}
	if raw.Value == nil || strings.TrimSpace(*raw.Value) == "" {
		return types.Null[uuid.UUID](), nil
	}
	id, err := validators.ParseUUIDString(field, *raw.Value)
	if err != nil {
		return types.Nullable[uuid.UUID]{}, err
	}
	return types.Some(id), nil
}
