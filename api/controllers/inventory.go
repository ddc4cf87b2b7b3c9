package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bikurim/procurement-backend/api/responses"
	"github.com/bikurim/procurement-backend/api/validators"
	"github.com/bikurim/procurement-backend/internal/inventory"
	"github.com/bikurim/procurement-backend/pkg/enums"
	pkgerrors "github.com/bikurim/procurement-backend/pkg/errors"
	"github.com/bikurim/procurement-backend/pkg/logger"
)

type minQuantityRequest struct {
	MinQuantity decimal.NullDecimal `json:"min_quantity" validate:"omitempty,qty,gte=0"`
}

type movementRequest struct {
	MovementType string          `json:"movement_type" validate:"required,oneof=in out"`
	ProductID    string          `json:"product_id" validate:"required,uuid"`
	Quantity     decimal.Decimal `json:"quantity" validate:"qty,gt=0"`
	MovementDate *string         `json:"movement_date"`
	SourceType   *string         `json:"source_type"`
	ReferenceID  *string         `json:"reference_id"`
	Destination  *string         `json:"destination"`
	Note         *string         `json:"note"`
	UserID       *string         `json:"user_id"`
}

func (p movementRequest) toInput(r *http.Request) (inventory.MovementInput, error) {
	warehouseID, err := validators.ParseUUIDParam(r, "warehouseId")
	if err != nil {
		return inventory.MovementInput{}, err
	}
	productID, err := validators.ParseUUIDString("product_id", p.ProductID)
	if err != nil {
		return inventory.MovementInput{}, err
	}
	referenceID, err := validators.ParseOptionalUUID("reference_id", p.ReferenceID)
	if err != nil {
		return inventory.MovementInput{}, err
	}
	userID, err := validators.ParseOptionalUUID("user_id", p.UserID)
	if err != nil {
		return inventory.MovementInput{}, err
	}
	date, err := validators.ParseOptionalDate("movement_date", p.MovementDate)
	if err != nil {
		return inventory.MovementInput{}, err
	}
	movementType, err := enums.ParseMovementType(strings.TrimSpace(p.MovementType))
	if err != nil {
		return inventory.MovementInput{}, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{"movement_type": "must be one of: in out"})
	}
	input := inventory.MovementInput{
		WarehouseID: warehouseID,
		ProductID:   productID,
		Type:        movementType,
		Quantity:    p.Quantity,
		ReferenceID: referenceID,
		Destination: validators.OptionalString(p.Destination),
		Note:        validators.OptionalString(p.Note),
		UserID:      userID,
	}
	if date != nil {
		t := date.Time
		input.MovementDate = &t
	}
	if source := validators.OptionalString(p.SourceType); source != nil {
		parsed, err := enums.ParseMovementSource(*source)
		if err != nil {
			return inventory.MovementInput{}, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{"source_type": "is invalid"})
		}
		input.SourceType = &parsed
	}
	return input, nil
}

// WarehouseInventory lists balances with their low stock flag.
func WarehouseInventory(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}
		warehouseID, err := validators.ParseUUIDParam(r, "warehouseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListBalances(r.Context(), warehouseID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// WarehouseSetMinQuantity sets the alert threshold, creating a zero balance
// row when the product was never stocked here.
func WarehouseSetMinQuantity(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}
		warehouseID, err := validators.ParseUUIDParam(r, "warehouseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload minQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		balance, err := svc.SetMinQuantity(r.Context(), warehouseID, productID, payload.MinQuantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, balance)
	}
}

func WarehouseMovements(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}
		warehouseID, err := validators.ParseUUIDParam(r, "warehouseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.ListMovements(r.Context(), warehouseID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func WarehouseRecordMovement(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}
		var payload movementRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		movement, err := svc.RecordMovement(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, movement)
	}
}

// WarehouseAlerts lists low stock rows for one warehouse.
func WarehouseAlerts(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}
		warehouseID, err := validators.ParseUUIDParam(r, "warehouseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.LowStock(r.Context(), &warehouseID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// LowStockAlerts lists low stock rows across all active warehouses.
func LowStockAlerts(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}
		list, err := svc.LowStock(r.Context(), nil)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
