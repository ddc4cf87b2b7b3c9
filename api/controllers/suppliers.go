package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bikurim/procurement-backend/api/responses"
	"github.com/bikurim/procurement-backend/api/validators"
	"github.com/bikurim/procurement-backend/internal/suppliers"
	"github.com/bikurim/procurement-backend/pkg/enums"
	pkgerrors "github.com/bikurim/procurement-backend/pkg/errors"
	"github.com/bikurim/procurement-backend/pkg/logger"
	"github.com/bikurim/procurement-backend/pkg/types"
)

type supplierCreateRequest struct {
	Name          string  `json:"name" validate:"required,max=255"`
	TaxID         *string `json:"tax_id"`
	ContactPerson *string `json:"contact_person"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email" validate:"omitempty,email"`
	Address       *string `json:"address"`
	PaymentTerms  *string `json:"payment_terms"`
	Notes         *string `json:"notes"`
	Status        *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

type supplierUpdateRequest struct {
	Name          *string                `json:"name" validate:"omitempty,max=255"`
	TaxID         types.Nullable[string] `json:"tax_id"`
	ContactPerson types.Nullable[string] `json:"contact_person"`
	Phone         types.Nullable[string] `json:"phone"`
	Email         types.Nullable[string] `json:"email"`
	Address       types.Nullable[string] `json:"address"`
	PaymentTerms  types.Nullable[string] `json:"payment_terms"`
	Notes         types.Nullable[string] `json:"notes"`
	Status        *string                `json:"status" validate:"omitempty,oneof=active inactive"`
}

type supplierPriceRequest struct {
	ProductID        string              `json:"product_id" validate:"required,uuid"`
	PricePerUnit     decimal.Decimal     `json:"price_per_unit" validate:"qty,gte=0,lt=10000000000"`
	Unit             *string             `json:"unit_of_measure"`
	MinOrderQuantity decimal.NullDecimal `json:"min_order_quantity" validate:"omitempty,qty,gte=0,lt=1000000000"`
	InternalCode     *string             `json:"internal_code"`
}

func SupplierList(svc suppliers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "suppliers service unavailable"))
			return
		}
		filter := suppliers.ListFilter{Query: strings.TrimSpace(r.URL.Query().Get("q"))}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseSupplierStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").WithDetails(map[string]any{"field": "status"}))
				return
			}
			filter.Status = &status
		}
		list, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func SupplierGet(svc suppliers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "suppliers service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "supplierId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		detail, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

func SupplierCreate(svc suppliers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "suppliers service unavailable"))
			return
		}
		var payload supplierCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := suppliers.CreateInput{
			Name:          payload.Name,
			TaxID:         validators.OptionalString(payload.TaxID),
			ContactPerson: validators.OptionalString(payload.ContactPerson),
			Phone:         validators.OptionalString(payload.Phone),
			Email:         validators.OptionalString(payload.Email),
			Address:       validators.OptionalString(payload.Address),
			PaymentTerms:  validators.OptionalString(payload.PaymentTerms),
			Notes:         validators.OptionalString(payload.Notes),
		}
		if payload.Status != nil {
			input.Status = enums.SupplierStatus(*payload.Status)
		}
		supplier, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, supplier)
	}
}

func SupplierUpdate(svc suppliers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "suppliers service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "supplierId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload supplierUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := suppliers.UpdateInput{
			Name:          payload.Name,
			TaxID:         payload.TaxID,
			ContactPerson: payload.ContactPerson,
			Phone:         payload.Phone,
			Email:         payload.Email,
			Address:       payload.Address,
			PaymentTerms:  payload.PaymentTerms,
			Notes:         payload.Notes,
		}
		if payload.Status != nil {
			status := enums.SupplierStatus(*payload.Status)
			input.Status = &status
		}
		supplier, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, supplier)
	}
}

func SupplierDelete(svc suppliers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "suppliers service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "supplierId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// SupplierUpsertPrice creates or refreshes one price list entry.
func SupplierUpsertPrice(svc suppliers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "suppliers service unavailable"))
			return
		}
		supplierID, err := validators.ParseUUIDParam(r, "supplierId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload supplierPriceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParseUUIDString("product_id", payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		entry, err := svc.UpsertPrice(r.Context(), supplierID, suppliers.PriceInput{
			ProductID:        productID,
			PricePerUnit:     payload.PricePerUnit,
			Unit:             validators.OptionalString(payload.Unit),
			MinOrderQuantity: payload.MinOrderQuantity,
			InternalCode:     validators.OptionalString(payload.InternalCode),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entry)
	}
}

func SupplierDeletePrice(svc suppliers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "suppliers service unavailable"))
			return
		}
		supplierID, err := validators.ParseUUIDParam(r, "supplierId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeletePrice(r.Context(), supplierID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
