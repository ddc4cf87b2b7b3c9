package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/bikurim/procurement-backend/api/responses"
	"github.com/bikurim/procurement-backend/api/validators"
	"github.com/bikurim/procurement-backend/internal/products"
	pkgerrors "github.com/bikurim/procurement-backend/pkg/errors"
	"github.com/bikurim/procurement-backend/pkg/logger"
	"github.com/bikurim/procurement-backend/pkg/types"
)

type productCreateRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Code        *string `json:"code" validate:"omitempty,max=64"`
	CategoryID  *string `json:"category_id"`
	DefaultUnit string  `json:"default_unit" validate:"max=32"`
	Description *string `json:"description"`
}

type productUpdateRequest struct {
	Name        *string                `json:"name" validate:"omitempty,max=255"`
	Code        types.Nullable[string] `json:"code"`
	CategoryID  types.Nullable[string] `json:"category_id"`
	DefaultUnit *string                `json:"default_unit" validate:"omitempty,max=32"`
	Description types.Nullable[string] `json:"description"`
}

func ProductList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		categoryID, err := validators.ParseQueryUUID(r, "category_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.List(r.Context(), products.ListFilter{
			CategoryID: categoryID,
			Query:      strings.TrimSpace(r.URL.Query().Get("q")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ProductGet returns the product with every supplier offer, cheapest flagged.
func ProductGet(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "productId")
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

func ProductCreate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		var payload productCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		categoryID, err := validators.ParseOptionalUUID("category_id", payload.CategoryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Create(r.Context(), products.CreateInput{
			Name:        payload.Name,
			Code:        validators.OptionalString(payload.Code),
			CategoryID:  categoryID,
			DefaultUnit: strings.TrimSpace(payload.DefaultUnit),
			Description: validators.OptionalString(payload.Description),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, product)
	}
}

func ProductUpdate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload productUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		categoryID, err := nullableUUID("category_id", payload.CategoryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Update(r.Context(), id, products.UpdateInput{
			Name:        payload.Name,
			Code:        payload.Code,
			CategoryID:  categoryID,
			DefaultUnit: payload.DefaultUnit,
			Description: payload.Description,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func ProductDelete(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "productId")
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

// nullableUUID converts a PATCH id field, keeping the absent/null/value states.
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
