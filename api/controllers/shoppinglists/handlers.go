// Package shoppinglists exposes purchase orders and their lines over HTTP.
package shoppinglists

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/bikurim/procurement-backend/api/responses"
	"github.com/bikurim/procurement-backend/api/validators"
	internallists "github.com/bikurim/procurement-backend/internal/shoppinglists"
	"github.com/bikurim/procurement-backend/pkg/enums"
	pkgerrors "github.com/bikurim/procurement-backend/pkg/errors"
	"github.com/bikurim/procurement-backend/pkg/logger"
)

// result is what an endpoint hands back to serve. A nil body with
// http.StatusNoContent writes no payload.
type result struct {
	status int
	body   any
}

func ok(body any) (result, error)      { return result{status: http.StatusOK, body: body}, nil }
func created(body any) (result, error) { return result{status: http.StatusCreated, body: body}, nil }
func noContent() (result, error)       { return result{status: http.StatusNoContent}, nil }

// serve adapts an endpoint to http.HandlerFunc, writing the error envelope
// for any failure including a missing service.
func serve(svc internallists.Service, logg *logger.Logger, endpoint func(*http.Request) (result, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shopping lists service unavailable"))
			return
		}
		res, err := endpoint(r)
		switch {
		case err != nil:
			responses.WriteError(r.Context(), logg, w, err)
		case res.status == http.StatusCreated:
			responses.WriteCreated(w, res.body)
		case res.status == http.StatusNoContent:
			w.WriteHeader(http.StatusNoContent)
		default:
			responses.WriteSuccess(w, res.body)
		}
	}
}

func listID(r *http.Request) (uuid.UUID, error) {
	return validators.ParseUUIDParam(r, "listId")
}

func listFilter(r *http.Request) (internallists.ListFilter, error) {
	var filter internallists.ListFilter
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseShoppingListStatus(raw)
		if err != nil {
			return filter, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").
				WithDetails(map[string]any{"field": "status"})
		}
		filter.Status = &status
	}
	warehouseID, err := validators.ParseQueryUUID(r, "warehouse_id")
	filter.WarehouseID = warehouseID
	return filter, err
}

// List returns order headers, newest first, optionally filtered by status
// and warehouse.
func List(svc internallists.Service, logg *logger.Logger) http.HandlerFunc {
	return serve(svc, logg, func(r *http.Request) (result, error) {
		filter, err := listFilter(r)
		if err != nil {
			return result{}, err
		}
		lists, err := svc.List(r.Context(), filter)
		if err != nil {
			return result{}, err
		}
		return ok(lists)
	})
}

func Get(svc internallists.Service, logg *logger.Logger) http.HandlerFunc {
	return serve(svc, logg, func(r *http.Request) (result, error) {
		id, err := listID(r)
		if err != nil {
			return result{}, err
		}
		detail, err := svc.Get(r.Context(), id)
		if err != nil {
			return result{}, err
		}
		return ok(detail)
	})
}

func Create(svc internallists.Service, logg *logger.Logger) http.HandlerFunc {
	return serve(svc, logg, func(r *http.Request) (result, error) {
		var payload createRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return result{}, err
		}
		input, err := payload.toInput()
		if err != nil {
			return result{}, err
		}
		list, err := svc.Create(r.Context(), input)
		if err != nil {
			return result{}, err
		}
		return created(list)
	})
}

// Duplicate copies an order and its lines into a fresh draft.
func Duplicate(svc internallists.Service, logg *logger.Logger) http.HandlerFunc {
	return serve(svc, logg, func(r *http.Request) (result, error) {
		id, err := listID(r)
		if err != nil {
			return result{}, err
		}
		list, err := svc.Duplicate(r.Context(), id)
		if err != nil {
			return result{}, err
		}
		return created(list)
	})
}

func Update(svc internallists.Service, logg *logger.Logger) http.HandlerFunc {
	return serve(svc, logg, func(r *http.Request) (result, error) {
		id, err := listID(r)
		if err != nil {
			return result{}, err
		}
		var payload updateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return result{}, err
		}
		patch, err := payload.toPatch()
		if err != nil {
			return result{}, err
		}
		list, err := svc.Update(r.Context(), id, patch)
		if err != nil {
			return result{}, err
		}
		return ok(list)
	})
}

func Delete(svc internallists.Service, logg *logger.Logger) http.HandlerFunc {
	return serve(svc, logg, func(r *http.Request) (result, error) {
		id, err := listID(r)
		if err != nil {
			return result{}, err
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			return result{}, err
		}
		return noContent()
	})
}

// SuppliersForProduct lists every supplier offer for a product, cheapest
// first.
func SuppliersForProduct(svc internallists.Service, logg *logger.Logger) http.HandlerFunc {
	return serve(svc, logg, func(r *http.Request) (result, error) {
		id, err := listID(r)
		if err != nil {
			return result{}, err
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			return result{}, err
		}
		offers, err := svc.SuppliersForProduct(r.Context(), id, productID)
		if err != nil {
			return result{}, err
		}
		return ok(offers)
	})
}

func BySupplier(svc internallists.Service, logg *logger.Logger) http.HandlerFunc {
	return serve(svc, logg, func(r *http.Request) (result, error) {
		id, err := listID(r)
		if err != nil {
			return result{}, err
		}
		grouped, err := svc.BySupplier(r.Context(), id)
		if err != nil {
			return result{}, err
		}
		return ok(grouped)
	})
}
