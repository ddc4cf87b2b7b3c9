package controllers

import (
	"net/http"

	"github.com/bikurim/procurement-backend/api/responses"
	"github.com/bikurim/procurement-backend/api/validators"
	"github.com/bikurim/procurement-backend/internal/discrepancies"
	pkgerrors "github.com/bikurim/procurement-backend/pkg/errors"
	"github.com/bikurim/procurement-backend/pkg/logger"
)

// DiscrepancyAlertList returns unread alerts first, newest first within each group.
func DiscrepancyAlertList(svc discrepancies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discrepancy service unavailable"))
			return
		}
		warehouseID, err := validators.ParseQueryUUID(r, "warehouse_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		unread, err := validators.ParseQueryBool(r, "unread")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter := discrepancies.ListFilter{WarehouseID: warehouseID}
		if unread != nil {
			filter.UnreadOnly = *unread
		}
		list, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func DiscrepancyAlertMarkRead(svc discrepancies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discrepancy service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "alertId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		alert, err := svc.MarkRead(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, alert)
	}
}
