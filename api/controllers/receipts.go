package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bikurim/procurement-backend/api/responses"
	"github.com/bikurim/procurement-backend/api/validators"
	"github.com/bikurim/procurement-backend/internal/receiving"
	pkgerrors "github.com/bikurim/procurement-backend/pkg/errors"
	"github.com/bikurim/procurement-backend/pkg/logger"
	"github.com/bikurim/procurement-backend/pkg/types"
)

type receiptRequest struct {
	ShoppingListID string               `json:"shopping_list_id" validate:"required,uuid"`
	ReceiptDate    *string              `json:"receipt_date"`
	Lines          []receiptLineRequest `json:"lines" validate:"required,min=1"`
	UserID         *string              `json:"user_id"`
}

// receiptLineRequest keeps quantity raw: scanned notes can carry junk values,
// those lines are dropped instead of failing the whole receipt.
type receiptLineRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  json.RawMessage `json:"quantity"`
	Unit      *string         `json:"unit_of_measure"`
}

func (l receiptLineRequest) toLine() (receiving.ReceiptLine, bool) {
	productID, err := uuid.Parse(strings.TrimSpace(l.ProductID))
	if err != nil {
		return receiving.ReceiptLine{}, false
	}
	qty, ok := lenientDecimal(l.Quantity)
	if !ok {
		return receiving.ReceiptLine{}, false
	}
	return receiving.ReceiptLine{
		ProductID: productID,
		Quantity:  qty,
		Unit:      validators.OptionalString(l.Unit),
	}, true
}

// lenientDecimal reads a JSON number or numeric string, anything unparsable
// is zero. A number a quantity column cannot hold is not usable at all.
func lenientDecimal(raw json.RawMessage) (decimal.Decimal, bool) {
	text := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if text == "" {
		return decimal.Zero, true
	}
	d, err := types.ParseQuantity(text)
	if errors.Is(err, types.ErrQuantityRange) {
		return decimal.Zero, false
	}
	if err != nil {
		return decimal.Zero, true
	}
	return d, true
}

// WarehouseReceipt applies a goods receipt against a purchase order and
// reports the discrepancy alert raised for it, if any.
func WarehouseReceipt(svc receiving.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "receiving service unavailable"))
			return
		}
		warehouseID, err := validators.ParseUUIDParam(r, "warehouseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload receiptRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		listID, err := validators.ParseUUIDString("shopping_list_id", payload.ShoppingListID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		receiptDate, err := validators.ParseOptionalDate("receipt_date", payload.ReceiptDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID, err := validators.ParseOptionalUUID("user_id", payload.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines := make([]receiving.ReceiptLine, 0, len(payload.Lines))
		for _, raw := range payload.Lines {
			if line, ok := raw.toLine(); ok {
				lines = append(lines, line)
			}
		}

		result, err := svc.Reconcile(r.Context(), receiving.ReceiptInput{
			WarehouseID:    warehouseID,
			ShoppingListID: listID,
			ReceiptDate:    receiptDate,
			Lines:          lines,
			UserID:         userID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, result)
	}
}
