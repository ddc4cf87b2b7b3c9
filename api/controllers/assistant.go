package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bikurim/procurement-backend/api/responses"
	"github.com/bikurim/procurement-backend/api/validators"
	"github.com/bikurim/procurement-backend/internal/assistant"
	pkgerrors "github.com/bikurim/procurement-backend/pkg/errors"
	"github.com/bikurim/procurement-backend/pkg/logger"
)

type DeliveryNoteScanner interface {
	ScanDeliveryNote(ctx context.Context, image string) (*assistant.ScanResult, error)
}

type ForecastCommentator interface {
	ForecastCommentary(ctx context.Context, in assistant.CommentaryInput) (*assistant.Commentary, error)
}

type SupplierEmailDrafter interface {
	SupplierEmails(ctx context.Context, listID uuid.UUID) ([]assistant.EmailDraft, error)
}

type scanRequest struct {
	Image string `json:"image"`
}

type commentaryRequest struct {
	ProductID             *string             `json:"product_id"`
	ProductName           string              `json:"product_name" validate:"required"`
	TotalStock            decimal.Decimal     `json:"total_stock"`
	DailyAvgUsage         decimal.Decimal     `json:"daily_avg_usage"`
	DaysUntilShortage     decimal.NullDecimal `json:"days_until_shortage"`
	EstimatedShortageDate *string             `json:"estimated_shortage_date"`
	HasSufficientHistory  bool                `json:"has_sufficient_history"`
}

// ScanDeliveryNote reads a base64 image (plain or data URL) of a supplier
// delivery note and returns the extracted lines for review.
func ScanDeliveryNote(svc DeliveryNoteScanner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "AI service is not configured"))
			return
		}
		var payload scanRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ScanDeliveryNote(r.Context(), payload.Image)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ForecastCommentary(svc ForecastCommentator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "AI service is not configured"))
			return
		}
		var payload commentaryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParseOptionalUUID("product_id", payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		commentary, err := svc.ForecastCommentary(r.Context(), assistant.CommentaryInput{
			ProductID:             productID,
			ProductName:           validators.SanitizeString(payload.ProductName, 255),
			TotalStock:            payload.TotalStock,
			DailyAvgUsage:         payload.DailyAvgUsage,
			DaysUntilShortage:     payload.DaysUntilShortage,
			EstimatedShortageDate: validators.OptionalString(payload.EstimatedShortageDate),
			HasSufficientHistory:  payload.HasSufficientHistory,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, commentary)
	}
}

// SupplierEmailDrafts drafts one order email per supplier group of a list.
func SupplierEmailDrafts(svc SupplierEmailDrafter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "AI service is not configured"))
			return
		}
		listID, err := validators.ParseUUIDParam(r, "listId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		drafts, err := svc.SupplierEmails(r.Context(), listID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, drafts)
	}
}
