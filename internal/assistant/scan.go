package assistant

import (
	"context"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/bikurim/procurement-backend/pkg/errors"
	"github.com/bikurim/procurement-backend/pkg/gemini"
	"github.com/bikurim/procurement-backend/pkg/types"
)

const defaultUnit = "יח'"

type ScannedProduct struct {
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
}

type ScanResult struct {
	SupplierName string           `json:"supplier_name"`
	Date         string           `json:"date"`
	Products     []ScannedProduct `json:"products"`
}

type rawScan struct {
	SupplierName any `json:"supplier_name"`
	Date         any `json:"date"`
	Products     []struct {
		ProductName any `json:"product_name"`
		Quantity    any `json:"quantity"`
		Unit        any `json:"unit"`
	} `json:"products"`
}

// ScanDeliveryNote reads a delivery note photo. image may be bare base64 or a
// data URL.
func (s *Service) ScanDeliveryNote(ctx context.Context, image string) (*ScanResult, error) {
	if strings.TrimSpace(image) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image is required as a base64 string")
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	mime, data := gemini.SplitDataURL(image)
	text, err := s.gen.GenerateFromImage(ctx, opScan, gemini.InlineImage{MimeType: mime, Data: data}, scanPrompt)
	if err != nil {
		return nil, err
	}

	var raw rawScan
	if err := gemini.DecodeJSON(text, &raw); err != nil {
		return nil, err
	}
	return normalizeScan(raw, types.NewDate(s.now())), nil
}

func normalizeScan(raw rawScan, today types.Date) *ScanResult {
	out := &ScanResult{
		SupplierName: trimmed(raw.SupplierName),
		Date:         trimmed(raw.Date),
		Products:     []ScannedProduct{},
	}
	if out.Date == "" {
		out.Date = today.String()
	}
	for _, p := range raw.Products {
		name := trimmed(p.ProductName)
		if name == "" {
			continue
		}
		unit := trimmed(p.Unit)
		if unit == "" {
			unit = defaultUnit
		}
		out.Products = append(out.Products, ScannedProduct{
			ProductName: name,
			Quantity:    quantityOrOne(p.Quantity),
			Unit:        unit,
		})
	}
	return out
}

// quantityOrOne reads a model-supplied quantity; missing, zero or
// unparseable values become 1.
func quantityOrOne(v any) decimal.Decimal {
	one := decimal.NewFromInt(1)
	var q decimal.Decimal
	switch t := v.(type) {
	case float64:
		q = decimal.NewFromFloat(t)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return one
		}
		q = decimal.NewFromFloat(f)
	default:
		return one
	}
	if q.IsZero() {
		return one
	}
	return q
}
