package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/bikurim/procurement-backend/pkg/errors"
)

type lineRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity" validate:"qty,gt=0"`
}

type bodyRequest struct {
	Name     string              `json:"name" validate:"required"`
	MinQty   decimal.NullDecimal `json:"min_quantity" validate:"omitempty,qty,gte=0"`
	Lines    []lineRequest       `json:"lines" validate:"dive"`
	Optional *string             `json:"optional,omitempty"`
}

func decode(t *testing.T, body string) (bodyRequest, error) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	var payload bodyRequest
	err := DecodeJSONBody(req, &payload)
	return payload, err
}

func TestDecodeJSONBodyAcceptsDecimals(t *testing.T) {
	payload, err := decode(t, `{"name":"קמח","min_quantity":"2.5","lines":[{"product_id":"0b6d5d2c-4ad5-4b8f-9a5d-1d3f3c2f3b11","quantity":3}]}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !payload.MinQty.Valid || !payload.MinQty.Decimal.Equal(decimal.RequireFromString("2.5")) {
		t.Fatalf("unexpected min quantity %+v", payload.MinQty)
	}
	if !payload.Lines[0].Quantity.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("unexpected quantity %s", payload.Lines[0].Quantity)
	}
}

func TestDecodeJSONBodyReportsFieldPaths(t *testing.T) {
	_, err := decode(t, `{"name":"","min_quantity":-1,"lines":[{"product_id":"nope","quantity":0}]}`)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := pkgerrors.As(err).Details().(map[string]string)
	if !ok {
		t.Fatalf("unexpected details type %T", pkgerrors.As(err).Details())
	}
	for _, field := range []string{"name", "min_quantity", "lines[0].product_id", "lines[0].quantity"} {
		if _, ok := details[field]; !ok {
			t.Fatalf("missing detail for %s in %v", field, details)
		}
	}
}

func TestDecodeJSONBodyRejectsUnstorableQuantities(t *testing.T) {
	cases := map[string]string{
		"huge exponent":   `1e100000000`,
		"too many places": `"0.0004"`,
		"overflow":        `1e12`,
	}
	for name, qty := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := decode(t, `{"name":"x","min_quantity":`+qty+`,"lines":[{"product_id":"0b6d5d2c-4ad5-4b8f-9a5d-1d3f3c2f3b11","quantity":`+qty+`}]}`)
			if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			details, _ := pkgerrors.As(err).Details().(map[string]string)
			for _, field := range []string{"min_quantity", "lines[0].quantity"} {
				if !strings.Contains(details[field], "3 decimal places") {
					t.Fatalf("unexpected detail for %s: %v", field, details)
				}
			}
		})
	}
}

func TestDecodeJSONBodyRejectsUnknownFieldsAndEmptyBody(t *testing.T) {
	if _, err := decode(t, `{"name":"x","extra":1}`); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for unknown field, got %v", err)
	}
	if _, err := decode(t, ``); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for empty body, got %v", err)
	}
}

func TestParseQueryHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?days=abc&limit=900&unread=true&warehouse_id=bad", nil)

	if got := ParseQueryIntLenient(req, "days", 30); got != 30 {
		t.Fatalf("expected fallback 30, got %d", got)
	}
	if _, err := ParseQueryInt(req, "limit", 25, 1, 500); err == nil {
		t.Fatalf("expected out of range error")
	}
	unread, err := ParseQueryBool(req, "unread")
	if err != nil || unread == nil || !*unread {
		t.Fatalf("unexpected unread %v %v", unread, err)
	}
	if _, err := ParseQueryUUID(req, "warehouse_id"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if id, err := ParseQueryUUID(req, "missing"); err != nil || id != nil {
		t.Fatalf("missing uuid should be nil, got %v %v", id, err)
	}
}

func TestParseUUIDParam(t *testing.T) {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("listId", "not-a-uuid")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	if _, err := ParseUUIDParam(req, "listId"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := ParseUUIDParam(req, "other"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for missing param, got %v", err)
	}
}

func TestParseOptionalDate(t *testing.T) {
	raw := "2026-03-01"
	d, err := ParseOptionalDate("list_date", &raw)
	if err != nil || d == nil || d.String() != raw {
		t.Fatalf("unexpected date %v %v", d, err)
	}
	bad := "01/03/2026"
	if _, err := ParseOptionalDate("list_date", &bad); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	blank := "  "
	if d, err := ParseOptionalDate("list_date", &blank); err != nil || d != nil {
		t.Fatalf("blank should be nil")
	}
}

func TestOptionalString(t *testing.T) {
	blank := "   "
	if OptionalString(&blank) != nil {
		t.Fatalf("blank should map to nil")
	}
	value := "  שלום "
	if got := OptionalString(&value); got == nil || *got != "שלום" {
		t.Fatalf("unexpected %v", got)
	}
}

func TestSanitizeStringCountsRunes(t *testing.T) {
	if got := SanitizeString("  קמח מלא  ", 3); got != "קמח" {
		t.Fatalf("unexpected %q", got)
	}
	if got := SanitizeString("a\x00b\x07c", 0); got != "abc" {
		t.Fatalf("control characters should be dropped, got %q", got)
	}
	if got := SanitizeString("line\nbreak", 100); got != "line\nbreak" {
		t.Fatalf("newlines are kept, got %q", got)
	}
}

func TestParseQueryIntRangeDetails(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=0", nil)
	_, err := ParseQueryInt(req, "limit", 25, 1, 100)
	details, ok := pkgerrors.As(err).Details().(map[string]any)
	if !ok || details["field"] != "limit" || details["max"] != 100 {
		t.Fatalf("unexpected details %v", pkgerrors.As(err).Details())
	}
}
