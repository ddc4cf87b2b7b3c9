package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bikurim/procurement-backend/internal/discrepancies"
	"github.com/bikurim/procurement-backend/internal/receiving"
	pkgerrors "github.com/bikurim/procurement-backend/pkg/errors"
	"github.com/bikurim/procurement-backend/pkg/logger"
)

type stubReceivingService struct {
	reconcile func(ctx context.Context, input receiving.ReceiptInput) (*receiving.Result, error)
}

func (s *stubReceivingService) Reconcile(ctx context.Context, input receiving.ReceiptInput) (*receiving.Result, error) {
	return s.reconcile(ctx, input)
}

func TestWarehouseReceiptSkipsUnusableLines(t *testing.T) {
	warehouseID := uuid.New()
	listID := uuid.New()
	productID := uuid.New()
	var got receiving.ReceiptInput
	svc := &stubReceivingService{reconcile: func(_ context.Context, input receiving.ReceiptInput) (*receiving.Result, error) {
		got = input
		return &receiving.Result{Alert: &discrepancies.AlertDTO{ID: uuid.New()}}, nil
	}}

	body := `{"shopping_list_id":"` + listID.String() + `","receipt_date":"2026-05-02","lines":[` +
		`{"product_id":"` + productID.String() + `","quantity":"3.5"},` +
		`{"product_id":"not-a-uuid","quantity":2},` +
		`{"product_id":"` + uuid.NewString() + `","quantity":"abc"}]}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req = withParams(req, map[string]string{"warehouseId": warehouseID.String()})
	rec := httptest.NewRecorder()
	WarehouseReceipt(svc, logger.Nop()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, warehouseID, got.WarehouseID)
	assert.Equal(t, listID, got.ShoppingListID)
	require.NotNil(t, got.ReceiptDate)
	require.Len(t, got.Lines, 2)
	assert.Equal(t, productID, got.Lines[0].ProductID)
	assert.True(t, got.Lines[0].Quantity.Equal(decimal.RequireFromString("3.5")))
	assert.True(t, got.Lines[1].Quantity.IsZero())
}

func TestWarehouseReceiptDropsUnstorableQuantities(t *testing.T) {
	productID := uuid.New()
	var got receiving.ReceiptInput
	svc := &stubReceivingService{reconcile: func(_ context.Context, input receiving.ReceiptInput) (*receiving.Result, error) {
		got = input
		return &receiving.Result{}, nil
	}}

	line := func(qty string) string {
		return `{"product_id":"` + uuid.NewString() + `","quantity":` + qty + `}`
	}
	body := `{"shopping_list_id":"` + uuid.NewString() + `","lines":[` +
		`{"product_id":"` + productID.String() + `","quantity":"99999999999.999"},` +
		line(`"1e100000000"`) + `,` + line(`1e100000000`) + `,` + line(`"0.0004"`) + `,` + line(`1e12`) + `]}`
	req := withParams(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), map[string]string{"warehouseId": uuid.NewString()})
	rec := httptest.NewRecorder()
	WarehouseReceipt(svc, logger.Nop()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, productID, got.Lines[0].ProductID)
}

func TestWarehouseReceiptRequiresLines(t *testing.T) {
	svc := &stubReceivingService{}
	body := `{"shopping_list_id":"` + uuid.NewString() + `","lines":[]}`
	req := withParams(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), map[string]string{"warehouseId": uuid.NewString()})
	rec := httptest.NewRecorder()
	WarehouseReceipt(svc, logger.Nop()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeValidation), decodeError(t, rec.Body.Bytes()).Code)
}

func TestWarehouseReceiptMapsNotFound(t *testing.T) {
	svc := &stubReceivingService{reconcile: func(context.Context, receiving.ReceiptInput) (*receiving.Result, error) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "warehouse not found")
	}}
	body := `{"shopping_list_id":"` + uuid.NewString() + `","lines":[{"product_id":"` + uuid.NewString() + `","quantity":1}]}`
	req := withParams(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), map[string]string{"warehouseId": uuid.NewString()})
	rec := httptest.NewRecorder()
	WarehouseReceipt(svc, logger.Nop()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "warehouse not found", decodeError(t, rec.Body.Bytes()).Error)
}

func TestLenientDecimal(t *testing.T) {
	cases := map[string]string{
		`2`:      "2",
		`"1.25"`: "1.25",
		`" 4 "`:  "4",
		`"x"`:    "0",
		`null`:   "0",
		``:       "0",
	}
	for raw, want := range cases {
		got, _ := lenientDecimal([]byte(raw))
		assert.True(t, got.Equal(decimal.RequireFromString(want)), raw)
	}
}
