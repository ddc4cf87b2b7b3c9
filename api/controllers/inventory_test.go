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

	"github.com/bikurim/procurement-backend/internal/inventory"
	"github.com/bikurim/procurement-backend/pkg/enums"
	pkgerrors "github.com/bikurim/procurement-backend/pkg/errors"
	"github.com/bikurim/procurement-backend/pkg/logger"
)

type stubInventoryService struct {
	inventory.Service

	record   func(ctx context.Context, input inventory.MovementInput) (*inventory.MovementDTO, error)
	setMin   func(ctx context.Context, warehouseID, productID uuid.UUID, minQty decimal.NullDecimal) (*inventory.BalanceDTO, error)
	lowStock func(ctx context.Context, warehouseID *uuid.UUID) ([]inventory.LowStockDTO, error)
}

func (s *stubInventoryService) RecordMovement(ctx context.Context, input inventory.MovementInput) (*inventory.MovementDTO, error) {
	return s.record(ctx, input)
}

func (s *stubInventoryService) SetMinQuantity(ctx context.Context, warehouseID, productID uuid.UUID, minQty decimal.NullDecimal) (*inventory.BalanceDTO, error) {
	return s.setMin(ctx, warehouseID, productID, minQty)
}

func (s *stubInventoryService) LowStock(ctx context.Context, warehouseID *uuid.UUID) ([]inventory.LowStockDTO, error) {
	return s.lowStock(ctx, warehouseID)
}

func TestWarehouseRecordMovementBuildsInput(t *testing.T) {
	warehouseID := uuid.New()
	productID := uuid.New()
	var got inventory.MovementInput
	svc := &stubInventoryService{record: func(_ context.Context, input inventory.MovementInput) (*inventory.MovementDTO, error) {
		got = input
		return &inventory.MovementDTO{ID: uuid.New(), WarehouseID: input.WarehouseID, ProductID: input.ProductID}, nil
	}}

	body := `{"movement_type":"out","product_id":"` + productID.String() + `","quantity":"1.5","movement_date":"2026-04-10","source_type":"internal","destination":"kitchen"}`
	req := withParams(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), map[string]string{"warehouseId": warehouseID.String()})
	rec := httptest.NewRecorder()
	WarehouseRecordMovement(svc, logger.Nop()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, warehouseID, got.WarehouseID)
	assert.Equal(t, productID, got.ProductID)
	assert.Equal(t, enums.MovementType("out"), got.Type)
	require.NotNil(t, got.MovementDate)
	assert.Equal(t, "2026-04-10", got.MovementDate.Format("2006-01-02"))
	require.NotNil(t, got.SourceType)
	require.NotNil(t, got.Destination)
	assert.Equal(t, "kitchen", *got.Destination)
}

func TestWarehouseRecordMovementValidation(t *testing.T) {
	cases := map[string]string{
		"bad type":      `{"movement_type":"sideways","product_id":"` + uuid.NewString() + `","quantity":1}`,
		"zero quantity": `{"movement_type":"in","product_id":"` + uuid.NewString() + `","quantity":0}`,
		"bad source":    `{"movement_type":"in","product_id":"` + uuid.NewString() + `","quantity":1,"source_type":"magic"}`,
		"bad product":   `{"movement_type":"in","product_id":"x","quantity":1}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			req := withParams(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), map[string]string{"warehouseId": uuid.NewString()})
			rec := httptest.NewRecorder()
			WarehouseRecordMovement(&stubInventoryService{}, logger.Nop()).ServeHTTP(rec, req)
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestWarehouseRecordMovementRejectsUnstorableQuantity(t *testing.T) {
	cases := map[string]string{
		"huge exponent":   `"1e100000000"`,
		"too many places": `"0.0004"`,
		"overflow":        `1e12`,
		"tiny exponent":   `1e-100000000`,
	}
	for name, qty := range cases {
		t.Run(name, func(t *testing.T) {
			body := `{"movement_type":"in","product_id":"` + uuid.NewString() + `","quantity":` + qty + `}`
			req := withParams(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), map[string]string{"warehouseId": uuid.NewString()})
			rec := httptest.NewRecorder()
			WarehouseRecordMovement(&stubInventoryService{}, logger.Nop()).ServeHTTP(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			envelope := decodeError(t, rec.Body.Bytes())
			assert.Equal(t, string(pkgerrors.CodeValidation), envelope.Code)
			details, ok := envelope.Details.(map[string]any)
			require.True(t, ok)
			assert.Contains(t, details, "quantity")
		})
	}
}

func TestWarehouseSetMinQuantityRejectsUnstorableValue(t *testing.T) {
	for _, qty := range []string{`1e100000000`, `"0.0004"`, `1e12`} {
		req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"min_quantity":`+qty+`}`))
		req = withParams(req, map[string]string{"warehouseId": uuid.NewString(), "productId": uuid.NewString()})
		rec := httptest.NewRecorder()
		WarehouseSetMinQuantity(&stubInventoryService{}, logger.Nop()).ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code, qty)
	}
}

func TestWarehouseRecordMovementInsufficientStock(t *testing.T) {
	svc := &stubInventoryService{record: func(context.Context, inventory.MovementInput) (*inventory.MovementDTO, error) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "insufficient stock")
	}}
	body := `{"movement_type":"out","product_id":"` + uuid.NewString() + `","quantity":100}`
	req := withParams(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), map[string]string{"warehouseId": uuid.NewString()})
	rec := httptest.NewRecorder()
	WarehouseRecordMovement(svc, logger.Nop()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "insufficient stock", decodeError(t, rec.Body.Bytes()).Error)
}

func TestWarehouseSetMinQuantityAcceptsNull(t *testing.T) {
	var got decimal.NullDecimal
	got.Valid = true
	svc := &stubInventoryService{setMin: func(_ context.Context, warehouseID, productID uuid.UUID, minQty decimal.NullDecimal) (*inventory.BalanceDTO, error) {
		got = minQty
		return &inventory.BalanceDTO{WarehouseID: warehouseID, ProductID: productID}, nil
	}}
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"min_quantity":null}`))
	req = withParams(req, map[string]string{"warehouseId": uuid.NewString(), "productId": uuid.NewString()})
	rec := httptest.NewRecorder()
	WarehouseSetMinQuantity(svc, logger.Nop()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, got.Valid)
}

func TestLowStockScopes(t *testing.T) {
	var scoped *uuid.UUID
	calls := 0
	svc := &stubInventoryService{lowStock: func(_ context.Context, warehouseID *uuid.UUID) ([]inventory.LowStockDTO, error) {
		calls++
		scoped = warehouseID
		return []inventory.LowStockDTO{}, nil
	}}

	rec := httptest.NewRecorder()
	LowStockAlerts(svc, logger.Nop()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, scoped)

	warehouseID := uuid.New()
	rec = httptest.NewRecorder()
	req := withParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"warehouseId": warehouseID.String()})
	WarehouseAlerts(svc, logger.Nop()).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, scoped)
	assert.Equal(t, warehouseID, *scoped)
	assert.Equal(t, 2, calls)
}
