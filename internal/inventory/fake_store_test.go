package inventory

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bikurim/procurement-backend/pkg/db/models"
	"github.com/bikurim/procurement-backend/pkg/outbox"
	"github.com/bikurim/procurement-backend/pkg/pagination"
)

type balanceKey struct {
	warehouse uuid.UUID
	product   uuid.UUID
}

// memStore keeps balances and movements in maps. It does not roll back, so
// tests assert on what a failing call leaves behind.
type memStore struct {
	warehouses map[uuid.UUID]models.Warehouse
	products   map[uuid.UUID]models.Product
	balances   map[balanceKey]*models.WarehouseInventory
	movements  []models.InventoryMovement
	saveErr    error
	locks      int
}

func newMemStore() *memStore {
	return &memStore{
		warehouses: map[uuid.UUID]models.Warehouse{},
		products:   map[uuid.UUID]models.Product{},
		balances:   map[balanceKey]*models.WarehouseInventory{},
	}
}

func (m *memStore) addWarehouse(name string) uuid.UUID {
	id := uuid.New()
	m.warehouses[id] = models.Warehouse{ID: id, Name: name, IsActive: true}
	return id
}

func (m *memStore) addProduct(name, unit string) uuid.UUID {
	id := uuid.New()
	m.products[id] = models.Product{ID: id, Name: name, DefaultUnit: unit}
	return id
}

func (m *memStore) LockBalance(_ context.Context, warehouseID, productID uuid.UUID, unit string, create bool) (*models.WarehouseInventory, error) {
	m.locks++
	key := balanceKey{warehouseID, productID}
	row, ok := m.balances[key]
	if !ok {
		if !create {
			return nil, nil
		}
		row = &models.WarehouseInventory{ID: uuid.New(), WarehouseID: warehouseID, ProductID: productID, Quantity: decimal.Zero, Unit: unit}
		m.balances[key] = row
	}
	clone := *row
	return &clone, nil
}

func (m *memStore) SaveBalance(_ context.Context, row *models.WarehouseInventory) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	clone := *row
	m.balances[balanceKey{row.WarehouseID, row.ProductID}] = &clone
	return nil
}

func (m *memStore) InsertMovement(_ context.Context, movement *models.InventoryMovement) error {
	movement.ID = uuid.New()
	m.movements = append(m.movements, *movement)
	return nil
}

func (m *memStore) FindWarehouse(_ context.Context, id uuid.UUID) (*models.Warehouse, error) {
	w, ok := m.warehouses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &w, nil
}

func (m *memStore) FindProduct(_ context.Context, id uuid.UUID) (*models.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (m *memStore) ListBalances(_ context.Context, warehouseID uuid.UUID) ([]BalanceRow, error) {
	var rows []BalanceRow
	for key, row := range m.balances {
		if key.warehouse != warehouseID {
			continue
		}
		rows = append(rows, BalanceRow{WarehouseInventory: *row, ProductName: m.products[key.product].Name})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ProductName < rows[j].ProductName })
	return rows, nil
}

func (m *memStore) FindBalance(_ context.Context, warehouseID, productID uuid.UUID) (*BalanceRow, error) {
	row, ok := m.balances[balanceKey{warehouseID, productID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &BalanceRow{WarehouseInventory: *row, ProductName: m.products[productID].Name}, nil
}

func (m *memStore) SetMinQuantity(_ context.Context, warehouseID, productID uuid.UUID, unit string, minQty decimal.NullDecimal) error {
	key := balanceKey{warehouseID, productID}
	row, ok := m.balances[key]
	if !ok {
		row = &models.WarehouseInventory{ID: uuid.New(), WarehouseID: warehouseID, ProductID: productID, Quantity: decimal.Zero, Unit: unit}
		m.balances[key] = row
	}
	row.MinQuantity = minQty
	return nil
}

func (m *memStore) ListMovements(_ context.Context, warehouseID uuid.UUID, _ *pagination.Cursor, limit int) ([]MovementRow, error) {
	var rows []MovementRow
	for i := len(m.movements) - 1; i >= 0 && len(rows) < limit; i-- {
		mv := m.movements[i]
		if mv.WarehouseID != warehouseID {
			continue
		}
		rows = append(rows, MovementRow{InventoryMovement: mv, ProductName: m.products[mv.ProductID].Name})
	}
	return rows, nil
}

func (m *memStore) LowStock(_ context.Context, warehouseID *uuid.UUID) ([]LowStockRow, error) {
	var rows []LowStockRow
	for key, row := range m.balances {
		if warehouseID != nil && key.warehouse != *warehouseID {
			continue
		}
		if !row.IsLowStock() {
			continue
		}
		rows = append(rows, LowStockRow{
			WarehouseID:   key.warehouse,
			WarehouseName: m.warehouses[key.warehouse].Name,
			ProductID:     key.product,
			ProductName:   m.products[key.product].Name,
			Quantity:      row.Quantity,
			MinQuantity:   row.MinQuantity,
			Unit:          row.Unit,
		})
	}
	return rows, nil
}

type passthroughTx struct{}

func (passthroughTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type recordingEmitter struct {
	events []outbox.DomainEvent
	err    error
}

func (r *recordingEmitter) Emit(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) error {
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, event)
	return nil
}

var errBoom = errors.New("boom")
