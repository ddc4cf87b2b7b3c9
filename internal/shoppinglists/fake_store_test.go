package shoppinglists

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bikurim/procurement-backend/internal/pricing"
	"github.com/bikurim/procurement-backend/pkg/db/models"
	"github.com/bikurim/procurement-backend/pkg/enums"
	"github.com/bikurim/procurement-backend/pkg/outbox"
)

type memStore struct {
	lists    map[uuid.UUID]models.ShoppingList
	items    map[uuid.UUID]models.ShoppingListItem
	products map[uuid.UUID]models.Product
	names    map[uuid.UUID]string
	nextNum  int64
}

func newMemStore() *memStore {
	return &memStore{
		lists:    map[uuid.UUID]models.ShoppingList{},
		items:    map[uuid.UUID]models.ShoppingListItem{},
		products: map[uuid.UUID]models.Product{},
		names:    map[uuid.UUID]string{},
	}
}

func (m *memStore) addProduct(name, unit string) uuid.UUID {
	id := uuid.New()
	m.products[id] = models.Product{ID: id, Name: name, DefaultUnit: unit}
	return id
}

func (m *memStore) row(list models.ShoppingList) ListRow {
	row := ListRow{ShoppingList: list, TotalAmount: decimal.Zero}
	for _, item := range m.items {
		if item.ShoppingListID != list.ID {
			continue
		}
		row.ItemCount++
		if item.PriceAtSelection.Valid {
			row.TotalAmount = row.TotalAmount.Add(item.Quantity.Mul(item.PriceAtSelection.Decimal))
		}
	}
	return row
}

func (m *memStore) itemRow(item models.ShoppingListItem) ItemRow {
	row := ItemRow{ShoppingListItem: item, ProductName: m.products[item.ProductID].Name}
	if item.SelectedSupplierID != nil {
		if name, ok := m.names[*item.SelectedSupplierID]; ok {
			row.SupplierName = &name
		}
	}
	return row
}

func (m *memStore) List(_ context.Context, filter ListFilter) ([]ListRow, error) {
	var out []ListRow
	for _, list := range m.lists {
		if filter.Status != nil && list.Status != *filter.Status {
			continue
		}
		if filter.WarehouseID != nil && (list.WarehouseID == nil || *list.WarehouseID != *filter.WarehouseID) {
			continue
		}
		out = append(out, m.row(list))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderNumber > out[j].OrderNumber })
	return out, nil
}

func (m *memStore) Find(_ context.Context, id uuid.UUID) (*ListRow, error) {
	list, ok := m.lists[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	row := m.row(list)
	return &row, nil
}

func (m *memStore) Lock(_ context.Context, id uuid.UUID) (*models.ShoppingList, error) {
	list, ok := m.lists[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &list, nil
}

func (m *memStore) Create(_ context.Context, list *models.ShoppingList) error {
	m.nextNum++
	list.ID = uuid.New()
	list.OrderNumber = m.nextNum
	m.lists[list.ID] = *list
	return nil
}

func (m *memStore) Update(_ context.Context, id uuid.UUID, updates map[string]any) error {
	list := m.lists[id]
	for key, value := range updates {
		switch key {
		case "name":
			list.Name = value.(string)
		case "list_date":
			list.ListDate = value.(time.Time)
		case "notes":
			list.Notes = value.(*string)
		case "status":
			list.Status = value.(enums.ShoppingListStatus)
		case "warehouse_id":
			list.WarehouseID = value.(*uuid.UUID)
		case "email_sent_at":
			list.EmailSentAt = value.(*time.Time)
		}
	}
	m.lists[id] = list
	return nil
}

func (m *memStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.lists, id)
	for itemID, item := range m.items {
		if item.ShoppingListID == id {
			delete(m.items, itemID)
		}
	}
	return nil
}

func (m *memStore) sortedItems(listID uuid.UUID) []models.ShoppingListItem {
	var out []models.ShoppingListItem
	for _, item := range m.items {
		if item.ShoppingListID == listID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out
}

func (m *memStore) Items(_ context.Context, listID uuid.UUID) ([]ItemRow, error) {
	var out []ItemRow
	for _, item := range m.sortedItems(listID) {
		out = append(out, m.itemRow(item))
	}
	return out, nil
}

func (m *memStore) ItemsBySupplier(ctx context.Context, listID uuid.UUID) ([]ItemRow, error) {
	return m.Items(ctx, listID)
}

func (m *memStore) FindItem(_ context.Context, listID, itemID uuid.UUID) (*ItemRow, error) {
	item, ok := m.items[itemID]
	if !ok || item.ShoppingListID != listID {
		return nil, gorm.ErrRecordNotFound
	}
	row := m.itemRow(item)
	return &row, nil
}

func (m *memStore) NextSortOrder(_ context.Context, listID uuid.UUID) (int, error) {
	next := 1
	for _, item := range m.sortedItems(listID) {
		if item.SortOrder >= next {
			next = item.SortOrder + 1
		}
	}
	return next, nil
}

func (m *memStore) InsertItem(_ context.Context, item *models.ShoppingListItem) error {
	item.ID = uuid.New()
	m.items[item.ID] = *item
	return nil
}

func (m *memStore) InsertItems(ctx context.Context, items []models.ShoppingListItem) error {
	for i := range items {
		if err := m.InsertItem(ctx, &items[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *memStore) UpdateItem(_ context.Context, itemID uuid.UUID, updates map[string]any) error {
	item := m.items[itemID]
	for key, value := range updates {
		switch key {
		case "quantity":
			item.Quantity = value.(decimal.Decimal)
		case "unit_of_measure":
			item.Unit = value.(string)
		case "notes":
			item.Notes = value.(*string)
		case "selected_supplier_id":
			if value == nil {
				item.SelectedSupplierID = nil
			} else {
				id := value.(uuid.UUID)
				item.SelectedSupplierID = &id
			}
		case "price_at_selection":
			if value == nil {
				item.PriceAtSelection = decimal.NullDecimal{}
			} else {
				item.PriceAtSelection = decimal.NewNullDecimal(value.(decimal.Decimal))
			}
		}
	}
	m.items[itemID] = item
	return nil
}

func (m *memStore) DeleteItem(_ context.Context, listID, itemID uuid.UUID) (bool, error) {
	item, ok := m.items[itemID]
	if !ok || item.ShoppingListID != listID {
		return false, nil
	}
	delete(m.items, itemID)
	return true, nil
}

func (m *memStore) FindProduct(_ context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &product, nil
}

type stubPricing struct {
	offers map[uuid.UUID][]pricing.Offer
}

func (s stubPricing) Cheapest(_ context.Context, productID uuid.UUID) (*pricing.Offer, error) {
	return pricing.Cheapest(s.offers[productID]), nil
}

func (s stubPricing) SuppliersForProduct(_ context.Context, productID uuid.UUID) ([]pricing.Offer, error) {
	offers := append([]pricing.Offer{}, s.offers[productID]...)
	return pricing.MarkCheapest(offers), nil
}

func (s stubPricing) PriceFor(_ context.Context, supplierID, productID uuid.UUID) (*pricing.Offer, error) {
	for _, o := range s.offers[productID] {
		if o.SupplierID == supplierID {
			out := o
			return &out, nil
		}
	}
	return nil, nil
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
