package shoppinglists

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bikurim/procurement-backend/internal/pricing"
	"github.com/bikurim/procurement-backend/pkg/enums"
	pkgerrors "github.com/bikurim/procurement-backend/pkg/errors"
	"github.com/bikurim/procurement-backend/pkg/outbox/payloads"
	"github.com/bikurim/procurement-backend/pkg/types"
)

var fixedNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestService(mem *memStore, prices stubPricing, emitter *recordingEmitter) *service {
	return &service{
		read:    mem,
		bind:    func(*gorm.DB) store { return mem },
		tx:      passthroughTx{},
		pricing: prices,
		emitter: emitter,
		now:     func() time.Time { return fixedNow },
	}
}

func qty(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func strPtr(v string) *string { return &v }

func TestNewServiceRequiresDeps(t *testing.T) {
	_, err := NewService(nil, passthroughTx{}, stubPricing{}, &recordingEmitter{}, nil)
	require.Error(t, err)
	_, err = NewService(&Repository{}, nil, stubPricing{}, &recordingEmitter{}, nil)
	require.Error(t, err)
	_, err = NewService(&Repository{}, passthroughTx{}, nil, &recordingEmitter{}, nil)
	require.Error(t, err)
	_, err = NewService(&Repository{}, passthroughTx{}, stubPricing{}, nil, nil)
	require.Error(t, err)
}

func TestCreateDefaultsToDraftToday(t *testing.T) {
	svc := newTestService(newMemStore(), stubPricing{}, &recordingEmitter{})

	got, err := svc.Create(context.Background(), CreateInput{Name: "  הזמנה שבועית "})
	require.NoError(t, err)
	require.Equal(t, "הזמנה שבועית", got.Name)
	require.Equal(t, enums.ShoppingListStatusDraft, got.Status)
	require.Equal(t, "2026-03-01", got.ListDate.String())

	_, err = svc.Create(context.Background(), CreateInput{Name: " "})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
}

func TestAddItemSnapshotsCheapestSupplier(t *testing.T) {
	mem := newMemStore()
	product := mem.addProduct("חלב", "ליטר")
	cheap, pricey := uuid.New(), uuid.New()
	prices := stubPricing{offers: map[uuid.UUID][]pricing.Offer{
		product: {
			{SupplierID: pricey, ProductID: product, PricePerUnit: qty("6.20")},
			{SupplierID: cheap, ProductID: product, PricePerUnit: qty("5.90")},
		},
	}}
	svc := newTestService(mem, prices, &recordingEmitter{})
	ctx := context.Background()

	list, err := svc.Create(ctx, CreateInput{Name: "weekly"})
	require.NoError(t, err)

	first, err := svc.AddItem(ctx, list.ID, AddItemInput{ProductID: product, Quantity: qty("10")})
	require.NoError(t, err)
	require.Equal(t, cheap, *first.SelectedSupplierID)
	require.True(t, first.PriceAtSelection.Decimal.Equal(qty("5.90")))
	require.Equal(t, "ליטר", first.Unit)
	require.Equal(t, 1, first.SortOrder)

	second, err := svc.AddItem(ctx, list.ID, AddItemInput{ProductID: product, Quantity: qty("1"), Unit: strPtr("קרטון")})
	require.NoError(t, err)
	require.Equal(t, 2, second.SortOrder)
	require.Equal(t, "קרטון", second.Unit)

	detail, err := svc.Get(ctx, list.ID)
	require.NoError(t, err)
	require.Len(t, detail.Items, 2)
	require.True(t, detail.TotalAmount.Equal(qty("64.90")), detail.TotalAmount.String())
}

func TestAddItemWithoutOffersLeavesSupplierEmpty(t *testing.T) {
	mem := newMemStore()
	product := mem.addProduct("מלח", "ק\"ג")
	svc := newTestService(mem, stubPricing{}, &recordingEmitter{})
	ctx := context.Background()

	list, err := svc.Create(ctx, CreateInput{Name: "misc"})
	require.NoError(t, err)
	item, err := svc.AddItem(ctx, list.ID, AddItemInput{ProductID: product, Quantity: qty("2")})
	require.NoError(t, err)
	require.Nil(t, item.SelectedSupplierID)
	require.False(t, item.PriceAtSelection.Valid)
}

func TestAddItemValidation(t *testing.T) {
	mem := newMemStore()
	svc := newTestService(mem, stubPricing{}, &recordingEmitter{})
	ctx := context.Background()
	list, err := svc.Create(ctx, CreateInput{Name: "x"})
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, list.ID, AddItemInput{ProductID: uuid.New(), Quantity: qty("0")})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)

	_, err = svc.AddItem(ctx, list.ID, AddItemInput{ProductID: uuid.New(), Quantity: qty("1")})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)

	_, err = svc.AddItem(ctx, uuid.New(), AddItemInput{ProductID: uuid.New(), Quantity: qty("1")})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestCompletedOrderItemsAreFrozen(t *testing.T) {
	mem := newMemStore()
	product := mem.addProduct("קמח", "ק\"ג")
	emitter := &recordingEmitter{}
	svc := newTestService(mem, stubPricing{}, emitter)
	ctx := context.Background()

	list, err := svc.Create(ctx, CreateInput{Name: "frozen"})
	require.NoError(t, err)
	item, err := svc.AddItem(ctx, list.ID, AddItemInput{ProductID: product, Quantity: qty("3")})
	require.NoError(t, err)

	_, err = svc.Update(ctx, list.ID, HeaderPatch{Status: statusPtr(enums.ShoppingListStatusCompleted)})
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, list.ID, AddItemInput{ProductID: product, Quantity: qty("1")})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), "got %v", err)

	newQty := qty("9")
	_, err = svc.UpdateItem(ctx, list.ID, item.ID, UpdateItemInput{Quantity: &newQty})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), "got %v", err)

	err = svc.RemoveItem(ctx, list.ID, item.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), "got %v", err)

	err = svc.Delete(ctx, list.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), "got %v", err)

	items, err := svc.ListItems(ctx, list.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.True(t, items[0].Quantity.Equal(qty("3")))
}

func TestUpdateStatusEmitsEvent(t *testing.T) {
	mem := newMemStore()
	emitter := &recordingEmitter{}
	svc := newTestService(mem, stubPricing{}, emitter)
	ctx := context.Background()

	list, err := svc.Create(ctx, CreateInput{Name: "x"})
	require.NoError(t, err)

	got, err := svc.Update(ctx, list.ID, HeaderPatch{Status: statusPtr(enums.ShoppingListStatusApproved)})
	require.NoError(t, err)
	require.Equal(t, enums.ShoppingListStatusApproved, got.Status)
	require.Len(t, emitter.events, 1)
	require.Equal(t, enums.EventShoppingListStatusChanged, emitter.events[0].EventType)
	payload := emitter.events[0].Data.(payloads.ShoppingListStatusChanged)
	require.Equal(t, enums.ShoppingListStatusDraft, payload.From)
	require.Equal(t, enums.ShoppingListStatusApproved, payload.To)

	_, err = svc.Update(ctx, list.ID, HeaderPatch{Status: statusPtr(enums.ShoppingListStatusDraft)})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
	require.Len(t, emitter.events, 1)

	name := "renamed"
	_, err = svc.Update(ctx, list.ID, HeaderPatch{Name: &name})
	require.NoError(t, err)
	require.Len(t, emitter.events, 1)
}

func TestUpdateEmitFailureIsInternal(t *testing.T) {
	mem := newMemStore()
	svc := newTestService(mem, stubPricing{}, &recordingEmitter{err: errBoom})
	ctx := context.Background()
	list, err := svc.Create(ctx, CreateInput{Name: "x"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, list.ID, HeaderPatch{Status: statusPtr(enums.ShoppingListStatusApproved)})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInternal), "got %v", err)
}

func TestUpdateItemSupplierRules(t *testing.T) {
	mem := newMemStore()
	product := mem.addProduct("ביצים", "תבנית")
	a, b := uuid.New(), uuid.New()
	prices := stubPricing{offers: map[uuid.UUID][]pricing.Offer{
		product: {
			{SupplierID: a, ProductID: product, PricePerUnit: qty("20")},
			{SupplierID: b, ProductID: product, PricePerUnit: qty("22")},
		},
	}}
	svc := newTestService(mem, prices, &recordingEmitter{})
	ctx := context.Background()

	list, err := svc.Create(ctx, CreateInput{Name: "eggs"})
	require.NoError(t, err)
	item, err := svc.AddItem(ctx, list.ID, AddItemInput{ProductID: product, Quantity: qty("4")})
	require.NoError(t, err)
	require.Equal(t, a, *item.SelectedSupplierID)

	// a supplier change re-snapshots and ignores a price sent alongside it
	got, err := svc.UpdateItem(ctx, list.ID, item.ID, UpdateItemInput{
		SelectedSupplierID: types.Some(b),
		PriceAtSelection:   types.Some(qty("1")),
	})
	require.NoError(t, err)
	require.Equal(t, b, *got.SelectedSupplierID)
	require.True(t, got.PriceAtSelection.Decimal.Equal(qty("22")))

	got, err = svc.UpdateItem(ctx, list.ID, item.ID, UpdateItemInput{PriceAtSelection: types.Some(qty("21.50"))})
	require.NoError(t, err)
	require.True(t, got.PriceAtSelection.Decimal.Equal(qty("21.50")))

	unknown := uuid.New()
	got, err = svc.UpdateItem(ctx, list.ID, item.ID, UpdateItemInput{SelectedSupplierID: types.Some(unknown)})
	require.NoError(t, err)
	require.Equal(t, unknown, *got.SelectedSupplierID)
	require.False(t, got.PriceAtSelection.Valid)

	got, err = svc.UpdateItem(ctx, list.ID, item.ID, UpdateItemInput{SelectedSupplierID: types.Null[uuid.UUID]()})
	require.NoError(t, err)
	require.Nil(t, got.SelectedSupplierID)
	require.False(t, got.PriceAtSelection.Valid)

	_, err = svc.UpdateItem(ctx, list.ID, uuid.New(), UpdateItemInput{})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestDuplicateCopiesItemsIntoDraft(t *testing.T) {
	mem := newMemStore()
	product := mem.addProduct("סוכר", "ק\"ג")
	supplier := uuid.New()
	prices := stubPricing{offers: map[uuid.UUID][]pricing.Offer{
		product: {{SupplierID: supplier, ProductID: product, PricePerUnit: qty("4.10")}},
	}}
	svc := newTestService(mem, prices, &recordingEmitter{})
	ctx := context.Background()

	notes := "לפני החג"
	orig, err := svc.Create(ctx, CreateInput{Name: "חג", Notes: &notes})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := svc.AddItem(ctx, orig.ID, AddItemInput{ProductID: product, Quantity: qty("1")})
		require.NoError(t, err)
	}
	_, err = svc.Update(ctx, orig.ID, HeaderPatch{Status: statusPtr(enums.ShoppingListStatusCompleted)})
	require.NoError(t, err)

	copied, err := svc.Duplicate(ctx, orig.ID)
	require.NoError(t, err)
	require.NotEqual(t, orig.ID, copied.ID)
	require.Equal(t, "חג"+CopySuffix, copied.Name)
	require.Equal(t, enums.ShoppingListStatusDraft, copied.Status)
	require.Equal(t, notes, *copied.Notes)

	items, err := svc.ListItems(ctx, copied.ID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	for i, item := range items {
		require.Equal(t, i, item.SortOrder)
		require.Equal(t, supplier, *item.SelectedSupplierID)
		require.True(t, item.PriceAtSelection.Decimal.Equal(qty("4.10")))
	}

	_, err = svc.Duplicate(ctx, uuid.New())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestDeleteAndRemoveItem(t *testing.T) {
	mem := newMemStore()
	product := mem.addProduct("שמן", "ליטר")
	svc := newTestService(mem, stubPricing{}, &recordingEmitter{})
	ctx := context.Background()

	list, err := svc.Create(ctx, CreateInput{Name: "x"})
	require.NoError(t, err)
	item, err := svc.AddItem(ctx, list.ID, AddItemInput{ProductID: product, Quantity: qty("1")})
	require.NoError(t, err)

	require.NoError(t, svc.RemoveItem(ctx, list.ID, item.ID))
	err = svc.RemoveItem(ctx, list.ID, item.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)

	require.NoError(t, svc.Delete(ctx, list.ID))
	_, err = svc.Get(ctx, list.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestBySupplierAndSuppliersForProduct(t *testing.T) {
	mem := newMemStore()
	product := mem.addProduct("עגבניות", "ק\"ג")
	a, b := uuid.New(), uuid.New()
	mem.names[a] = "ירקות השרון"
	prices := stubPricing{offers: map[uuid.UUID][]pricing.Offer{
		product: {
			{SupplierID: a, ProductID: product, PricePerUnit: qty("3")},
			{SupplierID: b, ProductID: product, PricePerUnit: qty("3")},
		},
	}}
	svc := newTestService(mem, prices, &recordingEmitter{})
	ctx := context.Background()

	list, err := svc.Create(ctx, CreateInput{Name: "veg"})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, list.ID, AddItemInput{ProductID: product, Quantity: qty("5")})
	require.NoError(t, err)

	view, err := svc.BySupplier(ctx, list.ID)
	require.NoError(t, err)
	require.Len(t, view.BySupplier, 1)
	require.True(t, view.BySupplier[0].Total.Equal(qty("15")))

	offers, err := svc.SuppliersForProduct(ctx, list.ID, product)
	require.NoError(t, err)
	require.Len(t, offers, 2)
	require.True(t, offers[0].IsCheapest && offers[1].IsCheapest)

	_, err = svc.SuppliersForProduct(ctx, uuid.New(), product)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
}
