package shoppinglists

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bikurim/procurement-backend/internal/pricing"
	"github.com/bikurim/procurement-backend/pkg/db/models"
	pkgerrors "github.com/bikurim/procurement-backend/pkg/errors"
	"github.com/bikurim/procurement-backend/pkg/types"
)

func (s *service) ListItems(ctx context.Context, listID uuid.UUID) ([]ItemDTO, error) {
	if _, err := s.find(ctx, s.read, listID); err != nil {
		return nil, err
	}
	return s.items(ctx, s.read, listID)
}

// AddItem appends a line and snapshots the cheapest active supplier's price.
func (s *service) AddItem(ctx context.Context, listID uuid.UUID, input AddItemInput) (*ItemDTO, error) {
	if !input.Quantity.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than 0")
	}
	if !types.QuantityFits(input.Quantity) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, types.ErrQuantityRange.Error())
	}
	// offers are read before the transaction opens so a write never waits on
	// a second pool connection while holding one
	best, err := s.pricing.Cheapest(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	var itemID uuid.UUID
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		st := s.bind(tx)
		list, err := st.Lock(ctx, listID)
		if err != nil {
			return notFoundOr(err, "shopping list not found", "load shopping list")
		}
		if err := CheckItemsMutable(list.Status); err != nil {
			return err
		}
		product, err := st.FindProduct(ctx, input.ProductID)
		if err != nil {
			return notFoundOr(err, "product not found", "load product")
		}

		unit := product.DefaultUnit
		if input.Unit != nil && strings.TrimSpace(*input.Unit) != "" {
			unit = strings.TrimSpace(*input.Unit)
		}

		item := &models.ShoppingListItem{
			ShoppingListID: listID,
			ProductID:      product.ID,
			Quantity:       input.Quantity,
			Unit:           unit,
			Notes:          input.Notes,
		}
		if best != nil {
			supplierID := best.SupplierID
			item.SelectedSupplierID = &supplierID
			item.PriceAtSelection = decimal.NewNullDecimal(best.PricePerUnit)
		}

		sortOrder, err := st.NextSortOrder(ctx, listID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "next sort order")
		}
		item.SortOrder = sortOrder

		if err := st.InsertItem(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert item")
		}
		itemID = item.ID
		return nil
	})
	if err != nil {
		return nil, asTyped(err, "add item")
	}
	return s.findItem(ctx, s.read, listID, itemID)
}

func (s *service) UpdateItem(ctx context.Context, listID, itemID uuid.UUID, input UpdateItemInput) (*ItemDTO, error) {
	if input.Quantity != nil && !input.Quantity.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than 0")
	}
	if input.Unit != nil && strings.TrimSpace(*input.Unit) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit_of_measure cannot be empty")
	}
	if input.PriceAtSelection.Value != nil && input.PriceAtSelection.Value.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_at_selection cannot be negative")
	}
	if input.Quantity != nil && !types.QuantityFits(*input.Quantity) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, types.ErrQuantityRange.Error())
	}
	offer, err := s.selectedOffer(ctx, listID, itemID, input.SelectedSupplierID)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		st := s.bind(tx)
		list, err := st.Lock(ctx, listID)
		if err != nil {
			return notFoundOr(err, "shopping list not found", "load shopping list")
		}
		if err := CheckItemsMutable(list.Status); err != nil {
			return err
		}
		if _, err := st.FindItem(ctx, listID, itemID); err != nil {
			return notFoundOr(err, "item not found", "load item")
		}

		updates := map[string]any{}
		if input.Quantity != nil {
			updates["quantity"] = *input.Quantity
		}
		if input.Unit != nil {
			updates["unit_of_measure"] = strings.TrimSpace(*input.Unit)
		}
		if input.Notes.Set {
			updates["notes"] = input.Notes.Value
		}

		switch {
		case input.SelectedSupplierID.Set && input.SelectedSupplierID.Value == nil:
			updates["selected_supplier_id"] = nil
			updates["price_at_selection"] = nil
		case input.SelectedSupplierID.Set:
			updates["selected_supplier_id"] = *input.SelectedSupplierID.Value
			if offer != nil {
				updates["price_at_selection"] = offer.PricePerUnit
			} else {
				updates["price_at_selection"] = nil
			}
		case input.PriceAtSelection.Set:
			if input.PriceAtSelection.Value == nil {
				updates["price_at_selection"] = nil
			} else {
				updates["price_at_selection"] = *input.PriceAtSelection.Value
			}
		}

		if len(updates) == 0 {
			return nil
		}
		if err := st.UpdateItem(ctx, itemID, updates); err != nil {
			return mapWriteError(err, "update item")
		}
		return nil
	})
	if err != nil {
		return nil, asTyped(err, "update item")
	}
	return s.findItem(ctx, s.read, listID, itemID)
}

// selectedOffer resolves the price for a newly selected supplier. An item's
// product never changes, so reading it outside the transaction is safe.
func (s *service) selectedOffer(ctx context.Context, listID, itemID uuid.UUID, supplier types.Nullable[uuid.UUID]) (*pricing.Offer, error) {
	if !supplier.Set || supplier.Value == nil {
		return nil, nil
	}
	if _, err := s.find(ctx, s.read, listID); err != nil {
		return nil, err
	}
	item, err := s.read.FindItem(ctx, listID, itemID)
	if err != nil {
		return nil, notFoundOr(err, "item not found", "load item")
	}
	return s.pricing.PriceFor(ctx, *supplier.Value, item.ProductID)
}

func (s *service) RemoveItem(ctx context.Context, listID, itemID uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		st := s.bind(tx)
		list, err := st.Lock(ctx, listID)
		if err != nil {
			return notFoundOr(err, "shopping list not found", "load shopping list")
		}
		if err := CheckItemsMutable(list.Status); err != nil {
			return err
		}
		deleted, err := st.DeleteItem(ctx, listID, itemID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete item")
		}
		if !deleted {
			return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil
	})
	return asTyped(err, "remove item")
}

func (s *service) findItem(ctx context.Context, st store, listID, itemID uuid.UUID) (*ItemDTO, error) {
	row, err := st.FindItem(ctx, listID, itemID)
	if err != nil {
		return nil, notFoundOr(err, "item not found", "load item")
	}
	dto := itemFromRow(*row)
	return &dto, nil
}
