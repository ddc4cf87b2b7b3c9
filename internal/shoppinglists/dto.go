package shoppinglists

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bikurim/procurement-backend/pkg/enums"
	"github.com/bikurim/procurement-backend/pkg/types"
)

// NoSupplierLabel names the group of items without a selected supplier.
const NoSupplierLabel = "ללא ספק"

// CopySuffix is appended to the name of a duplicated order.
const CopySuffix = " (עותק)"

type ListDTO struct {
	ID            uuid.UUID                `json:"id"`
	OrderNumber   int64                    `json:"order_number"`
	Name          string                   `json:"name"`
	ListDate      types.Date               `json:"list_date"`
	Notes         *string                  `json:"notes"`
	Status        enums.ShoppingListStatus `json:"status"`
	WarehouseID   *uuid.UUID               `json:"warehouse_id"`
	WarehouseName *string                  `json:"warehouse_name,omitempty"`
	EmailSentAt   *time.Time               `json:"email_sent_at"`
	CreatedBy     *uuid.UUID               `json:"created_by"`
	ItemCount     int64                    `json:"item_count"`
	TotalAmount   decimal.Decimal          `json:"total_amount"`
	CreatedAt     time.Time                `json:"created_at"`
	UpdatedAt     time.Time                `json:"updated_at"`
}

type ListDetailDTO struct {
	ListDTO
	Items []ItemDTO `json:"items"`
}

type ItemDTO struct {
	ID                 uuid.UUID           `json:"id"`
	ShoppingListID     uuid.UUID           `json:"shopping_list_id"`
	ProductID          uuid.UUID           `json:"product_id"`
	ProductName        string              `json:"product_name"`
	ProductCode        *string             `json:"product_code,omitempty"`
	Quantity           decimal.Decimal     `json:"quantity"`
	Unit               string              `json:"unit_of_measure"`
	SelectedSupplierID *uuid.UUID          `json:"selected_supplier_id"`
	SupplierName       *string             `json:"supplier_name"`
	PriceAtSelection   decimal.NullDecimal `json:"price_at_selection"`
	SortOrder          int                 `json:"sort_order"`
	Notes              *string             `json:"notes,omitempty"`
	SupplierCount      int64               `json:"supplier_count"`
}

// LineTotal is quantity times the price snapshot; zero without a snapshot.
func (i ItemDTO) LineTotal() decimal.Decimal {
	if !i.PriceAtSelection.Valid {
		return decimal.Zero
	}
	return i.Quantity.Mul(i.PriceAtSelection.Decimal)
}

// SupplierGroup is one supplier's share of an order.
type SupplierGroup struct {
	SupplierID   *uuid.UUID      `json:"supplier_id"`
	SupplierName string          `json:"supplier_name"`
	Items        []ItemDTO       `json:"items"`
	Total        decimal.Decimal `json:"total"`
}

type BySupplierDTO struct {
	ID          uuid.UUID                `json:"id"`
	OrderNumber int64                    `json:"order_number"`
	Name        string                   `json:"name"`
	ListDate    types.Date               `json:"list_date"`
	Status      enums.ShoppingListStatus `json:"status"`
	BySupplier  []SupplierGroup          `json:"by_supplier"`
}

func listFromRow(row ListRow) ListDTO {
	return ListDTO{
		ID:            row.ID,
		OrderNumber:   row.OrderNumber,
		Name:          row.Name,
		ListDate:      types.NewDate(row.ListDate),
		Notes:         row.Notes,
		Status:        row.Status,
		WarehouseID:   row.WarehouseID,
		WarehouseName: row.WarehouseName,
		EmailSentAt:   row.EmailSentAt,
		CreatedBy:     row.CreatedBy,
		ItemCount:     row.ItemCount,
		TotalAmount:   row.TotalAmount,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

func itemFromRow(row ItemRow) ItemDTO {
	return ItemDTO{
		ID:                 row.ID,
		ShoppingListID:     row.ShoppingListID,
		ProductID:          row.ProductID,
		ProductName:        row.ProductName,
		ProductCode:        row.ProductCode,
		Quantity:           row.Quantity,
		Unit:               row.Unit,
		SelectedSupplierID: row.SelectedSupplierID,
		SupplierName:       row.SupplierName,
		PriceAtSelection:   row.PriceAtSelection,
		SortOrder:          row.SortOrder,
		Notes:              row.Notes,
		SupplierCount:      row.SupplierCount,
	}
}

// GroupBySupplier groups items by selected supplier in first-seen order, with
// unassigned items collected under NoSupplierLabel.
func GroupBySupplier(items []ItemDTO) []SupplierGroup {
	groups := []SupplierGroup{}
	index := map[uuid.UUID]int{}
	noSupplier := -1
	for _, item := range items {
		var pos int
		switch {
		case item.SelectedSupplierID == nil:
			if noSupplier < 0 {
				groups = append(groups, SupplierGroup{SupplierName: NoSupplierLabel, Total: decimal.Zero})
				noSupplier = len(groups) - 1
			}
			pos = noSupplier
		default:
			id := *item.SelectedSupplierID
			existing, ok := index[id]
			if !ok {
				name := ""
				if item.SupplierName != nil {
					name = *item.SupplierName
				}
				supplierID := id
				groups = append(groups, SupplierGroup{SupplierID: &supplierID, SupplierName: name, Total: decimal.Zero})
				existing = len(groups) - 1
				index[id] = existing
			}
			pos = existing
		}
		groups[pos].Items = append(groups[pos].Items, item)
		groups[pos].Total = groups[pos].Total.Add(item.LineTotal())
	}
	return groups
}
