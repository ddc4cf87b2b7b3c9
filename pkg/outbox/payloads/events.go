package payloads

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bikurim/procurement-backend/pkg/enums"
)

// ShoppingListStatusChanged is emitted on every successful status transition.
type ShoppingListStatusChanged struct {
	ShoppingListID uuid.UUID                `json:"shopping_list_id"`
	OrderNumber    int64                    `json:"order_number"`
	From           enums.ShoppingListStatus `json:"from"`
	To             enums.ShoppingListStatus `json:"to"`
}

// GoodsReceived summarises a goods receipt posted against a warehouse.
type GoodsReceived struct {
	WarehouseID    uuid.UUID   `json:"warehouse_id"`
	ShoppingListID *uuid.UUID  `json:"shopping_list_id,omitempty"`
	MovementIDs    []uuid.UUID `json:"movement_ids"`
	ItemCount      int         `json:"item_count"`
}

// DiscrepancyDetected points at the alert persisted for a mismatched receipt.
type DiscrepancyDetected struct {
	AlertID        uuid.UUID  `json:"alert_id"`
	WarehouseID    uuid.UUID  `json:"warehouse_id"`
	ShoppingListID *uuid.UUID `json:"shopping_list_id,omitempty"`
	LineCount      int        `json:"line_count"`
}

// StockBelowMinimum is emitted when an outbound movement drops a balance to or below its minimum.
type StockBelowMinimum struct {
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	MinQuantity decimal.Decimal `json:"min_quantity"`
}
