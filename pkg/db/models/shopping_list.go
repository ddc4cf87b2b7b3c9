package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bikurim/procurement-backend/pkg/enums"
)

// ShoppingList is a purchase order. OrderNumber is assigned by a database sequence.
type ShoppingList struct {
	ID          uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber int64                    `gorm:"column:order_number;autoIncrement;not null"`
	Name        string                   `gorm:"column:name;not null"`
	ListDate    time.Time                `gorm:"column:list_date;type:date;not null"`
	Notes       *string                  `gorm:"column:notes"`
	Status      enums.ShoppingListStatus `gorm:"column:status;type:shopping_list_status;not null;default:draft"`
	WarehouseID *uuid.UUID               `gorm:"column:warehouse_id;type:uuid"`
	EmailSentAt *time.Time               `gorm:"column:email_sent_at"`
	CreatedBy   *uuid.UUID               `gorm:"column:created_by;type:uuid"`
	CreatedAt   time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

// ShoppingListItem is one product line. PriceAtSelection is a snapshot taken
// when the supplier is chosen and is not refreshed from later price changes.
type ShoppingListItem struct {
	ID                 uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ShoppingListID     uuid.UUID           `gorm:"column:shopping_list_id;type:uuid;not null"`
	ProductID          uuid.UUID           `gorm:"column:product_id;type:uuid;not null"`
	Quantity           decimal.Decimal     `gorm:"column:quantity;type:numeric(14,3);not null"`
	Unit               string              `gorm:"column:unit_of_measure;not null"`
	SelectedSupplierID *uuid.UUID          `gorm:"column:selected_supplier_id;type:uuid"`
	PriceAtSelection   decimal.NullDecimal `gorm:"column:price_at_selection;type:numeric(12,2)"`
	SortOrder          int                 `gorm:"column:sort_order;not null;default:0"`
	Notes              *string             `gorm:"column:notes"`
	CreatedAt          time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// ReceiptDiscrepancyAlert is raised when a receipt does not match its order.
// Names are snapshots; only ReadAt is ever updated.
type ReceiptDiscrepancyAlert struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WarehouseID    uuid.UUID       `gorm:"column:warehouse_id;type:uuid;not null"`
	ShoppingListID *uuid.UUID      `gorm:"column:shopping_list_id;type:uuid"`
	WarehouseName  string          `gorm:"column:warehouse_name;not null"`
	OrderNumber    int64           `gorm:"column:order_number;not null"`
	ListName       string          `gorm:"column:list_name;not null"`
	Details        json.RawMessage `gorm:"column:details;type:jsonb;not null"`
	ReadAt         *time.Time      `gorm:"column:read_at"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
}
