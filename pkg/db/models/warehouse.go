package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bikurim/procurement-backend/pkg/enums"
)

// Warehouse is a physical stock location.
type Warehouse struct {
	ID                uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name              string     `gorm:"column:name;not null"`
	Code              *string    `gorm:"column:code"`
	Address           *string    `gorm:"column:address"`
	Location          *string    `gorm:"column:location"`
	IsActive          bool       `gorm:"column:is_active;not null;default:true"`
	ResponsibleUserID *uuid.UUID `gorm:"column:responsible_user_id;type:uuid"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// WarehouseInventory is the running balance of one product in one warehouse.
type WarehouseInventory struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WarehouseID   uuid.UUID           `gorm:"column:warehouse_id;type:uuid;not null"`
	ProductID     uuid.UUID           `gorm:"column:product_id;type:uuid;not null"`
	Quantity      decimal.Decimal     `gorm:"column:quantity;type:numeric(14,3);not null;default:0"`
	Unit          string              `gorm:"column:unit_of_measure;not null"`
	MinQuantity   decimal.NullDecimal `gorm:"column:min_quantity;type:numeric(14,3)"`
	LastUpdatedAt time.Time           `gorm:"column:last_updated_at;not null"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (WarehouseInventory) TableName() string {
	return "warehouse_inventory"
}

// IsLowStock reports whether the balance is at or below the configured minimum.
func (w WarehouseInventory) IsLowStock() bool {
	return w.MinQuantity.Valid && w.Quantity.LessThanOrEqual(w.MinQuantity.Decimal)
}

// InventoryMovement is an append-only ledger entry; rows are never updated.
type InventoryMovement struct {
	ID           uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WarehouseID  uuid.UUID             `gorm:"column:warehouse_id;type:uuid;not null"`
	ProductID    uuid.UUID             `gorm:"column:product_id;type:uuid;not null"`
	MovementType enums.MovementType    `gorm:"column:movement_type;type:movement_type;not null"`
	Quantity     decimal.Decimal       `gorm:"column:quantity;type:numeric(14,3);not null"`
	Unit         string                `gorm:"column:unit_of_measure;not null"`
	MovementDate time.Time             `gorm:"column:movement_date;type:date;not null"`
	UserID       *uuid.UUID            `gorm:"column:user_id;type:uuid"`
	SourceType   *enums.MovementSource `gorm:"column:source_type"`
	ReferenceID  *uuid.UUID            `gorm:"column:reference_id;type:uuid"`
	Destination  *string               `gorm:"column:destination"`
	Note         *string               `gorm:"column:note"`
	CreatedAt    time.Time             `gorm:"column:created_at;autoCreateTime"`
}
