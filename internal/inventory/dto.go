package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bikurim/procurement-backend/pkg/db/models"
	"github.com/bikurim/procurement-backend/pkg/enums"
	"github.com/bikurim/procurement-backend/pkg/types"
)

type BalanceDTO struct {
	ID            uuid.UUID           `json:"id"`
	WarehouseID   uuid.UUID           `json:"warehouse_id"`
	ProductID     uuid.UUID           `json:"product_id"`
	ProductName   string              `json:"product_name,omitempty"`
	ProductCode   *string             `json:"product_code,omitempty"`
	Quantity      decimal.Decimal     `json:"quantity"`
	Unit          string              `json:"unit"`
	MinQuantity   decimal.NullDecimal `json:"min_quantity"`
	IsLowStock    bool                `json:"is_low_stock"`
	LastUpdatedAt time.Time           `json:"last_updated_at"`
}

func newBalanceDTO(row models.WarehouseInventory, name string, code *string) BalanceDTO {
	return BalanceDTO{
		ID:            row.ID,
		WarehouseID:   row.WarehouseID,
		ProductID:     row.ProductID,
		ProductName:   name,
		ProductCode:   code,
		Quantity:      row.Quantity,
		Unit:          row.Unit,
		MinQuantity:   row.MinQuantity,
		IsLowStock:    row.IsLowStock(),
		LastUpdatedAt: row.LastUpdatedAt,
	}
}

type MovementDTO struct {
	ID           uuid.UUID             `json:"id"`
	WarehouseID  uuid.UUID             `json:"warehouse_id"`
	ProductID    uuid.UUID             `json:"product_id"`
	ProductName  string                `json:"product_name,omitempty"`
	MovementType enums.MovementType    `json:"movement_type"`
	Quantity     decimal.Decimal       `json:"quantity"`
	Unit         string                `json:"unit"`
	MovementDate types.Date            `json:"movement_date"`
	UserID       *uuid.UUID            `json:"user_id,omitempty"`
	SourceType   *enums.MovementSource `json:"source_type,omitempty"`
	ReferenceID  *uuid.UUID            `json:"reference_id,omitempty"`
	Destination  *string               `json:"destination,omitempty"`
	Note         *string               `json:"note,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
}

func NewMovementDTO(m models.InventoryMovement, productName string) MovementDTO {
	return MovementDTO{
		ID:           m.ID,
		WarehouseID:  m.WarehouseID,
		ProductID:    m.ProductID,
		ProductName:  productName,
		MovementType: m.MovementType,
		Quantity:     m.Quantity,
		Unit:         m.Unit,
		MovementDate: types.NewDate(m.MovementDate),
		UserID:       m.UserID,
		SourceType:   m.SourceType,
		ReferenceID:  m.ReferenceID,
		Destination:  m.Destination,
		Note:         m.Note,
		CreatedAt:    m.CreatedAt,
	}
}

type LowStockDTO struct {
	WarehouseID   uuid.UUID       `json:"warehouse_id"`
	WarehouseName string          `json:"warehouse_name"`
	ProductID     uuid.UUID       `json:"product_id"`
	ProductName   string          `json:"product_name"`
	ProductCode   *string         `json:"product_code,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	MinQuantity   decimal.Decimal `json:"min_quantity"`
	Unit          string          `json:"unit"`
}
