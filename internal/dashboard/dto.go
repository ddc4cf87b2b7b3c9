package dashboard

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bikurim/procurement-backend/internal/forecast"
	"github.com/bikurim/procurement-backend/pkg/enums"
)

type KPIs struct {
	ActiveWarehouses  int64 `json:"active_warehouses"`
	ProductsZeroStock int64 `json:"products_zero_stock"`
	ProductsBelowMin  int64 `json:"products_below_min"`
	ProductsAtRisk    int64 `json:"products_at_risk"`
}

type KPIsDTO struct {
	KPIs
	UpdatedAt time.Time `json:"updated_at"`
}

type WarehouseRef struct {
	ID   uuid.UUID `json:"id" gorm:"column:id"`
	Name string    `json:"name" gorm:"column:name"`
}

// MatrixRow is one product's stock across warehouses.
type MatrixRow struct {
	ProductID   uuid.UUID                     `json:"product_id"`
	ProductName string                        `json:"product_name"`
	ProductCode *string                       `json:"product_code"`
	Warehouses  map[uuid.UUID]decimal.Decimal `json:"warehouses"`
	Total       decimal.Decimal               `json:"total"`
	Status      enums.StockStatus             `json:"status"`
}

type MatrixDTO struct {
	Warehouses []WarehouseRef `json:"warehouses"`
	Inventory  []MatrixRow    `json:"inventory"`
}

type AlertDTO struct {
	WarehouseID   uuid.UUID              `json:"warehouse_id" gorm:"column:warehouse_id"`
	WarehouseName string                 `json:"warehouse_name" gorm:"column:warehouse_name"`
	ProductID     uuid.UUID              `json:"product_id" gorm:"column:product_id"`
	ProductName   string                 `json:"product_name" gorm:"column:product_name"`
	Quantity      decimal.Decimal        `json:"quantity" gorm:"column:quantity"`
	MinQuantity   decimal.NullDecimal    `json:"min_quantity" gorm:"column:min_quantity"`
	Unit          string                 `json:"unit_of_measure" gorm:"column:unit_of_measure"`
	Reason        enums.StockAlertReason `json:"reason" gorm:"-"`
}

type OverviewDTO struct {
	KPIs         KPIs               `json:"kpis"`
	Inventory    []MatrixRow        `json:"inventory"`
	Warehouses   []WarehouseRef     `json:"warehouses"`
	Alerts       []AlertDTO         `json:"alerts"`
	Forecast     []forecast.ItemDTO `json:"forecast"`
	ForecastDays int                `json:"forecast_days"`
	UpdatedAt    time.Time          `json:"updated_at"`
}
