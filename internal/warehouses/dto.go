package warehouses

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bikurim/procurement-backend/pkg/types"
)

type WarehouseDTO struct {
	ID                  uuid.UUID  `json:"id"`
	Name                string     `json:"name"`
	Code                *string    `json:"code"`
	Address             *string    `json:"address"`
	Location            *string    `json:"location"`
	IsActive            bool       `json:"is_active"`
	ResponsibleUserID   *uuid.UUID `json:"responsible_user_id"`
	ResponsibleUserName *string    `json:"responsible_user_name,omitempty"`
	ProductCount        int64      `json:"product_count"`
	LowStockCount       int64      `json:"low_stock_count"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func fromRow(row WarehouseRow) WarehouseDTO {
	return WarehouseDTO{
		ID:                  row.ID,
		Name:                row.Name,
		Code:                row.Code,
		Address:             row.Address,
		Location:            row.Location,
		IsActive:            row.IsActive,
		ResponsibleUserID:   row.ResponsibleUserID,
		ResponsibleUserName: row.ResponsibleUserName,
		ProductCount:        row.ProductCount,
		LowStockCount:       row.LowStockCount,
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
	}
}

// ExpectedDeliveryDTO is an approved order destined to the warehouse.
type ExpectedDeliveryDTO struct {
	ShoppingListID uuid.UUID       `json:"shopping_list_id"`
	OrderNumber    int64           `json:"order_number"`
	Name           string          `json:"name"`
	ListDate       types.Date      `json:"list_date"`
	ItemCount      int64           `json:"item_count"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
}
