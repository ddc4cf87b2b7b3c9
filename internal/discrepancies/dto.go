package discrepancies

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/bikurim/procurement-backend/pkg/db/models"
)

type AlertDTO struct {
	ID             uuid.UUID       `json:"id"`
	WarehouseID    uuid.UUID       `json:"warehouse_id"`
	ShoppingListID *uuid.UUID      `json:"shopping_list_id"`
	WarehouseName  string          `json:"warehouse_name"`
	OrderNumber    int64           `json:"order_number"`
	ListName       string          `json:"list_name"`
	Details        json.RawMessage `json:"details"`
	ReadAt         *time.Time      `json:"read_at"`
	CreatedAt      time.Time       `json:"created_at"`
}

func FromModel(m models.ReceiptDiscrepancyAlert) AlertDTO {
	details := m.Details
	if len(details) == 0 {
		details = json.RawMessage(`{}`)
	}
	return AlertDTO{
		ID:             m.ID,
		WarehouseID:    m.WarehouseID,
		ShoppingListID: m.ShoppingListID,
		WarehouseName:  m.WarehouseName,
		OrderNumber:    m.OrderNumber,
		ListName:       m.ListName,
		Details:        details,
		ReadAt:         m.ReadAt,
		CreatedAt:      m.CreatedAt,
	}
}
