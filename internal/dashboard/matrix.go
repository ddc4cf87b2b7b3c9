package dashboard

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bikurim/procurement-backend/pkg/enums"
)

// StockRow is one (warehouse, product) balance with product display fields.
type StockRow struct {
	WarehouseID uuid.UUID           `gorm:"column:warehouse_id"`
	ProductID   uuid.UUID           `gorm:"column:product_id"`
	ProductName string              `gorm:"column:product_name"`
	ProductCode *string             `gorm:"column:product_code"`
	Quantity    decimal.Decimal     `gorm:"column:quantity"`
	MinQuantity decimal.NullDecimal `gorm:"column:min_quantity"`
}

// Classify grades a single balance: nothing left is a shortage, at or below
// the minimum is low.
func Classify(quantity decimal.Decimal, minQuantity decimal.NullDecimal) enums.StockStatus {
	if !quantity.IsPositive() {
		return enums.StockStatusShortage
	}
	if minQuantity.Valid && quantity.LessThanOrEqual(minQuantity.Decimal) {
		return enums.StockStatusLow
	}
	return enums.StockStatusOK
}

// AlertReason is the alert-list reason for a balance, or false when the
// balance needs no attention.
func AlertReason(quantity decimal.Decimal, minQuantity decimal.NullDecimal) (enums.StockAlertReason, bool) {
	switch Classify(quantity, minQuantity) {
	case enums.StockStatusShortage:
		return enums.StockAlertReasonShortage, true
	case enums.StockStatusLow:
		return enums.StockAlertReasonMinimum, true
	}
	return "", false
}

// BuildMatrix pivots balances into one row per product, keeping input order.
// A product's status is the worst of its warehouse balances.
func BuildMatrix(rows []StockRow) []MatrixRow {
	out := []MatrixRow{}
	index := map[uuid.UUID]int{}
	for _, row := range rows {
		pos, ok := index[row.ProductID]
		if !ok {
			out = append(out, MatrixRow{
				ProductID:   row.ProductID,
				ProductName: row.ProductName,
				ProductCode: row.ProductCode,
				Warehouses:  map[uuid.UUID]decimal.Decimal{},
				Total:       decimal.Zero,
				Status:      enums.StockStatusOK,
			})
			pos = len(out) - 1
			index[row.ProductID] = pos
		}
		m := &out[pos]
		m.Warehouses[row.WarehouseID] = row.Quantity
		m.Total = m.Total.Add(row.Quantity)
		m.Status = m.Status.Worse(Classify(row.Quantity, row.MinQuantity))
	}
	return out
}
