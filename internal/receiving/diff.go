package receiving

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bikurim/procurement-backend/pkg/enums"
)

// Line is a product quantity on either side of a receipt.
type Line struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit_of_measure"`
}

// Discrepancy is one product whose received quantity differs from the order.
type Discrepancy struct {
	ProductID   uuid.UUID             `json:"product_id"`
	ProductName string                `json:"product_name"`
	Type        enums.DiscrepancyType `json:"type"`
	Ordered     decimal.Decimal       `json:"ordered"`
	Received    decimal.Decimal       `json:"received"`
	Unit        string                `json:"unit_of_measure"`
}

// Details is the payload stored on a discrepancy alert.
type Details struct {
	Ordered       []Line        `json:"ordered"`
	Received      []Line        `json:"received"`
	Discrepancies []Discrepancy `json:"discrepancies"`
}

// Sum merges lines by product, keeping first-seen order.
func Sum(lines []Line) []Line {
	out := make([]Line, 0, len(lines))
	index := make(map[uuid.UUID]int, len(lines))
	for _, l := range lines {
		if pos, ok := index[l.ProductID]; ok {
			out[pos].Quantity = out[pos].Quantity.Add(l.Quantity)
			continue
		}
		index[l.ProductID] = len(out)
		out = append(out, l)
	}
	return out
}

// Diff compares ordered and received quantities by product. Ordered products
// come first in order sequence, then extras in receipt sequence. A product
// ordered but not received is short by the full amount.
func Diff(ordered, received []Line) []Discrepancy {
	ordered = Sum(ordered)
	received = Sum(received)

	got := make(map[uuid.UUID]Line, len(received))
	for _, l := range received {
		got[l.ProductID] = l
	}

	out := []Discrepancy{}
	seen := make(map[uuid.UUID]bool, len(ordered))
	for _, o := range ordered {
		seen[o.ProductID] = true
		r := got[o.ProductID]
		qty := r.Quantity
		cmp := qty.Cmp(o.Quantity)
		if cmp == 0 {
			continue
		}
		kind := enums.DiscrepancyShort
		if cmp > 0 {
			kind = enums.DiscrepancyOver
		}
		out = append(out, Discrepancy{
			ProductID:   o.ProductID,
			ProductName: o.ProductName,
			Type:        kind,
			Ordered:     o.Quantity,
			Received:    qty,
			Unit:        o.Unit,
		})
	}
	for _, r := range received {
		if seen[r.ProductID] {
			continue
		}
		out = append(out, Discrepancy{
			ProductID:   r.ProductID,
			ProductName: r.ProductName,
			Type:        enums.DiscrepancyExtra,
			Ordered:     decimal.Zero,
			Received:    r.Quantity,
			Unit:        r.Unit,
		})
	}
	return out
}
