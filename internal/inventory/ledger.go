package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bikurim/procurement-backend/pkg/db/models"
	"github.com/bikurim/procurement-backend/pkg/enums"
	pkgerrors "github.com/bikurim/procurement-backend/pkg/errors"
)

// Entry is a single stock movement to post against a warehouse balance.
type Entry struct {
	WarehouseID  uuid.UUID
	ProductID    uuid.UUID
	Type         enums.MovementType
	Quantity     decimal.Decimal
	Unit         string
	MovementDate time.Time
	UserID       *uuid.UUID
	SourceType   *enums.MovementSource
	ReferenceID  *uuid.UUID
	Destination  *string
	Note         *string
}

// Posting is the outcome of applying an Entry.
type Posting struct {
	Movement models.InventoryMovement
	Balance  models.WarehouseInventory
}

// LedgerStore is the transactional surface ApplyEntry needs. Implementations
// must hold a row lock on the returned balance until the transaction ends.
type LedgerStore interface {
	LockBalance(ctx context.Context, warehouseID, productID uuid.UUID, unit string, create bool) (*models.WarehouseInventory, error)
	SaveBalance(ctx context.Context, row *models.WarehouseInventory) error
	InsertMovement(ctx context.Context, movement *models.InventoryMovement) error
}

// ApplyEntry updates the balance and appends the ledger row. It must run
// inside a transaction; an out movement larger than the balance fails
// before anything is written.
func ApplyEntry(ctx context.Context, store LedgerStore, entry Entry, now time.Time) (*Posting, error) {
	if !entry.Type.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid movement type %q", entry.Type)
	}
	if !entry.Quantity.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than zero")
	}

	balance, err := store.LockBalance(ctx, entry.WarehouseID, entry.ProductID, entry.Unit, entry.Type == enums.MovementTypeIn)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock inventory balance")
	}

	switch entry.Type {
	case enums.MovementTypeIn:
		if balance == nil {
			return nil, pkgerrors.New(pkgerrors.CodeInternal, "inventory balance missing after insert")
		}
		balance.Quantity = balance.Quantity.Add(entry.Quantity)
	case enums.MovementTypeOut:
		available := decimal.Zero
		if balance != nil {
			available = balance.Quantity
		}
		if balance == nil || available.LessThan(entry.Quantity) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "insufficient stock for this movement").
				WithDetails(map[string]any{
					"available": available.String(),
					"requested": entry.Quantity.String(),
				})
		}
		balance.Quantity = available.Sub(entry.Quantity)
	}
	balance.LastUpdatedAt = now

	if err := store.SaveBalance(ctx, balance); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update inventory balance")
	}

	unit := entry.Unit
	if unit == "" {
		unit = balance.Unit
	}
	movementDate := entry.MovementDate
	if movementDate.IsZero() {
		movementDate = now
	}
	movement := models.InventoryMovement{
		WarehouseID:  entry.WarehouseID,
		ProductID:    entry.ProductID,
		MovementType: entry.Type,
		Quantity:     entry.Quantity,
		Unit:         unit,
		MovementDate: movementDate,
		UserID:       entry.UserID,
		SourceType:   entry.SourceType,
		ReferenceID:  entry.ReferenceID,
		Destination:  entry.Destination,
		Note:         entry.Note,
	}
	if err := store.InsertMovement(ctx, &movement); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert inventory movement")
	}

	return &Posting{Movement: movement, Balance: *balance}, nil
}
