package shoppinglists

import (
	"time"

	"github.com/google/uuid"

	"github.com/bikurim/procurement-backend/pkg/enums"
	pkgerrors "github.com/bikurim/procurement-backend/pkg/errors"
	"github.com/bikurim/procurement-backend/pkg/types"
)

const msgCompleted = "order already completed"

// HeaderPatch is a partial update of an order header. Nil or unset fields are left alone.
type HeaderPatch struct {
	Name        *string
	ListDate    *types.Date
	Notes       types.Nullable[string]
	Status      *enums.ShoppingListStatus
	WarehouseID types.Nullable[uuid.UUID]
	EmailSentAt types.Nullable[time.Time]
}

// touchesFrozen reports whether the patch changes a field locked on completed orders.
func (p HeaderPatch) touchesFrozen() bool {
	return p.Name != nil || p.ListDate != nil || p.Notes.Set || p.Status != nil
}

func (p HeaderPatch) empty() bool {
	return !p.touchesFrozen() && !p.WarehouseID.Set && !p.EmailSentAt.Set
}

// CheckHeaderPatch enforces the order lifecycle: status only moves forward and
// a completed order keeps only warehouse_id and email_sent_at editable.
func CheckHeaderPatch(current enums.ShoppingListStatus, patch HeaderPatch) error {
	if current.IsTerminal() && patch.touchesFrozen() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, msgCompleted)
	}
	if patch.Status == nil {
		return nil
	}
	next := *patch.Status
	if !next.IsValid() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid status %q", next)
	}
	if !current.CanTransitionTo(next) {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid status transition").
			WithDetails(map[string]any{"from": current, "to": next})
	}
	return nil
}

// CheckItemsMutable rejects any item change on a completed order.
func CheckItemsMutable(current enums.ShoppingListStatus) error {
	if current.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, msgCompleted)
	}
	return nil
}

// CheckDeletable keeps completed orders: their receipts and alerts refer to them.
func CheckDeletable(current enums.ShoppingListStatus) error {
	if current.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, msgCompleted)
	}
	return nil
}
