package enums

import "fmt"

// ShoppingListStatus tracks the lifecycle of a purchase order.
type ShoppingListStatus string

const (
	ShoppingListStatusDraft     ShoppingListStatus = "draft"
	ShoppingListStatusApproved  ShoppingListStatus = "approved"
	ShoppingListStatusCompleted ShoppingListStatus = "completed"
)

var shoppingListStatusRank = map[ShoppingListStatus]int{
	ShoppingListStatusDraft:     0,
	ShoppingListStatusApproved:  1,
	ShoppingListStatusCompleted: 2,
}

// String implements fmt.Stringer.
func (s ShoppingListStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ShoppingListStatus.
func (s ShoppingListStatus) IsValid() bool {
	_, ok := shoppingListStatusRank[s]
	return ok
}

// IsTerminal reports whether no further transitions are allowed.
func (s ShoppingListStatus) IsTerminal() bool {
	return s == ShoppingListStatusCompleted
}

// CanTransitionTo reports whether moving from s to next keeps the lifecycle
// monotonic. Staying in the same status is allowed.
func (s ShoppingListStatus) CanTransitionTo(next ShoppingListStatus) bool {
	from, okFrom := shoppingListStatusRank[s]
	to, okTo := shoppingListStatusRank[next]
	if !okFrom || !okTo {
		return false
	}
	return to >= from
}

// ParseShoppingListStatus converts raw input into a ShoppingListStatus.
func ParseShoppingListStatus(value string) (ShoppingListStatus, error) {
	candidate := ShoppingListStatus(value)
	if candidate.IsValid() {
		return candidate, nil
	}
	return "", fmt.Errorf("invalid shopping list status %q", value)
}
