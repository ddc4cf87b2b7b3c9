package enums

import "fmt"

// MovementType is the direction of an inventory ledger entry.
type MovementType string

const (
	MovementTypeIn  MovementType = "in"
	MovementTypeOut MovementType = "out"
)

func (m MovementType) String() string {
	return string(m)
}

func (m MovementType) IsValid() bool {
	return m == MovementTypeIn || m == MovementTypeOut
}

func ParseMovementType(value string) (MovementType, error) {
	candidate := MovementType(value)
	if candidate.IsValid() {
		return candidate, nil
	}
	return "", fmt.Errorf("invalid movement type %q", value)
}

// MovementSource describes where inbound stock came from.
type MovementSource string

const (
	MovementSourceSupplier      MovementSource = "supplier"
	MovementSourceInternal      MovementSource = "internal"
	MovementSourcePurchaseOrder MovementSource = "purchase_order"
	MovementSourceOther         MovementSource = "other"
)

var validMovementSources = []MovementSource{
	MovementSourceSupplier,
	MovementSourceInternal,
	MovementSourcePurchaseOrder,
	MovementSourceOther,
}

func (m MovementSource) String() string {
	return string(m)
}

func (m MovementSource) IsValid() bool {
	for _, candidate := range validMovementSources {
		if candidate == m {
			return true
		}
	}
	return false
}

func ParseMovementSource(value string) (MovementSource, error) {
	candidate := MovementSource(value)
	if candidate.IsValid() {
		return candidate, nil
	}
	return "", fmt.Errorf("invalid movement source %q", value)
}
