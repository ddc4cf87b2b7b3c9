package enums

import "fmt"

// SupplierStatus marks whether a supplier participates in pricing.
type SupplierStatus string

const (
	SupplierStatusActive   SupplierStatus = "active"
	SupplierStatusInactive SupplierStatus = "inactive"
)

func (s SupplierStatus) String() string {
	return string(s)
}

func (s SupplierStatus) IsValid() bool {
	return s == SupplierStatusActive || s == SupplierStatusInactive
}

func ParseSupplierStatus(value string) (SupplierStatus, error) {
	candidate := SupplierStatus(value)
	if candidate.IsValid() {
		return candidate, nil
	}
	return "", fmt.Errorf("invalid supplier status %q", value)
}
