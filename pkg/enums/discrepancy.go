package enums

// DiscrepancyType classifies a mismatch between ordered and received goods.
type DiscrepancyType string

const (
	DiscrepancyShort DiscrepancyType = "short"
	DiscrepancyOver  DiscrepancyType = "over"
	DiscrepancyExtra DiscrepancyType = "extra"
)

func (d DiscrepancyType) String() string {
	return string(d)
}

func (d DiscrepancyType) IsValid() bool {
	switch d {
	case DiscrepancyShort, DiscrepancyOver, DiscrepancyExtra:
		return true
	}
	return false
}
