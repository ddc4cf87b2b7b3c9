package enums

// StockStatus is the dashboard classification of a product's stock.
type StockStatus string

const (
	StockStatusOK       StockStatus = "ok"
	StockStatusLow      StockStatus = "low"
	StockStatusShortage StockStatus = "shortage"
)

func (s StockStatus) String() string {
	return string(s)
}

// Worse returns the more severe of the two statuses.
func (s StockStatus) Worse(other StockStatus) StockStatus {
	if stockSeverity[other] > stockSeverity[s] {
		return other
	}
	return s
}

var stockSeverity = map[StockStatus]int{
	StockStatusOK:       0,
	StockStatusLow:      1,
	StockStatusShortage: 2,
}

// StockAlertReason explains why an inventory row is on the alert list.
type StockAlertReason string

const (
	StockAlertReasonShortage StockAlertReason = "shortage"
	StockAlertReasonMinimum  StockAlertReason = "minimum"
)

func (r StockAlertReason) String() string {
	return string(r)
}
