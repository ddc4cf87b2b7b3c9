package forecast

import (
	"github.com/shopspring/decimal"

	"github.com/bikurim/procurement-backend/pkg/enums"
	"github.com/bikurim/procurement-backend/pkg/types"
)

// DefaultDays is the usage window when the caller gives none or a bad one.
const DefaultDays = 30

// Input is one product's totals over the usage window.
type Input struct {
	TotalStock decimal.Decimal
	TotalOut   decimal.Decimal
	Days       int
	Today      types.Date
}

type Estimate struct {
	DailyAvgUsage         decimal.Decimal
	DaysUntilShortage     decimal.NullDecimal
	EstimatedShortageDate *types.Date
	HasSufficientHistory  bool
}

// NormalizeDays falls back to fallback (or DefaultDays) for non-positive windows.
func NormalizeDays(days, fallback int) int {
	if days > 0 {
		return days
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultDays
}

// Compute derives daily usage and the projected shortage. Usage is averaged
// over the whole window, not over the span of recorded history.
func Compute(in Input) Estimate {
	days := NormalizeDays(in.Days, DefaultDays)
	out := Estimate{
		DailyAvgUsage:        decimal.Zero,
		HasSufficientHistory: in.TotalOut.IsPositive(),
	}
	if !in.TotalOut.IsPositive() {
		return out
	}

	daily := in.TotalOut.Div(decimal.NewFromInt(int64(days)))
	out.DailyAvgUsage = daily.Round(4)

	stock := in.TotalStock
	if stock.IsNegative() {
		stock = decimal.Zero
	}
	raw := stock.Div(daily)
	out.DaysUntilShortage = decimal.NewNullDecimal(raw.Round(1))
	date := in.Today.AddDays(int(raw.Floor().IntPart()))
	out.EstimatedShortageDate = &date
	return out
}

// AtRisk reports a projected shortage within threshold days.
func AtRisk(daysUntilShortage decimal.NullDecimal, threshold float64) bool {
	if !daysUntilShortage.Valid {
		return false
	}
	return daysUntilShortage.Decimal.LessThanOrEqual(decimal.NewFromFloat(threshold))
}

// Risk buckets a projection: high inside the threshold, medium inside twice
// the threshold, low otherwise or without usage.
func Risk(daysUntilShortage decimal.NullDecimal, threshold float64) enums.ForecastRisk {
	switch {
	case AtRisk(daysUntilShortage, threshold):
		return enums.ForecastRiskHigh
	case AtRisk(daysUntilShortage, threshold*2):
		return enums.ForecastRiskMedium
	default:
		return enums.ForecastRiskLow
	}
}
