package enums

// ForecastRisk is the coarse risk bucket attached to a forecast.
type ForecastRisk string

const (
	ForecastRiskLow    ForecastRisk = "low"
	ForecastRiskMedium ForecastRisk = "medium"
	ForecastRiskHigh   ForecastRisk = "high"
)

func (r ForecastRisk) String() string {
	return string(r)
}

func (r ForecastRisk) IsValid() bool {
	switch r {
	case ForecastRiskLow, ForecastRiskMedium, ForecastRiskHigh:
		return true
	}
	return false
}
