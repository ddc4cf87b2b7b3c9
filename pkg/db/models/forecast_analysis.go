package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bikurim/procurement-backend/pkg/enums"
)

// ForecastAnalysis is a persisted daily snapshot of a product forecast.
type ForecastAnalysis struct {
	ID                    uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID             uuid.UUID           `gorm:"column:product_id;type:uuid;not null"`
	ForecastDays          int                 `gorm:"column:forecast_days;not null"`
	TotalStock            decimal.Decimal     `gorm:"column:total_stock;type:numeric(14,3);not null"`
	DailyAvgUsage         decimal.Decimal     `gorm:"column:daily_avg_usage;type:numeric(14,4);not null"`
	DaysUntilShortage     decimal.NullDecimal `gorm:"column:days_until_shortage;type:numeric(10,1)"`
	EstimatedShortageDate *time.Time          `gorm:"column:estimated_shortage_date;type:date"`
	Risk                  enums.ForecastRisk  `gorm:"column:risk;type:forecast_risk;not null"`
	Explanation           *string             `gorm:"column:explanation"`
	AnalyzedAt            time.Time           `gorm:"column:analyzed_at;not null"`
}
