package forecast

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bikurim/procurement-backend/pkg/db/models"
	"github.com/bikurim/procurement-backend/pkg/enums"
	pkgerrors "github.com/bikurim/procurement-backend/pkg/errors"
	"github.com/bikurim/procurement-backend/pkg/types"
)

type ItemDTO struct {
	ProductID             uuid.UUID           `json:"product_id"`
	ProductName           string              `json:"product_name"`
	ProductCode           *string             `json:"product_code"`
	TotalStock            decimal.Decimal     `json:"total_stock"`
	DailyAvgUsage         decimal.Decimal     `json:"daily_avg_usage"`
	DaysUntilShortage     decimal.NullDecimal `json:"days_until_shortage"`
	EstimatedShortageDate *types.Date         `json:"estimated_shortage_date"`
	HasSufficientHistory  bool                `json:"has_sufficient_history"`
	Risk                  enums.ForecastRisk  `json:"risk"`
}

type ForecastDTO struct {
	Days      int       `json:"days"`
	Forecast  []ItemDTO `json:"forecast"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service projects stock shortages from recent outbound usage.
type Service interface {
	Forecast(ctx context.Context, days int) (*ForecastDTO, error)
	Snapshot(ctx context.Context, days int) (int, error)
	Threshold() float64
}

type usageStore interface {
	Usage(ctx context.Context, since time.Time) ([]UsageRow, error)
	InsertSnapshots(ctx context.Context, rows []models.ForecastAnalysis) error
}

type Options struct {
	DefaultDays       int
	RiskThresholdDays float64
}

type service struct {
	store usageStore
	opts  Options
	now   func() time.Time
}

func NewService(store usageStore, opts Options) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("forecast repository required")
	}
	if opts.DefaultDays <= 0 {
		opts.DefaultDays = DefaultDays
	}
	if opts.RiskThresholdDays <= 0 {
		opts.RiskThresholdDays = 7
	}
	return &service{store: store, opts: opts, now: time.Now}, nil
}

func (s *service) Threshold() float64 {
	return s.opts.RiskThresholdDays
}

func (s *service) Forecast(ctx context.Context, days int) (*ForecastDTO, error) {
	days = NormalizeDays(days, s.opts.DefaultDays)
	now := s.now().UTC()
	today := types.NewDate(now)

	rows, err := s.store.Usage(ctx, today.AddDays(-days).Time)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load usage")
	}

	items := make([]ItemDTO, 0, len(rows))
	for _, row := range rows {
		est := Compute(Input{TotalStock: row.TotalStock, TotalOut: row.TotalOut, Days: days, Today: today})
		items = append(items, ItemDTO{
			ProductID:             row.ProductID,
			ProductName:           row.ProductName,
			ProductCode:           row.ProductCode,
			TotalStock:            row.TotalStock,
			DailyAvgUsage:         est.DailyAvgUsage,
			DaysUntilShortage:     est.DaysUntilShortage,
			EstimatedShortageDate: est.EstimatedShortageDate,
			HasSufficientHistory:  est.HasSufficientHistory,
			Risk:                  Risk(est.DaysUntilShortage, s.opts.RiskThresholdDays),
		})
	}
	return &ForecastDTO{Days: days, Forecast: items, UpdatedAt: now}, nil
}

// Snapshot persists the current forecast, one row per product.
func (s *service) Snapshot(ctx context.Context, days int) (int, error) {
	result, err := s.Forecast(ctx, days)
	if err != nil {
		return 0, err
	}
	rows := make([]models.ForecastAnalysis, 0, len(result.Forecast))
	for _, item := range result.Forecast {
		row := models.ForecastAnalysis{
			ProductID:         item.ProductID,
			ForecastDays:      result.Days,
			TotalStock:        item.TotalStock,
			DailyAvgUsage:     item.DailyAvgUsage,
			DaysUntilShortage: item.DaysUntilShortage,
			Risk:              item.Risk,
			AnalyzedAt:        result.UpdatedAt,
		}
		if item.EstimatedShortageDate != nil {
			d := item.EstimatedShortageDate.Time
			row.EstimatedShortageDate = &d
		}
		rows = append(rows, row)
	}
	if err := s.store.InsertSnapshots(ctx, rows); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store forecast snapshot")
	}
	return len(rows), nil
}

// CountAtRisk counts forecasts whose shortage falls within threshold days.
func CountAtRisk(items []ItemDTO, threshold float64) int {
	n := 0
	for _, item := range items {
		if AtRisk(item.DaysUntilShortage, threshold) {
			n++
		}
	}
	return n
}
