package dashboard

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bikurim/procurement-backend/internal/forecast"
	pkgerrors "github.com/bikurim/procurement-backend/pkg/errors"
	"github.com/bikurim/procurement-backend/pkg/logger"
)

// Service aggregates stock, alerts and forecasts for the dashboard.
type Service interface {
	Overview(ctx context.Context, forecastDays int) (*OverviewDTO, error)
	KPIs(ctx context.Context) (*KPIsDTO, error)
	Inventory(ctx context.Context) (*MatrixDTO, error)
	Alerts(ctx context.Context) ([]AlertDTO, error)
	Forecast(ctx context.Context, days int) (*forecast.ForecastDTO, error)
}

type reader interface {
	KPIs(ctx context.Context) (KPIs, error)
	ActiveWarehouses(ctx context.Context) ([]WarehouseRef, error)
	Stock(ctx context.Context) ([]StockRow, error)
	Alerts(ctx context.Context) ([]AlertDTO, error)
}

type service struct {
	store    reader
	forecast forecast.Service
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(store reader, forecastSvc forecast.Service, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("dashboard repository required")
	}
	if forecastSvc == nil {
		return nil, fmt.Errorf("forecast service required")
	}
	return &service{store: store, forecast: forecastSvc, logg: logg, now: time.Now}, nil
}

func (s *service) KPIs(ctx context.Context) (*KPIsDTO, error) {
	k, err := s.store.KPIs(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load kpis")
	}
	// a failed forecast leaves the at-risk count at zero, like Overview
	f, err := s.forecast.Forecast(ctx, forecast.DefaultDays)
	if err != nil {
		s.warn(ctx, "forecast", err)
	} else {
		k.ProductsAtRisk = int64(forecast.CountAtRisk(f.Forecast, s.forecast.Threshold()))
	}
	return &KPIsDTO{KPIs: k, UpdatedAt: s.now().UTC()}, nil
}

func (s *service) Inventory(ctx context.Context) (*MatrixDTO, error) {
	warehouses, err := s.store.ActiveWarehouses(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load warehouses")
	}
	rows, err := s.store.Stock(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load stock")
	}
	if warehouses == nil {
		warehouses = []WarehouseRef{}
	}
	return &MatrixDTO{Warehouses: warehouses, Inventory: BuildMatrix(rows)}, nil
}

func (s *service) Alerts(ctx context.Context) ([]AlertDTO, error) {
	rows, err := s.store.Alerts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load stock alerts")
	}
	out := make([]AlertDTO, 0, len(rows))
	for _, row := range rows {
		reason, ok := AlertReason(row.Quantity, row.MinQuantity)
		if !ok {
			continue
		}
		row.Reason = reason
		out = append(out, row)
	}
	return out, nil
}

func (s *service) Forecast(ctx context.Context, days int) (*forecast.ForecastDTO, error) {
	return s.forecast.Forecast(ctx, days)
}

// Overview loads every section concurrently. A failing section is logged and
// rendered empty so one bad query does not blank the whole dashboard.
func (s *service) Overview(ctx context.Context, forecastDays int) (*OverviewDTO, error) {
	out := &OverviewDTO{
		Inventory:    []MatrixRow{},
		Warehouses:   []WarehouseRef{},
		Alerts:       []AlertDTO{},
		Forecast:     []forecast.ItemDTO{},
		ForecastDays: forecast.NormalizeDays(forecastDays, forecast.DefaultDays),
	}

	var g errgroup.Group
	g.Go(func() error {
		k, err := s.store.KPIs(ctx)
		if err != nil {
			s.warn(ctx, "kpis", err)
			return nil
		}
		out.KPIs = k
		return nil
	})
	g.Go(func() error {
		m, err := s.Inventory(ctx)
		if err != nil {
			s.warn(ctx, "inventory", err)
			return nil
		}
		out.Inventory, out.Warehouses = m.Inventory, m.Warehouses
		return nil
	})
	g.Go(func() error {
		alerts, err := s.Alerts(ctx)
		if err != nil {
			s.warn(ctx, "alerts", err)
			return nil
		}
		out.Alerts = alerts
		return nil
	})
	g.Go(func() error {
		f, err := s.forecast.Forecast(ctx, forecastDays)
		if err != nil {
			s.warn(ctx, "forecast", err)
			return nil
		}
		out.Forecast, out.ForecastDays = f.Forecast, f.Days
		return nil
	})
	_ = g.Wait()

	out.KPIs.ProductsAtRisk = int64(forecast.CountAtRisk(out.Forecast, s.forecast.Threshold()))
	out.UpdatedAt = s.now().UTC()
	return out, nil
}

func (s *service) warn(ctx context.Context, section string, err error) {
	if s.logg == nil {
		return
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"section": section,
		"error":   err.Error(),
	})
	s.logg.Warn(logCtx, "dashboard section failed")
}
