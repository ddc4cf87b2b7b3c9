package cron

import (
	"context"
	"fmt"

	"github.com/bikurim/procurement-backend/internal/forecast"
	"github.com/bikurim/procurement-backend/pkg/logger"
)

type ForecastSnapshotJobParams struct {
	Logger     *logger.Logger
	Forecaster snapshotter
	Days       int
}

type snapshotter interface {
	Snapshot(ctx context.Context, days int) (int, error)
}

func NewForecastSnapshotJob(params ForecastSnapshotJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Forecaster == nil {
		return nil, fmt.Errorf("forecast service required")
	}
	return &forecastSnapshotJob{
		logg: params.Logger,
		svc:  params.Forecaster,
		days: forecast.NormalizeDays(params.Days, forecast.DefaultDays),
	}, nil
}

type forecastSnapshotJob struct {
	logg *logger.Logger
	svc  snapshotter
	days int
}

func (j *forecastSnapshotJob) Name() string { return "forecast-snapshot" }

func (j *forecastSnapshotJob) Run(ctx context.Context) error {
	rows, err := j.svc.Snapshot(ctx, j.days)
	if err != nil {
		return fmt.Errorf("forecast snapshot: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"days":          j.days,
		"rows_inserted": rows,
	})
	j.logg.Info(logCtx, "forecast snapshot stored")
	return nil
}
