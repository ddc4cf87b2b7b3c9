package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/bikurim/procurement-backend/internal/bootstrap"
	"github.com/bikurim/procurement-backend/internal/cron"
	"github.com/bikurim/procurement-backend/internal/discrepancies"
	"github.com/bikurim/procurement-backend/internal/forecast"
	"github.com/bikurim/procurement-backend/pkg/config"
	"github.com/bikurim/procurement-backend/pkg/db"
	"github.com/bikurim/procurement-backend/pkg/logger"
	"github.com/bikurim/procurement-backend/pkg/metrics"
	"github.com/bikurim/procurement-backend/pkg/outbox"
)

func main() {
	rt, err := bootstrap.Start(context.Background(), "cron-worker")
	if err != nil {
		bootstrap.Exit("cron-worker", "startup failed", err)
	}
	ctx, stop := rt.SignalContext()
	defer stop()

	redisClient, err := rt.Redis(ctx, true)
	if err != nil {
		rt.Fail(ctx, "redis unavailable", err)
	}
	leases, err := cron.NewWindowLeases(redisClient, leaseNamespace(rt.Config.App.Env))
	if err != nil {
		rt.Fail(ctx, "cron leases", err)
	}
	entries, err := buildEntries(rt.Config, rt.Logger, rt.DB)
	if err != nil {
		rt.Fail(ctx, "register cron jobs", err)
	}
	scheduler, err := cron.NewScheduler(cron.SchedulerParams{
		Logger:  rt.Logger,
		Leases:  leases,
		Metrics: metrics.NewSchedulerMetrics(rt.Registry),
		Tick:    rt.Config.Cron.Tick,
		Entries: entries,
	})
	if err != nil {
		rt.Fail(ctx, "cron scheduler", err)
	}

	rt.ServeMetrics(ctx)
	rt.Logger.Info(ctx, "cron.started")
	if err := scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		rt.Fail(ctx, "cron worker stopped", err)
	}
	rt.Logger.Info(ctx, "cron.stopped")
	_ = rt.Close()
}

func leaseNamespace(env string) string {
	if env == "" {
		return "local"
	}
	return "cron-worker:" + env
}

func buildEntries(cfg *config.Config, logg *logger.Logger, dbClient *db.Client) ([]cron.Entry, error) {
	forecastSvc, err := forecast.NewService(forecast.NewRepository(dbClient.DB()), forecast.Options{
		DefaultDays:       cfg.Forecast.DefaultDays,
		RiskThresholdDays: cfg.Forecast.RiskThresholdDays,
	})
	if err != nil {
		return nil, fmt.Errorf("forecast service: %w", err)
	}
	alertSvc, err := discrepancies.NewService(discrepancies.NewRepository(dbClient.DB()))
	if err != nil {
		return nil, fmt.Errorf("discrepancy service: %w", err)
	}

	snapshotJob, err := cron.NewForecastSnapshotJob(cron.ForecastSnapshotJobParams{
		Logger:     logg,
		Forecaster: forecastSvc,
		Days:       cfg.Forecast.DefaultDays,
	})
	if err != nil {
		return nil, err
	}
	retentionJob, err := cron.NewRetentionJob(cron.RetentionJobParams{
		Logger:             logg,
		Outbox:             outbox.NewRepository(dbClient.DB()),
		Alerts:             alertSvc,
		OutboxRetention:    cfg.Outbox.Retention,
		ReadAlertRetention: cfg.Cron.ReadAlertRetention,
	})
	if err != nil {
		return nil, err
	}
	return []cron.Entry{
		{Job: snapshotJob, Every: cfg.Cron.Interval},
		{Job: retentionJob, Every: cfg.Cron.Interval},
	}, nil
}
