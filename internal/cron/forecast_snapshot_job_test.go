package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/bikurim/procurement-backend/pkg/logger"
)

type fakeSnapshotter struct {
	days int
	err  error
}

func (f *fakeSnapshotter) Snapshot(_ context.Context, days int) (int, error) {
	f.days = days
	if f.err != nil {
		return 0, f.err
	}
	return 12, nil
}

func TestForecastSnapshotJobFallsBackToDefaultWindow(t *testing.T) {
	svc := &fakeSnapshotter{}
	job, err := NewForecastSnapshotJob(ForecastSnapshotJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		Forecaster: svc,
	})
	if err != nil {
		t.Fatalf("NewForecastSnapshotJob: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if svc.days != 30 {
		t.Fatalf("expected 30 day window, got %d", svc.days)
	}
}

func TestForecastSnapshotJobPropagatesError(t *testing.T) {
	job, err := NewForecastSnapshotJob(ForecastSnapshotJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		Forecaster: &fakeSnapshotter{err: errors.New("boom")},
		Days:       14,
	})
	if err != nil {
		t.Fatalf("NewForecastSnapshotJob: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
