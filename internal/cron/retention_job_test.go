package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bikurim/procurement-backend/pkg/logger"
	"go.uber.org/multierr"
)

type fakeOutboxPruner struct {
	lastCutoff time.Time
	called     int
	err        error
}

func (f *fakeOutboxPruner) DeletePublishedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.called++
	f.lastCutoff = cutoff
	if f.err != nil {
		return 0, f.err
	}
	return 7, nil
}

type fakeAlertPruner struct {
	lastRetention time.Duration
	called        int
	err           error
}

func (f *fakeAlertPruner) PruneRead(_ context.Context, olderThan time.Duration) (int64, error) {
	f.called++
	f.lastRetention = olderThan
	if f.err != nil {
		return 0, f.err
	}
	return 2, nil
}

func newRetentionJob(t *testing.T, outbox *fakeOutboxPruner, alerts *fakeAlertPruner) *retentionJob {
	t.Helper()
	jobIface, err := NewRetentionJob(RetentionJobParams{
		Logger: logger.New(logger.Options{ServiceName: "test"}),
		Outbox: outbox,
		Alerts: alerts,
	})
	if err != nil {
		t.Fatalf("NewRetentionJob: %v", err)
	}
	job, ok := jobIface.(*retentionJob)
	if !ok {
		t.Fatalf("expected retentionJob, got %T", jobIface)
	}
	return job
}

func TestRetentionJobUsesDefaultWindows(t *testing.T) {
	now := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	outbox := &fakeOutboxPruner{}
	alerts := &fakeAlertPruner{}
	job := newRetentionJob(t, outbox, alerts)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if want := now.Add(-defaultOutboxRetention); !outbox.lastCutoff.Equal(want) {
		t.Fatalf("expected cutoff %s, got %s", want, outbox.lastCutoff)
	}
	if alerts.lastRetention != defaultReadAlertRetention {
		t.Fatalf("expected alert retention %s, got %s", defaultReadAlertRetention, alerts.lastRetention)
	}
}

func TestRetentionJobRunsBothSweepsOnFailure(t *testing.T) {
	outbox := &fakeOutboxPruner{err: errors.New("outbox down")}
	alerts := &fakeAlertPruner{err: errors.New("alerts down")}
	job := newRetentionJob(t, outbox, alerts)

	err := job.Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if outbox.called != 1 || alerts.called != 1 {
		t.Fatalf("expected both sweeps to run, got outbox=%d alerts=%d", outbox.called, alerts.called)
	}
	if got := len(multierr.Errors(err)); got != 2 {
		t.Fatalf("expected 2 combined errors, got %d", got)
	}
}

func TestNewRetentionJobRequiresDeps(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test"})
	if _, err := NewRetentionJob(RetentionJobParams{Logger: logg, Alerts: &fakeAlertPruner{}}); err == nil {
		t.Fatal("expected error without outbox")
	}
	if _, err := NewRetentionJob(RetentionJobParams{Logger: logg, Outbox: &fakeOutboxPruner{}}); err == nil {
		t.Fatal("expected error without alerts")
	}
}
