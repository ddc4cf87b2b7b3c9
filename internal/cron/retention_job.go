package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/bikurim/procurement-backend/pkg/logger"
	"go.uber.org/multierr"
)

const (
	defaultOutboxRetention    = 30 * 24 * time.Hour
	defaultReadAlertRetention = 90 * 24 * time.Hour
)

type RetentionJobParams struct {
	Logger             *logger.Logger
	Outbox             outboxPruner
	Alerts             alertPruner
	OutboxRetention    time.Duration
	ReadAlertRetention time.Duration
}

type outboxPruner interface {
	DeletePublishedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type alertPruner interface {
	PruneRead(ctx context.Context, olderThan time.Duration) (int64, error)
}

// NewRetentionJob prunes published outbox rows and discrepancy alerts that
// were read long ago.
func NewRetentionJob(params RetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox repository required")
	}
	if params.Alerts == nil {
		return nil, fmt.Errorf("discrepancy service required")
	}
	outboxRetention := params.OutboxRetention
	if outboxRetention <= 0 {
		outboxRetention = defaultOutboxRetention
	}
	alertRetention := params.ReadAlertRetention
	if alertRetention <= 0 {
		alertRetention = defaultReadAlertRetention
	}
	return &retentionJob{
		logg:           params.Logger,
		outbox:         params.Outbox,
		alerts:         params.Alerts,
		outboxRetain:   outboxRetention,
		alertRetention: alertRetention,
		now:            time.Now,
	}, nil
}

type retentionJob struct {
	logg           *logger.Logger
	outbox         outboxPruner
	alerts         alertPruner
	outboxRetain   time.Duration
	alertRetention time.Duration
	now            func() time.Time
}

func (j *retentionJob) Name() string { return "retention" }

// Run attempts both sweeps even when the first fails.
func (j *retentionJob) Run(ctx context.Context) error {
	var errs []error
	if err := j.pruneOutbox(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := j.pruneAlerts(ctx); err != nil {
		errs = append(errs, err)
	}
	return multierr.Combine(errs...)
}

func (j *retentionJob) pruneOutbox(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.outboxRetain)
	deleted, err := j.outbox.DeletePublishedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("outbox retention: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"rows_deleted": deleted,
	})
	j.logg.Info(logCtx, "outbox retention cleanup complete")
	return nil
}

func (j *retentionJob) pruneAlerts(ctx context.Context) error {
	deleted, err := j.alerts.PruneRead(ctx, j.alertRetention)
	if err != nil {
		return fmt.Errorf("read alert retention: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"retention_hours": j.alertRetention.Hours(),
		"rows_deleted":    deleted,
	})
	j.logg.Info(logCtx, "read alert cleanup complete")
	return nil
}
