package cron

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bikurim/procurement-backend/pkg/logger"
	"github.com/bikurim/procurement-backend/pkg/metrics"
)

const (
	defaultTick  = time.Minute
	defaultEvery = 24 * time.Hour
)

// Job is one unit of scheduled maintenance.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Entry binds a job to the length of its window. Windows are aligned to
// the Unix epoch in UTC, so a 24h entry runs once per UTC day.
type Entry struct {
	Job   Job
	Every time.Duration
}

type SchedulerParams struct {
	Logger  *logger.Logger
	Leases  Leaser
	Metrics *metrics.SchedulerMetrics
	Tick    time.Duration
	Entries []Entry
	Now     func() time.Time
}

// Scheduler wakes up every tick and runs the entries whose current window
// this process has not handled yet.
type Scheduler struct {
	logg    *logger.Logger
	leases  Leaser
	metrics *metrics.SchedulerMetrics
	tick    time.Duration
	entries []Entry
	now     func() time.Time

	mu      sync.Mutex
	handled map[string]time.Time
}

func NewScheduler(params SchedulerParams) (*Scheduler, error) {
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	if params.Leases == nil {
		return nil, errors.New("window leases required")
	}
	entries := make([]Entry, 0, len(params.Entries))
	for _, entry := range params.Entries {
		if entry.Job == nil {
			continue
		}
		if entry.Every <= 0 {
			entry.Every = defaultEvery
		}
		entries = append(entries, entry)
	}
	if len(entries) == 0 {
		return nil, errors.New("at least one cron entry is required")
	}
	tick := params.Tick
	if tick <= 0 {
		tick = defaultTick
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Scheduler{
		logg:    params.Logger,
		leases:  params.Leases,
		metrics: params.Metrics,
		tick:    tick,
		entries: entries,
		now:     now,
		handled: make(map[string]time.Time, len(entries)),
	}, nil
}

func (s *Scheduler) Run(ctx context.Context) error {
	s.runDue(ctx)
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "cron scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runDue(ctx)
		}
	}
}

// runDue runs the due entries concurrently and returns once all of them
// have finished.
func (s *Scheduler) runDue(ctx context.Context) {
	now := s.now().UTC()
	var g errgroup.Group
	for _, entry := range s.entries {
		window := now.Truncate(entry.Every)
		if !s.markHandled(entry.Job.Name(), window) {
			continue
		}
		g.Go(func() error {
			s.runWindow(ctx, entry, window)
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Scheduler) markHandled(job string, window time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if last, ok := s.handled[job]; ok && !window.After(last) {
		return false
	}
	s.handled[job] = window
	return true
}

func (s *Scheduler) forget(job string, window time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if last, ok := s.handled[job]; ok && last.Equal(window) {
		delete(s.handled, job)
	}
}

func (s *Scheduler) runWindow(ctx context.Context, entry Entry, window time.Time) {
	name := entry.Job.Name()
	jobCtx := s.logg.WithFields(ctx, map[string]any{
		"job":    name,
		"window": window.Format(time.RFC3339),
	})

	claim, ok, err := s.leases.Claim(jobCtx, name, window, entry.Every)
	if err != nil {
		// retried on the next tick
		s.forget(name, window)
		s.logg.Error(jobCtx, "cron window claim failed", err)
		return
	}
	if !ok {
		s.metrics.Skipped(name)
		s.logg.Info(jobCtx, "cron window claimed by another replica")
		return
	}

	start := s.now()
	runErr := entry.Job.Run(jobCtx)
	finished := s.now()
	took := finished.Sub(start)
	s.metrics.Finished(name, took, finished, runErr)
	jobCtx = s.logg.WithField(jobCtx, "duration_ms", took.Milliseconds())

	if runErr == nil {
		s.logg.Info(jobCtx, "cron job completed")
		return
	}
	s.logg.Error(jobCtx, "cron job failed", runErr)
	s.forget(name, window)
	if err := s.leases.Yield(context.WithoutCancel(jobCtx), claim); err != nil {
		s.logg.Error(jobCtx, "cron window yield failed", err)
	}
}
