package cron

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/bikurim/procurement-backend/pkg/logger"
)

type countingJob struct {
	name string
	mu   sync.Mutex
	runs int
	err  error
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.runs++
	return j.err
}

func (j *countingJob) count() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.runs
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestScheduler(t *testing.T, store *memRedis, now *clock, entries ...Entry) *Scheduler {
	t.Helper()
	leases, err := NewWindowLeases(store, "test")
	if err != nil {
		t.Fatalf("NewWindowLeases: %v", err)
	}
	s, err := NewScheduler(SchedulerParams{
		Logger:  logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard}),
		Leases:  leases,
		Entries: entries,
		Now:     now.Now,
	})
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	return s
}

func TestSchedulerRunsEachWindowOnce(t *testing.T) {
	now := &clock{t: time.Date(2026, 3, 1, 3, 0, 0, 0, time.UTC)}
	daily := &countingJob{name: "forecast-snapshot"}
	hourly := &countingJob{name: "retention"}
	s := newTestScheduler(t, newMemRedis(), now,
		Entry{Job: daily, Every: 24 * time.Hour},
		Entry{Job: hourly, Every: time.Hour},
	)

	s.runDue(context.Background())
	now.advance(10 * time.Minute)
	s.runDue(context.Background())
	if daily.count() != 1 || hourly.count() != 1 {
		t.Fatalf("runs daily=%d hourly=%d", daily.count(), hourly.count())
	}

	now.advance(time.Hour)
	s.runDue(context.Background())
	if daily.count() != 1 || hourly.count() != 2 {
		t.Fatalf("after an hour daily=%d hourly=%d", daily.count(), hourly.count())
	}

	now.advance(24 * time.Hour)
	s.runDue(context.Background())
	if daily.count() != 2 {
		t.Fatalf("daily job did not run in the next day, runs=%d", daily.count())
	}
}

func TestSchedulerReplicasShareWindows(t *testing.T) {
	store := newMemRedis()
	now := &clock{t: time.Date(2026, 3, 1, 3, 0, 0, 0, time.UTC)}
	job := &countingJob{name: "retention"}
	first := newTestScheduler(t, store, now, Entry{Job: job, Every: 24 * time.Hour})
	second := newTestScheduler(t, store, now, Entry{Job: job, Every: 24 * time.Hour})

	first.runDue(context.Background())
	second.runDue(context.Background())
	if job.count() != 1 {
		t.Fatalf("window executed %d times across replicas", job.count())
	}
}

func TestSchedulerRetriesFailedWindow(t *testing.T) {
	store := newMemRedis()
	now := &clock{t: time.Date(2026, 3, 1, 3, 0, 0, 0, time.UTC)}
	job := &countingJob{name: "retention", err: errors.New("db down")}
	s := newTestScheduler(t, store, now, Entry{Job: job, Every: 24 * time.Hour})

	s.runDue(context.Background())
	if len(store.values) != 0 {
		t.Fatalf("failed run kept its claim: %v", store.values)
	}

	job.mu.Lock()
	job.err = nil
	job.mu.Unlock()
	now.advance(time.Minute)
	s.runDue(context.Background())
	if job.count() != 2 {
		t.Fatalf("expected a retry in the same window, runs=%d", job.count())
	}
	if len(store.values) != 1 {
		t.Fatalf("successful run should keep its claim")
	}
}

func TestNewSchedulerValidates(t *testing.T) {
	leases, _ := NewWindowLeases(newMemRedis(), "test")
	if _, err := NewScheduler(SchedulerParams{Leases: leases, Entries: []Entry{{Job: &countingJob{name: "x"}}}}); err == nil {
		t.Fatal("expected logger error")
	}
	if _, err := NewScheduler(SchedulerParams{Logger: logger.Nop(), Leases: leases, Entries: []Entry{{}}}); err == nil {
		t.Fatal("expected error without jobs")
	}
	s, err := NewScheduler(SchedulerParams{Logger: logger.Nop(), Leases: leases, Entries: []Entry{{Job: &countingJob{name: "x"}}}})
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	if s.entries[0].Every != defaultEvery || s.tick != defaultTick {
		t.Fatalf("defaults not applied: every=%v tick=%v", s.entries[0].Every, s.tick)
	}
}
