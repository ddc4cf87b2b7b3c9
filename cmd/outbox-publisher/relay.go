package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	gpubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bikurim/procurement-backend/pkg/config"
	"github.com/bikurim/procurement-backend/pkg/db/models"
	"github.com/bikurim/procurement-backend/pkg/logger"
	"github.com/bikurim/procurement-backend/pkg/metrics"
	"github.com/bikurim/procurement-backend/pkg/outbox"
)

const (
	fallbackBatch       = 50
	fallbackPoll        = 500 * time.Millisecond
	fallbackAttempts    = 10
	fallbackAckDeadline = 15 * time.Second
	backoffCeiling      = 10 * time.Second
	jitterWindow        = 250 * time.Millisecond
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventStore interface {
	FetchForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error
	MarkFailedTx(tx *gorm.DB, id uuid.UUID, cause error) error
}

// sink is the publishing side of a Pub/Sub topic.
type sink interface {
	Publish(ctx context.Context, msg *gpubsub.Message) ackFuture
	ResumePublish(orderingKey string)
}

type ackFuture interface {
	Get(ctx context.Context) (serverID string, err error)
}

type RelayParams struct {
	Outbox         config.OutboxConfig
	PublishTimeout time.Duration
	// Ordered sets the aggregate id as ordering key on every message.
	Ordered bool
	Logger  *logger.Logger
	DB      txRunner
	Store   eventStore
	Sink    sink
	Metrics *metrics.OutboxMetrics
	Now     func() time.Time
}

// Relay moves rows from outbox_events to the domain topic. Delivery is at
// least once: a row is marked published only after Pub/Sub acknowledged it,
// inside the transaction that holds the row lock.
type Relay struct {
	logg        *logger.Logger
	db          txRunner
	store       eventStore
	sink        sink
	metrics     *metrics.OutboxMetrics
	now         func() time.Time
	ordered     bool
	batch       int
	maxAttempts int
	poll        time.Duration
	ackDeadline time.Duration
}

func NewRelay(p RelayParams) (*Relay, error) {
	switch {
	case p.Logger == nil:
		return nil, errors.New("relay: logger required")
	case p.DB == nil:
		return nil, errors.New("relay: database required")
	case p.Store == nil:
		return nil, errors.New("relay: outbox store required")
	case p.Sink == nil:
		return nil, errors.New("relay: topic sink required")
	}
	r := &Relay{
		logg:        p.Logger,
		db:          p.DB,
		store:       p.Store,
		sink:        p.Sink,
		metrics:     p.Metrics,
		now:         p.Now,
		ordered:     p.Ordered,
		batch:       orDefault(p.Outbox.BatchSize, fallbackBatch),
		maxAttempts: orDefault(p.Outbox.MaxAttempts, fallbackAttempts),
		poll:        time.Duration(p.Outbox.PollIntervalMS) * time.Millisecond,
		ackDeadline: p.PublishTimeout,
	}
	if r.poll <= 0 {
		r.poll = fallbackPoll
	}
	if r.ackDeadline <= 0 {
		r.ackDeadline = fallbackAckDeadline
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r, nil
}

func orDefault(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

// Run polls until ctx is cancelled. A full batch is followed immediately by
// the next one; errors back off exponentially up to backoffCeiling.
func (r *Relay) Run(ctx context.Context) error {
	wait := r.poll
	for {
		drained, err := r.relayBatch(ctx)
		switch {
		case err != nil && ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			r.logg.Error(ctx, "outbox.batch_failed", err)
			wait = nextBackoff(wait, r.poll, backoffCeiling)
		case drained:
			wait = r.poll
		default:
			wait = r.poll
			continue
		}
		if err := pause(ctx, jitter(wait)); err != nil {
			return err
		}
	}
}

// relayBatch publishes one locked batch. drained is true when the batch was
// smaller than the limit, meaning the backlog is empty for now.
func (r *Relay) relayBatch(ctx context.Context) (drained bool, err error) {
	err = r.db.WithTx(ctx, func(tx *gorm.DB) error {
		events, err := r.store.FetchForPublish(tx, r.batch, r.maxAttempts)
		if err != nil {
			return fmt.Errorf("fetch outbox: %w", err)
		}
		drained = len(events) < r.batch
		r.recordLag(events)

		// an ordering key that failed once in this batch is held back so a
		// later event of the same aggregate cannot overtake it
		stalled := map[string]struct{}{}
		defer func() {
			for key := range stalled {
				r.sink.ResumePublish(key)
			}
		}()

		for _, ev := range events {
			msg := buildMessage(ev, r.ordered)
			if _, held := stalled[msg.OrderingKey]; held && msg.OrderingKey != "" {
				continue
			}
			if pubErr := r.publish(ctx, msg); pubErr != nil {
				if msg.OrderingKey != "" {
					stalled[msg.OrderingKey] = struct{}{}
				}
				if err := r.store.MarkFailedTx(tx, ev.ID, pubErr); err != nil {
					return fmt.Errorf("mark %s failed: %w", ev.ID, err)
				}
				r.reportFailure(ctx, ev, pubErr)
				continue
			}
			if err := r.store.MarkPublishedTx(tx, ev.ID); err != nil {
				return fmt.Errorf("mark %s published: %w", ev.ID, err)
			}
			r.logg.Debug(r.eventContext(ctx, ev), "outbox.published")
		}
		return nil
	})
	return drained, err
}

func (r *Relay) publish(ctx context.Context, msg *gpubsub.Message) error {
	ctx, cancel := context.WithTimeout(ctx, r.ackDeadline)
	defer cancel()

	start := time.Now()
	ack := r.sink.Publish(ctx, msg)
	if ack == nil {
		return errors.New("publisher returned no ack future")
	}
	if _, err := ack.Get(ctx); err != nil {
		return err
	}
	r.metrics.Published(msg.Attributes["event_type"], time.Since(start))
	return nil
}

func (r *Relay) reportFailure(ctx context.Context, ev models.OutboxEvent, cause error) {
	attempt := ev.AttemptCount + 1
	exhausted := ev.LastAttempt(r.maxAttempts)
	r.metrics.Failed(string(ev.EventType), exhausted)

	ctx = r.logg.WithFields(r.eventContext(ctx, ev), map[string]any{
		"attempt":      attempt,
		"max_attempts": r.maxAttempts,
		"error":        cause.Error(),
	})
	if exhausted {
		// the row stays in the table for inspection; it is no longer fetched
		r.logg.Error(ctx, "outbox.exhausted", cause)
		return
	}
	r.logg.Warn(ctx, "outbox.publish_failed")
}

func (r *Relay) recordLag(events []models.OutboxEvent) {
	if len(events) == 0 {
		r.metrics.BatchAge(0)
		return
	}
	r.metrics.BatchAge(r.now().Sub(events[0].CreatedAt))
}

func (r *Relay) eventContext(ctx context.Context, ev models.OutboxEvent) context.Context {
	return r.logg.WithFields(ctx, map[string]any{
		"outbox_id":    ev.ID.String(),
		"event_type":   ev.EventType,
		"aggregate_id": ev.AggregateID.String(),
	})
}

// buildMessage carries the stored payload as is. Attributes let subscribers
// filter without decoding; event_id comes from the envelope when present so
// it matches the id inside the payload.
func buildMessage(ev models.OutboxEvent, ordered bool) *gpubsub.Message {
	attrs := map[string]string{
		"event_id":       ev.ID.String(),
		"event_type":     string(ev.EventType),
		"aggregate_type": string(ev.AggregateType),
		"aggregate_id":   ev.AggregateID.String(),
		"created_at":     ev.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if env, ok := outbox.DecodeEnvelope(ev.Payload); ok {
		if env.EventID != "" {
			attrs["event_id"] = env.EventID
		}
		attrs["schema_version"] = fmt.Sprint(env.Version)
		if env.CorrelationID != "" {
			attrs["correlation_id"] = env.CorrelationID
		}
	}
	msg := &gpubsub.Message{Data: ev.Payload, Attributes: attrs}
	if ordered {
		msg.OrderingKey = ev.AggregateID.String()
	}
	return msg
}

func nextBackoff(current, base, ceiling time.Duration) time.Duration {
	if current < base {
		current = base
	}
	return min(current*2, ceiling)
}

func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d + rand.N(jitterWindow)
}

func pause(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// topicSink adapts the Pub/Sub publisher to sink.
type topicSink struct {
	pub *gpubsub.Publisher
}

func (s topicSink) Publish(ctx context.Context, msg *gpubsub.Message) ackFuture {
	return s.pub.Publish(ctx, msg)
}

func (s topicSink) ResumePublish(key string) {
	s.pub.ResumePublish(key)
}
