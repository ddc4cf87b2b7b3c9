package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outbox publish outcomes.
const (
	OutboxPublished = "published"
	OutboxFailed    = "failed"
	OutboxExhausted = "exhausted"
)

// OutboxMetrics tracks the relay from outbox_events to Pub/Sub.
type OutboxMetrics struct {
	events  *prometheus.CounterVec
	latency prometheus.Histogram
	lag     prometheus.Gauge
}

func NewOutboxMetrics(reg prometheus.Registerer) *OutboxMetrics {
	if reg == nil {
		return &OutboxMetrics{}
	}
	m := &OutboxMetrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "outbox",
			Name:      "events_total",
			Help:      "Outbox publish attempts by event type and outcome.",
		}, []string{"event_type", "outcome"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "outbox",
			Name:      "publish_duration_seconds",
			Help:      "Time until Pub/Sub acknowledged a message.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 11),
		}),
		lag: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "outbox",
			Name:      "oldest_event_age_seconds",
			Help:      "Age of the oldest event in the last fetched batch; zero when the batch was empty.",
		}),
	}
	reg.MustRegister(m.events, m.latency, m.lag)
	return m
}

func (m *OutboxMetrics) Published(eventType string, took time.Duration) {
	if m == nil || m.events == nil {
		return
	}
	m.events.WithLabelValues(normalizeLabel(eventType), OutboxPublished).Inc()
	m.latency.Observe(took.Seconds())
}

// Failed counts a failed attempt. exhausted marks the last allowed attempt.
func (m *OutboxMetrics) Failed(eventType string, exhausted bool) {
	if m == nil || m.events == nil {
		return
	}
	outcome := OutboxFailed
	if exhausted {
		outcome = OutboxExhausted
	}
	m.events.WithLabelValues(normalizeLabel(eventType), outcome).Inc()
}

func (m *OutboxMetrics) BatchAge(age time.Duration) {
	if m == nil || m.lag == nil {
		return
	}
	m.lag.Set(age.Seconds())
}
