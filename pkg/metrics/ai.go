package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// AIMetrics tracks calls to the generative model provider.
type AIMetrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	failover prometheus.Counter
}

func NewAIMetrics(reg prometheus.Registerer) *AIMetrics {
	if reg == nil {
		return &AIMetrics{}
	}
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ai_calls_total",
		Help:      "Generative model calls by operation and outcome.",
	}, []string{"operation", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ai_call_duration_seconds",
		Help:      "Generative model call latency in seconds.",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 45},
	}, []string{"operation"})
	failover := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ai_key_failover_total",
		Help:      "Times the backup API key was used after the primary was rate limited.",
	})
	reg.MustRegister(calls, duration, failover)
	return &AIMetrics{calls: calls, duration: duration, failover: failover}
}

func (m *AIMetrics) ObserveCall(operation, outcome string, elapsed time.Duration) {
	if m == nil || m.calls == nil {
		return
	}
	operation = normalizeLabel(operation)
	m.calls.WithLabelValues(operation, normalizeLabel(outcome)).Inc()
	m.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (m *AIMetrics) IncFailover() {
	if m == nil || m.failover == nil {
		return
	}
	m.failover.Inc()
}
