package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestHTTPMetricsCountsByRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe("/api/warehouses/{id}/movements", http.MethodPost, http.StatusCreated, 20*time.Millisecond)
	m.Observe("", http.MethodGet, http.StatusNotFound, time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "bikurim_http_requests_total", "route", "/api/warehouses/{id}/movements"); err != nil || got != 1 {
		t.Fatalf("expected one movement request, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "bikurim_http_requests_total", "route", "unknown"); err != nil || got != 1 {
		t.Fatalf("expected unmatched route under unknown, got %f err=%v", got, err)
	}
}

func TestAIMetricsRecordsFailover(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAIMetrics(reg)
	m.ObserveCall("scan_delivery_note", "ok", time.Second)
	m.IncFailover()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "bikurim_ai_calls_total", "outcome", "ok"); err != nil || got != 1 {
		t.Fatalf("expected one ok call, got %f err=%v", got, err)
	}
	mf := findMetricFamily(mfs, "bikurim_ai_key_failover_total")
	if mf == nil || mf.GetMetric()[0].GetCounter().GetValue() != 1 {
		t.Fatalf("expected failover counter at 1")
	}
}

func TestNilRegistererIsNoop(t *testing.T) {
	NewHTTPMetrics(nil).Observe("/x", http.MethodGet, 200, time.Millisecond)
	NewAIMetrics(nil).IncFailover()
	var m *SchedulerMetrics
	m.Finished("job", 0, time.Time{}, nil)
}
