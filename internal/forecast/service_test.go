package forecast

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bikurim/procurement-backend/pkg/db/models"
	"github.com/bikurim/procurement-backend/pkg/enums"
	pkgerrors "github.com/bikurim/procurement-backend/pkg/errors"
)

type stubStore struct {
	rows     []UsageRow
	since    time.Time
	inserted []models.ForecastAnalysis
	err      error
}

func (s *stubStore) Usage(_ context.Context, since time.Time) ([]UsageRow, error) {
	s.since = since
	return s.rows, s.err
}

func (s *stubStore) InsertSnapshots(_ context.Context, rows []models.ForecastAnalysis) error {
	s.inserted = append(s.inserted, rows...)
	return s.err
}

func newTestService(st *stubStore) *service {
	return &service{
		store: st,
		opts:  Options{DefaultDays: 30, RiskThresholdDays: 7},
		now:   func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func TestForecastWindowAndRisk(t *testing.T) {
	st := &stubStore{rows: []UsageRow{
		{ProductID: uuid.New(), ProductName: "חלב", TotalStock: decimal.NewFromInt(100), TotalOut: decimal.NewFromInt(60)},
		{ProductID: uuid.New(), ProductName: "קמח", TotalStock: decimal.NewFromInt(10), TotalOut: decimal.NewFromInt(60)},
		{ProductID: uuid.New(), ProductName: "מלח", TotalStock: decimal.NewFromInt(3), TotalOut: decimal.Zero},
	}}
	svc := newTestService(st)

	got, err := svc.Forecast(context.Background(), -1)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if got.Days != 30 {
		t.Fatalf("days = %d", got.Days)
	}
	if st.since.Format("2006-01-02") != "2026-01-30" {
		t.Fatalf("window start = %s", st.since)
	}
	if got.Forecast[0].Risk != enums.ForecastRiskLow || got.Forecast[1].Risk != enums.ForecastRiskHigh {
		t.Fatalf("unexpected risks %s %s", got.Forecast[0].Risk, got.Forecast[1].Risk)
	}
	if CountAtRisk(got.Forecast, svc.Threshold()) != 1 {
		t.Fatalf("expected one product at risk")
	}
}

func TestSnapshotPersistsRows(t *testing.T) {
	st := &stubStore{rows: []UsageRow{
		{ProductID: uuid.New(), TotalStock: decimal.NewFromInt(100), TotalOut: decimal.NewFromInt(60)},
		{ProductID: uuid.New(), TotalStock: decimal.NewFromInt(1), TotalOut: decimal.Zero},
	}}
	n, err := newTestService(st).Snapshot(context.Background(), 14)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if n != 2 || len(st.inserted) != 2 {
		t.Fatalf("inserted %d rows", len(st.inserted))
	}
	if st.inserted[0].ForecastDays != 14 || st.inserted[0].EstimatedShortageDate == nil {
		t.Fatalf("unexpected snapshot %+v", st.inserted[0])
	}
	if st.inserted[1].DaysUntilShortage.Valid {
		t.Fatalf("no usage should store a null projection")
	}
}

func TestForecastStoreFailure(t *testing.T) {
	svc := newTestService(&stubStore{err: errors.New("db down")})
	if _, err := svc.Forecast(context.Background(), 30); !pkgerrors.IsCode(err, pkgerrors.CodeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}
