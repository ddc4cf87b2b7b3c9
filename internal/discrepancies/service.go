package discrepancies

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bikurim/procurement-backend/pkg/db/models"
	pkgerrors "github.com/bikurim/procurement-backend/pkg/errors"
)

// Service reads and acknowledges receipt discrepancy alerts.
type Service interface {
	List(ctx context.Context, filter ListFilter) ([]AlertDTO, error)
	MarkRead(ctx context.Context, id uuid.UUID) (*AlertDTO, error)
	PruneRead(ctx context.Context, olderThan time.Duration) (int64, error)
}

type alertStore interface {
	List(ctx context.Context, filter ListFilter) ([]models.ReceiptDiscrepancyAlert, error)
	MarkRead(ctx context.Context, id uuid.UUID, at time.Time) (*models.ReceiptDiscrepancyAlert, error)
	PruneRead(ctx context.Context, before time.Time) (int64, error)
}

type service struct {
	store alertStore
	now   func() time.Time
}

func NewService(store alertStore) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("discrepancy alert repository required")
	}
	return &service{store: store, now: time.Now}, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]AlertDTO, error) {
	rows, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list discrepancy alerts")
	}
	out := make([]AlertDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out, nil
}

func (s *service) MarkRead(ctx context.Context, id uuid.UUID) (*AlertDTO, error) {
	row, err := s.store.MarkRead(ctx, id, s.now().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark alert read")
	}
	if row == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "alert not found")
	}
	dto := FromModel(*row)
	return &dto, nil
}

func (s *service) PruneRead(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "retention must be positive")
	}
	n, err := s.store.PruneRead(ctx, s.now().UTC().Add(-olderThan))
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "prune read alerts")
	}
	return n, nil
}
