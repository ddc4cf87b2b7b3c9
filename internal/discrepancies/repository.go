package discrepancies

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bikurim/procurement-backend/internal/repo"
	"github.com/bikurim/procurement-backend/pkg/db/models"
)

type ListFilter struct {
	WarehouseID *uuid.UUID
	UnreadOnly  bool
}

type Repository struct {
	repo.Base
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

// List returns unread alerts first, newest first within each group.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.ReceiptDiscrepancyAlert, error) {
	q := r.DB(ctx).Model(&models.ReceiptDiscrepancyAlert{})
	if filter.WarehouseID != nil {
		q = q.Where("warehouse_id = ?", *filter.WarehouseID)
	}
	if filter.UnreadOnly {
		q = q.Where("read_at IS NULL")
	}
	var rows []models.ReceiptDiscrepancyAlert
	err := q.Order("read_at ASC NULLS FIRST").Order("created_at DESC").Find(&rows).Error
	return rows, err
}

// MarkRead stamps read_at once; later calls keep the first timestamp.
// Returns nil when the alert does not exist.
func (r *Repository) MarkRead(ctx context.Context, id uuid.UUID, at time.Time) (*models.ReceiptDiscrepancyAlert, error) {
	var rows []models.ReceiptDiscrepancyAlert
	res := r.DB(ctx).Model(&rows).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Update("read_at", gorm.Expr("COALESCE(read_at, ?)", at))
	if res.Error != nil {
		return nil, res.Error
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// PruneRead deletes alerts read before the cutoff.
func (r *Repository) PruneRead(ctx context.Context, before time.Time) (int64, error) {
	res := r.DB(ctx).Where("read_at IS NOT NULL AND read_at < ?", before).
		Delete(&models.ReceiptDiscrepancyAlert{})
	return res.RowsAffected, res.Error
}
