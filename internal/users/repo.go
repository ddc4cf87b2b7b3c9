package users

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bikurim/procurement-backend/pkg/db/models"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) active(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("is_active")
}

// ListActive returns active staff by name. Inactive users keep their
// history but are hidden from pickers.
func (r *Repository) ListActive(ctx context.Context) ([]models.User, error) {
	var rows []models.User
	err := r.active(ctx).Order("full_name").Order("id").Find(&rows).Error
	return rows, err
}

// IsActive reports whether id names an active user.
func (r *Repository) IsActive(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	err := r.active(ctx).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}
