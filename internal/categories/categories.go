// Package categories serves the read-only product category list.
package categories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bikurim/procurement-backend/pkg/db/models"
	pkgerrors "github.com/bikurim/procurement-backend/pkg/errors"
)

type CategoryDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	err := r.db.WithContext(ctx).Order("sort_order, name").Find(&rows).Error
	return rows, err
}

type Service interface {
	List(ctx context.Context) ([]CategoryDTO, error)
}

type lister interface {
	List(ctx context.Context) ([]models.Category, error)
}

type service struct {
	repo lister
}

func NewService(repo lister) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("categories repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	out := make([]CategoryDTO, len(rows))
	for i, row := range rows {
		out[i] = CategoryDTO{ID: row.ID, Name: row.Name, SortOrder: row.SortOrder, CreatedAt: row.CreatedAt.UTC()}
	}
	return out, nil
}
