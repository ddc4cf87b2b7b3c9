package products

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bikurim/procurement-backend/internal/repo"
	"github.com/bikurim/procurement-backend/pkg/db/models"
)

// ListFilter narrows the catalog. Query matches name or code.
type ListFilter struct {
	CategoryID *uuid.UUID
	Query      string
}

// ProductRow is a product joined with its category name.
type ProductRow struct {
	models.Product
	CategoryName *string `gorm:"column:category_name"`
}

type Repository struct {
	repo.Base
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

const productSelect = `SELECT p.*, c.name AS category_name
FROM products p
LEFT JOIN categories c ON c.id = p.category_id`

func (r *Repository) List(ctx context.Context, filter ListFilter) ([]ProductRow, error) {
	var (
		where []string
		args  []any
	)
	if filter.CategoryID != nil {
		where = append(where, "p.category_id = ?")
		args = append(args, *filter.CategoryID)
	}
	if term := strings.TrimSpace(filter.Query); term != "" {
		like := repo.Contains(term)
		where = append(where, "(p.name ILIKE ? OR p.code ILIKE ?)")
		args = append(args, like, like)
	}
	query := productSelect
	if len(where) > 0 {
		query += "\nWHERE " + strings.Join(where, " AND ")
	}
	query += "\nORDER BY p.name ASC"

	var rows []ProductRow
	err := r.DB(ctx).Raw(query, args...).Scan(&rows).Error
	return rows, err
}

func (r *Repository) Find(ctx context.Context, id uuid.UUID) (*ProductRow, error) {
	var row ProductRow
	if err := r.DB(ctx).Raw(productSelect+"\nWHERE p.id = ?", id).Take(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) Create(ctx context.Context, p *models.Product) error {
	return r.DB(ctx).Create(p).Error
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (bool, error) {
	updates["updated_at"] = time.Now().UTC()
	res := r.DB(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(updates)
	return res.RowsAffected > 0, res.Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.Product{})
	return res.RowsAffected > 0, res.Error
}
