package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bikurim/procurement-backend/internal/pricing"
	"github.com/bikurim/procurement-backend/pkg/db"
	"github.com/bikurim/procurement-backend/pkg/db/models"
	pkgerrors "github.com/bikurim/procurement-backend/pkg/errors"
	"github.com/bikurim/procurement-backend/pkg/types"
)

const codeConstraint = "products_code_key"

// Service exposes catalog product operations.
type Service interface {
	List(ctx context.Context, filter ListFilter) ([]ProductDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ProductDetailDTO, error)
	Create(ctx context.Context, input CreateInput) (*ProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*ProductDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CreateInput struct {
	Name        string
	Code        *string
	CategoryID  *uuid.UUID
	DefaultUnit string
	Description *string
}

type UpdateInput struct {
	Name        *string
	Code        types.Nullable[string]
	CategoryID  types.Nullable[uuid.UUID]
	DefaultUnit *string
	Description types.Nullable[string]
}

type productStore interface {
	List(ctx context.Context, filter ListFilter) ([]ProductRow, error)
	Find(ctx context.Context, id uuid.UUID) (*ProductRow, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type service struct {
	repo    productStore
	pricing pricing.Service
}

func NewService(repo productStore, pricingSvc pricing.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if pricingSvc == nil {
		return nil, fmt.Errorf("pricing service required")
	}
	return &service{repo: repo, pricing: pricingSvc}, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]ProductDTO, error) {
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	out := make([]ProductDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row.Product, row.CategoryName))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDetailDTO, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	offers, err := s.pricing.SuppliersForProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ProductDetailDTO{ProductDTO: FromModel(row.Product, row.CategoryName), Suppliers: offers}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	unit := strings.TrimSpace(input.DefaultUnit)
	if unit == "" {
		unit = DefaultUnit
	}
	p := &models.Product{
		Name:        name,
		Code:        input.Code,
		CategoryID:  input.CategoryID,
		DefaultUnit: unit,
		Description: input.Description,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, mapWriteError(err, "create product")
	}
	row, err := s.load(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	dto := FromModel(row.Product, row.CategoryName)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*ProductDTO, error) {
	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		updates["name"] = name
	}
	if input.DefaultUnit != nil {
		unit := strings.TrimSpace(*input.DefaultUnit)
		if unit == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "default_unit cannot be empty")
		}
		updates["default_unit"] = unit
	}
	if input.Code.Set {
		updates["code"] = input.Code.Value
	}
	if input.CategoryID.Set {
		updates["category_id"] = input.CategoryID.Value
	}
	if input.Description.Set {
		updates["description"] = input.Description.Value
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	found, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, mapWriteError(err, "update product")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(row.Product, row.CategoryName)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "product is in use and cannot be deleted")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*ProductRow, error) {
	row, err := s.repo.Find(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return row, nil
}

func mapWriteError(err error, msg string) error {
	switch {
	case db.IsUniqueViolation(err, codeConstraint):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "product code already exists")
	case db.IsForeignKeyViolation(err):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "category does not exist")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, msg)
}
