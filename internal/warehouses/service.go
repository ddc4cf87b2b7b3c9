package warehouses

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bikurim/procurement-backend/pkg/db"
	"github.com/bikurim/procurement-backend/pkg/db/models"
	pkgerrors "github.com/bikurim/procurement-backend/pkg/errors"
	"github.com/bikurim/procurement-backend/pkg/types"
)

// Service manages warehouse metadata. Stock lives in the inventory package.
type Service interface {
	List(ctx context.Context) ([]WarehouseDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*WarehouseDTO, error)
	Create(ctx context.Context, input CreateInput) (*WarehouseDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*WarehouseDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ExpectedDeliveries(ctx context.Context, id uuid.UUID) ([]ExpectedDeliveryDTO, error)
}

type CreateInput struct {
	Name              string
	Code              *string
	Address           *string
	Location          *string
	IsActive          *bool
	ResponsibleUserID *uuid.UUID
}

type UpdateInput struct {
	Name              *string
	Code              types.Nullable[string]
	Address           types.Nullable[string]
	Location          types.Nullable[string]
	IsActive          *bool
	ResponsibleUserID types.Nullable[uuid.UUID]
}

type warehouseStore interface {
	List(ctx context.Context) ([]WarehouseRow, error)
	Find(ctx context.Context, id uuid.UUID) (*WarehouseRow, error)
	Create(ctx context.Context, w *models.Warehouse) error
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	ExpectedDeliveries(ctx context.Context, warehouseID uuid.UUID) ([]DeliveryRow, error)
}

// userChecker validates responsible user references before a write.
type userChecker interface {
	EnsureExists(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo  warehouseStore
	users userChecker
}

// NewService builds the warehouse service. users may be nil, in which case
// the foreign key alone guards responsible_user_id.
func NewService(repo warehouseStore, users userChecker) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("warehouse repository required")
	}
	return &service{repo: repo, users: users}, nil
}

func (s *service) checkResponsible(ctx context.Context, id *uuid.UUID) error {
	if id == nil || s.users == nil {
		return nil
	}
	return s.users.EnsureExists(ctx, *id)
}

func (s *service) List(ctx context.Context) ([]WarehouseDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list warehouses")
	}
	out := make([]WarehouseDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromRow(row))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*WarehouseDTO, error) {
	row, err := s.repo.Find(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "warehouse not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load warehouse")
	}
	dto := fromRow(*row)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*WarehouseDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if err := s.checkResponsible(ctx, input.ResponsibleUserID); err != nil {
		return nil, err
	}
	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	w := &models.Warehouse{
		Name:              name,
		Code:              input.Code,
		Address:           input.Address,
		Location:          input.Location,
		IsActive:          active,
		ResponsibleUserID: input.ResponsibleUserID,
	}
	if err := s.repo.Create(ctx, w); err != nil {
		return nil, mapWriteError(err, "create warehouse")
	}
	// gorm skips false for columns with a default on insert
	if !active {
		if _, err := s.repo.Update(ctx, w.ID, map[string]any{"is_active": false}); err != nil {
			return nil, mapWriteError(err, "create warehouse")
		}
	}
	return s.Get(ctx, w.ID)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*WarehouseDTO, error) {
	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		updates["name"] = name
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.Code.Set {
		updates["code"] = input.Code.Value
	}
	if input.Address.Set {
		updates["address"] = input.Address.Value
	}
	if input.Location.Set {
		updates["location"] = input.Location.Value
	}
	if input.ResponsibleUserID.Set {
		if err := s.checkResponsible(ctx, input.ResponsibleUserID.Value); err != nil {
			return nil, err
		}
		updates["responsible_user_id"] = input.ResponsibleUserID.Value
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	found, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, mapWriteError(err, "update warehouse")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "warehouse not found")
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "warehouse has stock history and cannot be deleted")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete warehouse")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "warehouse not found")
	}
	return nil
}

func (s *service) ExpectedDeliveries(ctx context.Context, id uuid.UUID) ([]ExpectedDeliveryDTO, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.repo.ExpectedDeliveries(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list expected deliveries")
	}
	out := make([]ExpectedDeliveryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, ExpectedDeliveryDTO{
			ShoppingListID: row.ID,
			OrderNumber:    row.OrderNumber,
			Name:           row.Name,
			ListDate:       types.NewDate(row.ListDate),
			ItemCount:      row.ItemCount,
			TotalAmount:    row.TotalAmount,
		})
	}
	return out, nil
}

func mapWriteError(err error, msg string) error {
	if db.IsForeignKeyViolation(err) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "responsible user does not exist")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, msg)
}
