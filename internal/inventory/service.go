package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bikurim/procurement-backend/pkg/db"
	"github.com/bikurim/procurement-backend/pkg/db/models"
	"github.com/bikurim/procurement-backend/pkg/enums"
	pkgerrors "github.com/bikurim/procurement-backend/pkg/errors"
	"github.com/bikurim/procurement-backend/pkg/logger"
	"github.com/bikurim/procurement-backend/pkg/outbox"
	"github.com/bikurim/procurement-backend/pkg/outbox/payloads"
	"github.com/bikurim/procurement-backend/pkg/pagination"
	"github.com/bikurim/procurement-backend/pkg/types"
)

// Service manages warehouse balances and the movement ledger.
type Service interface {
	RecordMovement(ctx context.Context, input MovementInput) (*MovementDTO, error)
	ListBalances(ctx context.Context, warehouseID uuid.UUID) ([]BalanceDTO, error)
	SetMinQuantity(ctx context.Context, warehouseID, productID uuid.UUID, minQty decimal.NullDecimal) (*BalanceDTO, error)
	ListMovements(ctx context.Context, warehouseID uuid.UUID, params pagination.Params) (*pagination.Page[MovementDTO], error)
	LowStock(ctx context.Context, warehouseID *uuid.UUID) ([]LowStockDTO, error)
}

// MovementInput is a manual stock movement. Unit always follows the product's default unit.
type MovementInput struct {
	WarehouseID  uuid.UUID
	ProductID    uuid.UUID
	Type         enums.MovementType
	Quantity     decimal.Decimal
	MovementDate *time.Time
	SourceType   *enums.MovementSource
	ReferenceID  *uuid.UUID
	Destination  *string
	Note         *string
	UserID       *uuid.UUID
}

type store interface {
	LedgerStore
	FindWarehouse(ctx context.Context, id uuid.UUID) (*models.Warehouse, error)
	FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListBalances(ctx context.Context, warehouseID uuid.UUID) ([]BalanceRow, error)
	FindBalance(ctx context.Context, warehouseID, productID uuid.UUID) (*BalanceRow, error)
	SetMinQuantity(ctx context.Context, warehouseID, productID uuid.UUID, unit string, minQty decimal.NullDecimal) error
	ListMovements(ctx context.Context, warehouseID uuid.UUID, cursor *pagination.Cursor, limit int) ([]MovementRow, error)
	LowStock(ctx context.Context, warehouseID *uuid.UUID) ([]LowStockRow, error)
}

type service struct {
	read    store
	bind    func(tx *gorm.DB) store
	tx      db.TxRunner
	emitter outbox.Emitter
	logg    *logger.Logger
	now     func() time.Time
}

func NewService(repo *Repository, tx db.TxRunner, emitter outbox.Emitter, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{
		read:    repo,
		bind:    func(tx *gorm.DB) store { return repo.WithTx(tx) },
		tx:      tx,
		emitter: emitter,
		logg:    logg,
		now:     time.Now,
	}, nil
}

func (s *service) RecordMovement(ctx context.Context, input MovementInput) (*MovementDTO, error) {
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "movement_type must be in or out")
	}
	if !input.Quantity.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than zero")
	}
	if !types.QuantityFits(input.Quantity) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, types.ErrQuantityRange.Error())
	}
	if input.SourceType != nil && !input.SourceType.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid source_type %q", *input.SourceType)
	}

	now := s.now().UTC()
	var posting *Posting
	var productName string
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		st := s.bind(tx)
		if _, err := loadWarehouse(ctx, st, input.WarehouseID); err != nil {
			return err
		}
		product, err := st.FindProduct(ctx, input.ProductID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
		}
		productName = product.Name

		entry := Entry{
			WarehouseID: input.WarehouseID,
			ProductID:   input.ProductID,
			Type:        input.Type,
			Quantity:    input.Quantity,
			Unit:        product.DefaultUnit,
			UserID:      input.UserID,
			SourceType:  input.SourceType,
			ReferenceID: input.ReferenceID,
			Destination: input.Destination,
			Note:        input.Note,
		}
		if input.MovementDate != nil {
			entry.MovementDate = *input.MovementDate
		}
		posting, err = ApplyEntry(ctx, st, entry, now)
		if err != nil {
			return err
		}

		if input.Type == enums.MovementTypeOut && posting.Balance.IsLowStock() {
			return s.emitter.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventStockBelowMinimum,
				AggregateType: enums.AggregateWarehouse,
				AggregateID:   input.WarehouseID,
				Data: payloads.StockBelowMinimum{
					WarehouseID: input.WarehouseID,
					ProductID:   input.ProductID,
					Quantity:    posting.Balance.Quantity,
					MinQuantity: posting.Balance.MinQuantity.Decimal,
				},
			})
		}
		return nil
	})
	if err != nil {
		return nil, asTyped(err, "record movement")
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(s.logg.WithWarehouseID(ctx, input.WarehouseID.String()), map[string]any{
			"product_id":    input.ProductID.String(),
			"movement_type": input.Type,
			"quantity":      input.Quantity.String(),
		})
		s.logg.Info(logCtx, "inventory movement recorded")
	}

	dto := NewMovementDTO(posting.Movement, productName)
	return &dto, nil
}

func (s *service) ListBalances(ctx context.Context, warehouseID uuid.UUID) ([]BalanceDTO, error) {
	if _, err := loadWarehouse(ctx, s.read, warehouseID); err != nil {
		return nil, err
	}
	rows, err := s.read.ListBalances(ctx, warehouseID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list inventory")
	}
	out := make([]BalanceDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, newBalanceDTO(row.WarehouseInventory, row.ProductName, row.ProductCode))
	}
	return out, nil
}

func (s *service) SetMinQuantity(ctx context.Context, warehouseID, productID uuid.UUID, minQty decimal.NullDecimal) (*BalanceDTO, error) {
	if minQty.Valid && minQty.Decimal.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "min_quantity cannot be negative")
	}
	if minQty.Valid && !types.QuantityFits(minQty.Decimal) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "min_quantity must have at most 11 integer digits and 3 decimal places")
	}
	if _, err := loadWarehouse(ctx, s.read, warehouseID); err != nil {
		return nil, err
	}
	product, err := s.read.FindProduct(ctx, productID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if err := s.read.SetMinQuantity(ctx, warehouseID, productID, product.DefaultUnit, minQty); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update min quantity")
	}
	row, err := s.read.FindBalance(ctx, warehouseID, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload inventory row")
	}
	dto := newBalanceDTO(row.WarehouseInventory, row.ProductName, row.ProductCode)
	return &dto, nil
}

func (s *service) ListMovements(ctx context.Context, warehouseID uuid.UUID, params pagination.Params) (*pagination.Page[MovementDTO], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if _, err := loadWarehouse(ctx, s.read, warehouseID); err != nil {
		return nil, err
	}
	rows, err := s.read.ListMovements(ctx, warehouseID, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list movements")
	}
	dtos := make([]MovementDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, NewMovementDTO(row.InventoryMovement, row.ProductName))
	}
	page := pagination.Trim(dtos, params.Limit, func(m MovementDTO) pagination.Cursor {
		return pagination.Cursor{CreatedAt: m.CreatedAt, ID: m.ID}
	})
	return &page, nil
}

func (s *service) LowStock(ctx context.Context, warehouseID *uuid.UUID) ([]LowStockDTO, error) {
	if warehouseID != nil {
		if _, err := loadWarehouse(ctx, s.read, *warehouseID); err != nil {
			return nil, err
		}
	}
	rows, err := s.read.LowStock(ctx, warehouseID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list low stock")
	}
	out := make([]LowStockDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, LowStockDTO{
			WarehouseID:   row.WarehouseID,
			WarehouseName: row.WarehouseName,
			ProductID:     row.ProductID,
			ProductName:   row.ProductName,
			ProductCode:   row.ProductCode,
			Quantity:      row.Quantity,
			MinQuantity:   row.MinQuantity.Decimal,
			Unit:          row.Unit,
		})
	}
	return out, nil
}

func loadWarehouse(ctx context.Context, st interface {
	FindWarehouse(context.Context, uuid.UUID) (*models.Warehouse, error)
}, id uuid.UUID) (*models.Warehouse, error) {
	w, err := st.FindWarehouse(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "warehouse not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load warehouse")
	}
	return w, nil
}

func asTyped(err error, msg string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, msg)
}
