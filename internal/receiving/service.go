package receiving

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bikurim/procurement-backend/internal/discrepancies"
	"github.com/bikurim/procurement-backend/internal/inventory"
	"github.com/bikurim/procurement-backend/pkg/db"
	"github.com/bikurim/procurement-backend/pkg/db/models"
	"github.com/bikurim/procurement-backend/pkg/enums"
	pkgerrors "github.com/bikurim/procurement-backend/pkg/errors"
	"github.com/bikurim/procurement-backend/pkg/logger"
	"github.com/bikurim/procurement-backend/pkg/outbox"
	"github.com/bikurim/procurement-backend/pkg/outbox/payloads"
	"github.com/bikurim/procurement-backend/pkg/types"
)

const msgWrongWarehouse = "order is not destined for this warehouse"

// Service posts goods receipts against purchase orders.
type Service interface {
	Reconcile(ctx context.Context, input ReceiptInput) (*Result, error)
}

type ReceiptLine struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
	Unit      *string
}

type ReceiptInput struct {
	WarehouseID    uuid.UUID
	ShoppingListID uuid.UUID
	ReceiptDate    *types.Date
	Lines          []ReceiptLine
	UserID         *uuid.UUID
}

// AppliedLine is a received line that reached the ledger.
type AppliedLine struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit_of_measure"`
	MovementID  uuid.UUID       `json:"movement_id"`
	Balance     decimal.Decimal `json:"balance"`
}

type Result struct {
	Alert   *discrepancies.AlertDTO `json:"alert"`
	Applied []AppliedLine           `json:"applied"`
}

type store interface {
	inventory.LedgerStore
	FindWarehouse(ctx context.Context, id uuid.UUID) (*models.Warehouse, error)
	FindOrder(ctx context.Context, id uuid.UUID) (*models.ShoppingList, error)
	OrderedLines(ctx context.Context, listID uuid.UUID) ([]Line, error)
	FindProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
	InsertAlert(ctx context.Context, alert *models.ReceiptDiscrepancyAlert) error
}

type service struct {
	bind    func(tx *gorm.DB) store
	tx      db.TxRunner
	emitter outbox.Emitter
	logg    *logger.Logger
	now     func() time.Time
}

func NewService(repo *Repository, tx db.TxRunner, emitter outbox.Emitter, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("receiving repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{
		bind:    func(tx *gorm.DB) store { return repo.WithTx(tx) },
		tx:      tx,
		emitter: emitter,
		logg:    logg,
		now:     time.Now,
	}, nil
}

// Reconcile applies every valid received line to the warehouse, then compares
// the receipt with the order and records an alert on any mismatch. Everything
// happens in one transaction; a mismatch never undoes the stock postings.
func (s *service) Reconcile(ctx context.Context, input ReceiptInput) (*Result, error) {
	now := s.now().UTC()
	movementDate := now
	if input.ReceiptDate != nil && !input.ReceiptDate.IsZero() {
		movementDate = input.ReceiptDate.Time
	}

	result := &Result{Applied: []AppliedLine{}}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		st := s.bind(tx)

		warehouse, err := st.FindWarehouse(ctx, input.WarehouseID)
		if err != nil {
			return notFoundOr(err, "warehouse not found", "load warehouse")
		}
		order, err := st.FindOrder(ctx, input.ShoppingListID)
		if err != nil {
			return notFoundOr(err, "shopping list not found", "load shopping list")
		}
		if order.WarehouseID == nil || *order.WarehouseID != warehouse.ID {
			return pkgerrors.New(pkgerrors.CodeValidation, msgWrongWarehouse)
		}

		ordered, err := st.OrderedLines(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load ordered items")
		}

		products, err := st.FindProducts(ctx, productIDs(input.Lines))
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load products")
		}

		source := enums.MovementSourceSupplier
		note := fmt.Sprintf("קבלה מהזמנה #%d", order.OrderNumber)
		orderID := order.ID
		received := make([]Line, 0, len(input.Lines))
		movementIDs := make([]uuid.UUID, 0, len(input.Lines))

		for _, line := range input.Lines {
			product, ok := products[line.ProductID]
			if !ok || !line.Quantity.IsPositive() || !types.QuantityFits(line.Quantity) {
				continue
			}
			unit := product.DefaultUnit
			if line.Unit != nil && strings.TrimSpace(*line.Unit) != "" {
				unit = strings.TrimSpace(*line.Unit)
			}

			posting, err := inventory.ApplyEntry(ctx, st, inventory.Entry{
				WarehouseID:  warehouse.ID,
				ProductID:    product.ID,
				Type:         enums.MovementTypeIn,
				Quantity:     line.Quantity,
				Unit:         unit,
				MovementDate: movementDate,
				UserID:       input.UserID,
				SourceType:   &source,
				ReferenceID:  &orderID,
				Note:         &note,
			}, now)
			if err != nil {
				return err
			}

			received = append(received, Line{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    line.Quantity,
				Unit:        unit,
			})
			movementIDs = append(movementIDs, posting.Movement.ID)
			result.Applied = append(result.Applied, AppliedLine{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    line.Quantity,
				Unit:        unit,
				MovementID:  posting.Movement.ID,
				Balance:     posting.Balance.Quantity,
			})
		}

		if len(movementIDs) > 0 {
			err := s.emitter.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventGoodsReceived,
				AggregateType: enums.AggregateWarehouse,
				AggregateID:   warehouse.ID,
				Data: payloads.GoodsReceived{
					WarehouseID:    warehouse.ID,
					ShoppingListID: &orderID,
					MovementIDs:    movementIDs,
					ItemCount:      len(movementIDs),
				},
			})
			if err != nil {
				return err
			}
		}

		found := Diff(ordered, received)
		if len(found) == 0 {
			return nil
		}

		details, err := json.Marshal(Details{
			Ordered:       nonNil(Sum(ordered)),
			Received:      nonNil(Sum(received)),
			Discrepancies: found,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode discrepancy details")
		}
		alert := &models.ReceiptDiscrepancyAlert{
			WarehouseID:    warehouse.ID,
			ShoppingListID: &orderID,
			WarehouseName:  warehouse.Name,
			OrderNumber:    order.OrderNumber,
			ListName:       order.Name,
			Details:        details,
		}
		if err := st.InsertAlert(ctx, alert); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert discrepancy alert")
		}

		err = s.emitter.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDiscrepancyDetected,
			AggregateType: enums.AggregateDiscrepancyAlert,
			AggregateID:   alert.ID,
			Data: payloads.DiscrepancyDetected{
				AlertID:        alert.ID,
				WarehouseID:    warehouse.ID,
				ShoppingListID: &orderID,
				LineCount:      len(found),
			},
		})
		if err != nil {
			return err
		}

		dto := discrepancies.FromModel(*alert)
		result.Alert = &dto
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) == nil {
			err = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reconcile receipt")
		}
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(s.logg.WithWarehouseID(ctx, input.WarehouseID.String()), map[string]any{
			"shopping_list_id": input.ShoppingListID.String(),
			"applied":          len(result.Applied),
			"discrepancy":      result.Alert != nil,
		})
		s.logg.Info(logCtx, "goods receipt reconciled")
	}
	return result, nil
}

func productIDs(lines []ReceiptLine) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(lines))
	out := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		if l.ProductID == uuid.Nil || seen[l.ProductID] {
			continue
		}
		seen[l.ProductID] = true
		out = append(out, l.ProductID)
	}
	return out
}

func nonNil(lines []Line) []Line {
	if lines == nil {
		return []Line{}
	}
	return lines
}

func notFoundOr(err error, notFound, internal string) error {
	if db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFound)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, internal)
}
