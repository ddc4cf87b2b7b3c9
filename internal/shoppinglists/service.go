package shoppinglists

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bikurim/procurement-backend/internal/pricing"
	"github.com/bikurim/procurement-backend/pkg/db"
	"github.com/bikurim/procurement-backend/pkg/db/models"
	"github.com/bikurim/procurement-backend/pkg/enums"
	pkgerrors "github.com/bikurim/procurement-backend/pkg/errors"
	"github.com/bikurim/procurement-backend/pkg/logger"
	"github.com/bikurim/procurement-backend/pkg/outbox"
	"github.com/bikurim/procurement-backend/pkg/outbox/payloads"
	"github.com/bikurim/procurement-backend/pkg/types"
)

// Service manages purchase orders and their lines.
type Service interface {
	List(ctx context.Context, filter ListFilter) ([]ListDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ListDetailDTO, error)
	Create(ctx context.Context, input CreateInput) (*ListDTO, error)
	Duplicate(ctx context.Context, id uuid.UUID) (*ListDTO, error)
	Update(ctx context.Context, id uuid.UUID, patch HeaderPatch) (*ListDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error

	ListItems(ctx context.Context, listID uuid.UUID) ([]ItemDTO, error)
	AddItem(ctx context.Context, listID uuid.UUID, input AddItemInput) (*ItemDTO, error)
	UpdateItem(ctx context.Context, listID, itemID uuid.UUID, input UpdateItemInput) (*ItemDTO, error)
	RemoveItem(ctx context.Context, listID, itemID uuid.UUID) error

	SuppliersForProduct(ctx context.Context, listID, productID uuid.UUID) ([]pricing.Offer, error)
	BySupplier(ctx context.Context, listID uuid.UUID) (*BySupplierDTO, error)
}

type CreateInput struct {
	Name        string
	ListDate    *types.Date
	Notes       *string
	WarehouseID *uuid.UUID
	CreatedBy   *uuid.UUID
}

type AddItemInput struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
	Unit      *string
	Notes     *string
}

// UpdateItemInput changes an order line. Setting SelectedSupplierID
// re-snapshots the price; PriceAtSelection is honoured only when the supplier
// is left unchanged.
type UpdateItemInput struct {
	Quantity           *decimal.Decimal
	Unit               *string
	SelectedSupplierID types.Nullable[uuid.UUID]
	PriceAtSelection   types.Nullable[decimal.Decimal]
	Notes              types.Nullable[string]
}

type store interface {
	List(ctx context.Context, filter ListFilter) ([]ListRow, error)
	Find(ctx context.Context, id uuid.UUID) (*ListRow, error)
	Lock(ctx context.Context, id uuid.UUID) (*models.ShoppingList, error)
	Create(ctx context.Context, list *models.ShoppingList) error
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	Items(ctx context.Context, listID uuid.UUID) ([]ItemRow, error)
	ItemsBySupplier(ctx context.Context, listID uuid.UUID) ([]ItemRow, error)
	FindItem(ctx context.Context, listID, itemID uuid.UUID) (*ItemRow, error)
	NextSortOrder(ctx context.Context, listID uuid.UUID) (int, error)
	InsertItem(ctx context.Context, item *models.ShoppingListItem) error
	InsertItems(ctx context.Context, items []models.ShoppingListItem) error
	UpdateItem(ctx context.Context, itemID uuid.UUID, updates map[string]any) error
	DeleteItem(ctx context.Context, listID, itemID uuid.UUID) (bool, error)
	FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type service struct {
	read    store
	bind    func(tx *gorm.DB) store
	tx      db.TxRunner
	pricing pricing.Service
	emitter outbox.Emitter
	logg    *logger.Logger
	now     func() time.Time
}

func NewService(repo *Repository, tx db.TxRunner, pricingSvc pricing.Service, emitter outbox.Emitter, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("shopping list repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if pricingSvc == nil {
		return nil, fmt.Errorf("pricing service required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{
		read:    repo,
		bind:    func(tx *gorm.DB) store { return repo.WithTx(tx) },
		tx:      tx,
		pricing: pricingSvc,
		emitter: emitter,
		logg:    logg,
		now:     time.Now,
	}, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]ListDTO, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid status %q", *filter.Status)
	}
	rows, err := s.read.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list shopping lists")
	}
	out := make([]ListDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, listFromRow(row))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ListDetailDTO, error) {
	header, err := s.find(ctx, s.read, id)
	if err != nil {
		return nil, err
	}
	items, err := s.items(ctx, s.read, id)
	if err != nil {
		return nil, err
	}
	return &ListDetailDTO{ListDTO: *header, Items: items}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*ListDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	listDate := types.NewDate(s.now())
	if input.ListDate != nil && !input.ListDate.IsZero() {
		listDate = *input.ListDate
	}
	list := &models.ShoppingList{
		Name:        name,
		ListDate:    listDate.Time,
		Notes:       input.Notes,
		Status:      enums.ShoppingListStatusDraft,
		WarehouseID: input.WarehouseID,
		CreatedBy:   input.CreatedBy,
	}
	if err := s.read.Create(ctx, list); err != nil {
		return nil, mapWriteError(err, "create shopping list")
	}
	return s.find(ctx, s.read, list.ID)
}

// Duplicate copies an order and its lines, price snapshots included, into a
// new draft dated today.
func (s *service) Duplicate(ctx context.Context, id uuid.UUID) (*ListDTO, error) {
	var newID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		st := s.bind(tx)
		orig, err := st.Find(ctx, id)
		if err != nil {
			return notFoundOr(err, "shopping list not found", "load shopping list")
		}
		items, err := st.Items(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load items")
		}

		name := strings.TrimSpace(orig.Name)
		if name == "" {
			name = "פקודה"
		}
		copyList := &models.ShoppingList{
			Name:        name + CopySuffix,
			ListDate:    types.NewDate(s.now()).Time,
			Notes:       orig.Notes,
			Status:      enums.ShoppingListStatusDraft,
			WarehouseID: orig.WarehouseID,
			CreatedBy:   orig.CreatedBy,
		}
		if err := st.Create(ctx, copyList); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create copy")
		}
		newID = copyList.ID

		copies := make([]models.ShoppingListItem, 0, len(items))
		for i, item := range items {
			copies = append(copies, models.ShoppingListItem{
				ShoppingListID:     copyList.ID,
				ProductID:          item.ProductID,
				Quantity:           item.Quantity,
				Unit:               item.Unit,
				SelectedSupplierID: item.SelectedSupplierID,
				PriceAtSelection:   item.PriceAtSelection,
				SortOrder:          i,
				Notes:              item.Notes,
			})
		}
		if err := st.InsertItems(ctx, copies); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "copy items")
		}
		return nil
	})
	if err != nil {
		return nil, asTyped(err, "duplicate shopping list")
	}
	return s.find(ctx, s.read, newID)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, patch HeaderPatch) (*ListDTO, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		st := s.bind(tx)
		current, err := st.Lock(ctx, id)
		if err != nil {
			return notFoundOr(err, "shopping list not found", "load shopping list")
		}
		if err := CheckHeaderPatch(current.Status, patch); err != nil {
			return err
		}
		if patch.empty() {
			return nil
		}

		updates := map[string]any{}
		if patch.Name != nil {
			updates["name"] = strings.TrimSpace(*patch.Name)
		}
		if patch.ListDate != nil {
			updates["list_date"] = patch.ListDate.Time
		}
		if patch.Notes.Set {
			updates["notes"] = patch.Notes.Value
		}
		if patch.Status != nil {
			updates["status"] = *patch.Status
		}
		if patch.WarehouseID.Set {
			updates["warehouse_id"] = patch.WarehouseID.Value
		}
		if patch.EmailSentAt.Set {
			updates["email_sent_at"] = patch.EmailSentAt.Value
		}
		if err := st.Update(ctx, id, updates); err != nil {
			return mapWriteError(err, "update shopping list")
		}

		if patch.Status == nil || *patch.Status == current.Status {
			return nil
		}
		return s.emitter.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventShoppingListStatusChanged,
			AggregateType: enums.AggregateShoppingList,
			AggregateID:   id,
			Data: payloads.ShoppingListStatusChanged{
				ShoppingListID: id,
				OrderNumber:    current.OrderNumber,
				From:           current.Status,
				To:             *patch.Status,
			},
		})
	})
	if err != nil {
		return nil, asTyped(err, "update shopping list")
	}

	if patch.Status != nil && s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"shopping_list_id": id.String(),
			"status":           *patch.Status,
		})
		s.logg.Info(logCtx, "shopping list status updated")
	}
	return s.find(ctx, s.read, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		st := s.bind(tx)
		current, err := st.Lock(ctx, id)
		if err != nil {
			return notFoundOr(err, "shopping list not found", "load shopping list")
		}
		if err := CheckDeletable(current.Status); err != nil {
			return err
		}
		if err := st.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete shopping list")
		}
		return nil
	})
	return asTyped(err, "delete shopping list")
}

func (s *service) SuppliersForProduct(ctx context.Context, listID, productID uuid.UUID) ([]pricing.Offer, error) {
	if _, err := s.find(ctx, s.read, listID); err != nil {
		return nil, err
	}
	return s.pricing.SuppliersForProduct(ctx, productID)
}

func (s *service) BySupplier(ctx context.Context, listID uuid.UUID) (*BySupplierDTO, error) {
	header, err := s.find(ctx, s.read, listID)
	if err != nil {
		return nil, err
	}
	rows, err := s.read.ItemsBySupplier(ctx, listID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load items")
	}
	items := make([]ItemDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, itemFromRow(row))
	}
	return &BySupplierDTO{
		ID:          header.ID,
		OrderNumber: header.OrderNumber,
		Name:        header.Name,
		ListDate:    header.ListDate,
		Status:      header.Status,
		BySupplier:  GroupBySupplier(items),
	}, nil
}

func (s *service) find(ctx context.Context, st store, id uuid.UUID) (*ListDTO, error) {
	row, err := st.Find(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "shopping list not found", "load shopping list")
	}
	dto := listFromRow(*row)
	return &dto, nil
}

func (s *service) items(ctx context.Context, st store, listID uuid.UUID) ([]ItemDTO, error) {
	rows, err := st.Items(ctx, listID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load items")
	}
	out := make([]ItemDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, itemFromRow(row))
	}
	return out, nil
}

func notFoundOr(err error, notFound, internal string) error {
	if db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFound)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, internal)
}

func mapWriteError(err error, msg string) error {
	if db.IsForeignKeyViolation(err) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "referenced record does not exist")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, msg)
}

func asTyped(err error, msg string) error {
	if err == nil || pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, msg)
}
