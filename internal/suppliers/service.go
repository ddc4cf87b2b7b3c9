package suppliers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bikurim/procurement-backend/pkg/db"
	"github.com/bikurim/procurement-backend/pkg/db/models"
	"github.com/bikurim/procurement-backend/pkg/enums"
	pkgerrors "github.com/bikurim/procurement-backend/pkg/errors"
	"github.com/bikurim/procurement-backend/pkg/logger"
	"github.com/bikurim/procurement-backend/pkg/types"
)

// Service manages suppliers and their price lists.
type Service interface {
	List(ctx context.Context, filter ListFilter) ([]SupplierDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*SupplierDetailDTO, error)
	Create(ctx context.Context, input CreateInput) (*SupplierDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*SupplierDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpsertPrice(ctx context.Context, supplierID uuid.UUID, input PriceInput) (*PriceEntryDTO, error)
	DeletePrice(ctx context.Context, supplierID, productID uuid.UUID) error
}

type CreateInput struct {
	Name          string
	TaxID         *string
	ContactPerson *string
	Phone         *string
	Email         *string
	Address       *string
	PaymentTerms  *string
	Notes         *string
	Status        enums.SupplierStatus
}

// UpdateInput carries only the fields present in the PATCH body.
type UpdateInput struct {
	Name          *string
	TaxID         types.Nullable[string]
	ContactPerson types.Nullable[string]
	Phone         types.Nullable[string]
	Email         types.Nullable[string]
	Address       types.Nullable[string]
	PaymentTerms  types.Nullable[string]
	Notes         types.Nullable[string]
	Status        *enums.SupplierStatus
}

// PriceInput upserts one price list entry. Nil Unit keeps the stored unit,
// falling back to the product default for new entries.
type PriceInput struct {
	ProductID        uuid.UUID
	PricePerUnit     decimal.Decimal
	Unit             *string
	MinOrderQuantity decimal.NullDecimal
	InternalCode     *string
}

type store interface {
	List(ctx context.Context, filter ListFilter) ([]models.Supplier, error)
	Find(ctx context.Context, id uuid.UUID) (*models.Supplier, error)
	Create(ctx context.Context, s *models.Supplier) error
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	PriceList(ctx context.Context, supplierID uuid.UUID) ([]PriceRow, error)
	LockPrice(ctx context.Context, supplierID, productID uuid.UUID) (*models.SupplierProduct, error)
	UpsertPrice(ctx context.Context, row *models.SupplierProduct) error
	InsertPriceHistory(ctx context.Context, entry *models.PriceHistory) error
	DeletePrice(ctx context.Context, supplierID, productID uuid.UUID) (bool, error)
}

type service struct {
	read store
	bind func(tx *gorm.DB) store
	tx   db.TxRunner
	logg *logger.Logger
	now  func() time.Time
}

func NewService(repo *Repository, tx db.TxRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("suppliers repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		read: repo,
		bind: func(tx *gorm.DB) store { return repo.WithTx(tx) },
		tx:   tx,
		logg: logg,
		now:  time.Now,
	}, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]SupplierDTO, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid status %q", *filter.Status)
	}
	rows, err := s.read.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list suppliers")
	}
	out := make([]SupplierDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*SupplierDetailDTO, error) {
	supplier, err := s.load(ctx, s.read, id)
	if err != nil {
		return nil, err
	}
	prices, err := s.read.PriceList(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load price list")
	}
	detail := &SupplierDetailDTO{SupplierDTO: FromModel(*supplier), Products: make([]PriceEntryDTO, 0, len(prices))}
	for _, row := range prices {
		detail.Products = append(detail.Products, priceEntryFromModel(row.SupplierProduct, row.ProductName, row.ProductCode))
	}
	return detail, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*SupplierDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	status := input.Status
	if status == "" {
		status = enums.SupplierStatusActive
	}
	if !status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid status %q", status)
	}
	row := &models.Supplier{
		Name:          name,
		TaxID:         input.TaxID,
		ContactPerson: input.ContactPerson,
		Phone:         input.Phone,
		Email:         input.Email,
		Address:       input.Address,
		PaymentTerms:  input.PaymentTerms,
		Notes:         input.Notes,
		Status:        status,
	}
	if err := s.read.Create(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create supplier")
	}
	dto := FromModel(*row)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*SupplierDTO, error) {
	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		updates["name"] = name
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid status %q", *input.Status)
		}
		updates["status"] = *input.Status
	}
	for column, field := range map[string]types.Nullable[string]{
		"tax_id":         input.TaxID,
		"contact_person": input.ContactPerson,
		"phone":          input.Phone,
		"email":          input.Email,
		"address":        input.Address,
		"payment_terms":  input.PaymentTerms,
		"notes":          input.Notes,
	} {
		if field.Set {
			updates[column] = field.Value
		}
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	found, err := s.read.Update(ctx, id, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update supplier")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
	}
	supplier, err := s.load(ctx, s.read, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(*supplier)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	found, err := s.read.Delete(ctx, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "supplier is still referenced")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete supplier")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
	}
	return nil
}

func (s *service) UpsertPrice(ctx context.Context, supplierID uuid.UUID, input PriceInput) (*PriceEntryDTO, error) {
	if !input.PricePerUnit.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_per_unit must be greater than zero")
	}
	if input.MinOrderQuantity.Valid && input.MinOrderQuantity.Decimal.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "min_order_quantity cannot be negative")
	}

	var (
		row     models.SupplierProduct
		product *models.Product
		changed bool
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		st := s.bind(tx)
		if _, err := s.load(ctx, st, supplierID); err != nil {
			return err
		}
		var err error
		product, err = st.FindProduct(ctx, input.ProductID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
		}
		existing, err := st.LockPrice(ctx, supplierID, input.ProductID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock price entry")
		}

		unit := product.DefaultUnit
		if existing != nil {
			unit = existing.Unit
		}
		if input.Unit != nil && strings.TrimSpace(*input.Unit) != "" {
			unit = strings.TrimSpace(*input.Unit)
		}

		row = models.SupplierProduct{
			SupplierID:       supplierID,
			ProductID:        input.ProductID,
			PricePerUnit:     input.PricePerUnit,
			Unit:             unit,
			MinOrderQuantity: input.MinOrderQuantity,
			InternalCode:     input.InternalCode,
			LastPriceUpdate:  types.NewDate(s.now()).Time,
		}
		if err := st.UpsertPrice(ctx, &row); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upsert price")
		}

		changed = existing == nil || !existing.PricePerUnit.Equal(row.PricePerUnit)
		if !changed {
			return nil
		}
		return st.InsertPriceHistory(ctx, &models.PriceHistory{
			SupplierProductID: row.ID,
			PricePerUnit:      row.PricePerUnit,
		})
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record price history")
	}

	if changed && s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"supplier_id": supplierID.String(),
			"product_id":  input.ProductID.String(),
			"price":       row.PricePerUnit.String(),
		})
		s.logg.Info(logCtx, "supplier price recorded")
	}

	dto := priceEntryFromModel(row, product.Name, product.Code)
	return &dto, nil
}

func (s *service) DeletePrice(ctx context.Context, supplierID, productID uuid.UUID) error {
	found, err := s.read.DeletePrice(ctx, supplierID, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete price")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "price entry not found")
	}
	return nil
}

func (s *service) load(ctx context.Context, st store, id uuid.UUID) (*models.Supplier, error) {
	supplier, err := st.Find(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load supplier")
	}
	return supplier, nil
}
