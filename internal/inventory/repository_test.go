package inventory

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bikurim/procurement-backend/pkg/db/dbtest"
	"github.com/bikurim/procurement-backend/pkg/db/models"
	"github.com/bikurim/procurement-backend/pkg/enums"
	pkgerrors "github.com/bikurim/procurement-backend/pkg/errors"
)

func TestRepositoryConcurrentReceiptsSerialize(t *testing.T) {
	client := dbtest.Open(t)
	conn := client.DB()
	ctx := context.Background()

	warehouse := dbtest.Warehouse(t, conn)
	product := dbtest.Product(t, conn, "יח'")
	svc, err := NewService(NewRepository(conn), client, &recordingEmitter{}, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RecordMovement(ctx, MovementInput{
				WarehouseID: warehouse.ID, ProductID: product.ID,
				Type: enums.MovementTypeIn, Quantity: decimal.NewFromInt(1),
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent receipt: %v", err)
		}
	}

	var row models.WarehouseInventory
	if err := conn.Where("warehouse_id = ? AND product_id = ?", warehouse.ID, product.ID).Take(&row).Error; err != nil {
		t.Fatalf("load balance: %v", err)
	}
	if !row.Quantity.Equal(decimal.NewFromInt(8)) {
		t.Fatalf("expected balance 8, got %s", row.Quantity)
	}
	var count int64
	conn.Model(&models.InventoryMovement{}).Where("warehouse_id = ?", warehouse.ID).Count(&count)
	if count != 8 {
		t.Fatalf("expected 8 movements, got %d", count)
	}
}

func TestRepositoryOverdrawRollsBack(t *testing.T) {
	client := dbtest.Open(t)
	conn := client.DB()
	ctx := context.Background()

	warehouse := dbtest.Warehouse(t, conn)
	product := dbtest.Product(t, conn, "ק\"ג")
	svc, _ := NewService(NewRepository(conn), client, &recordingEmitter{}, nil)

	if _, err := svc.RecordMovement(ctx, MovementInput{WarehouseID: warehouse.ID, ProductID: product.ID, Type: enums.MovementTypeIn, Quantity: qty("2")}); err != nil {
		t.Fatalf("receive: %v", err)
	}
	_, err := svc.RecordMovement(ctx, MovementInput{WarehouseID: warehouse.ID, ProductID: product.ID, Type: enums.MovementTypeOut, Quantity: qty("3")})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	balances, err := svc.ListBalances(ctx, warehouse.ID)
	if err != nil {
		t.Fatalf("list balances: %v", err)
	}
	if len(balances) != 1 || !balances[0].Quantity.Equal(qty("2")) {
		t.Fatalf("unexpected balances %+v", balances)
	}
}

func TestRepositoryMovementsAreAppendOnly(t *testing.T) {
	client := dbtest.Open(t)
	conn := client.DB()
	ctx := context.Background()

	warehouse := dbtest.Warehouse(t, conn)
	product := dbtest.Product(t, conn, "יח'")
	repo := NewRepository(conn)

	var movement models.InventoryMovement
	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		posting, err := ApplyEntry(ctx, repo.WithTx(tx), Entry{
			WarehouseID: warehouse.ID, ProductID: product.ID, Type: enums.MovementTypeIn, Quantity: qty("1"), Unit: "יח'",
		}, warehouse.CreatedAt)
		if err != nil {
			return err
		}
		movement = posting.Movement
		return nil
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	err = conn.Model(&models.InventoryMovement{}).Where("id = ?", movement.ID).Update("quantity", 5).Error
	if err == nil {
		t.Fatalf("expected the ledger trigger to reject updates")
	}
}
