package receiving

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/bikurim/procurement-backend/pkg/db/dbtest"
	"github.com/bikurim/procurement-backend/pkg/db/models"
	"github.com/bikurim/procurement-backend/pkg/enums"
	"github.com/bikurim/procurement-backend/pkg/outbox"
)

func TestReconcileAgainstDatabase(t *testing.T) {
	client := dbtest.Open(t)
	conn := client.DB()
	ctx := context.Background()

	warehouse := dbtest.Warehouse(t, conn)
	order := dbtest.ShoppingList(t, conn, enums.ShoppingListStatusApproved, &warehouse.ID)
	a := dbtest.Product(t, conn, "יח'")
	b := dbtest.Product(t, conn, "יח'")
	c := dbtest.Product(t, conn, "יח'")
	dbtest.Item(t, conn, order.ID, a.ID, "10", 1)
	dbtest.Item(t, conn, order.ID, b.ID, "5", 2)

	repo := NewRepository(conn)
	svc, err := NewService(repo, client, outbox.NewEmitter(outbox.NewRepository(conn), nil), nil)
	require.NoError(t, err)

	res, err := svc.Reconcile(ctx, ReceiptInput{
		WarehouseID:    warehouse.ID,
		ShoppingListID: order.ID,
		Lines: []ReceiptLine{
			{ProductID: a.ID, Quantity: decimal.NewFromInt(8)},
			{ProductID: c.ID, Quantity: decimal.NewFromInt(3)},
			{ProductID: uuid.New(), Quantity: decimal.NewFromInt(1)},
		},
	})
	require.NoError(t, err)
	require.Len(t, res.Applied, 2)
	require.NotNil(t, res.Alert)

	var movements int64
	conn.Model(&models.InventoryMovement{}).Where("reference_id = ?", order.ID).Count(&movements)
	require.EqualValues(t, 2, movements)

	var alerts int64
	conn.Model(&models.ReceiptDiscrepancyAlert{}).Where("shopping_list_id = ?", order.ID).Count(&alerts)
	require.EqualValues(t, 1, alerts)

	var events int64
	conn.Model(&models.OutboxEvent{}).Count(&events)
	require.GreaterOrEqual(t, events, int64(2))

	ordered, err := repo.OrderedLines(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, ordered, 2)
	require.Equal(t, a.ID, ordered[0].ProductID)
}
