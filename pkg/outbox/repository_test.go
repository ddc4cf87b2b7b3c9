package outbox

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bikurim/procurement-backend/pkg/db/dbtest"
	"github.com/bikurim/procurement-backend/pkg/db/models"
	"github.com/bikurim/procurement-backend/pkg/enums"
)

func TestClipKeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "short", clip("short", 10))
	assert.Equal(t, "abc", clip("abcdef", 3))

	// each Hebrew letter is two bytes; cutting at 5 must not split one
	got := clip("מחסןמחסן", 5)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "מח", got)
}

func TestLastAttempt(t *testing.T) {
	ev := models.OutboxEvent{AttemptCount: 2}
	assert.True(t, ev.LastAttempt(3))
	assert.False(t, ev.LastAttempt(4))
	assert.False(t, ev.LastAttempt(0))
}

func TestRepositoryRequiresTransaction(t *testing.T) {
	repo := NewRepository(nil)
	require.ErrorIs(t, repo.Insert(nil, models.OutboxEvent{}), ErrNoTransaction)
	_, err := repo.FetchForPublish(nil, 10, 3)
	require.ErrorIs(t, err, ErrNoTransaction)
}

func TestRepositoryDeliveryLifecycle(t *testing.T) {
	client := dbtest.Open(t)
	conn := client.DB()
	ctx := context.Background()
	repo := NewRepository(conn)

	aggregate := uuid.New()
	insert := func(id uuid.UUID) {
		require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
			return repo.Insert(tx, models.OutboxEvent{
				ID:            id,
				EventType:     enums.EventGoodsReceived,
				AggregateType: enums.AggregateShoppingList,
				AggregateID:   aggregate,
				Payload:       []byte(`{"version":1}`),
			})
		}))
	}
	delivered, failing := uuid.New(), uuid.New()
	insert(delivered)
	insert(failing)
	t.Cleanup(func() {
		conn.Where("aggregate_id = ?", aggregate).Delete(&models.OutboxEvent{})
	})

	ours := func(events []models.OutboxEvent) []uuid.UUID {
		var ids []uuid.UUID
		for _, ev := range events {
			if ev.AggregateID == aggregate {
				ids = append(ids, ev.ID)
			}
		}
		return ids
	}

	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		events, err := repo.FetchForPublish(tx, 1000, 2)
		require.NoError(t, err)
		require.ElementsMatch(t, []uuid.UUID{delivered, failing}, ours(events))
		if err := repo.MarkPublishedTx(tx, delivered); err != nil {
			return err
		}
		return repo.MarkFailedTx(tx, failing, errors.New(strings.Repeat("x", maxErrorLen*2)))
	}))

	var row models.OutboxEvent
	require.NoError(t, conn.First(&row, "id = ?", failing).Error)
	assert.Equal(t, 1, row.AttemptCount)
	require.NotNil(t, row.LastError)
	assert.Len(t, *row.LastError, maxErrorLen)

	// one more failure exhausts the event
	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		return repo.MarkFailedTx(tx, failing, errors.New("deadline exceeded"))
	}))
	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		events, err := repo.FetchForPublish(tx, 1000, 2)
		require.NoError(t, err)
		assert.Empty(t, ours(events))
		return nil
	}))

	removed, err := repo.DeletePublishedBefore(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, removed, int64(1))

	var left int64
	conn.Model(&models.OutboxEvent{}).Where("aggregate_id = ?", aggregate).Count(&left)
	assert.EqualValues(t, 1, left)
}
