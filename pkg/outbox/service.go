// Package outbox implements the transactional outbox: services record domain
// events in the same transaction as the change they describe, and the
// outbox-publisher binary relays them to Pub/Sub afterwards.
package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bikurim/procurement-backend/pkg/db/models"
	"github.com/bikurim/procurement-backend/pkg/enums"
	"github.com/bikurim/procurement-backend/pkg/logger"
)

const envelopeVersion = 1

var ErrNoTransaction = errors.New("outbox: emit needs the caller's transaction")

// DomainEvent is a change worth telling other systems about. Data is one of
// the structs in the payloads package.
type DomainEvent struct {
	EventType     enums.OutboxEventType
	AggregateType enums.OutboxAggregateType
	AggregateID   uuid.UUID
	Data          any
	OccurredAt    time.Time
}

// Emitter is what domain services depend on.
type Emitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event DomainEvent) error
}

type rowWriter interface {
	Insert(tx *gorm.DB, event models.OutboxEvent) error
}

// TxEmitter writes events as outbox rows.
type TxEmitter struct {
	rows  rowWriter
	logg  *logger.Logger
	clock func() time.Time
	newID func() string
}

func NewEmitter(repo *Repository, logg *logger.Logger) *TxEmitter {
	return &TxEmitter{rows: repo, logg: logg, clock: time.Now, newID: uuid.NewString}
}

// Emit validates event and inserts it through tx. Nothing is written unless
// tx commits.
func (e *TxEmitter) Emit(ctx context.Context, tx *gorm.DB, event DomainEvent) error {
	if tx == nil {
		return ErrNoTransaction
	}
	if err := validate(event); err != nil {
		return err
	}

	row, env, err := e.encode(ctx, event)
	if err != nil {
		return err
	}
	if err := e.rows.Insert(tx, row); err != nil {
		return fmt.Errorf("outbox insert %s: %w", event.EventType, err)
	}

	if e.logg != nil {
		e.logg.Debug(e.logg.WithFields(ctx, map[string]any{
			"event_id":     env.EventID,
			"event_type":   event.EventType,
			"aggregate_id": event.AggregateID.String(),
		}), "outbox.queued")
	}
	return nil
}

func validate(event DomainEvent) error {
	switch {
	case !event.EventType.IsValid():
		return fmt.Errorf("outbox: unknown event type %q", event.EventType)
	case !event.AggregateType.IsValid():
		return fmt.Errorf("outbox: unknown aggregate type %q", event.AggregateType)
	case event.AggregateID == uuid.Nil:
		return fmt.Errorf("outbox: %s without aggregate id", event.EventType)
	}
	return nil
}

func (e *TxEmitter) encode(ctx context.Context, event DomainEvent) (models.OutboxEvent, PayloadEnvelope, error) {
	data, err := json.Marshal(event.Data)
	if err != nil {
		return models.OutboxEvent{}, PayloadEnvelope{}, fmt.Errorf("outbox encode %s: %w", event.EventType, err)
	}
	occurred := event.OccurredAt
	if occurred.IsZero() {
		occurred = e.clock()
	}
	env := PayloadEnvelope{
		Version:       envelopeVersion,
		EventID:       e.newID(),
		OccurredAt:    occurred.UTC(),
		CorrelationID: logger.RequestID(ctx),
		Data:          data,
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return models.OutboxEvent{}, PayloadEnvelope{}, fmt.Errorf("outbox envelope: %w", err)
	}
	return models.OutboxEvent{
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Payload:       payload,
	}, env, nil
}
