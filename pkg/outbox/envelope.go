package outbox

import (
	"encoding/json"
	"time"
)

// PayloadEnvelope is what outbox_events.payload holds and what subscribers
// receive as message data.
type PayloadEnvelope struct {
	Version    int       `json:"version"`
	EventID    string    `json:"event_id"`
	OccurredAt time.Time `json:"occurred_at"`
	// CorrelationID is the X-Request-Id of the API call that caused the
	// event; empty for events raised by background jobs.
	CorrelationID string          `json:"correlation_id,omitempty"`
	Data          json.RawMessage `json:"data"`
}

// DecodeEnvelope parses a stored payload. ok is false when raw is not a
// versioned envelope.
func DecodeEnvelope(raw []byte) (env PayloadEnvelope, ok bool) {
	if err := json.Unmarshal(raw, &env); err != nil || env.Version < 1 {
		return PayloadEnvelope{}, false
	}
	return env, true
}
