package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Topics. One topic per entity family; the partition key is the entity id
// so all events for one order or booking keep their order.
const (
	TopicOrderStatusChanged   = "order.status.changed"
	TopicBookingStatusChanged = "booking.status.changed"
)

const producerName = "marketplace-api"

// Envelope wraps every published event.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// StatusChanged is the payload for both status-change topics.
type StatusChanged struct {
	EntityID  string `json:"entity_id"`
	Kind      string `json:"kind"` // ORDER, MECHANIC or LOGISTICS
	From      string `json:"from,omitempty"`
	To        string `json:"to"`
	ChangedBy string `json:"changed_by,omitempty"` // user id of the actor
}

func newEnvelope(eventType, correlationID string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producerName,
		CorrelationID: correlationID,
		Payload:       raw,
	}, nil
}
