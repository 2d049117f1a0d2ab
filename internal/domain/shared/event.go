package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact raised by a CRM aggregate (a client, a visit, a
// quotation...) after a state change. Services publish them once the change is
// committed; notification and dashboard handlers react to them.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
}

// Deduplicated is implemented by events whose side effects must happen once per
// business fact, whatever the number of events announcing it. Two "order
// PED-2026-0042 completed" events share a key even though their IDs differ.
type Deduplicated interface {
	DeduplicationKey() string
}

// BaseDomainEvent is embedded by every CRM event. AggID is the client, visit,
// order... that raised it; planning events use the seller ID.
type BaseDomainEvent struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	AggID     uuid.UUID `json:"aggregate_id"`
	AggType   string    `json:"aggregate_type"`
}

func (e *BaseDomainEvent) EventID() uuid.UUID     { return e.ID }
func (e *BaseDomainEvent) EventType() string      { return e.Type }
func (e *BaseDomainEvent) OccurredAt() time.Time  { return e.Timestamp }
func (e *BaseDomainEvent) AggregateID() uuid.UUID { return e.AggID }
func (e *BaseDomainEvent) AggregateType() string  { return e.AggType }

// NewBaseDomainEvent stamps a new event with a fresh ID and the current time
func NewBaseDomainEvent(eventType, aggType string, aggID uuid.UUID) BaseDomainEvent {
	return BaseDomainEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Timestamp: time.Now(),
		AggID:     aggID,
		AggType:   aggType,
	}
}
