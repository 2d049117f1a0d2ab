package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/shared"
)

// RecordingPublisher collects published domain events. It satisfies both
// shared.EventPublisher and shared.EventHandler so it can stand in for the bus
// or subscribe to it.
type RecordingPublisher struct {
	mu         sync.Mutex
	eventTypes []string
	events     []shared.DomainEvent
	err        error
}

// NewRecordingPublisher creates a recorder that reports the given types when
// subscribed to a bus.
func NewRecordingPublisher(eventTypes ...string) *RecordingPublisher {
	return &RecordingPublisher{eventTypes: eventTypes}
}

// Publish records events and returns the configured error.
func (p *RecordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return p.err
}

// EventTypes returns the event types this recorder subscribes to.
func (p *RecordingPublisher) EventTypes() []string {
	return p.eventTypes
}

// Handle records a dispatched event.
func (p *RecordingPublisher) Handle(ctx context.Context, event shared.DomainEvent) error {
	return p.Publish(ctx, event)
}

// Events returns a copy of everything recorded so far.
func (p *RecordingPublisher) Events() []shared.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]shared.DomainEvent, len(p.events))
	copy(out, p.events)
	return out
}

// Types lists the recorded event types in order.
func (p *RecordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

// Count returns the number of recorded events.
func (p *RecordingPublisher) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

// SetError makes later Publish and Handle calls fail with err.
func (p *RecordingPublisher) SetError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// Reset clears recorded events and the configured error.
func (p *RecordingPublisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
	p.err = nil
}

// TestEvent is a simple domain event for testing.
type TestEvent struct {
	shared.BaseDomainEvent
	Data string
}

// NewTestEvent creates an event of eventType for a random aggregate.
func NewTestEvent(eventType string) *TestEvent {
	return NewTestEventWithID(uuid.New(), eventType)
}

// NewTestEventWithID creates a test event with a specific event ID.
func NewTestEventWithID(eventID uuid.UUID, eventType string) *TestEvent {
	return &TestEvent{
		BaseDomainEvent: shared.BaseDomainEvent{
			ID:        eventID,
			Type:      eventType,
			Timestamp: time.Now(),
			AggID:     uuid.New(),
			AggType:   "TestAggregate",
		},
		Data: "test-data",
	}
}
