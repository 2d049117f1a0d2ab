package event

import (
	"context"
	"time"

	"github.com/salescrm/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// OnceStore records keys atomically. SetNX reports whether key was new.
type OnceStore interface {
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
}

// KeyFunc derives the deduplication key of an event
type KeyFunc func(event shared.DomainEvent) string

// ByEventID deduplicates redeliveries of the same event
func ByEventID(event shared.DomainEvent) string {
	return event.EventID().String()
}

// ByBusinessKey uses the event's DeduplicationKey when it has one, so two
// publications of the same fact (an order reaching completado twice through a
// retried request, say) are handled once. Other events fall back to ByEventID.
func ByBusinessKey(event shared.DomainEvent) string {
	if d, ok := event.(shared.Deduplicated); ok {
		if key := d.DeduplicationKey(); key != "" {
			return event.EventType() + ":" + key
		}
	}
	return ByEventID(event)
}

// IdempotentHandler wraps an EventHandler so each key is handled once within ttl.
// Notification handlers use it so a customer never gets the same message twice.
type IdempotentHandler struct {
	handler shared.EventHandler
	store   OnceStore
	keyFn   KeyFunc
	ttl     time.Duration
	logger  *zap.Logger
}

// NewIdempotentHandler creates a new idempotent handler wrapper. A nil keyFn uses ByBusinessKey.
func NewIdempotentHandler(handler shared.EventHandler, store OnceStore, keyFn KeyFunc, ttl time.Duration, logger *zap.Logger) *IdempotentHandler {
	if keyFn == nil {
		keyFn = ByBusinessKey
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotentHandler{
		handler: handler,
		store:   store,
		keyFn:   keyFn,
		ttl:     ttl,
		logger:  logger,
	}
}

// EventTypes returns the event types of the wrapped handler
func (h *IdempotentHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

// Handle processes the event unless its key was already seen
func (h *IdempotentHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	key := "event:once:" + h.keyFn(event)

	isNew, err := h.store.SetNX(ctx, key, []byte(event.EventID().String()), h.ttl)
	if err != nil {
		// processing twice is preferred over dropping a notification
		h.logger.Warn("failed to check idempotency, processing anyway",
			zap.String("key", key),
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
	} else if !isNew {
		h.logger.Debug("duplicate event skipped",
			zap.String("key", key),
			zap.String("event_type", event.EventType()),
		)
		return nil
	}

	return h.handler.Handle(ctx, event)
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)
