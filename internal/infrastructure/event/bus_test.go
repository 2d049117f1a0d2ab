package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Order", uuid.New())}
}

type testHandler struct {
	mu         sync.Mutex
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panicMsg   string
	block      chan struct{}
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.block != nil {
		<-h.block
	}
	if h.panicMsg != "" {
		panic(h.panicMsg)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestInMemoryEventBus_RoutesByType(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	orders := newTestHandler("OrderStatusChanged")
	all := newTestHandler()
	bus.Subscribe(orders)
	bus.Subscribe(all)

	ctx := context.Background()
	require.NoError(t, bus.Publish(ctx, newTestEvent("OrderStatusChanged"), newTestEvent("VisitCompleted")))

	assert.Equal(t, 1, orders.count())
	assert.Equal(t, 2, all.count())

	bus.Unsubscribe(orders)
	require.NoError(t, bus.Publish(ctx, newTestEvent("OrderStatusChanged")))
	assert.Equal(t, 1, orders.count())
	assert.Equal(t, 3, all.count())
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := newTestHandler("OrderStatusChanged")
	bus.Subscribe(h, "VisitPlanningSubmitted")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("OrderStatusChanged"), newTestEvent("VisitPlanningSubmitted")))
	require.Equal(t, 1, h.count())
	assert.Equal(t, "VisitPlanningSubmitted", h.handled[0].EventType())
}

func TestInMemoryEventBus_FailuresAreIsolated(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	failing := newTestHandler("E")
	failing.err = errors.New("smtp down")
	panicking := newTestHandler("E")
	panicking.panicMsg = "boom"
	ok := newTestHandler("E")
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(ok)

	assert.NoError(t, bus.Publish(context.Background(), newTestEvent("E")))
	assert.Equal(t, 1, ok.count())
}

func TestInMemoryEventBus_AsyncStopWaits(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop(), WithAsyncDispatch())
	h := newTestHandler("E")
	h.block = make(chan struct{})
	bus.Subscribe(h)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, bus.Publish(ctx, newTestEvent("E")))
	cancel()
	assert.Equal(t, 0, h.count(), "publish does not wait for async handlers")

	close(h.block)
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	require.NoError(t, bus.Stop(stopCtx))
	assert.Equal(t, 1, h.count())

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("E")))
	assert.Equal(t, 1, h.count(), "stopped bus drops events")
}

func TestInMemoryEventBus_StopTimesOut(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop(), WithAsyncDispatch())
	h := newTestHandler("E")
	h.block = make(chan struct{})
	defer close(h.block)
	bus.Subscribe(h)
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("E")))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, bus.Stop(ctx), context.DeadlineExceeded)
}
