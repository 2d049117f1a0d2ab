package sales

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(t *testing.T) *Order {
	t.Helper()
	o, err := NewOrder("PED-2025-0001", uuid.New(), uuid.New(), OrderDetails{
		OrderedAt: testNow,
		Items:     []LineItem{item(t, 3, 20)},
	})
	require.NoError(t, err)
	return o
}

func TestNewOrder(t *testing.T) {
	o := newTestOrder(t)
	assert.Equal(t, OrderStatusPending, o.Status)
	assert.Equal(t, "60.00", o.Total.StringFixed(2))

	events := o.GetDomainEvents()
	require.Len(t, events, 1)
	ev, ok := events[0].(*OrderStatusChangedEvent)
	require.True(t, ok)
	assert.True(t, ev.IsNew())

	_, err := NewOrder("PED-2025-0002", uuid.New(), uuid.New(), OrderDetails{OrderedAt: testNow})
	assert.Error(t, err)

	past := testNow.AddDate(0, 0, -2)
	_, err = NewOrder("PED-2025-0002", uuid.New(), uuid.New(), OrderDetails{
		OrderedAt:          testNow,
		ExpectedDeliveryAt: &past,
		Items:              []LineItem{item(t, 1, 1)},
	})
	assert.Error(t, err)
}

func TestOrder_Transitions(t *testing.T) {
	t.Run("pending to processing to completed", func(t *testing.T) {
		o := newTestOrder(t)
		o.ClearDomainEvents()

		require.NoError(t, o.Process())
		require.NoError(t, o.Complete())
		assert.Equal(t, OrderStatusCompleted, o.Status)
		assert.Len(t, o.GetDomainEvents(), 2)
		assert.Error(t, o.Cancel("tarde"))
	})

	t.Run("pending cannot be completed", func(t *testing.T) {
		o := newTestOrder(t)
		assert.Error(t, o.Complete())
	})

	t.Run("cancel records reason", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.Process())
		require.NoError(t, o.Cancel("Sin stock"))
		assert.Equal(t, OrderStatusCancelled, o.Status)
		assert.Contains(t, o.Notes, "Motivo de cancelación: Sin stock")
	})

	t.Run("only pending orders can be edited", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.Process())
		assert.Error(t, o.Update(OrderDetails{Items: []LineItem{item(t, 1, 1)}}))
		assert.False(t, o.CanBeDeleted())
	})
}

func TestNewOrderFromQuotation(t *testing.T) {
	q := draftQuotation(t)
	require.NoError(t, q.SetItems([]LineItem{item(t, 2, 100)}))

	_, err := NewOrderFromQuotation("PED-2025-0001", q, "", testNow)
	assert.Error(t, err)

	require.NoError(t, q.Send(testNow))
	require.NoError(t, q.Approve(testNow.Add(time.Minute)))

	o, err := NewOrderFromQuotation("PED-2025-0001", q, "Av. Arequipa 123", testNow)
	require.NoError(t, err)
	assert.Equal(t, q.ID, *o.QuotationID)
	assert.Equal(t, q.ClientID, o.ClientID)
	assert.True(t, q.Total.Equal(o.Total))
	assert.NotEqual(t, q.Items[0].ID, o.Items[0].ID)
	assert.Equal(t, "Av. Arequipa 123", o.ShippingAddress)
}
