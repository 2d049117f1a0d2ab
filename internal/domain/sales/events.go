package sales

import (
	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeQuotation = "Quotation"
	AggregateTypeOrder     = "Order"
)

// Sales domain event types
const (
	EventTypeQuotationCreated       = "QuotationCreated"
	EventTypeQuotationStatusChanged = "QuotationStatusChanged"
	EventTypeOrderStatusChanged     = "OrderStatusChanged"
)

// QuotationCreatedEvent is published when a quotation is created
type QuotationCreatedEvent struct {
	shared.BaseDomainEvent
	Code     string    `json:"code"`
	ClientID uuid.UUID `json:"client_id"`
	SellerID uuid.UUID `json:"seller_id"`
}

// NewQuotationCreatedEvent creates a new QuotationCreatedEvent
func NewQuotationCreatedEvent(q *Quotation) *QuotationCreatedEvent {
	return &QuotationCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuotationCreated, AggregateTypeQuotation, q.ID),
		Code:            q.Code,
		ClientID:        q.ClientID,
		SellerID:        q.SellerID,
	}
}

// QuotationStatusChangedEvent is published on every quotation transition
type QuotationStatusChangedEvent struct {
	shared.BaseDomainEvent
	Code      string          `json:"code"`
	ClientID  uuid.UUID       `json:"client_id"`
	OldStatus QuotationStatus `json:"old_status"`
	NewStatus QuotationStatus `json:"new_status"`
	Total     decimal.Decimal `json:"total"`
}

// NewQuotationStatusChangedEvent creates a new QuotationStatusChangedEvent
func NewQuotationStatusChangedEvent(q *Quotation, old QuotationStatus) *QuotationStatusChangedEvent {
	return &QuotationStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuotationStatusChanged, AggregateTypeQuotation, q.ID),
		Code:            q.Code,
		ClientID:        q.ClientID,
		OldStatus:       old,
		NewStatus:       q.Status,
		Total:           q.Total,
	}
}

// OrderStatusChangedEvent is published when an order is created and on every transition.
// OldStatus is empty for a new order.
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	Code      string          `json:"code"`
	ClientID  uuid.UUID       `json:"client_id"`
	SellerID  uuid.UUID       `json:"seller_id"`
	OldStatus OrderStatus     `json:"old_status,omitempty"`
	NewStatus OrderStatus     `json:"new_status"`
	Total     decimal.Decimal `json:"total"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(o *Order, old OrderStatus) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID),
		Code:            o.Code,
		ClientID:        o.ClientID,
		SellerID:        o.SellerID,
		OldStatus:       old,
		NewStatus:       o.Status,
		Total:           o.Total,
	}
}

// DeduplicationKey identifies the order reaching a status. Statuses only move
// forward, so each pair is announced to the customer at most once.
func (e *OrderStatusChangedEvent) DeduplicationKey() string {
	return e.AggID.String() + ":" + string(e.NewStatus)
}

// IsNew reports whether the event announces a newly created order
func (e *OrderStatusChangedEvent) IsNew() bool {
	return e.OldStatus == ""
}
