package sales

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pendiente"
	OrderStatusProcessing OrderStatus = "en_proceso"
	OrderStatusCompleted  OrderStatus = "completado"
	OrderStatusCancelled  OrderStatus = "cancelado"
)

// AllOrderStatuses returns every order status
func AllOrderStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled}
}

// IsValid checks if the status is valid
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusProcessing || target == OrderStatusCancelled
	case OrderStatusProcessing:
		return target == OrderStatusCompleted || target == OrderStatusCancelled
	}
	return false
}

// IsTerminal reports whether no further transition is possible
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// Order is the aggregate root for a confirmed purchase of a client
type Order struct {
	shared.BaseAggregateRoot
	Code               string
	ClientID           uuid.UUID
	SellerID           uuid.UUID
	QuotationID        *uuid.UUID
	OrderedAt          time.Time
	ExpectedDeliveryAt *time.Time
	Items              []LineItem
	Total              decimal.Decimal
	Status             OrderStatus
	ShippingAddress    string
	Notes              string
}

// OrderDetails carries the editable fields of an order
type OrderDetails struct {
	OrderedAt          time.Time
	ExpectedDeliveryAt *time.Time
	ShippingAddress    string
	Notes              string
	Items              []LineItem
}

// NewOrder creates a pending order
func NewOrder(code string, clientID, sellerID uuid.UUID, d OrderDetails) (*Order, error) {
	if strings.TrimSpace(code) == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Order code cannot be empty")
	}
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Client is required")
	}
	if sellerID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Seller is required")
	}
	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		ClientID:          clientID,
		SellerID:          sellerID,
		Status:            OrderStatusPending,
	}
	if err := o.apply(d); err != nil {
		return nil, err
	}
	o.SetCreatedBy(sellerID)
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, ""))
	return o, nil
}

// NewOrderFromQuotation creates the order produced by an approved quotation
func NewOrderFromQuotation(code string, q *Quotation, shippingAddress string, now time.Time) (*Order, error) {
	if q.Status != QuotationStatusApproved {
		return nil, shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cannot create order from quotation in %s status", q.Status))
	}
	o, err := NewOrder(code, q.ClientID, q.SellerID, OrderDetails{
		OrderedAt:       now,
		ShippingAddress: shippingAddress,
		Notes:           fmt.Sprintf("Generado desde la cotización %s", q.Code),
		Items:           copyItems(q.Items),
	})
	if err != nil {
		return nil, err
	}
	qid := q.ID
	o.QuotationID = &qid
	return o, nil
}

func (o *Order) apply(d OrderDetails) error {
	if len(d.Items) == 0 {
		return shared.NewDomainError(shared.CodeValidation, "Order must have at least one item")
	}
	if d.OrderedAt.IsZero() {
		d.OrderedAt = time.Now()
	}
	if d.ExpectedDeliveryAt != nil && d.ExpectedDeliveryAt.Before(StartOfDay(d.OrderedAt)) {
		return shared.NewDomainError(shared.CodeValidation, "Expected delivery cannot be before the order date")
	}
	o.OrderedAt = d.OrderedAt
	o.ExpectedDeliveryAt = d.ExpectedDeliveryAt
	o.ShippingAddress = strings.TrimSpace(d.ShippingAddress)
	o.Notes = strings.TrimSpace(d.Notes)
	o.Items = append([]LineItem(nil), d.Items...)
	o.Total = SumItems(o.Items)
	return nil
}

// Update edits a pending order
func (o *Order) Update(d OrderDetails) error {
	if o.Status != OrderStatusPending {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cannot edit order in %s status", o.Status))
	}
	if err := o.apply(d); err != nil {
		return err
	}
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	return nil
}

func (o *Order) transition(target OrderStatus, action string) error {
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("Cannot %s order in %s status", action, o.Status))
	}
	old := o.Status
	o.Status = target
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, old))
	return nil
}

// Process starts working on the order
func (o *Order) Process() error {
	return o.transition(OrderStatusProcessing, "process")
}

// Complete marks the order as delivered
func (o *Order) Complete() error {
	return o.transition(OrderStatusCompleted, "complete")
}

// Cancel cancels the order and records the reason
func (o *Order) Cancel(reason string) error {
	if err := o.transition(OrderStatusCancelled, "cancel"); err != nil {
		return err
	}
	if r := strings.TrimSpace(reason); r != "" {
		if o.Notes != "" {
			o.Notes += "\n\n"
		}
		o.Notes += "Motivo de cancelación: " + r
	}
	return nil
}

// CanBeDeleted reports whether the order may be removed
func (o *Order) CanBeDeleted() bool {
	return o.Status == OrderStatusPending
}

// StartOfDay truncates t to midnight in its location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
