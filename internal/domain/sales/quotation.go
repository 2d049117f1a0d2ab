package sales

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DefaultQuotationValidity is the validity used when no expiry date is given
const DefaultQuotationValidity = 30 * 24 * time.Hour

// QuotationStatus represents the status of a quotation
type QuotationStatus string

const (
	QuotationStatusDraft    QuotationStatus = "borrador"
	QuotationStatusSent     QuotationStatus = "enviada"
	QuotationStatusApproved QuotationStatus = "aprobada"
	QuotationStatusRejected QuotationStatus = "rechazada"
	QuotationStatusExpired  QuotationStatus = "vencida"
)

// IsValid checks if the status is valid
func (s QuotationStatus) IsValid() bool {
	switch s {
	case QuotationStatusDraft, QuotationStatusSent, QuotationStatusApproved,
		QuotationStatusRejected, QuotationStatusExpired:
		return true
	}
	return false
}

// String returns the string representation
func (s QuotationStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s QuotationStatus) CanTransitionTo(target QuotationStatus) bool {
	switch s {
	case QuotationStatusDraft:
		return target == QuotationStatusSent || target == QuotationStatusRejected
	case QuotationStatusSent:
		return target == QuotationStatusApproved || target == QuotationStatusRejected || target == QuotationStatusExpired
	}
	return false
}

// IsTerminal reports whether no further transition is possible
func (s QuotationStatus) IsTerminal() bool {
	return s == QuotationStatusApproved || s == QuotationStatusRejected || s == QuotationStatusExpired
}

// Quotation is the aggregate root for a price proposal sent to a client
type Quotation struct {
	shared.BaseAggregateRoot
	Code      string
	ClientID  uuid.UUID
	SellerID  uuid.UUID
	VisitID   *uuid.UUID
	IssuedAt  time.Time
	ExpiresAt time.Time
	Items     []LineItem
	Total     decimal.Decimal
	Status    QuotationStatus
	Notes     string
	SentAt    *time.Time
	DecidedAt *time.Time
}

// NewQuotation creates a draft quotation
func NewQuotation(code string, clientID, sellerID uuid.UUID, issuedAt, expiresAt time.Time) (*Quotation, error) {
	if strings.TrimSpace(code) == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Quotation code cannot be empty")
	}
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Client is required")
	}
	if sellerID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Seller is required")
	}
	q := &Quotation{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		ClientID:          clientID,
		SellerID:          sellerID,
		Status:            QuotationStatusDraft,
		Items:             make([]LineItem, 0),
		Total:             decimal.Zero,
	}
	if err := q.setDates(issuedAt, expiresAt); err != nil {
		return nil, err
	}
	q.SetCreatedBy(sellerID)
	q.AddDomainEvent(NewQuotationCreatedEvent(q))
	return q, nil
}

func (q *Quotation) setDates(issuedAt, expiresAt time.Time) error {
	if issuedAt.IsZero() {
		issuedAt = time.Now()
	}
	if expiresAt.IsZero() {
		expiresAt = issuedAt.Add(DefaultQuotationValidity)
	}
	if expiresAt.Before(issuedAt) {
		return shared.NewDomainError(shared.CodeValidation, "Expiry date cannot be before issue date")
	}
	q.IssuedAt = issuedAt
	q.ExpiresAt = expiresAt
	return nil
}

func (q *Quotation) ensureDraft(action string) error {
	if q.Status != QuotationStatusDraft {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cannot %s quotation in %s status", action, q.Status))
	}
	return nil
}

// UpdateDraft replaces dates, notes and items of a draft quotation
func (q *Quotation) UpdateDraft(issuedAt, expiresAt time.Time, notes string, visitID *uuid.UUID, items []LineItem) error {
	if err := q.ensureDraft("edit"); err != nil {
		return err
	}
	if err := q.setDates(issuedAt, expiresAt); err != nil {
		return err
	}
	q.Notes = strings.TrimSpace(notes)
	q.VisitID = visitID
	q.Items = append([]LineItem(nil), items...)
	q.Total = SumItems(q.Items)
	q.UpdatedAt = time.Now()
	q.IncrementVersion()
	return nil
}

// SetItems replaces the items of a draft quotation
func (q *Quotation) SetItems(items []LineItem) error {
	if err := q.ensureDraft("edit"); err != nil {
		return err
	}
	q.Items = append([]LineItem(nil), items...)
	q.Total = SumItems(q.Items)
	q.UpdatedAt = time.Now()
	q.IncrementVersion()
	return nil
}

func (q *Quotation) transition(target QuotationStatus, action string) error {
	if !q.Status.CanTransitionTo(target) {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("Cannot %s quotation in %s status", action, q.Status))
	}
	old := q.Status
	q.Status = target
	q.UpdatedAt = time.Now()
	q.IncrementVersion()
	q.AddDomainEvent(NewQuotationStatusChangedEvent(q, old))
	return nil
}

// Send issues the quotation to the client
func (q *Quotation) Send(now time.Time) error {
	if q.Status == QuotationStatusDraft && len(q.Items) == 0 {
		return shared.NewDomainError(shared.CodeInvalidState, "Cannot send a quotation without items")
	}
	if err := q.transition(QuotationStatusSent, "send"); err != nil {
		return err
	}
	q.SentAt = &now
	return nil
}

// Approve records the client's acceptance
func (q *Quotation) Approve(now time.Time) error {
	if q.Status == QuotationStatusSent && q.IsPastExpiry(now) {
		return shared.NewDomainError(shared.CodeInvalidState, "Cannot approve an expired quotation")
	}
	if err := q.transition(QuotationStatusApproved, "approve"); err != nil {
		return err
	}
	q.DecidedAt = &now
	return nil
}

// Reject discards a draft or records the client's refusal
func (q *Quotation) Reject(now time.Time, reason string) error {
	if err := q.transition(QuotationStatusRejected, "reject"); err != nil {
		return err
	}
	q.DecidedAt = &now
	if r := strings.TrimSpace(reason); r != "" {
		if q.Notes != "" {
			q.Notes += "\n\n"
		}
		q.Notes += "Motivo de rechazo: " + r
	}
	return nil
}

// Expire marks a sent quotation as expired once its validity has passed
func (q *Quotation) Expire(now time.Time) error {
	if !q.IsPastExpiry(now) {
		return shared.NewDomainError(shared.CodeInvalidState, "Quotation has not expired yet")
	}
	if err := q.transition(QuotationStatusExpired, "expire"); err != nil {
		return err
	}
	q.DecidedAt = &now
	return nil
}

// IsPastExpiry reports whether the validity date has passed
func (q *Quotation) IsPastExpiry(now time.Time) bool {
	return now.After(q.ExpiresAt)
}

// CanBeDeleted reports whether the quotation may be removed
func (q *Quotation) CanBeDeleted() bool {
	return q.Status == QuotationStatusDraft
}
