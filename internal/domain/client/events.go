package client

import (
	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant for Client
const AggregateTypeClient = "Client"

// Client domain event types
const (
	EventTypeClientCreated         = "ClientCreated"
	EventTypeClientStatusChanged   = "ClientStatusChanged"
	EventTypeClientDeleted         = "ClientDeleted"
	EventTypeClientPipelineChanged = "ClientPipelineChanged"
)

// Contact domain event types
const (
	AggregateTypeContact = "Contact"

	EventTypeContactCreated        = "ContactCreated"
	EventTypeContactDeleted        = "ContactDeleted"
	EventTypePrimaryContactChanged = "PrimaryContactChanged"
)

// ClientCreatedEvent is published when a client is created
type ClientCreatedEvent struct {
	shared.BaseDomainEvent
	Code         string `json:"code"`
	RUC          string `json:"ruc"`
	BusinessName string `json:"business_name"`
}

// NewClientCreatedEvent creates a new ClientCreatedEvent
func NewClientCreatedEvent(c *Client) *ClientCreatedEvent {
	return &ClientCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientCreated, AggregateTypeClient, c.ID),
		Code:            c.Code,
		RUC:             c.RUC,
		BusinessName:    c.BusinessName,
	}
}

// ClientStatusChangedEvent is published when the client status changes
type ClientStatusChangedEvent struct {
	shared.BaseDomainEvent
	Code      string `json:"code"`
	OldStatus Status `json:"old_status"`
	NewStatus Status `json:"new_status"`
}

// NewClientStatusChangedEvent creates a new ClientStatusChangedEvent
func NewClientStatusChangedEvent(c *Client, old Status) *ClientStatusChangedEvent {
	return &ClientStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientStatusChanged, AggregateTypeClient, c.ID),
		Code:            c.Code,
		OldStatus:       old,
		NewStatus:       c.Status,
	}
}

// ClientDeletedEvent is published after a client and its contacts and visits are removed
type ClientDeletedEvent struct {
	shared.BaseDomainEvent
	Code         string `json:"code"`
	RUC          string `json:"ruc"`
	BusinessName string `json:"business_name"`
}

// NewClientDeletedEvent creates a new ClientDeletedEvent
func NewClientDeletedEvent(c *Client) *ClientDeletedEvent {
	return &ClientDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientDeleted, AggregateTypeClient, c.ID),
		Code:            c.Code,
		RUC:             c.RUC,
		BusinessName:    c.BusinessName,
	}
}

// ClientPipelineChangedEvent is published when the potential value, close
// probability or sector of a client changes
type ClientPipelineChangedEvent struct {
	shared.BaseDomainEvent
	Code             string          `json:"code"`
	Sector           string          `json:"sector"`
	PotentialValue   decimal.Decimal `json:"potential_value"`
	CloseProbability int             `json:"close_probability"`
}

// NewClientPipelineChangedEvent creates a new ClientPipelineChangedEvent
func NewClientPipelineChangedEvent(c *Client) *ClientPipelineChangedEvent {
	return &ClientPipelineChangedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeClientPipelineChanged, AggregateTypeClient, c.ID),
		Code:             c.Code,
		Sector:           c.Sector,
		PotentialValue:   c.PotentialValue,
		CloseProbability: c.CloseProbability,
	}
}

// ContactEvent is published when a contact is added, removed or becomes the
// primary contact of its client
type ContactEvent struct {
	shared.BaseDomainEvent
	ClientID  uuid.UUID `json:"client_id"`
	FullName  string    `json:"full_name"`
	IsPrimary bool      `json:"is_primary"`
}

// NewContactEvent creates a ContactEvent of the given type
func NewContactEvent(eventType string, c *Contact) *ContactEvent {
	return &ContactEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeContact, c.ID),
		ClientID:        c.ClientID,
		FullName:        c.FullName(),
		IsPrimary:       c.IsPrimary,
	}
}
