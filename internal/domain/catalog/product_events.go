package catalog

import (
	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeProduct = "Product"

// Event type constants
const (
	EventTypeProductCreated      = "ProductCreated"
	EventTypeProductPriceChanged = "ProductPriceChanged"
	EventTypeProductDeleted      = "ProductDeleted"
)

// ProductCreatedEvent is published when a new product is created
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	BasePrice decimal.Decimal `json:"base_price"`
}

// NewProductCreatedEvent creates a new ProductCreatedEvent
func NewProductCreatedEvent(p *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, AggregateTypeProduct, p.ID),
		Code:            p.Code,
		Name:            p.Name,
		BasePrice:       p.BasePrice,
	}
}

// ProductPriceChangedEvent is published when the base price or a channel
// price changes. ChannelID is nil for the base price.
type ProductPriceChangedEvent struct {
	shared.BaseDomainEvent
	Code      string          `json:"code"`
	ChannelID *uuid.UUID      `json:"channel_id,omitempty"`
	OldPrice  decimal.Decimal `json:"old_price"`
	NewPrice  decimal.Decimal `json:"new_price"`
}

// NewProductPriceChangedEvent creates a new ProductPriceChangedEvent
func NewProductPriceChangedEvent(p *Product, channelID *uuid.UUID, oldPrice, newPrice decimal.Decimal) *ProductPriceChangedEvent {
	return &ProductPriceChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductPriceChanged, AggregateTypeProduct, p.ID),
		Code:            p.Code,
		ChannelID:       channelID,
		OldPrice:        oldPrice,
		NewPrice:        newPrice,
	}
}

// ProductDeletedEvent is published when a product is deleted
type ProductDeletedEvent struct {
	shared.BaseDomainEvent
	Code        string   `json:"code"`
	StorageKeys []string `json:"storage_keys,omitempty"`
}

// NewProductDeletedEvent creates a new ProductDeletedEvent
func NewProductDeletedEvent(p *Product) *ProductDeletedEvent {
	keys := make([]string, len(p.Documents))
	for i, d := range p.Documents {
		keys[i] = d.StorageKey
	}
	return &ProductDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductDeleted, AggregateTypeProduct, p.ID),
		Code:            p.Code,
		StorageKeys:     keys,
	}
}
