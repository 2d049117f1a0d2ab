package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/shared"
)

// QuotationRepository defines the interface for quotation persistence
type QuotationRepository interface {
	Create(ctx context.Context, q *Quotation) error
	Update(ctx context.Context, q *Quotation) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Quotation, error)
	FindAll(ctx context.Context, filter QuotationFilter) ([]*Quotation, int64, error)
	// FindByClient returns every quotation of a client, most recent first
	FindByClient(ctx context.Context, clientID uuid.UUID) ([]*Quotation, error)
	// FindSentExpiringBefore returns sent quotations whose validity ended before t
	FindSentExpiringBefore(ctx context.Context, t time.Time) ([]*Quotation, error)
	CountByClient(ctx context.Context, clientID uuid.UUID) (int64, error)
	// LastCode returns the highest code starting with prefix, empty when none
	LastCode(ctx context.Context, prefix string) (string, error)
}

// QuotationFilter contains filter options for querying quotations
type QuotationFilter struct {
	shared.Filter
	ClientID *uuid.UUID
	SellerID *uuid.UUID
	Status   *QuotationStatus
}

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	Create(ctx context.Context, o *Order) error
	Update(ctx context.Context, o *Order) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindAll(ctx context.Context, filter OrderFilter) ([]*Order, int64, error)
	// FindByClient returns every order of a client, most recent first
	FindByClient(ctx context.Context, clientID uuid.UUID) ([]*Order, error)
	CountByClient(ctx context.Context, clientID uuid.UUID) (int64, error)
	CountByStatus(ctx context.Context, filter OrderFilter) (map[OrderStatus]int64, error)
	// LastCode returns the highest code starting with prefix, empty when none
	LastCode(ctx context.Context, prefix string) (string, error)
}

// OrderFilter contains filter options for querying orders
type OrderFilter struct {
	shared.Filter
	ClientID *uuid.UUID
	SellerID *uuid.UUID
	Status   *OrderStatus
}
