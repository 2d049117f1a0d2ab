package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence.
// Save methods persist channel prices and documents along with the product.
type ProductRepository interface {
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]*Product, int64, error)
	ExistsByCode(ctx context.Context, code string, excludeID *uuid.UUID) (bool, error)
}

// ChannelRepository defines the interface for channel persistence
type ChannelRepository interface {
	Create(ctx context.Context, c *Channel) error
	FindByID(ctx context.Context, id uuid.UUID) (*Channel, error)
	FindAll(ctx context.Context) ([]*Channel, error)
}
