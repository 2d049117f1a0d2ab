package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/catalog"
	"github.com/salescrm/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ProductService handles products, channels and channel prices
type ProductService struct {
	productRepo    catalog.ProductRepository
	channelRepo    catalog.ChannelRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	channelRepo catalog.ChannelRepository,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		productRepo:    productRepo,
		channelRepo:    channelRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// List returns products matching the search with pagination
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]ProductResponse, int64, error) {
	f := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   strings.TrimSpace(filter.Search),
	}
	f.Normalize()
	products, total, err := s.productRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = ToProductResponse(p)
	}
	return out, total, nil
}

// GetByID returns a product with its prices and documents
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(p)
	return &resp, nil
}

func (s *ProductService) ensureUniqueCode(ctx context.Context, code string, excludeID *uuid.UUID) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	exists, err := s.productRepo.ExistsByCode(ctx, code, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError(shared.CodeAlreadyExists, fmt.Sprintf("Product code %s already exists", code))
	}
	return nil
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req ProductRequest) (*ProductResponse, error) {
	if err := s.ensureUniqueCode(ctx, req.Code, nil); err != nil {
		return nil, err
	}
	p, err := catalog.NewProduct(req.Code, req.Name, req.Description, req.BasePrice, req.Unit)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.publish(ctx, p)

	s.logger.Info("Product created",
		zap.String("product_id", p.ID.String()),
		zap.String("code", p.Code))
	resp := ToProductResponse(p)
	return &resp, nil
}

// Update replaces the editable fields of a product
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req ProductRequest) (*ProductResponse, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(strings.TrimSpace(req.Code), p.Code) {
		if err := s.ensureUniqueCode(ctx, req.Code, &id); err != nil {
			return nil, err
		}
	}
	if err := p.Update(req.Code, req.Name, req.Description, req.BasePrice, req.Unit); err != nil {
		return nil, err
	}
	if err := s.productRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.publish(ctx, p)
	resp := ToProductResponse(p)
	return &resp, nil
}

// Delete removes a product. Its stored documents are removed by the
// ProductDeleted handler.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	p.MarkDeleted()
	s.publish(ctx, p)

	s.logger.Info("Product deleted", zap.String("product_id", id.String()))
	return nil
}

// SetChannelPrice sets the price of a product in a channel
func (s *ProductService) SetChannelPrice(ctx context.Context, id uuid.UUID, req ChannelPriceRequest) (*ProductResponse, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	channel, err := s.channelRepo.FindByID(ctx, req.ChannelID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewDomainError(shared.CodeValidation, "Channel not found")
		}
		return nil, err
	}
	if err := p.SetChannelPrice(channel, req.Price); err != nil {
		return nil, err
	}
	if err := s.productRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.publish(ctx, p)
	resp := ToProductResponse(p)
	return &resp, nil
}

// ListChannels returns every sales channel
func (s *ProductService) ListChannels(ctx context.Context) ([]ChannelResponse, error) {
	channels, err := s.channelRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ChannelResponse, len(channels))
	for i, c := range channels {
		out[i] = ChannelResponse{ID: c.ID, Name: c.Name}
	}
	return out, nil
}

// CreateChannel creates a sales channel
func (s *ProductService) CreateChannel(ctx context.Context, req CreateChannelRequest) (*ChannelResponse, error) {
	c, err := catalog.NewChannel(req.Name)
	if err != nil {
		return nil, err
	}
	if err := s.channelRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return &ChannelResponse{ID: c.ID, Name: c.Name}, nil
}

func (s *ProductService) publish(ctx context.Context, p *catalog.Product) {
	if err := shared.PublishAndClear(ctx, s.eventPublisher, p); err != nil {
		s.logger.Warn("Failed to publish events", zap.Error(err))
	}
}
