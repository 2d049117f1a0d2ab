package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/catalog"
	"github.com/salescrm/backend/internal/domain/client"
	"github.com/salescrm/backend/internal/domain/identity"
	"github.com/salescrm/backend/internal/domain/sales"
	"github.com/salescrm/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// OrderService handles order operations
type OrderService struct {
	orderRepo      sales.OrderRepository
	clientRepo     client.ClientRepository
	items          *itemResolver
	txManager      shared.TxManager
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo sales.OrderRepository,
	clientRepo client.ClientRepository,
	productRepo catalog.ProductRepository,
	txManager shared.TxManager,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:      orderRepo,
		clientRepo:     clientRepo,
		items:          &itemResolver{productRepo: productRepo},
		txManager:      txManager,
		eventPublisher: eventPublisher,
		logger:         logger,
		now:            time.Now,
	}
}

// List returns orders with pagination and the number of orders per status
func (s *OrderService) List(ctx context.Context, actor identity.Actor, filter SalesListFilter) ([]OrderResponse, int64, *OrderStats, error) {
	f := sales.OrderFilter{
		Filter:   toSharedFilter(filter),
		ClientID: filter.ClientID,
		SellerID: sellerScope(actor, filter.SellerID),
	}
	if filter.Status != "" {
		status := sales.OrderStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, nil, shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("Invalid order status: %s", filter.Status))
		}
		f.Status = &status
	}
	orders, total, err := s.orderRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, nil, err
	}
	ids := make([]uuid.UUID, len(orders))
	for i, o := range orders {
		ids[i] = o.ClientID
	}
	names, err := clientNames(ctx, s.clientRepo, ids)
	if err != nil {
		return nil, 0, nil, err
	}
	out := make([]OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = ToOrderResponse(o)
		out[i].ClientName = names[o.ClientID]
	}

	counts, err := s.orderRepo.CountByStatus(ctx, sales.OrderFilter{SellerID: f.SellerID})
	if err != nil {
		return nil, 0, nil, err
	}
	stats := &OrderStats{ByStatus: make(map[string]int64, len(counts))}
	for _, st := range sales.AllOrderStatuses() {
		stats.ByStatus[st.String()] = counts[st]
		stats.Total += counts[st]
	}
	return out, total, stats, nil
}

// GetByID returns an order
func (s *OrderService) GetByID(ctx context.Context, actor identity.Actor, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, o)
}

func (s *OrderService) visible(ctx context.Context, actor identity.Actor, id uuid.UUID) (*sales.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsManager() && o.SellerID != actor.UserID {
		return nil, errNotOwner
	}
	return o, nil
}

func (s *OrderService) respond(ctx context.Context, o *sales.Order) (*OrderResponse, error) {
	resp := ToOrderResponse(o)
	c, err := s.clientRepo.FindByID(ctx, o.ClientID)
	if err != nil && !shared.IsNotFound(err) {
		return nil, err
	}
	if c != nil {
		resp.ClientName = c.BusinessName
	}
	return &resp, nil
}

// Create creates a pending order with the next PED-YYYY-NNNN code. An empty
// shipping address defaults to the client address.
func (s *OrderService) Create(ctx context.Context, actor identity.Actor, req CreateOrderRequest) (*OrderResponse, error) {
	items, err := s.items.resolve(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	var o *sales.Order
	var c *client.Client
	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		c, err = s.clientRepo.FindByID(ctx, req.ClientID)
		if err != nil {
			return err
		}
		now := s.now()
		last, err := s.orderRepo.LastCode(ctx, sales.CodePrefixForYear(sales.OrderCodePrefix, now.Year()))
		if err != nil {
			return err
		}
		details := sales.OrderDetails{
			OrderedAt:          req.OrderedAt,
			ExpectedDeliveryAt: req.ExpectedDeliveryAt,
			ShippingAddress:    req.ShippingAddress,
			Notes:              req.Notes,
			Items:              items,
		}
		if details.OrderedAt.IsZero() {
			details.OrderedAt = now
		}
		if details.ShippingAddress == "" {
			details.ShippingAddress = c.Address
		}
		o, err = sales.NewOrder(sales.NextCode(sales.OrderCodePrefix, now.Year(), last), req.ClientID, actor.UserID, details)
		if err != nil {
			return err
		}
		return s.orderRepo.Create(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, o)

	s.logger.Info("Order created",
		zap.String("order_id", o.ID.String()),
		zap.String("code", o.Code))
	resp := ToOrderResponse(o)
	resp.ClientName = c.BusinessName
	return &resp, nil
}

// Update edits a pending order
func (s *OrderService) Update(ctx context.Context, actor identity.Actor, id uuid.UUID, req UpdateOrderRequest) (*OrderResponse, error) {
	o, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	items, err := s.items.resolve(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	orderedAt := req.OrderedAt
	if orderedAt.IsZero() {
		orderedAt = o.OrderedAt
	}
	err = o.Update(sales.OrderDetails{
		OrderedAt:          orderedAt,
		ExpectedDeliveryAt: req.ExpectedDeliveryAt,
		ShippingAddress:    req.ShippingAddress,
		Notes:              req.Notes,
		Items:              items,
	})
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}
	return s.respond(ctx, o)
}

// Process starts working on a pending order
func (s *OrderService) Process(ctx context.Context, actor identity.Actor, id uuid.UUID) (*OrderResponse, error) {
	return s.transition(ctx, actor, id, (*sales.Order).Process)
}

// Complete marks an order in process as delivered
func (s *OrderService) Complete(ctx context.Context, actor identity.Actor, id uuid.UUID) (*OrderResponse, error) {
	return s.transition(ctx, actor, id, (*sales.Order).Complete)
}

// Cancel cancels an order that is not finished yet
func (s *OrderService) Cancel(ctx context.Context, actor identity.Actor, id uuid.UUID, req RejectRequest) (*OrderResponse, error) {
	return s.transition(ctx, actor, id, func(o *sales.Order) error {
		return o.Cancel(req.Reason)
	})
}

func (s *OrderService) transition(ctx context.Context, actor identity.Actor, id uuid.UUID, apply func(*sales.Order) error) (*OrderResponse, error) {
	o, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := apply(o); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}
	s.publish(ctx, o)

	s.logger.Info("Order status changed",
		zap.String("order_id", o.ID.String()),
		zap.String("status", o.Status.String()))
	return s.respond(ctx, o)
}

// Delete removes a pending order
func (s *OrderService) Delete(ctx context.Context, actor identity.Actor, id uuid.UUID) error {
	o, err := s.visible(ctx, actor, id)
	if err != nil {
		return err
	}
	if !o.CanBeDeleted() {
		return shared.NewDomainError(shared.CodeInvalidState, "Only pending orders can be deleted")
	}
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Order deleted", zap.String("order_id", id.String()))
	return nil
}

func (s *OrderService) publish(ctx context.Context, o *sales.Order) {
	if err := shared.PublishAndClear(ctx, s.eventPublisher, o); err != nil {
		s.logger.Warn("Failed to publish events", zap.Error(err))
	}
}
