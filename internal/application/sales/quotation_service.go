package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/catalog"
	"github.com/salescrm/backend/internal/domain/client"
	"github.com/salescrm/backend/internal/domain/identity"
	"github.com/salescrm/backend/internal/domain/sales"
	"github.com/salescrm/backend/internal/domain/shared"
	"github.com/salescrm/backend/internal/infrastructure/printing"
	"go.uber.org/zap"
)

// QuotationPrinter renders a quotation document to PDF
type QuotationPrinter interface {
	Print(ctx context.Context, doc printing.QuotationDocument) ([]byte, error)
}

var errNotOwner = shared.NewDomainError(shared.CodeForbidden, "You can only manage your own sales documents")

// QuotationService handles quotations and their approval into orders
type QuotationService struct {
	quotationRepo  sales.QuotationRepository
	orderRepo      sales.OrderRepository
	clientRepo     client.ClientRepository
	contactRepo    client.ContactRepository
	userRepo       identity.UserRepository
	items          *itemResolver
	printer        QuotationPrinter
	company        string
	txManager      shared.TxManager
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewQuotationService creates a new QuotationService
func NewQuotationService(
	quotationRepo sales.QuotationRepository,
	orderRepo sales.OrderRepository,
	clientRepo client.ClientRepository,
	contactRepo client.ContactRepository,
	userRepo identity.UserRepository,
	productRepo catalog.ProductRepository,
	printer QuotationPrinter,
	company string,
	txManager shared.TxManager,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *QuotationService {
	return &QuotationService{
		quotationRepo:  quotationRepo,
		orderRepo:      orderRepo,
		clientRepo:     clientRepo,
		contactRepo:    contactRepo,
		userRepo:       userRepo,
		items:          &itemResolver{productRepo: productRepo},
		printer:        printer,
		company:        company,
		txManager:      txManager,
		eventPublisher: eventPublisher,
		logger:         logger,
		now:            time.Now,
	}
}

// List returns quotations with pagination. Sellers only see their own.
func (s *QuotationService) List(ctx context.Context, actor identity.Actor, filter SalesListFilter) ([]QuotationResponse, int64, error) {
	f := sales.QuotationFilter{
		Filter:   toSharedFilter(filter),
		ClientID: filter.ClientID,
		SellerID: sellerScope(actor, filter.SellerID),
	}
	if filter.Status != "" {
		status := sales.QuotationStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("Invalid quotation status: %s", filter.Status))
		}
		f.Status = &status
	}
	quotations, total, err := s.quotationRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	names, err := clientNames(ctx, s.clientRepo, quotationClients(quotations))
	if err != nil {
		return nil, 0, err
	}
	out := make([]QuotationResponse, len(quotations))
	for i, q := range quotations {
		out[i] = ToQuotationResponse(q)
		out[i].ClientName = names[q.ClientID]
	}
	return out, total, nil
}

func quotationClients(quotations []*sales.Quotation) []uuid.UUID {
	ids := make([]uuid.UUID, len(quotations))
	for i, q := range quotations {
		ids[i] = q.ClientID
	}
	return ids
}

// GetByID returns a quotation
func (s *QuotationService) GetByID(ctx context.Context, actor identity.Actor, id uuid.UUID) (*QuotationResponse, error) {
	q, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, q)
}

func (s *QuotationService) visible(ctx context.Context, actor identity.Actor, id uuid.UUID) (*sales.Quotation, error) {
	q, err := s.quotationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsManager() && q.SellerID != actor.UserID {
		return nil, errNotOwner
	}
	return q, nil
}

func (s *QuotationService) respond(ctx context.Context, q *sales.Quotation) (*QuotationResponse, error) {
	resp := ToQuotationResponse(q)
	c, err := s.clientRepo.FindByID(ctx, q.ClientID)
	if err != nil && !shared.IsNotFound(err) {
		return nil, err
	}
	if c != nil {
		resp.ClientName = c.BusinessName
	}
	return &resp, nil
}

// Create creates a draft quotation with the next COT-YYYY-NNNN code. A
// Visitado client moves to Por cotizar.
func (s *QuotationService) Create(ctx context.Context, actor identity.Actor, req CreateQuotationRequest) (*QuotationResponse, error) {
	items, err := s.items.resolve(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	var q *sales.Quotation
	var c *client.Client
	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		c, err = s.clientRepo.FindByID(ctx, req.ClientID)
		if err != nil {
			return err
		}
		now := s.now()
		last, err := s.quotationRepo.LastCode(ctx, sales.CodePrefixForYear(sales.QuotationCodePrefix, now.Year()))
		if err != nil {
			return err
		}
		issuedAt := req.IssuedAt
		if issuedAt.IsZero() {
			issuedAt = now
		}
		q, err = sales.NewQuotation(sales.NextCode(sales.QuotationCodePrefix, now.Year(), last),
			req.ClientID, actor.UserID, issuedAt, req.ExpiresAt)
		if err != nil {
			return err
		}
		if err := q.UpdateDraft(q.IssuedAt, q.ExpiresAt, req.Notes, req.VisitID, items); err != nil {
			return err
		}
		if err := s.quotationRepo.Create(ctx, q); err != nil {
			return err
		}
		if c.AdvanceTo(client.StatusToQuote) {
			return s.clientRepo.Update(ctx, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, q, c)

	s.logger.Info("Quotation created",
		zap.String("quotation_id", q.ID.String()),
		zap.String("code", q.Code))
	resp := ToQuotationResponse(q)
	resp.ClientName = c.BusinessName
	return &resp, nil
}

// Update replaces dates, notes and items of a draft quotation
func (s *QuotationService) Update(ctx context.Context, actor identity.Actor, id uuid.UUID, req UpdateQuotationRequest) (*QuotationResponse, error) {
	q, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	items, err := s.items.resolve(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	if err := q.UpdateDraft(req.IssuedAt, req.ExpiresAt, req.Notes, req.VisitID, items); err != nil {
		return nil, err
	}
	if err := s.quotationRepo.Update(ctx, q); err != nil {
		return nil, err
	}
	return s.respond(ctx, q)
}

// Delete removes a draft quotation
func (s *QuotationService) Delete(ctx context.Context, actor identity.Actor, id uuid.UUID) error {
	q, err := s.visible(ctx, actor, id)
	if err != nil {
		return err
	}
	if !q.CanBeDeleted() {
		return shared.NewDomainError(shared.CodeInvalidState, "Only draft quotations can be deleted")
	}
	if err := s.quotationRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Quotation deleted", zap.String("quotation_id", id.String()))
	return nil
}

// Send issues a draft quotation and moves the client to Cotizado when allowed
func (s *QuotationService) Send(ctx context.Context, actor identity.Actor, id uuid.UUID) (*QuotationResponse, error) {
	return s.decide(ctx, actor, id, client.StatusQuoted, func(q *sales.Quotation, now time.Time) error {
		return q.Send(now)
	})
}

// Reject discards a draft or records the client's refusal of a sent quotation
func (s *QuotationService) Reject(ctx context.Context, actor identity.Actor, id uuid.UUID, req RejectRequest) (*QuotationResponse, error) {
	return s.decide(ctx, actor, id, "", func(q *sales.Quotation, now time.Time) error {
		return q.Reject(now, req.Reason)
	})
}

func (s *QuotationService) decide(ctx context.Context, actor identity.Actor, id uuid.UUID, clientStatus client.Status, apply func(*sales.Quotation, time.Time) error) (*QuotationResponse, error) {
	var q *sales.Quotation
	var c *client.Client
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		q, err = s.visible(ctx, actor, id)
		if err != nil {
			return err
		}
		if err := apply(q, s.now()); err != nil {
			return err
		}
		if err := s.quotationRepo.Update(ctx, q); err != nil {
			return err
		}
		if clientStatus == "" {
			return nil
		}
		c, err = s.advanceClient(ctx, q.ClientID, clientStatus)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, q)
	if c != nil {
		s.publish(ctx, c)
	}

	s.logger.Info("Quotation status changed",
		zap.String("quotation_id", q.ID.String()),
		zap.String("status", q.Status.String()))
	return s.respond(ctx, q)
}

// advanceClient moves the client forward when its status allows it. The
// client is returned only when it changed.
func (s *QuotationService) advanceClient(ctx context.Context, clientID uuid.UUID, target client.Status) (*client.Client, error) {
	c, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !c.AdvanceTo(target) {
		return nil, nil
	}
	if err := s.clientRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Approve records the client's acceptance, creates the resulting order and
// moves the client to Aprobado
func (s *QuotationService) Approve(ctx context.Context, actor identity.Actor, id uuid.UUID, req ApproveQuotationRequest) (*ApprovalResult, error) {
	var q *sales.Quotation
	var o *sales.Order
	var c *client.Client
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		q, err = s.visible(ctx, actor, id)
		if err != nil {
			return err
		}
		now := s.now()
		if err := q.Approve(now); err != nil {
			return err
		}
		if err := s.quotationRepo.Update(ctx, q); err != nil {
			return err
		}

		owner, err := s.clientRepo.FindByID(ctx, q.ClientID)
		if err != nil {
			return err
		}
		address := strings.TrimSpace(req.ShippingAddress)
		if address == "" {
			address = owner.Address
		}
		last, err := s.orderRepo.LastCode(ctx, sales.CodePrefixForYear(sales.OrderCodePrefix, now.Year()))
		if err != nil {
			return err
		}
		o, err = sales.NewOrderFromQuotation(sales.NextCode(sales.OrderCodePrefix, now.Year(), last), q, address, now)
		if err != nil {
			return err
		}
		if err := s.orderRepo.Create(ctx, o); err != nil {
			return err
		}
		if owner.AdvanceTo(client.StatusApproved) {
			if err := s.clientRepo.Update(ctx, owner); err != nil {
				return err
			}
			c = owner
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, q, o)
	if c != nil {
		s.publish(ctx, c)
	}

	s.logger.Info("Quotation approved",
		zap.String("quotation_id", q.ID.String()),
		zap.String("order_code", o.Code))
	return &ApprovalResult{
		Quotation: ToQuotationResponse(q),
		Order:     ToOrderResponse(o),
	}, nil
}

// ExpireOverdue marks every sent quotation whose validity has passed as
// vencida and returns how many were expired
func (s *QuotationService) ExpireOverdue(ctx context.Context) (int, error) {
	now := s.now()
	overdue, err := s.quotationRepo.FindSentExpiringBefore(ctx, now)
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, q := range overdue {
		if err := q.Expire(now); err != nil {
			s.logger.Warn("Failed to expire quotation", zap.String("code", q.Code), zap.Error(err))
			continue
		}
		if err := s.quotationRepo.Update(ctx, q); err != nil {
			return expired, err
		}
		s.publish(ctx, q)
		expired++
	}
	if expired > 0 {
		s.logger.Info("Quotations expired", zap.Int("count", expired))
	}
	return expired, nil
}

// RenderPDF prints the quotation with client, primary contact and seller
func (s *QuotationService) RenderPDF(ctx context.Context, actor identity.Actor, id uuid.UUID) ([]byte, string, error) {
	q, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, "", err
	}
	c, err := s.clientRepo.FindByID(ctx, q.ClientID)
	if err != nil {
		return nil, "", err
	}
	doc := printing.QuotationDocument{
		Company:       s.company,
		Code:          q.Code,
		Status:        q.Status.String(),
		IssuedAt:      q.IssuedAt,
		ExpiresAt:     q.ExpiresAt,
		ClientName:    c.BusinessName,
		ClientRUC:     c.RUC,
		ClientAddress: c.Address,
		Total:         q.Total,
		Notes:         q.Notes,
		Items:         make([]printing.QuotationLine, len(q.Items)),
	}
	for i, it := range q.Items {
		doc.Items[i] = printing.QuotationLine{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal,
		}
	}
	primaries, err := s.contactRepo.FindPrimaryByClients(ctx, []uuid.UUID{c.ID})
	if err != nil {
		return nil, "", err
	}
	if p, ok := primaries[c.ID]; ok {
		doc.ContactName = p.FullName()
		doc.ContactEmail = p.PreferredEmail()
	}
	seller, err := s.userRepo.FindByID(ctx, q.SellerID)
	if err != nil && !shared.IsNotFound(err) {
		return nil, "", err
	}
	if seller != nil {
		doc.SellerName = seller.Name
	}

	pdf, err := s.printer.Print(ctx, doc)
	if err != nil {
		s.logger.Error("Failed to render quotation", zap.String("code", q.Code), zap.Error(err))
		return nil, "", err
	}
	return pdf, q.Code + ".pdf", nil
}

func (s *QuotationService) publish(ctx context.Context, aggs ...shared.AggregateRoot) {
	for _, agg := range aggs {
		if err := shared.PublishAndClear(ctx, s.eventPublisher, agg); err != nil {
			s.logger.Warn("Failed to publish events", zap.Error(err))
		}
	}
}
