package client

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/client"
	"github.com/salescrm/backend/internal/domain/identity"
	"github.com/salescrm/backend/internal/domain/sales"
	"github.com/salescrm/backend/internal/domain/shared"
	"github.com/salescrm/backend/internal/domain/visit"
	"go.uber.org/zap"
)

// ClientService handles client operations
type ClientService struct {
	clientRepo     client.ClientRepository
	contactRepo    client.ContactRepository
	visitRepo      visit.VisitRepository
	quotationRepo  sales.QuotationRepository
	orderRepo      sales.OrderRepository
	txManager      shared.TxManager
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewClientService creates a new ClientService
func NewClientService(
	clientRepo client.ClientRepository,
	contactRepo client.ContactRepository,
	visitRepo visit.VisitRepository,
	quotationRepo sales.QuotationRepository,
	orderRepo sales.OrderRepository,
	txManager shared.TxManager,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *ClientService {
	return &ClientService{
		clientRepo:     clientRepo,
		contactRepo:    contactRepo,
		visitRepo:      visitRepo,
		quotationRepo:  quotationRepo,
		orderRepo:      orderRepo,
		txManager:      txManager,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Create creates a client together with its principal contact
func (s *ClientService) Create(ctx context.Context, actor identity.Actor, req CreateClientRequest) (*ClientResponse, error) {
	input := clientInput(req.RUC, req.BusinessName, req.Sector, req.Notes, req.Phone, req.Website,
		req.Address, req.PotentialValue, req.CloseProbability, req.Tags)

	var created *client.Client
	var contact *client.Contact
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		created, contact, err = s.createWithContact(ctx, actor, input, client.StatusPending, req.Contact.toInput())
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, created)

	s.logger.Info("Client created",
		zap.String("client_id", created.ID.String()),
		zap.String("code", created.Code))
	resp := ToClientResponse(created)
	primary := ToContactResponse(contact)
	resp.PrimaryContact = &primary
	resp.Contacts = []ContactResponse{primary}
	return &resp, nil
}

// createWithContact must run inside a transaction
func (s *ClientService) createWithContact(
	ctx context.Context,
	actor identity.Actor,
	input client.ClientInput,
	status client.Status,
	contactInput client.ContactInput,
) (*client.Client, *client.Contact, error) {
	if err := s.ensureRUCAvailable(ctx, strings.TrimSpace(input.RUC), nil); err != nil {
		return nil, nil, err
	}
	lastCode, err := s.clientRepo.LastCode(ctx)
	if err != nil {
		return nil, nil, err
	}
	c, err := client.NewClient(client.NextCode(lastCode), input)
	if err != nil {
		return nil, nil, err
	}
	c.SetCreatedBy(actor.UserID)
	if status.IsValid() {
		c.Status = status
	}

	contact, err := client.NewContact(c.ID, contactInput)
	if err != nil {
		return nil, nil, err
	}
	contact.SetPrimary(true)

	if err := s.clientRepo.Create(ctx, c); err != nil {
		return nil, nil, err
	}
	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, nil, err
	}
	return c, contact, nil
}

// GetByID returns a client with its contacts, primary first
func (s *ClientService) GetByID(ctx context.Context, id uuid.UUID) (*ClientResponse, error) {
	c, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	contacts, err := s.contactRepo.FindByClient(ctx, id)
	if err != nil {
		return nil, err
	}
	client.SortPrimaryFirst(contacts)

	resp := ToClientResponse(c)
	resp.Contacts = ToContactResponses(contacts)
	if len(contacts) > 0 && contacts[0].IsPrimary {
		primary := resp.Contacts[0]
		resp.PrimaryContact = &primary
	}
	return &resp, nil
}

// List returns clients with pagination, each with its primary contact
func (s *ClientService) List(ctx context.Context, filter ClientListFilter) ([]ClientResponse, int64, error) {
	domainFilter, err := toDomainFilter(filter)
	if err != nil {
		return nil, 0, err
	}
	clients, total, err := s.clientRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out, err := s.withPrimaryContacts(ctx, clients)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *ClientService) withPrimaryContacts(ctx context.Context, clients []*client.Client) ([]ClientResponse, error) {
	ids := make([]uuid.UUID, len(clients))
	for i, c := range clients {
		ids[i] = c.ID
	}
	primaries, err := s.contactRepo.FindPrimaryByClients(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]ClientResponse, len(clients))
	for i, c := range clients {
		out[i] = ToClientResponse(c)
		if p, ok := primaries[c.ID]; ok {
			resp := ToContactResponse(p)
			out[i].PrimaryContact = &resp
		}
	}
	return out, nil
}

func toDomainFilter(filter ClientListFilter) (client.ClientFilter, error) {
	f := client.ClientFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   strings.TrimSpace(filter.Search),
		},
		Sector: filter.Sector,
		Group:  client.Group(filter.Group),
	}
	f.Normalize()
	if filter.Status != "" {
		status := client.Status(filter.Status)
		if !status.IsValid() {
			return f, shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("Invalid client status: %s", filter.Status))
		}
		f.Status = &status
	}
	if filter.Group != "" && !f.Group.IsValid() {
		return f, shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("Invalid client group: %s", filter.Group))
	}
	return f, nil
}

// Update replaces the editable fields of a client and applies a status change
func (s *ClientService) Update(ctx context.Context, id uuid.UUID, req UpdateClientRequest) (*ClientResponse, error) {
	c, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureRUCAvailable(ctx, strings.TrimSpace(req.RUC), &id); err != nil {
		return nil, err
	}

	input := clientInput(req.RUC, req.BusinessName, req.Sector, req.Notes, req.Phone, req.Website,
		req.Address, req.PotentialValue, req.CloseProbability, req.Tags)
	if err := c.Update(input); err != nil {
		return nil, err
	}
	if req.Status != nil {
		if err := c.ChangeStatus(client.Status(*req.Status)); err != nil {
			return nil, err
		}
	}
	if err := s.clientRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	s.publish(ctx, c)

	resp := ToClientResponse(c)
	return &resp, nil
}

// Delete removes a client and its contacts. Clients with quotations or orders are kept.
func (s *ClientService) Delete(ctx context.Context, id uuid.UUID) error {
	var deleted *client.Client
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		c, err := s.clientRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		quotations, err := s.quotationRepo.CountByClient(ctx, id)
		if err != nil {
			return err
		}
		orders, err := s.orderRepo.CountByClient(ctx, id)
		if err != nil {
			return err
		}
		if quotations > 0 || orders > 0 {
			return shared.NewDomainError(shared.CodeInvalidState,
				fmt.Sprintf("Client has %d quotations and %d orders and cannot be deleted", quotations, orders))
		}
		if err := s.clientRepo.Delete(ctx, id); err != nil {
			return err
		}
		deleted = c
		return nil
	})
	if err != nil {
		return err
	}
	deleted.AddDomainEvent(client.NewClientDeletedEvent(deleted))
	s.publish(ctx, deleted)
	s.logger.Info("Client deleted",
		zap.String("client_id", id.String()),
		zap.String("code", deleted.Code))
	return nil
}

// ListOptions returns every client for selectors, ordered by business name
func (s *ClientService) ListOptions(ctx context.Context) ([]ClientOption, error) {
	summaries, err := s.clientRepo.ListOptions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ClientOption, len(summaries))
	for i, sm := range summaries {
		out[i] = ClientOption{ID: sm.ID, Code: sm.Code, BusinessName: sm.BusinessName}
	}
	return out, nil
}

// History returns the visits, quotations and orders of a client, most recent first
func (s *ClientService) History(ctx context.Context, id uuid.UUID) ([]HistoryEntry, error) {
	if _, err := s.clientRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	visits, err := s.visitRepo.FindByClient(ctx, id)
	if err != nil {
		return nil, err
	}
	quotations, err := s.quotationRepo.FindByClient(ctx, id)
	if err != nil {
		return nil, err
	}
	orders, err := s.orderRepo.FindByClient(ctx, id)
	if err != nil {
		return nil, err
	}

	entries := make([]HistoryEntry, 0, len(visits)+len(quotations)+len(orders))
	for _, v := range visits {
		date := v.ScheduledAt
		if v.CompletedAt != nil {
			date = *v.CompletedAt
		}
		entries = append(entries, HistoryEntry{
			Kind:   "visita",
			ID:     v.ID,
			Title:  v.Title,
			Status: v.Status.String(),
			Date:   date,
		})
	}
	for _, q := range quotations {
		total := q.Total
		entries = append(entries, HistoryEntry{
			Kind:   "cotizacion",
			ID:     q.ID,
			Title:  "Cotización " + q.Code,
			Status: q.Status.String(),
			Date:   q.IssuedAt,
			Amount: &total,
		})
	}
	for _, o := range orders {
		total := o.Total
		entries = append(entries, HistoryEntry{
			Kind:   "pedido",
			ID:     o.ID,
			Title:  "Pedido " + o.Code,
			Status: o.Status.String(),
			Date:   o.OrderedAt,
			Amount: &total,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})
	return entries, nil
}

func (s *ClientService) ensureRUCAvailable(ctx context.Context, ruc string, excludeID *uuid.UUID) error {
	exists, err := s.clientRepo.ExistsByRUC(ctx, ruc, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError(shared.CodeConflict, fmt.Sprintf("RUC %s already exists", ruc))
	}
	return nil
}

func (s *ClientService) publish(ctx context.Context, c *client.Client) {
	if err := shared.PublishAndClear(ctx, s.eventPublisher, c); err != nil {
		s.logger.Warn("Failed to publish client events", zap.Error(err))
	}
}
