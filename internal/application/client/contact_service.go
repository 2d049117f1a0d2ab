package client

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/client"
	"github.com/salescrm/backend/internal/domain/shared"
	"github.com/salescrm/backend/internal/infrastructure/export"
	"go.uber.org/zap"
)

// CreateContactRequest represents a request to add a contact to a client
type CreateContactRequest struct {
	ClientID uuid.UUID `json:"client_id" binding:"required"`
	ContactRequest
	IsPrimary bool `json:"is_primary"`
}

// UpdateContactRequest represents a request to update a contact
type UpdateContactRequest struct {
	ContactRequest
	IsPrimary *bool `json:"is_primary"`
}

// ContactListFilter contains the query parameters of the contact list
type ContactListFilter struct {
	ClientID    *uuid.UUID `form:"client_id"`
	Search      string     `form:"search"`
	PrimaryOnly bool       `form:"primary_only"`
	Page        int        `form:"page" binding:"omitempty,min=1"`
	PageSize    int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy     string     `form:"order_by"`
	OrderDir    string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ContactService handles contact operations and keeps exactly one primary
// contact per client
type ContactService struct {
	contactRepo    client.ContactRepository
	clientRepo     client.ClientRepository
	txManager      shared.TxManager
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewContactService creates a new ContactService
func NewContactService(
	contactRepo client.ContactRepository,
	clientRepo client.ClientRepository,
	txManager shared.TxManager,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *ContactService {
	return &ContactService{
		contactRepo:    contactRepo,
		clientRepo:     clientRepo,
		txManager:      txManager,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// List returns contacts with pagination
func (s *ContactService) List(ctx context.Context, filter ContactListFilter) ([]ContactResponse, int64, error) {
	contacts, total, err := s.contactRepo.FindAll(ctx, toContactFilter(filter))
	if err != nil {
		return nil, 0, err
	}
	out, err := s.withClientNames(ctx, contacts)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func toContactFilter(filter ContactListFilter) client.ContactFilter {
	f := client.ContactFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   strings.TrimSpace(filter.Search),
		},
		ClientID:    filter.ClientID,
		PrimaryOnly: filter.PrimaryOnly,
	}
	f.Normalize()
	return f
}

func (s *ContactService) withClientNames(ctx context.Context, contacts []*client.Contact) ([]ContactResponse, error) {
	clients, err := s.clientsOf(ctx, contacts)
	if err != nil {
		return nil, err
	}
	out := ToContactResponses(contacts)
	for i, c := range contacts {
		if cl, ok := clients[c.ClientID]; ok {
			out[i].ClientName = cl.BusinessName
		}
	}
	return out, nil
}

func (s *ContactService) clientsOf(ctx context.Context, contacts []*client.Contact) (map[uuid.UUID]*client.Client, error) {
	seen := make(map[uuid.UUID]struct{})
	ids := make([]uuid.UUID, 0)
	for _, c := range contacts {
		if _, ok := seen[c.ClientID]; !ok {
			seen[c.ClientID] = struct{}{}
			ids = append(ids, c.ClientID)
		}
	}
	clients, err := s.clientRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*client.Client, len(clients))
	for _, cl := range clients {
		byID[cl.ID] = cl
	}
	return byID, nil
}

// GetByID returns a contact
func (s *ContactService) GetByID(ctx context.Context, id uuid.UUID) (*ContactResponse, error) {
	c, err := s.contactRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out, err := s.withClientNames(ctx, []*client.Contact{c})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// ListByClient returns the contacts of a client, primary first then by name
func (s *ContactService) ListByClient(ctx context.Context, clientID uuid.UUID) ([]ContactResponse, error) {
	if _, err := s.clientRepo.FindByID(ctx, clientID); err != nil {
		return nil, err
	}
	contacts, err := s.contactRepo.FindByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	client.SortPrimaryFirst(contacts)
	return ToContactResponses(contacts), nil
}

// Create adds a contact. The first contact of a client, or one created as
// primary, becomes the only primary contact.
func (s *ContactService) Create(ctx context.Context, req CreateContactRequest) (*ContactResponse, error) {
	var created *client.Contact
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.clientRepo.FindByID(ctx, req.ClientID); err != nil {
			return err
		}
		siblings, err := s.contactRepo.FindByClient(ctx, req.ClientID)
		if err != nil {
			return err
		}
		created, err = client.NewContact(req.ClientID, req.toInput())
		if err != nil {
			return err
		}
		if req.IsPrimary || len(siblings) == 0 {
			if err := s.unmarkOthers(ctx, client.AssignPrimary(siblings, created), created.ID); err != nil {
				return err
			}
		}
		return s.contactRepo.Create(ctx, created)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, created)

	s.logger.Info("Contact created",
		zap.String("contact_id", created.ID.String()),
		zap.String("client_id", created.ClientID.String()),
		zap.Bool("primary", created.IsPrimary))
	resp := ToContactResponse(created)
	return &resp, nil
}

// Update edits a contact. Marking it primary unmarks the other contacts of the
// client; the primary contact cannot be unmarked directly.
func (s *ContactService) Update(ctx context.Context, id uuid.UUID, req UpdateContactRequest) (*ContactResponse, error) {
	var updated *client.Contact
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		c, err := s.contactRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := c.Update(req.toInput()); err != nil {
			return err
		}
		if req.IsPrimary != nil {
			if !*req.IsPrimary && c.IsPrimary {
				return shared.NewDomainError(shared.CodeInvalidState,
					"A client must keep a primary contact; mark another contact as primary instead")
			}
			if *req.IsPrimary {
				siblings, err := s.contactRepo.FindByClient(ctx, c.ClientID)
				if err != nil {
					return err
				}
				if err := s.unmarkOthers(ctx, client.AssignPrimary(siblings, c), c.ID); err != nil {
					return err
				}
			}
		}
		if err := s.contactRepo.Update(ctx, c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, updated)
	resp := ToContactResponse(updated)
	return &resp, nil
}

// MakePrimary marks a contact as the primary contact of its client
func (s *ContactService) MakePrimary(ctx context.Context, id uuid.UUID) (*ContactResponse, error) {
	var target *client.Contact
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		target, err = s.contactRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		siblings, err := s.contactRepo.FindByClient(ctx, target.ClientID)
		if err != nil {
			return err
		}
		wasPrimary := target.IsPrimary
		if err := s.unmarkOthers(ctx, client.AssignPrimary(siblings, target), target.ID); err != nil {
			return err
		}
		if wasPrimary {
			return nil
		}
		return s.contactRepo.Update(ctx, target)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, target)
	s.logger.Info("Primary contact changed",
		zap.String("contact_id", target.ID.String()),
		zap.String("client_id", target.ClientID.String()))
	resp := ToContactResponse(target)
	return &resp, nil
}

// Delete removes a contact. Deleting the primary promotes the first other
// contact by name; the last contact of a client cannot be deleted.
func (s *ContactService) Delete(ctx context.Context, id uuid.UUID) error {
	var removed, promoted *client.Contact
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		c, err := s.contactRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		siblings, err := s.contactRepo.FindByClient(ctx, c.ClientID)
		if err != nil {
			return err
		}
		successor, err := client.SuccessorOnDelete(siblings, c)
		if err != nil {
			return err
		}
		if err := s.contactRepo.Delete(ctx, id); err != nil {
			return err
		}
		if successor != nil {
			successor.SetPrimary(true)
			if err := s.contactRepo.Update(ctx, successor); err != nil {
				return err
			}
			s.logger.Info("Primary contact promoted",
				zap.String("contact_id", successor.ID.String()),
				zap.String("client_id", successor.ClientID.String()))
		}
		removed, promoted = c, successor
		return nil
	})
	if err != nil {
		return err
	}
	removed.AddDomainEvent(client.NewContactEvent(client.EventTypeContactDeleted, removed))
	s.publish(ctx, removed)
	if promoted != nil {
		s.publish(ctx, promoted)
	}
	return nil
}

func (s *ContactService) publish(ctx context.Context, c *client.Contact) {
	if err := shared.PublishAndClear(ctx, s.eventPublisher, c); err != nil {
		s.logger.Warn("Failed to publish events", zap.Error(err))
	}
}

// unmarkOthers persists the contacts AssignPrimary unmarked, leaving out the
// new primary. It must run before the new primary is written: the partial
// unique index on contacts(client_id) WHERE is_primary is checked per statement.
func (s *ContactService) unmarkOthers(ctx context.Context, changed []*client.Contact, primaryID uuid.UUID) error {
	for _, c := range changed {
		if c.ID == primaryID {
			continue
		}
		if err := s.contactRepo.Update(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

var contactExportHeaders = []string{
	"ID", "Nombre Completo", "Puesto", "Email", "Teléfono", "Celular",
	"Cliente", "RUC Cliente", "Es Principal", "Fecha Creación",
}

// ExportCSV writes the contacts matching the filter as CSV
func (s *ContactService) ExportCSV(ctx context.Context, filter ContactListFilter, w io.Writer) error {
	contacts, err := s.contactRepo.FindAllUnpaged(ctx, toContactFilter(filter))
	if err != nil {
		return err
	}
	clients, err := s.clientsOf(ctx, contacts)
	if err != nil {
		return err
	}

	table := export.NewTable("Contactos", contactExportHeaders...)
	for _, c := range contacts {
		var name, ruc string
		if cl, ok := clients[c.ClientID]; ok {
			name, ruc = cl.BusinessName, cl.RUC
		}
		table.Append(c.ID.String(), c.FullName(), c.Title, c.Email, c.Phone, c.Mobile,
			name, ruc, c.IsPrimary, c.CreatedAt)
	}
	return export.WriteCSV(w, table)
}
