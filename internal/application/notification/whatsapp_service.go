package notification

import (
	"context"
	"errors"

	"github.com/salescrm/backend/internal/domain/client"
	"github.com/salescrm/backend/internal/domain/shared"
	"github.com/salescrm/backend/internal/infrastructure/whatsapp"
	"go.uber.org/zap"
)

// WhatsAppService sends chat messages to client contacts
type WhatsAppService struct {
	messenger   whatsapp.Messenger
	clientRepo  client.ClientRepository
	contactRepo client.ContactRepository
	logger      *zap.Logger
}

// NewWhatsAppService creates a new WhatsAppService
func NewWhatsAppService(
	messenger whatsapp.Messenger,
	clientRepo client.ClientRepository,
	contactRepo client.ContactRepository,
	logger *zap.Logger,
) *WhatsAppService {
	return &WhatsAppService{
		messenger:   messenger,
		clientRepo:  clientRepo,
		contactRepo: contactRepo,
		logger:      logger,
	}
}

// SendToClient messages the primary contact of a client
func (s *WhatsAppService) SendToClient(ctx context.Context, req SendWhatsAppRequest) (*DeliveryResult, error) {
	c, err := s.clientRepo.FindByID(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	contact, err := primaryContact(ctx, s.contactRepo, c.ID)
	if err != nil {
		return nil, err
	}
	if contact == nil || contact.PreferredPhone() == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "client has no contact phone")
	}
	if err := s.messenger.Send(ctx, contact.PreferredPhone(), req.Message); err != nil {
		if errors.Is(err, whatsapp.ErrInvalidPhone) {
			return nil, shared.WrapDomainError(shared.CodeValidation, "contact phone is not a valid number", err)
		}
		return nil, err
	}
	return &DeliveryResult{Recipient: contact.FullName(), Address: contact.PreferredPhone()}, nil
}
