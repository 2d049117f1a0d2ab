package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/client"
	"github.com/salescrm/backend/internal/domain/shared"
	"github.com/salescrm/backend/internal/infrastructure/email"
	"go.uber.org/zap"
)

const dateLayout = "02/01/2006"

// orderTemplates maps each order notification state to its template
var orderTemplates = map[string]string{
	OrderStateNew:        email.TemplateOrderNew,
	OrderStateProcessing: email.TemplateOrderProcessing,
	OrderStateCompleted:  email.TemplateOrderCompleted,
	OrderStateCancelled:  email.TemplateOrderCancelled,
}

// EmailService composes and sends the transactional emails of the CRM
type EmailService struct {
	sender      email.Sender
	status      email.Status
	appName     string
	clientRepo  client.ClientRepository
	contactRepo client.ContactRepository
	logger      *zap.Logger
	now         func() time.Time
}

// NewEmailService creates a new EmailService
func NewEmailService(
	sender email.Sender,
	status email.Status,
	appName string,
	clientRepo client.ClientRepository,
	contactRepo client.ContactRepository,
	logger *zap.Logger,
) *EmailService {
	return &EmailService{
		sender:      sender,
		status:      status,
		appName:     appName,
		clientRepo:  clientRepo,
		contactRepo: contactRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// ConfigStatus reports the active provider and sender address
func (s *EmailService) ConfigStatus() email.Status {
	return s.status
}

// SendWelcome greets a new user
func (s *EmailService) SendWelcome(ctx context.Context, req WelcomeRequest) error {
	return s.sendTemplate(ctx, email.TemplateWelcome, email.Address{Name: req.Name, Email: req.Email}, email.WelcomeData{
		AppName: s.appName,
		Name:    req.Name,
		Date:    s.now().Format(dateLayout),
	})
}

// SendTest sends the configuration test email
func (s *EmailService) SendTest(ctx context.Context, req TestEmailRequest) error {
	return s.sendTemplate(ctx, email.TemplateTest, email.Address{Email: req.Email}, email.TestData{
		AppName: s.appName,
		Date:    s.now().Format("02/01/2006 15:04:05"),
	})
}

// SendOrderNotification sends the email matching the order state
func (s *EmailService) SendOrderNotification(ctx context.Context, req OrderNotificationRequest) error {
	id, ok := orderTemplates[req.State]
	if !ok {
		return shared.NewDomainError(shared.CodeValidation, "Invalid order state: "+req.State)
	}
	data := email.OrderData{
		AppName:   s.appName,
		Name:      req.Name,
		OrderCode: req.OrderCode,
		Date:      s.now().Format("02/01/2006 15:04"),
	}
	if req.Amount != nil {
		data.Total = "S/ " + req.Amount.StringFixed(2)
	}
	return s.sendTemplate(ctx, id, email.Address{Name: req.Name, Email: req.Email}, data)
}

// SendCustom writes to the primary contact of a client
func (s *EmailService) SendCustom(ctx context.Context, req CustomEmailRequest) (*DeliveryResult, error) {
	c, contact, err := s.recipient(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	to := email.Address{Name: contact.FullName(), Email: contact.PreferredEmail()}
	err = s.sendTemplate(ctx, email.TemplateCustom, to, email.CustomData{
		AppName: s.appName,
		Subject: req.Subject,
		Contact: contact.FullName(),
		Client:  c.BusinessName,
		Message: req.Message,
		Date:    s.now().Format(dateLayout),
	})
	if err != nil {
		return nil, err
	}
	return &DeliveryResult{Recipient: to.Name, Address: to.Email}, nil
}

// Templates lists the templates available for client emails
func (s *EmailService) Templates() []TemplateResponse {
	templates := email.ClientTemplates()
	out := make([]TemplateResponse, len(templates))
	for i, t := range templates {
		out[i] = TemplateResponse{ID: t.ID, Name: t.Name, Subject: t.Subject, Body: t.Body}
	}
	return out
}

// RenderTemplate fills a client-facing template for the client's primary contact
// and sends it when requested
func (s *EmailService) RenderTemplate(ctx context.Context, templateID string, req TemplateRequest) (*RenderedTemplate, error) {
	t, ok := email.Lookup(templateID)
	if !ok || !t.ClientFacing {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Email template not found")
	}
	c, contact, err := s.recipient(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	date := req.Date
	if date == "" {
		date = s.now().Format(dateLayout)
	}
	subject, body, err := t.Render(email.ClientData{
		AppName:     s.appName,
		Client:      c.BusinessName,
		Contact:     contact.FullName(),
		Date:        date,
		Description: req.Description,
	})
	if err != nil {
		return nil, err
	}

	out := &RenderedTemplate{TemplateID: t.ID, Subject: subject, Body: body}
	if !req.Send {
		return out, nil
	}
	to := email.Address{Name: contact.FullName(), Email: contact.PreferredEmail()}
	if err := s.deliver(ctx, t.ID, email.Message{To: []email.Address{to}, Subject: subject, Text: body}); err != nil {
		return nil, err
	}
	out.Sent = true
	out.Delivery = &DeliveryResult{Recipient: to.Name, Address: to.Email}
	return out, nil
}

// recipient loads a client and its primary contact, which must have an email
func (s *EmailService) recipient(ctx context.Context, clientID uuid.UUID) (*client.Client, *client.Contact, error) {
	c, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		return nil, nil, err
	}
	contact, err := primaryContact(ctx, s.contactRepo, c.ID)
	if err != nil {
		return nil, nil, err
	}
	if contact == nil || contact.PreferredEmail() == "" {
		return nil, nil, shared.NewDomainError(shared.CodeValidation, "client has no contact email")
	}
	return c, contact, nil
}

func (s *EmailService) sendTemplate(ctx context.Context, templateID string, to email.Address, data any) error {
	t, ok := email.Lookup(templateID)
	if !ok {
		return fmt.Errorf("email template %q not registered", templateID)
	}
	subject, body, err := t.Render(data)
	if err != nil {
		return err
	}
	return s.deliver(ctx, templateID, email.Message{To: []email.Address{to}, Subject: subject, Text: body})
}

func (s *EmailService) deliver(ctx context.Context, templateID string, msg email.Message) error {
	if err := msg.Validate(); err != nil {
		return shared.WrapDomainError(shared.CodeValidation, err.Error(), err)
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.logger.Error("Failed to send email",
			zap.String("template", templateID),
			zap.String("to", msg.To[0].Email),
			zap.Error(err))
		return fmt.Errorf("send %s email: %w", templateID, err)
	}
	s.logger.Info("Email sent",
		zap.String("template", templateID),
		zap.String("to", msg.To[0].Email))
	return nil
}

func primaryContact(ctx context.Context, repo client.ContactRepository, clientID uuid.UUID) (*client.Contact, error) {
	contacts, err := repo.FindPrimaryByClients(ctx, []uuid.UUID{clientID})
	if err != nil {
		return nil, err
	}
	return contacts[clientID], nil
}
