package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/salescrm/backend/internal/domain/client"
	"github.com/salescrm/backend/internal/domain/identity"
	"github.com/salescrm/backend/internal/domain/sales"
	"github.com/salescrm/backend/internal/domain/shared"
	"github.com/salescrm/backend/internal/domain/visit"
	"github.com/salescrm/backend/internal/infrastructure/email"
	"github.com/salescrm/backend/internal/infrastructure/whatsapp"
	"go.uber.org/zap"
)

// OrderState maps an order transition to its notification state
func OrderState(e *sales.OrderStatusChangedEvent) string {
	if e.IsNew() {
		return OrderStateNew
	}
	switch e.NewStatus {
	case sales.OrderStatusProcessing:
		return OrderStateProcessing
	case sales.OrderStatusCompleted:
		return OrderStateCompleted
	case sales.OrderStatusCancelled:
		return OrderStateCancelled
	default:
		return ""
	}
}

var orderChatMessages = map[string]string{
	OrderStateNew:        "Hola %s, registramos tu pedido #%s por S/ %s. ¡Gracias por tu compra!",
	OrderStateProcessing: "Hola %s, tu pedido #%s por S/ %s está en proceso.",
	OrderStateCompleted:  "Hola %s, tu pedido #%s por S/ %s ha sido completado.",
	OrderStateCancelled:  "Hola %s, tu pedido #%s por S/ %s ha sido cancelado. Contáctanos si tienes dudas.",
}

// WelcomeHandler emails new users
type WelcomeHandler struct {
	emails *EmailService
}

// NewWelcomeHandler creates a new WelcomeHandler
func NewWelcomeHandler(emails *EmailService) *WelcomeHandler {
	return &WelcomeHandler{emails: emails}
}

// EventTypes returns the event types this handler is interested in
func (h *WelcomeHandler) EventTypes() []string {
	return []string{identity.EventTypeUserCreated}
}

// Handle sends the welcome email
func (h *WelcomeHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	created, ok := event.(*identity.UserCreatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			identity.EventTypeUserCreated, event.EventType())
	}
	return h.emails.SendWelcome(ctx, WelcomeRequest{Email: created.Email, Name: created.Name})
}

// PlanningSubmittedHandler tells every active manager a weekly plan awaits review
type PlanningSubmittedHandler struct {
	emails   *EmailService
	userRepo identity.UserRepository
	logger   *zap.Logger
}

// NewPlanningSubmittedHandler creates a new PlanningSubmittedHandler
func NewPlanningSubmittedHandler(emails *EmailService, userRepo identity.UserRepository, logger *zap.Logger) *PlanningSubmittedHandler {
	return &PlanningSubmittedHandler{emails: emails, userRepo: userRepo, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *PlanningSubmittedHandler) EventTypes() []string {
	return []string{visit.EventTypeVisitPlanningSubmitted}
}

// Handle emails the managers. One failed recipient does not stop the rest.
func (h *PlanningSubmittedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	submitted, ok := event.(*visit.PlanningSubmittedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			visit.EventTypeVisitPlanningSubmitted, event.EventType())
	}
	managers, err := h.userRepo.FindActiveByRole(ctx, identity.RoleManager)
	if err != nil {
		return fmt.Errorf("find managers: %w", err)
	}
	if len(managers) == 0 {
		h.logger.Warn("No active manager to notify of submitted planning",
			zap.String("seller_id", submitted.SellerID.String()))
		return nil
	}

	var errs []error
	for _, m := range managers {
		err := h.emails.sendTemplate(ctx, email.TemplatePlanningSubmitted,
			email.Address{Name: m.Name, Email: m.Email},
			email.PlanningData{
				AppName:    h.emails.appName,
				Manager:    m.Name,
				Seller:     submitted.SellerName,
				Week:       submitted.Week,
				Year:       submitted.Year,
				VisitCount: submitted.VisitCount,
			})
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OrderNotificationHandler emails and messages the client's primary contact when an
// order is created or changes status. Wrap it in an idempotent handler so
// redelivered events do not notify twice.
type OrderNotificationHandler struct {
	emails      *EmailService
	messenger   whatsapp.Messenger
	contactRepo client.ContactRepository
	logger      *zap.Logger
}

// NewOrderNotificationHandler creates a new OrderNotificationHandler
func NewOrderNotificationHandler(
	emails *EmailService,
	messenger whatsapp.Messenger,
	contactRepo client.ContactRepository,
	logger *zap.Logger,
) *OrderNotificationHandler {
	return &OrderNotificationHandler{
		emails:      emails,
		messenger:   messenger,
		contactRepo: contactRepo,
		logger:      logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderNotificationHandler) EventTypes() []string {
	return []string{sales.EventTypeOrderStatusChanged}
}

// Handle notifies the contact by every channel it has
func (h *OrderNotificationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	changed, ok := event.(*sales.OrderStatusChangedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			sales.EventTypeOrderStatusChanged, event.EventType())
	}
	state := OrderState(changed)
	if state == "" {
		return nil
	}

	contact, err := primaryContact(ctx, h.contactRepo, changed.ClientID)
	if err != nil {
		return fmt.Errorf("find primary contact: %w", err)
	}
	if contact == nil {
		h.logger.Info("Order notification skipped, client has no primary contact",
			zap.String("order", changed.Code),
			zap.String("client_id", changed.ClientID.String()))
		return nil
	}

	var errs []error
	if addr := contact.PreferredEmail(); addr != "" {
		amount := changed.Total
		err := h.emails.SendOrderNotification(ctx, OrderNotificationRequest{
			Email:     addr,
			Name:      contact.FullName(),
			OrderCode: changed.Code,
			State:     state,
			Amount:    &amount,
		})
		if err != nil {
			errs = append(errs, err)
		}
	}
	if phone := contact.PreferredPhone(); phone != "" {
		msg := fmt.Sprintf(orderChatMessages[state], contact.FirstName, changed.Code, changed.Total.StringFixed(2))
		if err := h.messenger.Send(ctx, phone, msg); err != nil {
			errs = append(errs, fmt.Errorf("whatsapp: %w", err))
		}
	}
	return errors.Join(errs...)
}

var (
	_ shared.EventHandler = (*WelcomeHandler)(nil)
	_ shared.EventHandler = (*PlanningSubmittedHandler)(nil)
	_ shared.EventHandler = (*OrderNotificationHandler)(nil)
)
