package notification

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order notification states accepted by the manual endpoint
const (
	OrderStateNew        = "nuevo"
	OrderStateProcessing = "procesando"
	OrderStateCompleted  = "completado"
	OrderStateCancelled  = "cancelado"
)

// WelcomeRequest addresses a welcome email
type WelcomeRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"required,max=255"`
}

// OrderNotificationRequest addresses an order status email
type OrderNotificationRequest struct {
	Email     string           `json:"email" binding:"required,email"`
	Name      string           `json:"name" binding:"required,max=255"`
	OrderCode string           `json:"order_code" binding:"required"`
	State     string           `json:"state" binding:"required,oneof=nuevo procesando completado cancelado"`
	Amount    *decimal.Decimal `json:"amount"`
}

// TestEmailRequest addresses a configuration test email
type TestEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// CustomEmailRequest is a free-form email to a client's primary contact
type CustomEmailRequest struct {
	ClientID uuid.UUID `json:"client_id" binding:"required"`
	Subject  string    `json:"subject" binding:"required,max=255"`
	Message  string    `json:"message" binding:"required"`
}

// TemplateRequest renders a client-facing template, optionally sending it
type TemplateRequest struct {
	ClientID    uuid.UUID `json:"client_id" binding:"required"`
	Date        string    `json:"date"`
	Description string    `json:"description" binding:"max=500"`
	Send        bool      `json:"send"`
}

// SendWhatsAppRequest is a manual WhatsApp message to a client's primary contact
type SendWhatsAppRequest struct {
	ClientID uuid.UUID `json:"client_id" binding:"required"`
	Message  string    `json:"message" binding:"required,max=1000"`
}

// DeliveryResult tells who received a message
type DeliveryResult struct {
	Recipient string `json:"recipient"`
	Address   string `json:"address"`
}

// TemplateResponse describes a client-facing template
type TemplateResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// RenderedTemplate is a template rendered for a client
type RenderedTemplate struct {
	TemplateID string          `json:"template_id"`
	Subject    string          `json:"subject"`
	Body       string          `json:"body"`
	Sent       bool            `json:"sent"`
	Delivery   *DeliveryResult `json:"delivery,omitempty"`
}
