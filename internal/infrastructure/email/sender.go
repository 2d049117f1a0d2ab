// Package email sends transactional email through SendGrid or, in development, the log.
package email

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/salescrm/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Provider names
const (
	ProviderSendGrid = "sendgrid"
	ProviderLog      = "log"
)

// ErrNoRecipients is returned for messages without a To address
var ErrNoRecipients = errors.New("email has no recipients")

// Address is a named mailbox
type Address struct {
	Name  string
	Email string
}

// String renders the address in RFC 5322 form
func (a Address) String() string {
	return (&mail.Address{Name: a.Name, Address: a.Email}).String()
}

// Message is an outgoing email. HTML is optional.
type Message struct {
	To      []Address
	Subject string
	Text    string
	HTML    string
}

// Validate checks the message can be delivered
func (m Message) Validate() error {
	if len(m.To) == 0 {
		return ErrNoRecipients
	}
	for _, to := range m.To {
		if _, err := mail.ParseAddress(to.Email); err != nil {
			return errors.New("invalid recipient address: " + to.Email)
		}
	}
	if strings.TrimSpace(m.Subject) == "" {
		return errors.New("email subject is required")
	}
	return nil
}

// Sender delivers email messages
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Status describes the active email configuration
type Status struct {
	Provider   string `json:"provider"`
	FromEmail  string `json:"from_email"`
	FromName   string `json:"from_name"`
	Configured bool   `json:"configured"`
}

// StatusOf reports the email configuration without exposing the API key
func StatusOf(cfg config.EmailConfig) Status {
	provider := cfg.Provider
	if !cfg.Configured() {
		provider = ProviderLog
	}
	return Status{
		Provider:   provider,
		FromEmail:  cfg.FromEmail,
		FromName:   cfg.FromName,
		Configured: cfg.Configured(),
	}
}

// NewSender returns the SendGrid sender when configured and the log sender otherwise
func NewSender(cfg config.EmailConfig, logger *zap.Logger) Sender {
	from := Address{Name: cfg.FromName, Email: cfg.FromEmail}
	if cfg.Configured() {
		logger.Info("Email provider: sendgrid", zap.String("from", from.Email))
		return NewSendGridSender(cfg.APIKey, from, logger)
	}
	logger.Info("Email provider: log (messages are not delivered)")
	return NewLogSender(from, logger)
}
