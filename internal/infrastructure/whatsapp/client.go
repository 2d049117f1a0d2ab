// Package whatsapp posts messages to a WhatsApp chat gateway webhook.
package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/salescrm/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// DefaultCountryCode is prepended to local numbers when the config does not set one (Peru)
const DefaultCountryCode = "51"

// ErrInvalidPhone is returned for numbers that cannot be normalized
var ErrInvalidPhone = errors.New("invalid phone number")

// Messenger sends a text message to a phone number
type Messenger interface {
	Send(ctx context.Context, phone, message string) error
}

// SendRequest is the gateway payload
type SendRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// SendResponse is the gateway reply
type SendResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Client calls the gateway with a bearer token and retries server errors
type Client struct {
	http        *resty.Client
	url         string
	countryCode string
	logger      *zap.Logger
}

// NewClient creates a gateway client
func NewClient(cfg config.WhatsAppConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	country := strings.TrimPrefix(cfg.DefaultCountry, "+")
	if country == "" {
		country = DefaultCountryCode
	}

	httpClient := resty.New().
		SetTimeout(timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		}).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.Token != "" {
		httpClient.SetAuthToken(cfg.Token)
	}

	return &Client{
		http:        httpClient,
		url:         cfg.GatewayURL,
		countryCode: country,
		logger:      logger,
	}
}

// Send normalizes the phone and posts the message
func (c *Client) Send(ctx context.Context, phone, message string) error {
	to, err := NormalizePhone(phone, c.countryCode)
	if err != nil {
		return err
	}
	if strings.TrimSpace(message) == "" {
		return errors.New("message cannot be empty")
	}

	var result SendResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(SendRequest{To: to, Message: message}).
		SetResult(&result).
		SetError(&result).
		Post(c.url)
	if err != nil {
		c.logger.Error("WhatsApp gateway call failed", zap.String("to", to), zap.Error(err))
		return fmt.Errorf("whatsapp gateway request failed: %w", err)
	}
	if resp.IsError() {
		c.logger.Error("WhatsApp gateway returned error",
			zap.String("to", to),
			zap.Int("status_code", resp.StatusCode()),
			zap.String("error", result.Error),
		)
		return fmt.Errorf("whatsapp gateway returned status %d", resp.StatusCode())
	}

	c.logger.Info("WhatsApp message sent",
		zap.String("to", to),
		zap.String("message_id", result.ID),
		zap.String("status", result.Status),
	)
	return nil
}

// NoopMessenger is used when the gateway is disabled
type NoopMessenger struct {
	logger *zap.Logger
}

// Send only logs
func (n NoopMessenger) Send(_ context.Context, phone, _ string) error {
	n.logger.Debug("WhatsApp disabled, message skipped", zap.String("to", phone))
	return nil
}

// New returns the gateway client when enabled and a no-op messenger otherwise
func New(cfg config.WhatsAppConfig, logger *zap.Logger) Messenger {
	if !cfg.Enabled || cfg.GatewayURL == "" {
		return NoopMessenger{logger: logger}
	}
	return NewClient(cfg, logger)
}

// NormalizePhone reduces a phone number to digits with the country calling code.
// Numbers given in international form (+ or 00 prefix, or longer than a local
// number) keep their own code; local numbers lose trunk zeros and get countryCode.
func NormalizePhone(raw, countryCode string) (string, error) {
	raw = strings.TrimSpace(raw)
	international := strings.HasPrefix(raw, "+") || strings.HasPrefix(raw, "00")

	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if international {
		digits = strings.TrimPrefix(digits, "00")
	}
	if len(digits) < 7 {
		return "", fmt.Errorf("%w: %q", ErrInvalidPhone, raw)
	}

	if !international && len(digits) <= 9 {
		digits = countryCode + strings.TrimLeft(digits, "0")
	}
	if len(digits) > 15 {
		return "", fmt.Errorf("%w: %q", ErrInvalidPhone, raw)
	}
	return digits, nil
}
