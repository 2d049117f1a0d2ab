package email

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

const (
	sendGridHost     = "https://api.sendgrid.com"
	sendGridEndpoint = "/v3/mail/send"
)

// SendGridSender delivers mail through the SendGrid v3 API
type SendGridSender struct {
	key    string
	host   string
	from   *sgmail.Email
	logger *zap.Logger
}

// NewSendGridSender creates a SendGrid sender
func NewSendGridSender(key string, from Address, logger *zap.Logger) *SendGridSender {
	return &SendGridSender{
		key:    key,
		host:   sendGridHost,
		from:   sgmail.NewEmail(from.Name, from.Email),
		logger: logger,
	}
}

// Send delivers the message. Responses with status >= 400 are errors.
func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	req := sendgrid.GetRequest(s.key, sendGridEndpoint, s.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(s.prepare(msg))

	res, err := sendgrid.API(req)
	if err != nil {
		return fmt.Errorf("sendgrid request failed: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		s.logger.Error("SendGrid rejected email",
			zap.Int("status", res.StatusCode),
			zap.String("body", res.Body),
			zap.String("subject", msg.Subject),
		)
		return fmt.Errorf("sendgrid returned status %d", res.StatusCode)
	}

	s.logger.Info("Email sent",
		zap.String("subject", msg.Subject),
		zap.Int("recipients", len(msg.To)),
	)
	return nil
}

func (s *SendGridSender) prepare(msg Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	for _, to := range msg.To {
		p.AddTos(sgmail.NewEmail(to.Name, to.Email))
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", msg.Text))
	if msg.HTML != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTML))
	}
	return m
}
