package email

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// LogSender writes messages to the log instead of delivering them
type LogSender struct {
	from   Address
	logger *zap.Logger

	mu   sync.Mutex
	sent []Message
}

// NewLogSender creates a LogSender
func NewLogSender(from Address, logger *zap.Logger) *LogSender {
	return &LogSender{from: from, logger: logger}
}

// Send logs the message
func (s *LogSender) Send(_ context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	to := make([]string, len(msg.To))
	for i, a := range msg.To {
		to[i] = a.String()
	}
	s.logger.Info("Email (not delivered)",
		zap.String("from", s.from.String()),
		zap.Strings("to", to),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Text),
	)

	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()
	return nil
}

// Sent returns a copy of the logged messages
func (s *LogSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.sent...)
}
