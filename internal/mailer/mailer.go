// Package mailer is the seam to the external notification service. The core
// only hands over recipient/subject/body and records the outcome; delivery
// mechanics are out of scope.
package mailer

import (
	"context"
	"log"
)

// Message is a single outbound email.
type Message struct {
	Recipient string
	Subject   string
	Body      string
}

// Sender delivers messages. Implementations report failure so callers can
// skip the status transition and the email log entry.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes outbound mail to the application log instead of
// delivering it. Used in development and as the default wiring until a real
// notification service is configured.
type LogSender struct{}

func NewLogSender() *LogSender {
	return &LogSender{}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	log.Printf("mail to=%s subject=%q (%d bytes body)", msg.Recipient, msg.Subject, len(msg.Body))
	return nil
}
