// Package email delivers outbound mail over SMTP.
package email

import (
	"context"
	"fmt"
	"time"

	"leadtrack_backend/platform/config"

	gomail "github.com/wneessen/go-mail"
)

// Sender is the outbound mail surface. Callers treat delivery as best-effort
// and never fail their own operation on a send error.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// sendTimeout bounds one delivery so a slow SMTP server cannot stall a
// caller indefinitely.
const sendTimeout = 15 * time.Second

// SMTPSender delivers via a direct SMTP connection using go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NoopSender discards all mail. Used when email is disabled.
type NoopSender struct{}

func (NoopSender) Send(context.Context, string, string, string) error { return nil }

// NewSender builds a sender from configuration; disabled email yields a noop.
func NewSender(cfg config.EmailConfig) Sender {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}
	}
	return &SMTPSender{
		host:      cfg.GetSMTPHost(),
		port:      cfg.GetSMTPPort(),
		username:  cfg.GetSMTPUsername(),
		password:  cfg.GetSMTPPassword(),
		fromName:  cfg.GetEmailFromName(),
		fromEmail: cfg.GetEmailFromAddress(),
	}
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(sendTimeout),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if err := client.DialAndSendWithContext(sendCtx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
