// Package email delivers alert messages over SMTP.
package email

import (
	"context"
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"MuralNotifier/internal/config"
	"MuralNotifier/internal/ports"
)

// Sender sends multipart text/HTML messages through an SMTP relay.
type Sender struct {
	dialer *gomail.Dialer
	from   string
}

var _ ports.EmailGateway = (*Sender)(nil)

// NewSender validates the SMTP settings and builds a dialer.
func NewSender(cfg config.EmailConfig) (*Sender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("from address is required")
	}

	port := cfg.Port
	if port == 0 {
		port = 587
	}

	return &Sender{
		dialer: gomail.NewDialer(cfg.Host, port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}, nil
}

// SendEmail dials the relay and sends one message. The text body is
// the primary part; the HTML body rides along as an alternative.
func (s *Sender) SendEmail(ctx context.Context, address, subject, textBody, htmlBody string) error {
	if s.dialer == nil {
		return fmt.Errorf("email sender misconfigured")
	}
	if address == "" {
		return fmt.Errorf("recipient address is empty")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", address)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", textBody)
	if htmlBody != "" {
		msg.AddAlternative("text/html", htmlBody)
	}

	// gomail has no context support; honor cancellation around the
	// blocking dial-and-send.
	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send email to %s: %w", address, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send email to %s: %w", address, ctx.Err())
	}
}
