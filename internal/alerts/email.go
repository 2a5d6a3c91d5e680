package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

// Email sends alerts over SMTP with mandatory STARTTLS.
type Email struct {
	cfg     EmailConfig
	timeout time.Duration
}

// NewEmail creates an SMTP email channel.
func NewEmail(cfg EmailConfig, timeout time.Duration) *Email {
	return &Email{cfg: cfg, timeout: timeout}
}

func (e *Email) Name() string {
	return "email"
}

func (e *Email) Send(ctx context.Context, a Alert) error {
	msg, err := e.message(a)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(e.cfg.Host,
		mail.WithPort(e.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(e.cfg.Address),
		mail.WithPassword(e.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTimeout(e.timeout),
	)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

func (e *Email) message(a Alert) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(e.cfg.Address); err != nil {
		return nil, fmt.Errorf("email sender: %w", err)
	}
	if err := msg.To(e.cfg.Receiver); err != nil {
		return nil, fmt.Errorf("email receiver: %w", err)
	}
	msg.Subject(a.Subject())
	msg.SetDate()
	msg.SetBodyString(mail.TypeTextPlain, a.Message())
	return msg, nil
}
