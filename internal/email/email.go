// Package email delivers the daily digest over SMTP.
package email

import (
	"context"
	"dailydigest/internal/config"
	"dailydigest/internal/core"
	"dailydigest/internal/render"
	"fmt"
	"log/slog"
	"time"

	"github.com/wneessen/go-mail"
)

const dialTimeout = 30 * time.Second

// Sender submits messages to a mail relay. *mail.Client satisfies it.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Mailer renders a digest as HTML email and hands it to a Sender.
type Mailer struct {
	sender Sender
	from   string
	to     []string
	log    *slog.Logger
}

// NewSMTPSender builds an authenticated go-mail client. SSL selects implicit
// TLS; otherwise STARTTLS is mandatory.
func NewSMTPSender(cfg config.SMTPConfig) (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTimeout(dialTimeout),
	}
	if cfg.SSL {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}
	opts = append(opts, mail.WithPort(cfg.Port))

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}
	return client, nil
}

// New creates a Mailer. A nil logger falls back to slog.Default().
func New(sender Sender, from string, to []string, log *slog.Logger) *Mailer {
	if log == nil {
		log = slog.Default()
	}
	return &Mailer{sender: sender, from: from, to: to, log: log}
}

// NewFromConfig creates a Mailer backed by the configured SMTP relay.
func NewFromConfig(cfg config.Email, log *slog.Logger) (*Mailer, error) {
	client, err := NewSMTPSender(cfg.SMTP)
	if err != nil {
		return nil, err
	}
	return New(client, cfg.From, []string{cfg.To}, log), nil
}

// Send emails the digest. webURL, when set, is linked as the browser version.
func (m *Mailer) Send(ctx context.Context, d core.Digest, webURL string) error {
	msg, err := m.message(d, webURL)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := m.sender.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send digest email: %w", err)
	}

	m.log.Info("Digest email sent",
		"to", m.to,
		"subject", render.SubjectFor(d),
		"duration", time.Since(start).Round(time.Millisecond))
	return nil
}

func (m *Mailer) message(d core.Digest, webURL string) (*mail.Msg, error) {
	body, err := render.EmailHTML(render.NewEmailData(d, webURL))
	if err != nil {
		return nil, err
	}

	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, fmt.Errorf("invalid sender address %q: %w", m.from, err)
	}
	if err := msg.To(m.to...); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(render.SubjectFor(d))
	msg.SetDate()
	msg.SetBodyString(mail.TypeTextHTML, body)
	return msg, nil
}
