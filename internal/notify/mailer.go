package notify

import (
	"context"
	"fmt"

	"github.com/dimitrije/gather-api/internal/config"
	log "github.com/sirupsen/logrus"
)

type Email struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}

type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// NewMailer builds the mailer selected by MAIL_PROVIDER.
func NewMailer(cfg *config.Config) (Mailer, error) {
	switch cfg.Mail.Provider {
	case "smtp":
		m := NewSMTPMailer(cfg.SMTP, cfg.Mail.From)
		if !m.IsConfigured() {
			log.Warn("SMTP is not fully configured, emails will not be sent")
			return &NoopMailer{}, nil
		}
		return m, nil
	case "ses":
		return NewSESMailer(cfg.SES, cfg.Mail.From, cfg.Mail.FromName), nil
	case "mailgun":
		if cfg.Mailgun.Domain == "" || cfg.Mailgun.APIKey == "" {
			return nil, fmt.Errorf("MAILGUN_DOMAIN and MAILGUN_API_KEY are required")
		}
		return NewMailgunMailer(cfg.Mailgun, cfg.Mail.From, cfg.Mail.FromName), nil
	case "noop", "":
		return &NoopMailer{}, nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Mail.Provider)
	}
}

func formatFrom(name, address string) string {
	if name == "" {
		return address
	}
	return fmt.Sprintf("%s <%s>", name, address)
}

type NoopMailer struct{}

func (n *NoopMailer) Send(_ context.Context, email Email) error {
	log.WithFields(log.Fields{"to": email.To, "subject": email.Subject}).Info("Email would be sent (noop)")
	return nil
}
