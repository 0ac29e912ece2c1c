package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/dimitrije/gather-api/internal/config"
	"github.com/mailgun/mailgun-go/v4"
	log "github.com/sirupsen/logrus"
)

type MailgunMailer struct {
	client *mailgun.MailgunImpl
	from   string
}

func NewMailgunMailer(cfg config.MailgunConfig, fromAddress, fromName string) *MailgunMailer {
	client := mailgun.NewMailgun(cfg.Domain, cfg.APIKey)
	if cfg.EU {
		client.SetAPIBase(mailgun.APIBaseEU)
	}
	return &MailgunMailer{client: client, from: formatFrom(fromName, fromAddress)}
}

func (m *MailgunMailer) Send(ctx context.Context, email Email) error {
	if len(email.To) == 0 {
		return Permanent(fmt.Errorf("email has no recipients"))
	}

	message := m.client.NewMessage(m.from, email.Subject, email.Text, email.To...)
	if email.HTML != "" {
		message.SetHtml(email.HTML)
	}

	sendCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, id, err := m.client.Send(sendCtx, message)
	if err != nil {
		return fmt.Errorf("failed to send email via mailgun: %w", err)
	}
	log.WithField("message_id", id).Debug("Email sent via mailgun")
	return nil
}
