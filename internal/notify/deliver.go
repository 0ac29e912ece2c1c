package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// MessageWriter stores an in-app message for a user.
type MessageWriter interface {
	CreateNotification(ctx context.Context, senderID *uuid.UUID, receiverID uuid.UUID, title, content string) error
}

// Deliverer renders a job's template and hands it to the channel it names.
type Deliverer struct {
	templates *Templates
	mailer    Mailer
	messages  MessageWriter
}

func NewDeliverer(templates *Templates, mailer Mailer, messages MessageWriter) *Deliverer {
	return &Deliverer{templates: templates, mailer: mailer, messages: messages}
}

func (d *Deliverer) Deliver(ctx context.Context, job Job) error {
	if !d.templates.Has(job.Template) {
		return Permanent(fmt.Errorf("%w %q", ErrUnknownTemplate, job.Template))
	}
	rendered, err := d.templates.Render(job.Template, job.Data)
	if err != nil {
		return err
	}

	switch job.Channel {
	case ChannelEmail:
		return d.mailer.Send(ctx, Email{
			To:      job.To,
			Subject: job.Subject,
			HTML:    rendered.HTML,
			Text:    rendered.Text,
		})
	case ChannelMessage:
		if job.RecipientID == uuid.Nil {
			return Permanent(fmt.Errorf("message job %s has no recipient", job.ID))
		}
		return d.messages.CreateNotification(ctx, job.SenderID, job.RecipientID, job.Subject, strings.TrimSpace(rendered.Text))
	default:
		return Permanent(fmt.Errorf("unknown channel %q", job.Channel))
	}
}
