package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/dimitrije/gather-api/internal/config"
)

type SMTPMailer struct {
	cfg  config.SMTPConfig
	from string
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(cfg config.SMTPConfig, from string) *SMTPMailer {
	if from == "" {
		from = cfg.From
	}
	return &SMTPMailer{cfg: cfg, from: from, send: smtp.SendMail}
}

func (m *SMTPMailer) IsConfigured() bool {
	return m.cfg.Host != "" && m.cfg.Username != "" && m.cfg.Password != "" && m.from != ""
}

func (m *SMTPMailer) Send(_ context.Context, email Email) error {
	if len(email.To) == 0 {
		return Permanent(fmt.Errorf("email has no recipients"))
	}

	addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	body, contentType := email.HTML, "text/html"
	if body == "" {
		body, contentType = email.Text, "text/plain"
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: %s; charset=\"UTF-8\"\r\n\r\n%s",
		m.from, strings.Join(email.To, ", "), email.Subject, contentType, body)

	return m.send(addr, auth, m.from, email.To, []byte(msg))
}
