// Package notify delivers staff notifications for new orders, help requests
// and contact messages.
package notify

import (
	"context"
	"strings"

	"gopkg.in/gomail.v2"

	applog "aaf11/internal/log"
)

type Message struct {
	To      []string
	Subject string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, m Message) error
}

type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	if from == "" {
		from = username
	}
	return &SMTPSender{dialer: gomail.NewDialer(host, port, username, password), from: from}
}

// Send dials per message; volume is a handful of mails a day.
func (s *SMTPSender) Send(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", m.To...)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/html", m.HTML)
	return s.dialer.DialAndSend(msg)
}

// LogSender writes the envelope to the application log instead of mailing.
// Used when SMTP is not configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, m Message) error {
	applog.Info(nil, "notify.log_only", map[string]any{
		"to":      strings.Join(m.To, ","),
		"subject": m.Subject,
		"bytes":   len(m.HTML),
	})
	return nil
}
