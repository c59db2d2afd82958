package mail

import (
	"context"
	"fmt"
	"net/smtp"

	"rucja-api/config"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Message is a transactional-email envelope. Cc and Bcc are optional.
type Message struct {
	To          []string
	Cc          []string
	Bcc         []string
	FromName    string
	FromAddress string
	Subject     string
	HTML        string
}

// Sender dispatches a message to the delivery provider. Handlers depend on
// this interface so tests can fake delivery. Fire and forget: no retries,
// no delivery tracking.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender submits messages over SMTP.
type SMTPSender struct {
	cfg    config.MailConfig
	logger *logrus.Logger
}

func NewSMTPSender(cfg config.MailConfig, logger *logrus.Logger) *SMTPSender {
	return &SMTPSender{cfg: cfg, logger: logger}
}

func (s *SMTPSender) Send(_ context.Context, msg Message) error {
	e := email.NewEmail()
	e.From = formatFrom(msg.FromName, msg.FromAddress)
	e.To = msg.To
	e.Cc = msg.Cc
	e.Bcc = msg.Bcc
	e.Subject = msg.Subject
	e.HTML = []byte(msg.HTML)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	}

	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %v: %v", msg.To, err)
		return fmt.Errorf("send email: %w", err)
	}

	s.logger.Infof("Email sent to %v: %s", msg.To, msg.Subject)
	return nil
}

func formatFrom(name, address string) string {
	if name == "" {
		return address
	}
	return fmt.Sprintf("%s <%s>", name, address)
}

// Recipients normalizes an optional address field: empty strings become no
// recipients at all rather than an invalid empty address.
func Recipients(addresses ...string) []string {
	var results []string
	for _, addr := range addresses {
		if addr != "" {
			results = append(results, addr)
		}
	}
	return results
}
