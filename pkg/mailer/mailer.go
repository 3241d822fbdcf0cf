package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/sirupsen/logrus"
)

// Mailer sends transactional email. All sends are best-effort: callers log
// the returned error and carry on, a failed email never fails a workflow.
type Mailer interface {
	Send(to []string, subject, body string) error
}

// Config holds SMTP gateway configuration
type Config struct {
	Mode        string // "dev" logs messages instead of sending
	Host        string
	Port        string
	Username    string
	Password    string
	FromAddress string
}

// SMTPMailer implements Mailer over a plain SMTP gateway
type SMTPMailer struct {
	cfg    Config
	logger *logrus.Logger
}

// NewSMTPMailer creates a new SMTP mailer
func NewSMTPMailer(cfg Config, logger *logrus.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, logger: logger}
}

// Send delivers one message. In dev mode the message is logged and never
// leaves the process.
func (m *SMTPMailer) Send(to []string, subject, body string) error {
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}

	if m.cfg.Mode != "production" {
		m.logger.WithFields(logrus.Fields{
			"to":      strings.Join(to, ","),
			"subject": subject,
		}).Info("Email suppressed in dev mode")
		return nil
	}

	msg := strings.Builder{}
	msg.WriteString("From: " + m.cfg.FromAddress + "\r\n")
	msg.WriteString("To: " + strings.Join(to, ", ") + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := m.cfg.Host + ":" + m.cfg.Port
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	if err := smtp.SendMail(addr, auth, m.cfg.FromAddress, to, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
