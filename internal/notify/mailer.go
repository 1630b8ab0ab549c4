package notify

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
)

// SmtpConfig holds the outbound mail settings.
type SmtpConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

// Mailer sends HTML email over SMTP.
type Mailer struct {
	config SmtpConfig
}

// NewMailer returns a Mailer for the given SMTP settings.
func NewMailer(config SmtpConfig) *Mailer {
	return &Mailer{config: config}
}

// Send delivers one HTML message. Recipients go on Bcc so subscribers never
// see each other's addresses.
func (m *Mailer) Send(recipients []string, subject, htmlBody string) error {
	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Games Tracker <%s>", m.config.Sender)
	mail.To = []string{m.config.Sender}
	mail.Bcc = recipients
	mail.Subject = subject
	mail.HTML = []byte(htmlBody)

	addr := fmt.Sprintf("%s:%d", m.config.Host, m.config.Port)
	auth := smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)

	err := mail.Send(addr, auth)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		return mail.Send(addr, nil)
	}
	return err
}
