package notifier

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Mailer delivers a single HTML message. Implementations must not panic
// into the caller; domain handlers treat delivery as best effort.
type Mailer interface {
	Send(to []string, subject, htmlBody string) error
	Configured() bool
}

type SMTPMailer struct {
	host string
	port int
	user string
	pass string
	from string
}

func NewSMTPMailer(host string, port int, user, pass, from string) *SMTPMailer {
	return &SMTPMailer{host: host, port: port, user: user, pass: pass, from: from}
}

func (m *SMTPMailer) Configured() bool {
	return m.host != "" && m.user != "" && m.pass != ""
}

func (m *SMTPMailer) Send(to []string, subject, htmlBody string) error {
	if !m.Configured() {
		return fmt.Errorf("mail credentials are not configured")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	dialer := gomail.NewDialer(m.host, m.port, m.user, m.pass)
	return dialer.DialAndSend(msg)
}
