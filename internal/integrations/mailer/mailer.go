package mailer

import (
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Mailer sends transactional email.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// SMTPMailer delivers through an SMTP relay via gomail.
type SMTPMailer struct {
	host string
	port int
	user string
	pass string
}

func NewSMTP(host string, port int, user, pass string) *SMTPMailer {
	return &SMTPMailer{host: host, port: port, user: user, pass: pass}
}

func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.user)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(m.host, m.port, m.user, m.pass)
	return d.DialAndSend(msg)
}

// MockMailer logs instead of sending; used when SMTP is not configured.
type MockMailer struct{}

func (MockMailer) Send(to, subject, _ string) error {
	logrus.Infof("mock mailer: to=%s subject=%q", to, subject)
	return nil
}

// FromConfig picks SMTP when a host is configured, the mock otherwise.
func FromConfig(host string, port int, user, pass string) Mailer {
	if host == "" {
		logrus.Warn("SMTP_HOST not set, email runs in mock mode")
		return MockMailer{}
	}
	return NewSMTP(host, port, user, pass)
}
