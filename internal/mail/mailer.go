package mail

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/danabekov/techstore/internal/config"
)

// Sender delivers the password-reset mail. The SMTP implementation is swapped
// for a recording fake in tests.
type Sender interface {
	SendPasswordReset(to, name, resetURL string) error
}

type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(cfg *config.Config) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:   cfg.MailFrom,
	}
}

func (s *SMTPSender) SendPasswordReset(to, name, resetURL string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Password Reset Request")
	m.SetBody("text/plain", fmt.Sprintf(
		"Hello %s,\n\nTo reset your password, open the following link (valid for 1 hour):\n%s\n\nIf you did not request this, please ignore this email.\n",
		name, resetURL,
	))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("mail: send password reset: %w", err)
	}
	return nil
}
