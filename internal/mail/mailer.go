package mail

import (
	"fmt"
	"log"

	"gopkg.in/gomail.v2"
)

// Mailer sends outbound notification emails. Dispatch is best effort: the
// auth flows fire it on a separate goroutine and never fail a request over a
// delivery problem.
type Mailer interface {
	SendPasswordReset(to, resetLink string) error
}

// SMTPMailer delivers mail through a configured SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer creates a mailer for the given relay.
func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// SendPasswordReset emails a reset link to the recipient.
func (m *SMTPMailer) SendPasswordReset(to, resetLink string) error {
	body := fmt.Sprintf(`<html>
<body>
	<h2>Password Reset Request</h2>
	<p>You have requested to reset your password for the HR Portal.</p>
	<p>Click the link below to reset your password:</p>
	<p><a href="%s">Reset Password</a></p>
	<p>If you did not request this password reset, please ignore this email.</p>
	<p>This link will expire in 30 minutes.</p>
</body>
</html>`, resetLink)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "HR Portal - Password Reset")
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

// LogMailer logs instead of sending, for environments without an SMTP relay.
type LogMailer struct{}

// SendPasswordReset logs the reset link.
func (LogMailer) SendPasswordReset(to, resetLink string) error {
	log.Printf("password reset for %s: %s", to, resetLink)
	return nil
}
