package contact

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer sends through an SMTP relay
type SMTPMailer struct {
	dialer dialer
	from   string
}

// NewSMTPMailer creates an SMTP mailer
func NewSMTPMailer(host string, port int, username, password, from string) (*SMTPMailer, error) {
	if host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if from == "" {
		from = username
	}
	if from == "" {
		return nil, fmt.Errorf("smtp from address is required")
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}, nil
}

// Send implements Mailer. gomail has no context support, so ctx is only
// checked before dialing.
func (m *SMTPMailer) Send(ctx context.Context, sub *Submission) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if sub.ToEmail == "" {
		return fmt.Errorf("contact to_email is not configured")
	}

	if err := m.dialer.DialAndSend(buildMessage(m.from, sub)); err != nil {
		return fmt.Errorf("smtp delivery failed: %w", err)
	}
	return nil
}

func buildMessage(from string, sub *Submission) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", sub.ToEmail)
	msg.SetAddressHeader("Reply-To", sub.Email, sub.Name)
	msg.SetHeader("Subject", fmt.Sprintf("Contact form message from %s", sub.Name))

	body := fmt.Sprintf("Name: %s\nEmail: %s\nAccount: %s (%s)\n\n%s\n",
		sub.Name, sub.Email, sub.UserName, sub.UserEmail, sub.Message)
	msg.SetBody("text/plain", body)
	return msg
}
