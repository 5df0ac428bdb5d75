package contact

import (
	"fmt"
	"time"

	"github.com/yildizm/DocSum/internal/config"
)

// NewMailer builds the mailer selected by contact.provider
func NewMailer(cfg config.ContactConfig, timeout time.Duration) (Mailer, error) {
	switch cfg.Provider {
	case "", "emailjs":
		return NewEmailJSMailer(
			cfg.EmailJS.Endpoint,
			cfg.EmailJS.ServiceID,
			cfg.EmailJS.TemplateID,
			cfg.EmailJS.PublicKey,
			cfg.EmailJS.AccessToken,
			timeout,
		)
	case "smtp":
		return NewSMTPMailer(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Username,
			cfg.SMTP.Password,
			cfg.SMTP.From,
		)
	default:
		return nil, fmt.Errorf("unknown contact provider: %s", cfg.Provider)
	}
}
