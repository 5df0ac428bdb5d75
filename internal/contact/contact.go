// Package contact validates contact form submissions and delivers them by mail.
package contact

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/yildizm/DocSum/internal/auth"
	"github.com/yildizm/DocSum/internal/logger"
)

// MaxMessageLength bounds the message body in characters
const MaxMessageLength = 5000

// Form is what the visitor types into the contact form
type Form struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Normalize returns the form with surrounding whitespace removed
func (f Form) Normalize() Form {
	return Form{
		Name:    strings.TrimSpace(f.Name),
		Email:   strings.TrimSpace(f.Email),
		Message: strings.TrimSpace(f.Message),
	}
}

// ValidationError reports the first invalid field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the normalized form
func (f Form) Validate() error {
	f = f.Normalize()

	switch {
	case f.Name == "":
		return &ValidationError{Field: "name", Message: "Name is required"}
	case f.Email == "":
		return &ValidationError{Field: "email", Message: "Email is required"}
	case f.Message == "":
		return &ValidationError{Field: "message", Message: "Message is required"}
	}

	if addr, err := mail.ParseAddress(f.Email); err != nil || addr.Address != f.Email {
		return &ValidationError{Field: "email", Message: "Please enter a valid email address"}
	}

	if utf8.RuneCountInString(f.Message) > MaxMessageLength {
		return &ValidationError{
			Field:   "message",
			Message: fmt.Sprintf("Message must be at most %d characters", MaxMessageLength),
		}
	}

	return nil
}

// Status is the delivery state of a submission
type Status string

const (
	StatusIdle    Status = "idle"
	StatusSending Status = "sending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// Message returns the text shown for the status
func (s Status) Message() string {
	switch s {
	case StatusSending:
		return "Sending message..."
	case StatusSent:
		return "Message sent successfully! We'll get back to you soon."
	case StatusFailed:
		return "Failed to send message. Please try again or contact us directly."
	default:
		return ""
	}
}

// Submission is a validated form plus the sender's account details
type Submission struct {
	Form
	ToEmail   string
	UserEmail string
	UserName  string
}

// Mailer delivers submissions
type Mailer interface {
	Send(ctx context.Context, sub *Submission) error
}

// Service gates submissions on a signed-in user and delivers them
type Service struct {
	mailer  Mailer
	auth    auth.Context
	toEmail string
	log     *logger.Logger
}

// NewService creates a contact service
func NewService(mailer Mailer, authCtx auth.Context, toEmail string, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		mailer:  mailer,
		auth:    authCtx,
		toEmail: toEmail,
		log:     log.WithComponent("contact"),
	}
}

// Submit sends the form on behalf of the current user
func (s *Service) Submit(ctx context.Context, form Form) (Status, error) {
	user, err := auth.Require(s.auth)
	if err != nil {
		return StatusIdle, err
	}
	return s.SubmitAs(ctx, user, form)
}

// SubmitAs sends the form on behalf of user. Validation failures return
// StatusIdle since nothing was sent.
func (s *Service) SubmitAs(ctx context.Context, user *auth.User, form Form) (Status, error) {
	if user == nil {
		return StatusIdle, auth.ErrNotSignedIn
	}
	if err := form.Validate(); err != nil {
		return StatusIdle, err
	}

	sub := &Submission{
		Form:      form.Normalize(),
		ToEmail:   s.toEmail,
		UserEmail: user.Email,
		UserName:  user.Name(),
	}

	s.log.Info("Sending contact message", logger.F("user", user.UID))

	if err := s.mailer.Send(ctx, sub); err != nil {
		s.log.Error("Failed to send contact message", logger.Error(err))
		return StatusFailed, fmt.Errorf("%s: %w", StatusFailed.Message(), err)
	}

	s.log.Info("Contact message sent", logger.F("user", user.UID))
	return StatusSent, nil
}

// AsValidationError returns the form validation failure wrapped in err, if any
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
