package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// EmailJSMailer sends through the EmailJS REST API
type EmailJSMailer struct {
	Endpoint    string
	ServiceID   string
	TemplateID  string
	PublicKey   string
	AccessToken string

	client *http.Client
}

// NewEmailJSMailer creates an EmailJS mailer
func NewEmailJSMailer(endpoint, serviceID, templateID, publicKey, accessToken string, timeout time.Duration) (*EmailJSMailer, error) {
	if serviceID == "" || templateID == "" || publicKey == "" {
		return nil, fmt.Errorf("emailjs service_id, template_id and public_key are required")
	}
	return &EmailJSMailer{
		Endpoint:    endpoint,
		ServiceID:   serviceID,
		TemplateID:  templateID,
		PublicKey:   publicKey,
		AccessToken: accessToken,
		client:      &http.Client{Timeout: timeout},
	}, nil
}

type emailJSRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	AccessToken    string            `json:"accessToken,omitempty"`
	TemplateParams map[string]string `json:"template_params"`
}

// Send implements Mailer
func (m *EmailJSMailer) Send(ctx context.Context, sub *Submission) error {
	payload := emailJSRequest{
		ServiceID:   m.ServiceID,
		TemplateID:  m.TemplateID,
		UserID:      m.PublicKey,
		AccessToken: m.AccessToken,
		TemplateParams: map[string]string{
			"from_name":  sub.Name,
			"from_email": sub.Email,
			"message":    sub.Message,
			"to_email":   sub.ToEmail,
			"user_email": sub.UserEmail,
			"user_name":  sub.UserName,
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal emailjs request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.Endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create emailjs request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("emailjs request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("emailjs returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return nil
}
