// Package mail sends transactional email through SendGrid. Without an API
// key it falls back to logging, so local development needs no credentials.
package mail

import (
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/tirudev/bookstack/internal/config"
)

// Sender delivers a single email.
type Sender interface {
	Send(toEmail, toName, subject, plainText, htmlContent string) error
}

// NewSender picks the SendGrid sender when an API key is configured, a
// log-only sender otherwise.
func NewSender(cfg config.Mail) Sender {
	if cfg.SendgridAPIKey == "" {
		return &LogSender{}
	}
	return &SendGridSender{
		apiKey:    cfg.SendgridAPIKey,
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
	}
}

// SendGridSender delivers email through the SendGrid API.
type SendGridSender struct {
	apiKey    string
	fromEmail string
	fromName  string
}

// Send sends a single email.
func (s *SendGridSender) Send(toEmail, toName, subject, plainText, htmlContent string) error {
	from := sgmail.NewEmail(s.fromName, s.fromEmail)
	recipient := sgmail.NewEmail(toName, toEmail)

	message := sgmail.NewSingleEmail(from, subject, recipient, plainText, htmlContent)

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}

	return nil
}

// LogSender logs email instead of sending it. Used when no SendGrid API key
// is configured.
type LogSender struct{}

// Send logs the email.
func (s *LogSender) Send(toEmail, _ string, subject, plainText, _ string) error {
	log.Printf("Email (not sent, no API key) to=%s subject=%q body=%q", toEmail, subject, plainText)
	return nil
}
