// Package mailer sends transactional email through Resend.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultResendEndpoint = "https://api.resend.com/emails"

// Mailer is the adapter interface for outbound email. Implement this to
// swap providers.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// ResendMailer sends email via the Resend REST API.
type ResendMailer struct {
	apiKey    string
	fromEmail string
	endpoint  string
}

func NewResendMailer(apiKey, fromEmail string) *ResendMailer {
	return &ResendMailer{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		endpoint:  defaultResendEndpoint,
	}
}

// NewResendMailerWithEndpoint is used by tests to point at a local server.
func NewResendMailerWithEndpoint(apiKey, fromEmail, endpoint string) *ResendMailer {
	m := NewResendMailer(apiKey, fromEmail)
	m.endpoint = endpoint
	return m
}

func (m *ResendMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	payload := resendEmailPayload{
		From:    m.fromEmail,
		To:      []string{to},
		Subject: subject,
		HTML:    htmlBody,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal Resend payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create Resend request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("Resend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("Resend returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// Resend Emails API payload.
type resendEmailPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}
