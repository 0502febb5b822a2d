/**
 * @description
 * Client for communicating with the mail-service, which renders and delivers
 * transactional email templates.
 */
package mailclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client provides methods to send transactional emails through the mail service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new mail service client.
func NewClient(baseURL, apiKey string) *Client {
	normalizedURL := strings.TrimSuffix(baseURL, "/")
	return &Client{
		baseURL:    normalizedURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

type emailRequest struct {
	To       string            `json:"to"`
	Template string            `json:"template"`
	Params   map[string]string `json:"params"`
}

// SendWarningEmail notifies an editor that an overdue quotation earned them a warning.
func (c *Client) SendWarningEmail(ctx context.Context, toAddress, quotationTitle string) error {
	return c.send(ctx, emailRequest{
		To:       toAddress,
		Template: "editor_warning",
		Params: map[string]string{
			"quotation_title": quotationTitle,
		},
	})
}

// SendSuspensionEmail notifies an editor that their account has been suspended.
func (c *Client) SendSuspensionEmail(ctx context.Context, toAddress string, suspendedUntil time.Time) error {
	return c.send(ctx, emailRequest{
		To:       toAddress,
		Template: "editor_suspension",
		Params: map[string]string{
			"suspended_until": suspendedUntil.UTC().Format(time.RFC3339),
		},
	})
}

func (c *Client) send(ctx context.Context, email emailRequest) error {
	if c.baseURL == "" {
		return fmt.Errorf("mail service base URL is not configured")
	}
	if strings.TrimSpace(email.To) == "" {
		return fmt.Errorf("recipient address is required")
	}

	url := fmt.Sprintf("%s/internal/emails", c.baseURL)

	body, err := json.Marshal(email)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Internal-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request to mail service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("mail service returned error status %d", resp.StatusCode)
	}

	return nil
}
