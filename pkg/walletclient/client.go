/**
 * @description
 * Client for communicating with the wallet-service.
 */
package walletclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client is a client for the wallet service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new wallet service client.
func NewClient(baseURL, apiKey string) *Client {
	normalizedURL := strings.TrimSuffix(baseURL, "/")
	return &Client{
		baseURL:    normalizedURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type refundPayload struct {
	UserID      uuid.UUID `json:"user_id"`
	QuotationID uuid.UUID `json:"quotation_id"`
	Amount      int64     `json:"amount"`
}

// RefundExpiredQuotation credits the client's wallet balance with the advance
// held against an expired quotation. The quotation id doubles as the
// idempotency key so the wallet service can dedupe a replayed refund.
func (c *Client) RefundExpiredQuotation(ctx context.Context, userID, quotationID uuid.UUID, amount int64) error {
	if c.baseURL == "" {
		return fmt.Errorf("wallet service base URL is not configured")
	}

	url := fmt.Sprintf("%s/internal/wallets/refunds", c.baseURL)

	payload := refundPayload{
		UserID:      userID,
		QuotationID: quotationID,
		Amount:      amount,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal refund payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", quotationID.String())
	if c.apiKey != "" {
		req.Header.Set("X-Internal-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request to wallet service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("wallet service returned error status %d", resp.StatusCode)
	}

	return nil
}
