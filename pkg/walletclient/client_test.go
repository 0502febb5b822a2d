package walletclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestRefundExpiredQuotation_SendsIdempotentRequest(t *testing.T) {
	userID := uuid.New()
	quotationID := uuid.New()

	var gotPath, gotIdempotencyKey, gotAPIKey string
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotIdempotencyKey = r.Header.Get("Idempotency-Key")
		gotAPIKey = r.Header.Get("X-Internal-API-Key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode refund body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, "internal-key")
	if err := client.RefundExpiredQuotation(context.Background(), userID, quotationID, 100); err != nil {
		t.Fatalf("refund returned error: %v", err)
	}

	if gotPath != "/internal/wallets/refunds" {
		t.Fatalf("unexpected refund path %q", gotPath)
	}
	if gotIdempotencyKey != quotationID.String() {
		t.Fatalf("expected idempotency key %q, got %q", quotationID, gotIdempotencyKey)
	}
	if gotAPIKey != "internal-key" {
		t.Fatalf("expected internal API key header, got %q", gotAPIKey)
	}
	if gotBody["user_id"] != userID.String() || gotBody["amount"] != float64(100) {
		t.Fatalf("unexpected refund payload: %v", gotBody)
	}
}

func TestRefundExpiredQuotation_FailsOnErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "insufficient ledger balance", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	err := client.RefundExpiredQuotation(context.Background(), uuid.New(), uuid.New(), 100)
	if err == nil {
		t.Fatal("expected error from 500 response")
	}
}

func TestRefundExpiredQuotation_FailsWithoutBaseURL(t *testing.T) {
	client := NewClient("", "")
	err := client.RefundExpiredQuotation(context.Background(), uuid.New(), uuid.New(), 100)
	if err == nil {
		t.Fatal("expected error when base URL is not configured")
	}
}
