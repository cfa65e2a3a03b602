package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/3FinityAI/fogandleaf-sub000/internal/domain"
)

func sampleOrder() domain.Order {
	return domain.Order{
		Number: "FOG2025010007",
		Lines: []domain.OrderLine{{
			Name: "Darjeeling First Flush",
			Qty:  2,
		}},
		TotalMinor: 174800,
	}
}

func TestClient_SkippedWithoutCredentials(t *testing.T) {
	client := NewClient("", "")

	status, err := client.SendOrderMessage(context.Background(), "+919800000001", sampleOrder())
	if err != nil {
		t.Fatalf("unconfigured client must not error: %v", err)
	}
	if status != domain.WhatsAppStatusSkipped {
		t.Fatalf("expected skipped, got %s", status)
	}
}

func TestClient_SendsMessage(t *testing.T) {
	var got sendRequest
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(sendResponse{Status: "queued"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-token")
	status, err := client.SendOrderMessage(context.Background(), "+919800000001", sampleOrder())
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if status != domain.WhatsAppStatusSent {
		t.Fatalf("expected sent, got %s", status)
	}

	if auth != "Bearer secret-token" {
		t.Fatalf("expected bearer auth, got %q", auth)
	}
	if got.To != "+919800000001" {
		t.Fatalf("expected recipient phone, got %q", got.To)
	}
	if !strings.Contains(got.Message, "FOG2025010007") || !strings.Contains(got.Message, "x2") {
		t.Fatalf("message must summarize the order, got %q", got.Message)
	}
	if !strings.Contains(got.Message, "₹1748.00") {
		t.Fatalf("message must carry the total, got %q", got.Message)
	}
}

func TestClient_ProviderErrorIsFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-token")
	status, err := client.SendOrderMessage(context.Background(), "+919800000001", sampleOrder())
	if err == nil {
		t.Fatal("expected error for non-2xx provider response")
	}
	if status != domain.WhatsAppStatusFailed {
		t.Fatalf("expected failed, got %s", status)
	}
}
