package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/foxseedlab/modconsole/internal/webhook"
)

func testPayload() webhook.NoticeWebhookPayload {
	return webhook.NoticeWebhookPayload{
		SchemaVersion: webhook.NoticeWebhookSchemaVersion,
		Level:         "warning",
		ChannelKind:   "open",
		Message:       "You cannot open channel c1: access denied",
		OccurredAt:    "2026-01-02T03:04:05Z",
	}
}

func TestSendNotice_EmptyWebhookURL(t *testing.T) {
	sender := NewHTTPSender("")
	if err := sender.SendNotice(context.Background(), testPayload()); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestSendNotice_Success(t *testing.T) {
	var got webhook.NoticeWebhookPayload

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("unexpected content type: %s", ct)
		}
		if v := r.Header.Get("X-Notice-Schema-Version"); v != "1" {
			t.Fatalf("unexpected schema version header: %s", v)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	sender := NewHTTPSender(server.URL)
	if err := sender.SendNotice(context.Background(), testPayload()); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got != testPayload() {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestSendNotice_Non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("unknown channel kind"))
	}))
	defer server.Close()

	sender := NewHTTPSender(server.URL)
	err := sender.SendNotice(context.Background(), testPayload())
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
	if !strings.Contains(err.Error(), "400: unknown channel kind") {
		t.Fatalf("expected status and body in error, got %v", err)
	}
}
