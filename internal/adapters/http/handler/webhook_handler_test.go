package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yofomoose/okdesk-bot/internal/core/sync"
	"github.com/yofomoose/okdesk-bot/platform/config"
	"github.com/yofomoose/okdesk-bot/platform/logger"
)

func newTestHandler(secret string) *WebhookHandler {
	log := logger.New(logger.TestConfig())
	cfg := &config.Config{WebhookSecret: secret}
	// ProcessDelivery never touches the stores for unclassifiable
	// payloads, which is all these tests send.
	engine := sync.NewEngine(config.StatusConfig{}, nil, nil, nil, nil, log)
	return NewWebhookHandler(cfg, engine, log)
}

func sign(secret, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestWebhookAlwaysAnswers200ForClassifiedPayloads(t *testing.T) {
	handler := newTestHandler("")

	req := httptest.NewRequest("POST", "/okdesk-webhook", strings.NewReader("not even json"))
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 even for garbage", rec.Code)
	}

	var outcome sync.Outcome
	if err := json.NewDecoder(rec.Body).Decode(&outcome); err != nil {
		t.Fatalf("response is not a structured outcome: %v", err)
	}
	if outcome.Result != sync.ResultUnclassified {
		t.Fatalf("result = %q, want unclassified", outcome.Result)
	}
}

func TestWebhookSignatureVerification(t *testing.T) {
	handler := newTestHandler("topsecret")
	body := `{"event": "status_changed"}`

	t.Run("valid signature", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/okdesk-webhook", strings.NewReader(body))
		req.Header.Set("X-Okdesk-Signature", sign("topsecret", body))
		rec := httptest.NewRecorder()
		handler.Handle(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("wrong signature", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/okdesk-webhook", strings.NewReader(body))
		req.Header.Set("X-Okdesk-Signature", sign("wrong", body))
		rec := httptest.NewRecorder()
		handler.Handle(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("missing signature", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/okdesk-webhook", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.Handle(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
	})
}

func TestWebhookWithoutSecretSkipsVerification(t *testing.T) {
	handler := newTestHandler("")

	req := httptest.NewRequest("POST", "/okdesk-webhook", strings.NewReader(`{"event": "x"}`))
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 when no secret configured", rec.Code)
	}
}
