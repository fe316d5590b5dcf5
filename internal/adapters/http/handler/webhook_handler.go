package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/yofomoose/okdesk-bot/internal/core/sync"
	"github.com/yofomoose/okdesk-bot/platform/config"
	"github.com/yofomoose/okdesk-bot/platform/logger"
)

// maxWebhookBody caps inbound payload size; the helpdesk sends small
// JSON documents.
const maxWebhookBody = 1 << 20

// WebhookHandler receives helpdesk webhook deliveries. The contract
// with the sender is always-200 for anything readable: a non-2xx makes
// the sender retry, and retrying a payload we already classified as
// unusable only produces more copies of it.
type WebhookHandler struct {
	cfg    *config.Config
	engine *sync.Engine
	logger *logger.Logger
}

func NewWebhookHandler(cfg *config.Config, engine *sync.Engine, logger *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		cfg:    cfg,
		engine: engine,
		logger: logger.WithModule("webhook"),
	}
}

func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		h.logger.WarnWithFields("Failed to read webhook body", map[string]interface{}{
			"error": err.Error(),
		})
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable body"})
		return
	}

	if h.cfg.HasWebhookSecret() && !h.verifySignature(body, r.Header.Get("X-Okdesk-Signature")) {
		h.logger.WarnWithFields("Webhook signature verification failed", map[string]interface{}{
			"ip": r.RemoteAddr,
		})
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "invalid signature"})
		return
	}

	outcome := h.engine.ProcessDelivery(r.Context(), body)
	writeJSON(w, http.StatusOK, outcome)
}

func (h *WebhookHandler) verifySignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(h.cfg.WebhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
