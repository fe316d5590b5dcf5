// Package telegram implements the outbound chat channel over the
// Telegram Bot API. Only sendMessage and editMessageText are used;
// inbound updates arrive elsewhere.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/yofomoose/okdesk-bot/internal/ports"
	"github.com/yofomoose/okdesk-bot/pkg/errors"
	"github.com/yofomoose/okdesk-bot/platform/logger"
)

type Client struct {
	httpClient *http.Client
	logger     *logger.Logger
	baseURL    string
	token      string
}

func NewClient(baseURL, token string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: log.WithModule("telegram"),
	}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
	ErrorCode   int             `json:"error_code"`
}

type sentMessage struct {
	MessageID int64 `json:"message_id"`
}

func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, keyboard ports.Keyboard) (int64, error) {
	payload := map[string]interface{}{
		"chat_id": chatID,
		"text":    text,
	}
	if keyboard != nil {
		payload["reply_markup"] = map[string]interface{}{
			"inline_keyboard": keyboard,
		}
	}

	var message sentMessage
	if err := c.call(ctx, "sendMessage", payload, &message); err != nil {
		return 0, err
	}

	return message.MessageID, nil
}

func (c *Client) EditMessage(ctx context.Context, chatID int64, messageID int64, text string, keyboard ports.Keyboard) error {
	payload := map[string]interface{}{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
	}
	if keyboard != nil {
		payload["reply_markup"] = map[string]interface{}{
			"inline_keyboard": keyboard,
		}
	}

	return c.call(ctx, "editMessageText", payload, nil)
}

// call performs one Bot API method call. API-level failures ("ok":
// false) and transport failures both come back as ErrBotSendFailed so
// callers can treat the channel as a single failure domain.
func (c *Client) call(ctx context.Context, method string, payload interface{}, result interface{}) error {
	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", errors.ErrBotSendFailed, method, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %s: read response: %v", errors.ErrBotSendFailed, method, err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return fmt.Errorf("%w: %s: decode response: %v", errors.ErrBotSendFailed, method, err)
	}

	if !apiResp.OK {
		c.logger.WarnWithFields("Bot API call failed", map[string]interface{}{
			"method":      method,
			"error_code":  apiResp.ErrorCode,
			"description": apiResp.Description,
		})
		return fmt.Errorf("%w: %s: %s (code %d)", errors.ErrBotSendFailed, method, apiResp.Description, apiResp.ErrorCode)
	}

	if result != nil {
		if err := json.Unmarshal(apiResp.Result, result); err != nil {
			return fmt.Errorf("%w: %s: decode result: %v", errors.ErrBotSendFailed, method, err)
		}
	}

	return nil
}
