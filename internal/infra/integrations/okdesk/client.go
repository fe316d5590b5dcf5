// Package okdesk implements the remote helpdesk directory and ticket
// clients. The API authenticates with a token in the query string and
// returns several envelope shapes for the same collections; everything
// shape-specific is contained here.
package okdesk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yofomoose/okdesk-bot/pkg/errors"
	"github.com/yofomoose/okdesk-bot/platform/logger"
)

// Client talks to the Okdesk REST API. Lookups return (nil, nil) for
// not-found; only transport-level failures become errors, and those
// are typed ErrRemoteUnavailable. No retries here: retry/backoff is a
// transport concern of the caller's HTTP client stack.
type Client struct {
	httpClient *http.Client
	logger     *logger.Logger
	baseURL    string
	token      string
	scanLimit  int
}

func NewClient(baseURL, token string, scanLimit int, timeout time.Duration, log *logger.Logger) *Client {
	if scanLimit <= 0 {
		scanLimit = 100
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		scanLimit: scanLimit,
		logger:    log.WithModule("okdesk"),
	}
}

// makeRequest performs one API call. The token always travels as the
// api_token query parameter; the API does not accept header auth.
func (c *Client) makeRequest(ctx context.Context, method, endpoint string, payload interface{}, result interface{}) error {
	requestURL := c.baseURL + endpoint
	if strings.Contains(endpoint, "?") {
		requestURL += "&api_token=" + url.QueryEscape(c.token)
	} else {
		requestURL += "?api_token=" + url.QueryEscape(c.token)
	}

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", errors.ErrRemoteUnavailable, method, endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			bodyBytes = []byte("(unreadable body)")
		}
		c.logger.WarnWithFields("Okdesk API request failed", map[string]interface{}{
			"method": method,
			"path":   endpoint,
			"status": resp.StatusCode,
			"body":   truncate(string(bodyBytes), 500),
		})
		return fmt.Errorf("%w: %s %s: status %d", errors.ErrRemoteUnavailable, method, endpoint, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", errors.ErrRemoteUnavailable, err)
		}
	}

	return nil
}

// extractList unwraps the collection envelopes the API has been
// observed to use: a bare array, an object with a "data" array, an
// object keyed by the collection name, or a single record returned as
// a bare object.
func extractList(raw json.RawMessage, collectionKeys ...string) []json.RawMessage {
	var asArray []json.RawMessage
	if err := json.Unmarshal(raw, &asArray); err == nil {
		return asArray
	}

	var asObject map[string]json.RawMessage
	if err := json.Unmarshal(raw, &asObject); err != nil {
		return nil
	}

	for _, key := range append([]string{"data"}, collectionKeys...) {
		if nested, ok := asObject[key]; ok {
			var list []json.RawMessage
			if err := json.Unmarshal(nested, &list); err == nil {
				return list
			}
		}
	}

	// A single record (e.g. an exact-match search) comes back as a
	// bare object carrying an id.
	if _, ok := asObject["id"]; ok {
		return []json.RawMessage{raw}
	}

	return nil
}

// statusCode unwraps a status that may be a bare string or a
// {code, name} object.
func statusCode(raw json.RawMessage) string {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}

	var asObject struct {
		Code string `json:"code"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &asObject); err == nil {
		if asObject.Code != "" {
			return asObject.Code
		}
		return asObject.Name
	}

	return ""
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
