// Package line is a minimal LINE Messaging API client covering what the bot
// needs: replies, pushes, the typing indicator, profile lookup, and image
// content download.
package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/snappword/snappword-backend/internal/config"
)

// maxContentSize caps downloaded message content at 10 MiB.
const maxContentSize = 10 << 20

// Client calls the LINE Messaging API.
type Client struct {
	apiBaseURL   string
	dataBaseURL  string
	channelToken string
	httpClient   *http.Client
	log          *slog.Logger
}

// New creates a LINE client from config.
func New(cfg config.LineConfig, logger *slog.Logger) *Client {
	return &Client{
		apiBaseURL:   cfg.APIBaseURL,
		dataBaseURL:  cfg.DataBaseURL,
		channelToken: cfg.ChannelAccessToken,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		log:          logger.With("adapter", "line"),
	}
}

// Reply sends up to 5 messages in response to a webhook event.
// Reply tokens are single-use and expire quickly.
func (c *Client) Reply(ctx context.Context, replyToken string, messages ...Message) error {
	payload := map[string]any{
		"replyToken": replyToken,
		"messages":   messages,
	}
	return c.postJSON(ctx, "/v2/bot/message/reply", payload)
}

// Push sends up to 5 messages to a user outside a reply window.
func (c *Client) Push(ctx context.Context, to string, messages ...Message) error {
	payload := map[string]any{
		"to":       to,
		"messages": messages,
	}
	return c.postJSON(ctx, "/v2/bot/message/push", payload)
}

// ShowLoading displays the typing indicator in the user's chat for up to
// loadingSeconds (5-60, multiples of 5). Failures are logged, not returned:
// the indicator is cosmetic.
func (c *Client) ShowLoading(ctx context.Context, chatID string, loadingSeconds int) {
	payload := map[string]any{
		"chatId":         chatID,
		"loadingSeconds": loadingSeconds,
	}
	if err := c.postJSON(ctx, "/v2/bot/chat/loading/start", payload); err != nil {
		c.log.WarnContext(ctx, "show loading failed", slog.String("error", err.Error()))
	}
}

// GetProfile fetches the user's LINE profile.
func (c *Client) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	reqURL := c.apiBaseURL + "/v2/bot/profile/" + url.PathEscape(userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("line: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.channelToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("line: get profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("line: get profile: unexpected status %d", resp.StatusCode)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("line: decode profile: %w", err)
	}

	return &profile, nil
}

// GetMessageContent downloads the binary content of a message (the image the
// user sent). Returns the bytes and the Content-Type reported by LINE.
func (c *Client) GetMessageContent(ctx context.Context, messageID string) ([]byte, string, error) {
	reqURL := c.dataBaseURL + "/v2/bot/message/" + url.PathEscape(messageID) + "/content"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("line: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.channelToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("line: get content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("line: get content: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxContentSize))
	if err != nil {
		return nil, "", fmt.Errorf("line: read content: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	return data, contentType, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("line: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("line: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.channelToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("line: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("line: %s: status %d: %s", path, resp.StatusCode, respBody)
	}

	return nil
}
