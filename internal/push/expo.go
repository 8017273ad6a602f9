package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client отправляет push уведомления через Expo Push API.
type Client struct {
	sendURL    string
	httpClient *http.Client
}

// NewClient создаёт клиента Expo.
func NewClient(sendURL string) *Client {
	return &Client{
		sendURL: sendURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// IsExpoPushToken проверяет формат токена Expo.
func IsExpoPushToken(token string) bool {
	return strings.HasPrefix(token, "ExponentPushToken[") && strings.HasSuffix(token, "]")
}

// Send отправляет одно уведомление на устройство.
func (c *Client) Send(ctx context.Context, token, body string) error {
	payload := map[string]string{
		"to":    token,
		"sound": "default",
		"body":  body,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("push: marshal %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sendURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("push: request %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("push: send %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("push: expo вернул статус %d: %s", resp.StatusCode, detail)
	}

	return nil
}
