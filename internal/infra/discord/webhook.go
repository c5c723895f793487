package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// maxContentRunes is Discord's limit for a message's content field.
const maxContentRunes = 2000

var ErrUnexpectedStatus = errors.New("discord webhook rejected message")

type webhookPayload struct {
	Content string `json:"content"`
}

// WebhookClient posts messages to a Discord channel webhook. Sends are
// spaced by at least minInterval to stay under the webhook rate limit.
type WebhookClient struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
}

func NewWebhookClient(url string, minInterval time.Duration) *WebhookClient {
	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}
	return &WebhookClient{
		url:     url,
		client:  &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Send posts text as the message content. Only 200 and 204 count as delivered.
func (c *WebhookClient) Send(ctx context.Context, text string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for discord rate limit: %w", err)
	}

	body, err := json.Marshal(webhookPayload{Content: truncate(text, maxContentRunes)})
	if err != nil {
		return fmt.Errorf("error encoding discord payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("error building discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("error posting to discord: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrUnexpectedStatus, resp.StatusCode, bytes.TrimSpace(detail))
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
