// Package notify delivers notifications to a chat webhook. When no
// webhook is configured the messages go to the process log instead, so
// local development still shows what would have been sent.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/example/flowboard/internal/ports/secondary"
)

const sendTimeout = 10 * time.Second

// WebhookNotifier posts messages to an incoming-webhook URL as
// {"text": "..."} payloads, the format Slack-compatible webhooks accept.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
}

// NewWebhookNotifier creates a notifier for the given webhook URL.
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url: url,
		httpClient: &http.Client{
			Timeout: sendTimeout,
		},
	}
}

// Send implements secondary.Notifier.
func (n *WebhookNotifier) Send(ctx context.Context, text string) error {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// LogNotifier writes notifications to the process log.
type LogNotifier struct{}

// NewLogNotifier creates a log-only notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// Send implements secondary.Notifier.
func (n *LogNotifier) Send(ctx context.Context, text string) error {
	log.Printf("notify: %s", text)
	return nil
}

// Ensure both implement the interface
var (
	_ secondary.Notifier = (*WebhookNotifier)(nil)
	_ secondary.Notifier = (*LogNotifier)(nil)
)
