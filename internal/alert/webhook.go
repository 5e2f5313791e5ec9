package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Webhook delivers alerts as JSON POST requests.
type Webhook struct {
	name   string
	url    string
	client *http.Client
}

// NewWebhook creates a webhook destination. A nil client uses
// http.DefaultClient; the dispatcher's per-send timeout still applies via
// the request context.
func NewWebhook(name, url string, client *http.Client) *Webhook {
	if client == nil {
		client = http.DefaultClient
	}
	return &Webhook{name: name, url: url, client: client}
}

// Name identifies the webhook in logs.
func (w *Webhook) Name() string {
	return w.name
}

// webhookPayload is the wire format. Attachments are inlined as text since
// generic webhook receivers have no multipart convention.
type webhookPayload struct {
	Title       string            `json:"title"`
	Message     string            `json:"message"`
	Attachments map[string]string `json:"attachments,omitempty"`
}

// Send posts the alert to the webhook URL.
func (w *Webhook) Send(ctx context.Context, a Alert) error {
	payload := webhookPayload{Title: a.Title, Message: a.Message}
	if len(a.Attachments) > 0 {
		payload.Attachments = make(map[string]string, len(a.Attachments))
		for _, att := range a.Attachments {
			payload.Attachments[att.Name] = string(att.Content)
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode alert payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build alert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("post alert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("alert webhook returned status %d", resp.StatusCode)
	}
	return nil
}
