// Package messaging provides pluggable messaging adapter implementations.
package messaging

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/events"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/messaging"
)

// Request headers set on every delivery. SignatureHeader carries the
// HMAC-SHA256 of the body and is only set when the adapter has a secret.
const (
	SignatureHeader = "X-Drafty-Signature"
	EventHeader     = "X-Drafty-Event"
)

const defaultWebhookTimeout = 10 * time.Second

type webhookPayload struct {
	Source    string        `json:"source"`
	EventID   string        `json:"event_id"`
	EventType string        `json:"event_type"`
	Timestamp time.Time     `json:"timestamp"`
	Data      *events.Event `json:"data"`
}

// WebhookAdapter sends events to a generic webhook URL.
type WebhookAdapter struct {
	config messaging.AdapterConfig
	client *http.Client
}

// NewWebhookAdapter creates a webhook adapter from config. The "timeout"
// option overrides the 10s request timeout; unparsable values are ignored.
func NewWebhookAdapter(config messaging.AdapterConfig) *WebhookAdapter {
	timeout := defaultWebhookTimeout
	if d, err := time.ParseDuration(config.Options["timeout"]); err == nil && d > 0 {
		timeout = d
	}
	return &WebhookAdapter{
		config: config,
		client: &http.Client{Timeout: timeout},
	}
}

// Timeout returns the per-request timeout.
func (a *WebhookAdapter) Timeout() time.Duration { return a.client.Timeout }

func (a *WebhookAdapter) Name() string { return a.config.Name }
func (a *WebhookAdapter) Type() string { return "webhook" }

func (a *WebhookAdapter) Send(ctx context.Context, event *events.Event) error {
	payload := webhookPayload{
		Source:    "drafty",
		EventID:   event.ID,
		EventType: event.Type,
		Timestamp: event.Timestamp,
		Data:      event,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Drafty-Messaging/1.0")
	req.Header.Set(EventHeader, event.Type)
	if a.config.Secret != "" {
		req.Header.Set(SignatureHeader, Sign(a.config.Secret, body))
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}

// Sign returns "sha256=<hex>" for body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
