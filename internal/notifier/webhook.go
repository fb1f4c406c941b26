package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/good-yellow-bee/breachwatch/internal/models"
)

// WebhookConfig holds webhook notifier configuration.
type WebhookConfig struct {
	URL string // HTTPS endpoint receiving the event JSON
}

// Validate validates the webhook configuration.
func (c *WebhookConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("webhook URL is required")
	}
	if !strings.HasPrefix(c.URL, "https://") {
		return fmt.Errorf("webhook URL must use HTTPS")
	}
	return nil
}

// WebhookNotifier posts breach events as JSON to a configured endpoint
// (Slack-style incoming webhooks, internal chat relays, pagers).
type WebhookNotifier struct {
	config     WebhookConfig
	httpClient *http.Client
}

// NewWebhookNotifier creates a new webhook notifier.
func NewWebhookNotifier(config WebhookConfig) (*WebhookNotifier, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid webhook config: %w", err)
	}

	return &WebhookNotifier{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Name returns "webhook".
func (n *WebhookNotifier) Name() string {
	return "webhook"
}

// webhookPayload is the JSON body posted to the endpoint.
type webhookPayload struct {
	Event          string   `json:"event"`
	OwnerID        string   `json:"owner_id"`
	Email          string   `json:"email"`
	NewBreachCount int      `json:"new_breach_count"`
	BreachNames    []string `json:"breach_names,omitempty"`
	RiskScore      int      `json:"risk_score"`
	Band           string   `json:"band"`
}

// Send posts one breach event.
func (n *WebhookNotifier) Send(ctx context.Context, event models.BreachEvent) error {
	payload := webhookPayload{
		Event:          "breach_detected",
		OwnerID:        event.OwnerID,
		Email:          event.Email,
		NewBreachCount: event.NewBreachCount,
		BreachNames:    event.BreachNames,
		RiskScore:      event.RiskScore,
		Band:           string(models.BandForScore(event.RiskScore)),
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.config.URL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("webhook error: status %d, body: %s", resp.StatusCode, string(body))
	}

	return nil
}

// Close is a no-op for the webhook notifier.
func (n *WebhookNotifier) Close() error {
	return nil
}
