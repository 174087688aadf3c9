package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/atrajit-sarkar/Discord-Guardian/internal/models"
)

// WebhookNotifier posts notices to an HTTP endpoint (e.g. a platform relay or
// an ops channel webhook). Delivery is best effort; the executor owns the
// error boundary.
type WebhookNotifier struct {
	Endpoint   string
	HTTPClient *http.Client
}

func NewWebhookNotifier(endpoint string) *WebhookNotifier {
	return &WebhookNotifier{
		Endpoint: endpoint,
		HTTPClient: &http.Client{
			Timeout: 8 * time.Second,
		},
	}
}

type webhookPayload struct {
	Kind   string      `json:"kind"`
	Intent interface{} `json:"intent"`
}

func (n *WebhookNotifier) NotifyFlag(ctx context.Context, intent models.NotifyFlagIntent) error {
	return n.post(ctx, webhookPayload{Kind: intent.Kind(), Intent: intent})
}

func (n *WebhookNotifier) NotifyReward(ctx context.Context, intent models.NotifyRewardIntent) error {
	return n.post(ctx, webhookPayload{Kind: intent.Kind(), Intent: intent})
}

func (n *WebhookNotifier) post(ctx context.Context, payload webhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := n.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 8 * time.Second}
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("notify webhook http %d", resp.StatusCode)
	}
	return nil
}
