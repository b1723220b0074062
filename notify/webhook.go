package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hupe1980/freightmesh/core"
)

// WebhookOptions configure the webhook notifier.
type WebhookOptions struct {
	// Endpoint is the broker's callback URL offers are POSTed to.
	Endpoint string
	// Client is the HTTP client used for delivery. Defaults to a client
	// with a 30s timeout.
	Client *http.Client
	// Headers are attached to every request (auth tokens and the like).
	Headers map[string]string
}

// WebhookNotifier delivers offers by POSTing a JSON payload to a broker
// endpoint. A non-2xx response or transport error wraps
// core.ErrDeliveryFailed. The delivery id is taken from the response's
// X-Delivery-Id header when present, otherwise generated.
type WebhookNotifier struct {
	opts WebhookOptions
}

var _ core.Notifier = (*WebhookNotifier)(nil)

// NewWebhookNotifier constructs a webhook notifier for the given endpoint.
func NewWebhookNotifier(endpoint string, optFns ...func(o *WebhookOptions)) *WebhookNotifier {
	opts := WebhookOptions{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 30 * time.Second}
	}
	return &WebhookNotifier{opts: opts}
}

type webhookPayload struct {
	NegotiationID string  `json:"negotiation_id"`
	Amount        float64 `json:"amount"`
	Message       string  `json:"message"`
}

// Send implements core.Notifier.
func (w *WebhookNotifier) Send(ctx context.Context, negotiationID, message string, amount float64) (string, error) {
	body, err := json.Marshal(webhookPayload{
		NegotiationID: negotiationID,
		Amount:        amount,
		Message:       message,
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal payload: %v", core.ErrDeliveryFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.opts.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", core.ErrDeliveryFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range w.opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := w.opts.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrDeliveryFailed, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: endpoint returned %s", core.ErrDeliveryFailed, resp.Status)
	}

	deliveryID := resp.Header.Get("X-Delivery-Id")
	if deliveryID == "" {
		deliveryID = core.NewEventID()
	}
	return deliveryID, nil
}
