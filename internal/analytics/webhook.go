package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// WebhookSink posts each event as JSON to a URL. A token-bucket limiter caps
// outbound requests; events over the limit are dropped with an error rather
// than blocking the request path.
type WebhookSink struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
}

// NewWebhookSink creates a webhook sink. perSec <= 0 disables limiting.
func NewWebhookSink(url string, perSec float64, burst int, timeout time.Duration) *WebhookSink {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if burst < 1 {
		burst = 1
	}
	limit := rate.Limit(perSec)
	if perSec <= 0 {
		limit = rate.Inf
	}
	return &WebhookSink{
		url:     url,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Record implements Sink.
func (s *WebhookSink) Record(ctx context.Context, ev Event) error {
	if !s.limiter.Allow() {
		return eris.New("analytics: webhook rate limit exceeded")
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return eris.Wrap(err, "analytics: marshal event")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "analytics: create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", ev.ID)

	resp, err := s.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "analytics: webhook request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		return eris.Errorf("analytics: webhook returned status %d", resp.StatusCode)
	}
	return nil
}
