// Package notify delivers the terminal session message to operators.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/sony/gobreaker"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/CodeMonkeyCybersecurity/retire/pkg/httpclient"
)

// Payload is the Slack-compatible incoming webhook body.
type Payload struct {
	Text string `json:"text"`
}

// WebhookConfig configures a WebhookSink.
type WebhookConfig struct {
	URL    string
	Client *http.Client
	// Rate bounds deliveries per second. Zero means one per second.
	Rate float64
	// MaxFailures opens the breaker after this many consecutive failures.
	MaxFailures uint32
	// OpenTimeout is how long the breaker stays open before a trial request.
	OpenTimeout time.Duration
}

// WebhookSink posts messages to a chat webhook behind a rate limiter and a
// circuit breaker.
type WebhookSink struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

func NewWebhookSink(cfg WebhookConfig) (*WebhookSink, error) {
	if cfg.URL == "" {
		return nil, cerr.New("webhook url is required")
	}
	if cfg.Client == nil {
		cfg.Client = httpclient.DefaultClient()
	}
	if cfg.Rate <= 0 {
		cfg.Rate = 1
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 3
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	maxFailures := cfg.MaxFailures
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "notify-webhook",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			zap.L().Warn("Webhook circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &WebhookSink{
		url:     cfg.URL,
		client:  cfg.Client,
		limiter: rate.NewLimiter(rate.Limit(cfg.Rate), 1),
		breaker: breaker,
	}, nil
}

// Send posts message. It blocks on the rate limiter and fails fast while the
// breaker is open.
func (s *WebhookSink) Send(ctx context.Context, message string) error {
	logger := otelzap.Ctx(ctx)

	if err := s.limiter.Wait(ctx); err != nil {
		return cerr.Wrap(err, "webhook rate limiter")
	}

	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.post(ctx, message)
	})
	if err != nil {
		logger.Warn("Webhook notification failed", zap.Error(err))
		return cerr.Wrap(err, "send webhook notification")
	}

	logger.Info("Webhook notification sent")
	return nil
}

func (s *WebhookSink) post(ctx context.Context, message string) error {
	body, err := json.Marshal(Payload{Text: message})
	if err != nil {
		return cerr.Wrap(err, "marshal webhook payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return cerr.Wrap(err, "create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", httpclient.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return cerr.Wrap(err, "post webhook")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned error status: %d", resp.StatusCode)
	}
	return nil
}
