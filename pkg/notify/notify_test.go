package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap/zaptest"
)

func setupLogger(t *testing.T) {
	t.Helper()
	t.Cleanup(otelzap.ReplaceGlobals(otelzap.New(zaptest.NewLogger(t))))
}

func TestWebhookSinkPostsSlackPayload(t *testing.T) {
	setupLogger(t)
	var got Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink, err := NewWebhookSink(WebhookConfig{URL: srv.URL, Client: srv.Client()})
	require.NoError(t, err)
	require.NoError(t, sink.Send(context.Background(), "erase ok"))
	assert.Equal(t, "erase ok", got.Text)
}

func TestWebhookSinkErrorStatus(t *testing.T) {
	setupLogger(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sink, err := NewWebhookSink(WebhookConfig{URL: srv.URL, Client: srv.Client(), Rate: 1000})
	require.NoError(t, err)
	assert.Error(t, sink.Send(context.Background(), "x"))
}

func TestWebhookSinkBreakerOpens(t *testing.T) {
	setupLogger(t)
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	sink, err := NewWebhookSink(WebhookConfig{
		URL:         srv.URL,
		Client:      srv.Client(),
		Rate:        1000,
		MaxFailures: 2,
		OpenTimeout: time.Hour,
	})
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		assert.Error(t, sink.Send(context.Background(), "x"))
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
	assert.Equal(t, gobreaker.StateOpen, sink.breaker.State())
}

func TestWebhookSinkHonoursContext(t *testing.T) {
	setupLogger(t)
	sink, err := NewWebhookSink(WebhookConfig{URL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, sink.Send(ctx, "x"))
}

func TestNewWebhookSinkRequiresURL(t *testing.T) {
	_, err := NewWebhookSink(WebhookConfig{})
	assert.Error(t, err)
}

func TestLogSink(t *testing.T) {
	setupLogger(t)
	assert.NoError(t, LogSink{}.Send(context.Background(), "done"))
}
