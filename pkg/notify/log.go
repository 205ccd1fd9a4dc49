package notify

import (
	"context"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// LogSink writes the message to the structured log. Used when no webhook is
// configured.
type LogSink struct{}

func (LogSink) Send(ctx context.Context, message string) error {
	otelzap.Ctx(ctx).Info("Session notification", zap.String("message", message))
	return nil
}
