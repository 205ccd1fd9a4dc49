package telemetry

import (
	"context"
	"sync"
	"time"

	cerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
)

// Metrics holds the erase counters. Instruments bind to whichever meter
// provider is installed globally; without one they record nothing.
type Metrics struct {
	eraseAttempts metric.Int64Counter
	eraseDuration metric.Float64Histogram
	sessions      metric.Int64Counter
}

var (
	metricsOnce sync.Once
	metrics     *Metrics
)

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	eraseAttempts, err := meter.Int64Counter("retire_erase_attempts_total",
		metric.WithDescription("Zero-fill attempts by tier and outcome"))
	if err != nil {
		return nil, cerr.Wrap(err, "create erase_attempts counter")
	}

	eraseDuration, err := meter.Float64Histogram("retire_erase_duration_seconds",
		metric.WithDescription("Wall time of a single zero-fill attempt"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, cerr.Wrap(err, "create erase_duration histogram")
	}

	sessions, err := meter.Int64Counter("retire_sessions_total",
		metric.WithDescription("Completed sessions by verdict"))
	if err != nil {
		return nil, cerr.Wrap(err, "create sessions counter")
	}

	return &Metrics{
		eraseAttempts: eraseAttempts,
		eraseDuration: eraseDuration,
		sessions:      sessions,
	}, nil
}

// M returns the process-wide instruments.
func M() *Metrics {
	metricsOnce.Do(func() {
		m, err := NewMetrics(otel.Meter("retire"))
		if err != nil {
			m, _ = NewMetrics(metricnoop.NewMeterProvider().Meter("retire"))
		}
		metrics = m
	})
	return metrics
}

func (m *Metrics) EraseAttempt(ctx context.Context, tier int, success bool, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.Int("tier", tier),
		attribute.Bool("success", success),
	)
	m.eraseAttempts.Add(ctx, 1, attrs)
	m.eraseDuration.Record(ctx, elapsed.Seconds(), attrs)
}

func (m *Metrics) SessionFinished(ctx context.Context, overall bool) {
	m.sessions.Add(ctx, 1, metric.WithAttributes(attribute.Bool("overall", overall)))
}
