package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
)

func TestIsEnabled(t *testing.T) {
	for value, want := range map[string]bool{
		"":      false,
		"off":   false,
		"on":    true,
		"TRUE":  true,
		"1":     true,
		"maybe": false,
	} {
		t.Setenv(EnvVar, value)
		assert.Equal(t, want, IsEnabled(), "value %q", value)
	}
}

func TestStartWithoutInit(t *testing.T) {
	setTracer(nil, nil)

	//nolint:staticcheck // nil context is part of the contract
	ctx, span := Start(nil, "probe")
	require.NotNil(t, ctx)
	require.NotNil(t, span)
	span.End()
}

func TestInitDisabledIsNoop(t *testing.T) {
	t.Setenv(EnvVar, "off")
	require.NoError(t, Init("retire-test"))

	_, span := Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
	assert.NoError(t, Shutdown(context.Background()))
}

func TestMetricsRecordWithoutProvider(t *testing.T) {
	m := M()
	require.NotNil(t, m)
	assert.Same(t, m, M())

	assert.NotPanics(t, func() {
		m.EraseAttempt(context.Background(), 2, true, 3*time.Second)
		m.SessionFinished(context.Background(), false)
	})
}

func TestNewMetricsNoopMeter(t *testing.T) {
	m, err := NewMetrics(metricnoop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	assert.NotNil(t, m)
}
