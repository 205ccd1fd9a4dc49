// pkg/telemetry/telemetry.go
package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	cerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// EnvVar switches span export on when set to on, true, or 1.
const EnvVar = "RETIRE_TELEMETRY"

var (
	mu       sync.RWMutex
	tracer   trace.Tracer
	shutdown func(context.Context) error
)

// Init configures OpenTelemetry; call this early in main().
// Spans are written as JSON lines next to the log file when enabled.
func Init(service string) error {
	if !IsEnabled() {
		tp := noop.NewTracerProvider()
		otel.SetTracerProvider(tp)
		setTracer(tp.Tracer(service), nil)
		return nil
	}

	dir, err := telemetryDir()
	if err != nil {
		return err
	}

	file, err := os.OpenFile(filepath.Join(dir, "telemetry.jsonl"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return cerr.Wrap(err, "failed to open telemetry file")
	}

	exp, err := stdouttrace.New(
		stdouttrace.WithWriter(file),
		stdouttrace.WithoutTimestamps(),
	)
	if err != nil {
		_ = file.Close()
		return cerr.Wrap(err, "failed to create file exporter")
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(
			sdkresource.NewWithAttributes(
				semconv.SchemaURL,
				semconv.ServiceName(service),
				attribute.String("host.name", hostname()),
			),
		),
	)

	otel.SetTracerProvider(tp)
	setTracer(tp.Tracer(service), func(ctx context.Context) error {
		err := tp.Shutdown(ctx)
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
		return err
	})
	return nil
}

// Shutdown flushes pending spans. Safe to call when Init was never called.
func Shutdown(ctx context.Context) error {
	mu.Lock()
	fn := shutdown
	shutdown = nil
	mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// Start a telemetry span with optional attributes.
func Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	mu.RLock()
	t := tracer
	mu.RUnlock()
	if t == nil {
		t = otel.Tracer("retire")
	}
	return t.Start(ctx, name, trace.WithAttributes(attrs...))
}

// IsEnabled reports whether span export was requested through the environment.
func IsEnabled() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(EnvVar))) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

func setTracer(t trace.Tracer, fn func(context.Context) error) {
	mu.Lock()
	defer mu.Unlock()
	tracer = t
	shutdown = fn
}

func telemetryDir() (string, error) {
	candidates := []string{"/var/log/retire"}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		candidates = append(candidates, filepath.Join(home, ".local", "state", "retire"))
	}
	candidates = append(candidates, filepath.Join(os.TempDir(), "retire"))

	var lastErr error
	for _, dir := range candidates {
		if err := os.MkdirAll(dir, 0700); err != nil {
			lastErr = err
			continue
		}
		return dir, nil
	}
	return "", cerr.Wrap(lastErr, "failed to create telemetry directory")
}

func hostname() string {
	if h, err := os.Hostname(); err == nil {
		return h
	}
	return "unknown"
}
