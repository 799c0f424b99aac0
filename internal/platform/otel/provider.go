// Package otel configures OpenTelemetry tracing for content repository
// processes. The engine starts one span per handled command; this package
// decides whether those spans are exported.
package otel

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/louisbranch/contentrepository/internal/platform/config"
)

// Settings holds the tracing switches read from the environment.
type Settings struct {
	Endpoint string `env:"CONTENTREPOSITORY_OTEL_ENDPOINT"`
	Enabled  bool   `env:"CONTENTREPOSITORY_OTEL_ENABLED" envDefault:"true"`
	// SampleRatio is the share of root command spans that are recorded.
	SampleRatio float64 `env:"CONTENTREPOSITORY_OTEL_SAMPLE_RATIO" envDefault:"1"`
}

// LoadSettings reads Settings from the environment.
func LoadSettings() (Settings, error) {
	var settings Settings
	if err := config.ParseEnv(&settings); err != nil {
		return Settings{}, err
	}
	if settings.SampleRatio < 0 || settings.SampleRatio > 1 {
		return Settings{}, fmt.Errorf("otel sample ratio %v is outside [0, 1]", settings.SampleRatio)
	}
	settings.Endpoint = strings.TrimSpace(settings.Endpoint)
	return settings, nil
}

// Active reports whether spans should be exported.
func (s Settings) Active() bool {
	return s.Enabled && s.Endpoint != ""
}

// Setup initialises tracing for serviceName.
//
// Tracing is opt-in: without CONTENTREPOSITORY_OTEL_ENDPOINT, or with
// CONTENTREPOSITORY_OTEL_ENABLED=false, Setup returns a no-op shutdown and
// leaves the global provider alone. The returned shutdown flushes pending
// spans.
func Setup(ctx context.Context, serviceName string) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }

	settings, err := LoadSettings()
	if err != nil {
		return noop, err
	}
	if !settings.Active() {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(settings.Endpoint))
	if err != nil {
		return noop, fmt.Errorf("create span exporter: %w", err)
	}
	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(serviceName),
		semconv.ServiceNamespace("contentrepository"),
	))
	if err != nil {
		return noop, fmt.Errorf("build resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(settings.SampleRatio))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	return tp.Shutdown, nil
}
