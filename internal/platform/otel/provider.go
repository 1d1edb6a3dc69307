package otel

import (
	"context"
	"strings"

	"github.com/hotelio/bookings/internal/platform/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// instrumentationName scopes spans created by hotelio components.
const instrumentationName = "github.com/hotelio/bookings"

type setupEnv struct {
	Enabled  string `env:"HOTELIO_OTEL_ENABLED"`
	Endpoint string `env:"HOTELIO_OTEL_ENDPOINT"`
}

// Setup initialises OpenTelemetry tracing for the given service.
//
// Tracing is opt-in: when HOTELIO_OTEL_ENDPOINT is empty or
// HOTELIO_OTEL_ENABLED is "false", Setup returns a no-op shutdown function
// and no global provider is registered.
//
// The returned shutdown function flushes pending spans and should be deferred
// by the caller.
func Setup(ctx context.Context, serviceName string) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }

	var cfg setupEnv
	if err := config.ParseEnv(&cfg); err != nil {
		return noop, err
	}
	if strings.EqualFold(strings.TrimSpace(cfg.Enabled), "false") {
		return noop, nil
	}
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(endpoint),
	)
	if err != nil {
		return noop, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return noop, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}

// Tracer returns the tracer used by background workers (outbox relay,
// history consumer). It resolves the global provider on every call so a
// later Setup is honoured.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}
