// Package otel wires the optional OpenTelemetry trace pipeline.
package otel

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	endpointEnv = "GRIDLINK_OTEL_ENDPOINT"
	enabledEnv  = "GRIDLINK_OTEL_ENABLED"
)

// noopShutdown is returned when tracing stays off.
func noopShutdown(context.Context) error { return nil }

// Setup registers a global OTLP/HTTP trace provider for serviceName and
// returns its shutdown hook. Tracing is opt-in: with no endpoint configured,
// or with GRIDLINK_OTEL_ENABLED=false, nothing is registered and the hook is
// a no-op. Callers defer the hook so pending spans flush on exit.
func Setup(ctx context.Context, serviceName string) (shutdown func(context.Context) error, err error) {
	endpoint := strings.TrimSpace(os.Getenv(endpointEnv))
	if endpoint == "" || strings.EqualFold(os.Getenv(enabledEnv), "false") {
		return noopShutdown, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	if err != nil {
		return noopShutdown, fmt.Errorf("create otlp exporter: %w", err)
	}
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return noopShutdown, fmt.Errorf("build trace resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return provider.Shutdown, nil
}
