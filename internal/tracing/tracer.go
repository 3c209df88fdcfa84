package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/aide-systems/aide-core"

// TracerProvider manages the lifecycle of the OpenTelemetry tracer
type TracerProvider struct {
	tp *sdktrace.TracerProvider
}

// RelayTracer creates spans around calls to the automation engine and
// around inbound webhook dispatch
type RelayTracer struct {
	tracer trace.Tracer
}

// NewTracerProvider creates a tracer provider exporting over OTLP/gRPC and
// installs it globally
func NewTracerProvider(ctx context.Context, serviceName, serviceVersion, otlpEndpoint string) (*TracerProvider, error) {
	exporter, err := otlptracegrpc.New(
		ctx,
		otlptracegrpc.WithEndpoint(otlpEndpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	res, err := resource.New(
		ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(serviceVersion),
			semconv.ServiceNamespaceKey.String("aide"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	)

	otel.SetTracerProvider(tp)

	return &TracerProvider{tp: tp}, nil
}

// Shutdown flushes pending spans and shuts the provider down
func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	return tp.tp.Shutdown(ctx)
}

// NewRelayTracer returns a tracer bound to the global provider. Without a
// configured provider every span is a no-op.
func NewRelayTracer() *RelayTracer {
	return &RelayTracer{tracer: otel.Tracer(instrumentationName)}
}

// StartOutboundSpan starts a client span for a call to the automation engine
func (rt *RelayTracer) StartOutboundSpan(ctx context.Context, kind, endpoint string) (context.Context, trace.Span) {
	return rt.tracer.Start(ctx, "automation."+kind,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("automation.call_kind", kind),
			attribute.String("automation.endpoint", endpoint),
			attribute.String("component", "automation-client"),
		),
	)
}

// StartWebhookSpan starts a span for one inbound webhook dispatch
func (rt *RelayTracer) StartWebhookSpan(ctx context.Context, workflow string) (context.Context, trace.Span) {
	return rt.tracer.Start(ctx, "webhook.dispatch",
		trace.WithAttributes(
			attribute.String("webhook.workflow", workflow),
			attribute.String("component", "webhook-router"),
		),
	)
}

// RecordOutcome records the status and duration of a finished call
func (rt *RelayTracer) RecordOutcome(span trace.Span, statusCode int, duration time.Duration) {
	span.SetAttributes(
		attribute.Int("http.status_code", statusCode),
		attribute.Int64("automation.duration_ms", duration.Milliseconds()),
	)
}

// RecordError records an error on a span
func (rt *RelayTracer) RecordError(span trace.Span, err error, attrs ...attribute.KeyValue) {
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attrs...)
	span.RecordError(err)
}
