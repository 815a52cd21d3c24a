package tracing

import (
	"context"
	"errors"
	"fmt"

	"mercator-hq/relay/pkg/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc/credentials/insecure"
)

// buildVersion is stamped into the trace resource so exported spans name
// the relay build that emitted them. cmd/relay sets it from its
// ldflags-injected version before initializing tracing.
var buildVersion = "dev"

// SetBuildVersion records the running binary's version for the trace
// resource. Call before New; later calls have no effect on an already
// built provider.
func SetBuildVersion(v string) {
	if v != "" {
		buildVersion = v
	}
}

// Tracer wraps the OpenTelemetry SDK behind the two operations relay's
// Trace middleware needs: starting a span and shutting the pipeline down.
type Tracer struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
	enabled  bool
}

// New builds a Tracer from cfg. Disabled configs get a no-op tracer whose
// Start is cheap enough to leave mounted unconditionally. Enabled configs
// get a batching OTLP/gRPC export pipeline, a parent-based sampler, and
// W3C trace context + baggage propagation installed globally.
//
// Shut the tracer down before exit to flush batched spans:
//
//	defer tracer.Shutdown(context.Background())
func New(cfg *config.TracingConfig) (*Tracer, error) {
	if cfg == nil {
		return nil, errors.New("tracing config is nil")
	}

	if !cfg.Enabled {
		return &Tracer{tracer: noop.NewTracerProvider().Tracer("relay")}, nil
	}

	sampler, err := newSampler(cfg)
	if err != nil {
		return nil, fmt.Errorf("tracing: %w", err)
	}

	exporter, err := newExporter(cfg)
	if err != nil {
		return nil, fmt.Errorf("tracing: %w", err)
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "relay"
	}
	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(buildVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("tracing: building resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Tracer{
		tracer:   provider.Tracer("relay"),
		provider: provider,
		enabled:  true,
	}, nil
}

// newExporter builds the span exporter. Only OTLP over gRPC is wired;
// Jaeger and Zipkin both accept OTLP natively, so pointing the endpoint
// at their collectors covers those backends without extra exporter
// dependencies.
func newExporter(cfg *config.TracingConfig) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case "otlp", "":
	case "jaeger", "zipkin":
		return nil, fmt.Errorf("exporter %q is served via OTLP: set exporter to otlp and point endpoint at the %s collector's OTLP port", cfg.Exporter, cfg.Exporter)
	default:
		return nil, fmt.Errorf("unknown exporter %q (valid: otlp)", cfg.Exporter)
	}

	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.OTLP.Insecure {
		opts = append(opts, otlptracegrpc.WithTLSCredentials(insecure.NewCredentials()))
	}
	if cfg.OTLP.Timeout > 0 {
		opts = append(opts, otlptracegrpc.WithTimeout(cfg.OTLP.Timeout))
	}

	// The gRPC connection is established lazily; an unreachable collector
	// surfaces as export errors, not a startup failure.
	exporter, err := otlptrace.New(context.Background(), otlptracegrpc.NewClient(opts...))
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}
	return exporter, nil
}

// Start opens a span named name as a child of whatever span ctx carries.
//
//	ctx, span := tracer.Start(ctx, "relay.dial")
//	defer span.End()
func (t *Tracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, opts...)
}

// Shutdown flushes pending spans and stops the export pipeline. A no-op
// for disabled tracers.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

// Enabled reports whether spans are actually recorded and exported.
func (t *Tracer) Enabled() bool {
	return t.enabled
}

// SetError records the error and its message on the span; it does not set
// the span status. The Trace middleware calls this for real errors and
// sets the status through SetStatus, passing it a synthetic error for 5xx
// responses that carried no Go error.
func SetError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.SetAttributes(
		attribute.Bool("error", true),
		attribute.String("error.message", err.Error()),
	)
	span.RecordError(err)
}

// SetStatus sets the span status from an error: OK when nil, Error
// otherwise.
func SetStatus(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}
