// Package tracing provides OpenTelemetry distributed tracing for relay.
//
// # Overview
//
// The tracing package implements W3C Trace Context propagation, span creation,
// and trace export to OTLP, Jaeger, and Zipkin collectors. It provides visibility
// into request flows through a Service/Layer stack with minimal overhead (<100µs
// per span).
//
// # Distributed Tracing
//
// Distributed tracing tracks requests as they flow through multiple services,
// creating a hierarchy of spans that represent operations. Each span records:
//   - Operation name and duration
//   - Attributes (key-value pairs)
//   - Events (timestamped logs within the span)
//   - Trace context (trace ID, span ID, sampling decision)
//
// # Trace Context Propagation
//
// The package implements W3C Trace Context (https://www.w3.org/TR/trace-context/)
// for propagating trace context across connection boundaries:
//
//	traceparent: 00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01
//	tracestate: congo=t61rcWkgMzE
//
// # Sampling Strategies
//
// Three sampling strategies are supported for root spans:
//   - always: Sample all root traces (development/debugging)
//   - never: Sample no root traces
//   - ratio: Sample a percentage of root traces (production)
//
// Every strategy is wrapped parent-based: a span whose parent carries a
// sampling decision follows that decision, whichever strategy is set.
//
// # Usage
//
//	// Initialize tracer
//	cfg := &config.TracingConfig{
//	    Enabled:     true,
//	    Sampler:     "ratio",
//	    SampleRatio: 0.1,
//	    Exporter:    "otlp",
//	    Endpoint:    "localhost:4317",
//	    ServiceName: "relay",
//	}
//	tracer, err := tracing.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tracer.Shutdown(context.Background())
//
//	// Create span
//	ctx, span := tracer.Start(ctx, "relay.proxyproto.client")
//	defer span.End()
//
//	// Add attributes
//	tracing.SetProxyProtocolAttributes(span, "v2", "tcp4", "stream")
//	tracing.SetConnectionAttributes(span, "127.0.0.1:80", "192.168.1.1:443")
//
//	// Add event
//	span.AddEvent("header_written", trace.WithAttributes(
//	    attribute.Int("bytes", 28),
//	))
//
// # Span Hierarchy
//
// Spans form a hierarchy representing the call tree through a Stack:
//
//	relay.request (10ms)
//	├── relay.stack.serve (9ms)
//	│   ├── relay.layer.timeout (9ms)
//	│   └── relay.proxyproto.client (1ms)
//	│       └── relay.layer.connect (200µs)
//	└── relay.layer.catch_panic (0ms)
//
// # HTTP Integration
//
// Extract trace context from incoming HTTP requests:
//
//	ctx := tracing.Extract(r.Context(), r.Header)
//	ctx, span := tracer.Start(ctx, "handle_request")
//	defer span.End()
//
// Inject trace context into outgoing HTTP requests:
//
//	req, _ := http.NewRequestWithContext(ctx, "POST", url, body)
//	tracing.Inject(ctx, req.Header)
//
// # Performance
//
// The tracing package is designed for minimal overhead:
//   - Span creation: <100µs per span
//   - Context propagation: <10µs
//   - Sampling decision: <1µs
//   - When disabled: <1µs (noop span)
//
// # Trace Export
//
// Spans are exported over OTLP/gRPC:
//
//	telemetry:
//	  tracing:
//	    exporter: otlp
//	    endpoint: localhost:4317
//	    otlp:
//	      insecure: true
//	      timeout: 10s
//
// Jaeger and Zipkin both ingest OTLP natively; point the endpoint at the
// collector's OTLP port instead of a backend-specific exporter.
//
// # Attribute Helpers
//
// Common attributes can be set using helper functions:
//
//	// Layer identity
//	tracing.SetLayerAttributes(span, "haproxy", "ingress")
//
//	// PROXY protocol attributes
//	tracing.SetProxyProtocolAttributes(span, "v2", "tcp4", "stream")
//
//	// Connection endpoints
//	tracing.SetConnectionAttributes(span, src, dst)
//
//	// Error attributes
//	tracing.SetErrorAttributes(span, err, "family_mismatch")
package tracing
