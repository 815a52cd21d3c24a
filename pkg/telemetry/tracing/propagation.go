package tracing

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// relay propagates trace context across two kinds of boundary: HTTP
// headers, when a layer's request/response types carry them, and bare
// traceparent strings for hops that have no header block of their own —
// a relayed TCP connection identifies its trace by a single W3C
// traceparent value, however the operator chooses to smuggle it.

// Propagator returns the globally configured text map propagator. New
// installs a composite of W3C Trace Context and Baggage.
func Propagator() propagation.TextMapPropagator {
	return otel.GetTextMapPropagator()
}

// Extract reads trace context from HTTP headers into a context, for the
// receiving side of a header-carrying hop.
func Extract(ctx context.Context, headers http.Header) context.Context {
	return Propagator().Extract(ctx, propagation.HeaderCarrier(headers))
}

// Inject writes ctx's trace context into HTTP headers, for the sending
// side of a header-carrying hop.
func Inject(ctx context.Context, headers http.Header) {
	Propagator().Inject(ctx, propagation.HeaderCarrier(headers))
}

// TraceParent renders ctx's span context as a W3C traceparent value
// ("00-<trace-id>-<span-id>-<flags>"). The second return is false when
// ctx carries no valid span context, i.e. there is nothing to propagate.
func TraceParent(ctx context.Context) (string, bool) {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return "", false
	}

	flags := "00"
	if sc.IsSampled() {
		flags = "01"
	}
	return fmt.Sprintf("00-%s-%s-%s", sc.TraceID(), sc.SpanID(), flags), true
}

// WithTraceParent parses a traceparent value received from a peer and
// returns a context carrying it as a remote parent, so the next span
// started from that context joins the peer's trace. The original context
// is returned unchanged on a malformed value.
func WithTraceParent(ctx context.Context, traceparent string) (context.Context, error) {
	tid, sid, flags, err := splitTraceParent(traceparent)
	if err != nil {
		return ctx, err
	}

	traceID, err := trace.TraceIDFromHex(tid)
	if err != nil {
		return ctx, fmt.Errorf("traceparent: bad trace id: %w", err)
	}
	spanID, err := trace.SpanIDFromHex(sid)
	if err != nil {
		return ctx, fmt.Errorf("traceparent: bad span id: %w", err)
	}

	var tf trace.TraceFlags
	if flags&0x01 != 0 {
		tf = trace.FlagsSampled
	}

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: tf,
		Remote:     true,
	})
	return trace.ContextWithRemoteSpanContext(ctx, sc), nil
}

// SpanFromContext returns the current span from ctx, or a no-op span.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// ContextWithSpan returns a new context carrying span.
func ContextWithSpan(ctx context.Context, span trace.Span) context.Context {
	return trace.ContextWithSpan(ctx, span)
}

// SpanContext returns the span context from ctx; invalid if none exists.
func SpanContext(ctx context.Context) trace.SpanContext {
	return trace.SpanFromContext(ctx).SpanContext()
}

// TraceID returns the context's trace ID as a string, or "". Handy for
// stitching a connection's log lines to its exported trace.
func TraceID(ctx context.Context) string {
	if sc := SpanContext(ctx); sc.IsValid() {
		return sc.TraceID().String()
	}
	return ""
}

// SpanID returns the context's span ID as a string, or "".
func SpanID(ctx context.Context) string {
	if sc := SpanContext(ctx); sc.IsValid() {
		return sc.SpanID().String()
	}
	return ""
}

// IsSampled reports whether the current trace is sampled.
func IsSampled(ctx context.Context) bool {
	return SpanContext(ctx).IsSampled()
}

// splitTraceParent validates the "version-traceid-spanid-flags" shape and
// returns the raw fields. Version ff is reserved by the W3C spec and
// rejected; other versions are accepted and read as version 00.
func splitTraceParent(s string) (traceID, spanID string, flags byte, err error) {
	parts := strings.Split(s, "-")
	if len(parts) != 4 {
		return "", "", 0, fmt.Errorf("traceparent: want 4 fields, got %d", len(parts))
	}

	version, err := hex.DecodeString(parts[0])
	if err != nil || len(version) != 1 {
		return "", "", 0, fmt.Errorf("traceparent: bad version %q", parts[0])
	}
	if version[0] == 0xff {
		return "", "", 0, fmt.Errorf("traceparent: version ff is reserved")
	}

	if len(parts[1]) != 32 {
		return "", "", 0, fmt.Errorf("traceparent: trace id must be 32 hex digits")
	}
	if len(parts[2]) != 16 {
		return "", "", 0, fmt.Errorf("traceparent: span id must be 16 hex digits")
	}

	fb, err := hex.DecodeString(parts[3])
	if err != nil || len(fb) != 1 {
		return "", "", 0, fmt.Errorf("traceparent: bad flags %q", parts[3])
	}

	return parts[1], parts[2], fb[0], nil
}
