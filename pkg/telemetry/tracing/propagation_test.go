package tracing

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func init() {
	// Tests in this file exercise propagation without booting the SDK.
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}

func sampledContext(t *testing.T) (context.Context, trace.SpanContext) {
	t.Helper()

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	if err != nil {
		t.Fatalf("trace id: %v", err)
	}
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	if err != nil {
		t.Fatalf("span id: %v", err)
	}
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	return trace.ContextWithSpanContext(context.Background(), sc), sc
}

func TestTraceParentRendersSpanContext(t *testing.T) {
	ctx, _ := sampledContext(t)

	tp, ok := TraceParent(ctx)
	if !ok {
		t.Fatal("expected a traceparent from a valid span context")
	}
	want := "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"
	if tp != want {
		t.Errorf("TraceParent = %q, want %q", tp, want)
	}
}

func TestTraceParentEmptyContext(t *testing.T) {
	if tp, ok := TraceParent(context.Background()); ok {
		t.Errorf("expected no traceparent, got %q", tp)
	}
}

func TestTraceParentUnsampledFlags(t *testing.T) {
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	tp, ok := TraceParent(ctx)
	if !ok {
		t.Fatal("expected a traceparent")
	}
	if !strings.HasSuffix(tp, "-00") {
		t.Errorf("unsampled flags should be 00: %q", tp)
	}
}

func TestWithTraceParentRoundTrip(t *testing.T) {
	ctx, want := sampledContext(t)

	tp, ok := TraceParent(ctx)
	if !ok {
		t.Fatal("TraceParent failed")
	}

	got, err := WithTraceParent(context.Background(), tp)
	if err != nil {
		t.Fatalf("WithTraceParent: %v", err)
	}

	sc := trace.SpanContextFromContext(got)
	if sc.TraceID() != want.TraceID() {
		t.Errorf("trace id = %s, want %s", sc.TraceID(), want.TraceID())
	}
	if sc.SpanID() != want.SpanID() {
		t.Errorf("span id = %s, want %s", sc.SpanID(), want.SpanID())
	}
	if !sc.IsSampled() {
		t.Error("sampled flag lost in round trip")
	}
	if !sc.IsRemote() {
		t.Error("parsed span context should be marked remote")
	}
}

func TestWithTraceParentRejectsMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"too few fields", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7"},
		{"reserved version", "ff-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"},
		{"short trace id", "00-4bf92f35-00f067aa0ba902b7-01"},
		{"short span id", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa-01"},
		{"non-hex trace id", "00-zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz-00f067aa0ba902b7-01"},
		{"all zero trace id", "00-00000000000000000000000000000000-00f067aa0ba902b7-01"},
		{"all zero span id", "00-4bf92f3577b34da6a3ce929d0e0e4736-0000000000000000-01"},
		{"bad flags", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-zz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, err := WithTraceParent(context.Background(), tt.input)
			if err == nil {
				t.Fatalf("expected error for %q", tt.input)
			}
			if trace.SpanContextFromContext(ctx).IsValid() {
				t.Error("malformed traceparent must not install a span context")
			}
		})
	}
}

func TestWithTraceParentAcceptsFutureVersion(t *testing.T) {
	// Per W3C, unknown (non-ff) versions parse as version 00.
	ctx, err := WithTraceParent(context.Background(),
		"01-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	if err != nil {
		t.Fatalf("WithTraceParent: %v", err)
	}
	if !trace.SpanContextFromContext(ctx).IsValid() {
		t.Error("future-version traceparent should parse")
	}
}

func TestInjectExtractHeadersRoundTrip(t *testing.T) {
	ctx, want := sampledContext(t)

	headers := make(http.Header)
	Inject(ctx, headers)

	if headers.Get("traceparent") == "" {
		t.Fatal("Inject wrote no traceparent header")
	}

	got := Extract(context.Background(), headers)
	sc := trace.SpanContextFromContext(got)
	if sc.TraceID() != want.TraceID() {
		t.Errorf("trace id = %s, want %s", sc.TraceID(), want.TraceID())
	}
}

func TestExtractWithoutHeaders(t *testing.T) {
	got := Extract(context.Background(), make(http.Header))
	if trace.SpanContextFromContext(got).IsValid() {
		t.Error("expected no span context from empty headers")
	}
}
