package logging

import (
	"context"
)

// contextKey is the private type behind every per-connection log field
// relay threads through a context.
type contextKey string

// The fields a relayed connection accumulates as it moves through the
// stack. logFields drives both the typed accessors below and
// extractContextFields, so adding a field here is the whole change.
const (
	RequestIDKey  contextKey = "request_id"
	TransportKey  contextKey = "transport"
	UpstreamKey   contextKey = "upstream"
	RemoteAddrKey contextKey = "remote_addr"
	LayerKey      contextKey = "layer"
	TraceIDKey    contextKey = "trace_id"
	SpanIDKey     contextKey = "span_id"
)

// logFields is the extraction order: identity first, then where the
// connection came from and is going, then tracing correlation.
var logFields = []contextKey{
	RequestIDKey,
	TransportKey,
	UpstreamKey,
	RemoteAddrKey,
	LayerKey,
	TraceIDKey,
	SpanIDKey,
}

func withField(ctx context.Context, key contextKey, value string) context.Context {
	return context.WithValue(ctx, key, value)
}

func getField(ctx context.Context, key contextKey) string {
	v, _ := ctx.Value(key).(string)
	return v
}

// WithRequestID attaches the request id assigned to a connection.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withField(ctx, RequestIDKey, id)
}

// GetRequestID returns the connection's request id, or "".
func GetRequestID(ctx context.Context) string { return getField(ctx, RequestIDKey) }

// WithTransport attaches the connection transport ("tcp"/"udp").
func WithTransport(ctx context.Context, transport string) context.Context {
	return withField(ctx, TransportKey, transport)
}

// GetTransport returns the connection transport, or "".
func GetTransport(ctx context.Context) string { return getField(ctx, TransportKey) }

// WithUpstream attaches the dial address the connection is relayed to.
func WithUpstream(ctx context.Context, upstream string) context.Context {
	return withField(ctx, UpstreamKey, upstream)
}

// GetUpstream returns the upstream dial address, or "".
func GetUpstream(ctx context.Context) string { return getField(ctx, UpstreamKey) }

// WithRemoteAddr attaches the downstream peer address.
func WithRemoteAddr(ctx context.Context, addr string) context.Context {
	return withField(ctx, RemoteAddrKey, addr)
}

// GetRemoteAddr returns the downstream peer address, or "".
func GetRemoteAddr(ctx context.Context) string { return getField(ctx, RemoteAddrKey) }

// WithLayer attaches the name of the middleware layer currently handling
// the connection.
func WithLayer(ctx context.Context, layer string) context.Context {
	return withField(ctx, LayerKey, layer)
}

// GetLayer returns the current middleware layer name, or "".
func GetLayer(ctx context.Context) string { return getField(ctx, LayerKey) }

// WithTraceID attaches the trace id correlating logs to exported spans.
func WithTraceID(ctx context.Context, id string) context.Context {
	return withField(ctx, TraceIDKey, id)
}

// GetTraceID returns the trace id, or "".
func GetTraceID(ctx context.Context) string { return getField(ctx, TraceIDKey) }

// WithSpanID attaches the current span id.
func WithSpanID(ctx context.Context, id string) context.Context {
	return withField(ctx, SpanIDKey, id)
}

// GetSpanID returns the span id, or "".
func GetSpanID(ctx context.Context) string { return getField(ctx, SpanIDKey) }

// extractContextFields renders the context's populated log fields as
// slog-style key/value pairs, in logFields order.
func extractContextFields(ctx context.Context) []any {
	var fields []any
	for _, key := range logFields {
		if v := getField(ctx, key); v != "" {
			fields = append(fields, string(key), v)
		}
	}
	return fields
}

// ContextLogger binds a Logger to one connection's context so call sites
// inside the accept loop don't re-thread ctx on every line.
type ContextLogger struct {
	logger *Logger
	ctx    context.Context
}

// NewContextLogger creates a logger bound to ctx's fields.
func NewContextLogger(logger *Logger, ctx context.Context) *ContextLogger {
	return &ContextLogger{logger: logger.WithContext(ctx), ctx: ctx}
}

// Debug logs a debug message with the bound context's fields.
func (cl *ContextLogger) Debug(msg string, args ...any) {
	cl.logger.DebugContext(cl.ctx, msg, args...)
}

// Info logs an info message with the bound context's fields.
func (cl *ContextLogger) Info(msg string, args ...any) {
	cl.logger.InfoContext(cl.ctx, msg, args...)
}

// Warn logs a warning message with the bound context's fields.
func (cl *ContextLogger) Warn(msg string, args ...any) {
	cl.logger.WarnContext(cl.ctx, msg, args...)
}

// Error logs an error message with the bound context's fields.
func (cl *ContextLogger) Error(msg string, args ...any) {
	cl.logger.ErrorContext(cl.ctx, msg, args...)
}

// With returns a ContextLogger carrying additional fixed fields.
func (cl *ContextLogger) With(args ...any) *ContextLogger {
	return &ContextLogger{logger: cl.logger.With(args...), ctx: cl.ctx}
}
