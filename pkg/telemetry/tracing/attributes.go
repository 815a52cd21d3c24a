package tracing

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span Attribute Helpers
//
// These functions provide a convenient way to set common attributes on spans
// emitted by relay's Service/Layer pipeline. Custom attribute keys use the
// "relay.*" namespace; standard keys follow OpenTelemetry semantic
// conventions where applicable (net.*, rpc.*).

// Attribute keys used throughout the proxy stack.
const (
	// Layer identity.
	AttrLayerName = "relay.layer"
	AttrStackName = "relay.stack"

	// Request correlation.
	AttrRequestID = "relay.request_id"

	// PROXY protocol attributes.
	AttrProxyVersion  = "relay.proxyproto.version"
	AttrProxyFamily   = "relay.proxyproto.family"
	AttrProxyProtocol = "relay.proxyproto.protocol"

	// Connection endpoints.
	AttrSrcAddr = "relay.conn.src"
	AttrDstAddr = "relay.conn.dst"

	// Error attributes.
	AttrErrorType    = "relay.error.type"
	AttrErrorMessage = "error.message"
	AttrErrorStack   = "error.stack"

	// Performance attributes.
	AttrDurationMs = "relay.duration_ms"
	AttrRetryCount = "relay.retry_count"
)

// SetLayerAttributes sets the identity of the layer/stack a span
// represents.
//
// Example:
//
//	SetLayerAttributes(span, "haproxy", "ingress")
func SetLayerAttributes(span trace.Span, layer, stack string) {
	attrs := []attribute.KeyValue{attribute.String(AttrLayerName, layer)}
	if stack != "" {
		attrs = append(attrs, attribute.String(AttrStackName, stack))
	}
	span.SetAttributes(attrs...)
}

// SetRequestIDAttribute sets the request correlation id attribute.
func SetRequestIDAttribute(span trace.Span, requestID string) {
	if requestID != "" {
		span.SetAttributes(attribute.String(AttrRequestID, requestID))
	}
}

// SetProxyProtocolAttributes sets the PROXY protocol version, address
// family and transport protocol a client-layer span encoded.
//
// Example:
//
//	SetProxyProtocolAttributes(span, "v2", "tcp4", "stream")
func SetProxyProtocolAttributes(span trace.Span, version, family, protocol string) {
	span.SetAttributes(
		attribute.String(AttrProxyVersion, version),
		attribute.String(AttrProxyFamily, family),
		attribute.String(AttrProxyProtocol, protocol),
	)
}

// SetConnectionAttributes sets the resolved source and destination socket
// addresses a PROXY header was built from.
func SetConnectionAttributes(span trace.Span, src, dst string) {
	span.SetAttributes(
		attribute.String(AttrSrcAddr, src),
		attribute.String(AttrDstAddr, dst),
	)
}

// SetErrorAttributes sets error-related attributes on a span. This also
// records the error using span.RecordError() and sets the span status.
//
// Example:
//
//	SetErrorAttributes(span, err, "family_mismatch")
func SetErrorAttributes(span trace.Span, err error, errorType string) {
	if err == nil {
		return
	}
	span.SetAttributes(
		attribute.Bool("error", true),
		attribute.String(AttrErrorType, errorType),
		attribute.String(AttrErrorMessage, err.Error()),
	)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetDurationAttribute sets the duration attribute on a span, in
// milliseconds.
func SetDurationAttribute(span trace.Span, durationMs int64) {
	span.SetAttributes(attribute.Int64(AttrDurationMs, durationMs))
}

// SetRetryAttribute sets the retry count attribute on a span.
func SetRetryAttribute(span trace.Span, retryCount int) {
	span.SetAttributes(attribute.Int(AttrRetryCount, retryCount))
}

// AddEvent adds a named event to the span with optional attributes.
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// RecordException records an exception event on the span.
func RecordException(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
	}
}

// AttributeBuilder provides a fluent interface for building span
// attributes when a call site needs to assemble several at once.
type AttributeBuilder struct {
	attrs []attribute.KeyValue
}

// NewAttributeBuilder creates a new attribute builder.
func NewAttributeBuilder() *AttributeBuilder {
	return &AttributeBuilder{attrs: make([]attribute.KeyValue, 0, 8)}
}

// WithLayer adds layer/stack identity attributes.
func (ab *AttributeBuilder) WithLayer(layer, stack string) *AttributeBuilder {
	ab.attrs = append(ab.attrs, attribute.String(AttrLayerName, layer))
	if stack != "" {
		ab.attrs = append(ab.attrs, attribute.String(AttrStackName, stack))
	}
	return ab
}

// WithProxyProtocol adds PROXY protocol version/family/protocol
// attributes.
func (ab *AttributeBuilder) WithProxyProtocol(version, family, protocol string) *AttributeBuilder {
	ab.attrs = append(ab.attrs,
		attribute.String(AttrProxyVersion, version),
		attribute.String(AttrProxyFamily, family),
		attribute.String(AttrProxyProtocol, protocol),
	)
	return ab
}

// WithConnection adds source/destination address attributes.
func (ab *AttributeBuilder) WithConnection(src, dst string) *AttributeBuilder {
	ab.attrs = append(ab.attrs,
		attribute.String(AttrSrcAddr, src),
		attribute.String(AttrDstAddr, dst),
	)
	return ab
}

// WithCustom adds a custom attribute, dispatching on the Go type of
// value.
func (ab *AttributeBuilder) WithCustom(key string, value any) *AttributeBuilder {
	switch v := value.(type) {
	case string:
		ab.attrs = append(ab.attrs, attribute.String(key, v))
	case int:
		ab.attrs = append(ab.attrs, attribute.Int(key, v))
	case int64:
		ab.attrs = append(ab.attrs, attribute.Int64(key, v))
	case float64:
		ab.attrs = append(ab.attrs, attribute.Float64(key, v))
	case bool:
		ab.attrs = append(ab.attrs, attribute.Bool(key, v))
	default:
		ab.attrs = append(ab.attrs, attribute.String(key, fmt.Sprintf("%v", v)))
	}
	return ab
}

// Build returns the built attributes as a trace.SpanStartOption.
func (ab *AttributeBuilder) Build() trace.SpanStartOption {
	return trace.WithAttributes(ab.attrs...)
}

// Apply applies the attributes to a span.
func (ab *AttributeBuilder) Apply(span trace.Span) {
	span.SetAttributes(ab.attrs...)
}

// Attributes returns the raw attribute slice.
func (ab *AttributeBuilder) Attributes() []attribute.KeyValue {
	return ab.attrs
}
