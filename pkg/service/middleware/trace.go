package middleware

import (
	"mercator-hq/relay/pkg/service"
	"mercator-hq/relay/pkg/telemetry/tracing"
)

// StatusCarrier is implemented by response types that expose an HTTP-style
// status code, used by Trace to classify a call as a failure (5xx) even
// when inner itself returned a nil error.
type StatusCarrier interface {
	StatusCode() int
}

// Trace wraps inner in a span named spanName using tracer, classifying
// the call as a failure (span status Error) whenever inner returns an
// error or, if Resp implements StatusCarrier, whenever the response
// status is >= 500. Grounded on pkg/telemetry/tracing's Tracer/SetStatus
// wrapper around the OpenTelemetry SDK.
func Trace[State, Req, Resp any](tracer *tracing.Tracer, spanName string) service.Layer[State, Req, Resp] {
	return service.LayerFunc[State, Req, Resp](func(inner service.Service[State, Req, Resp]) service.Service[State, Req, Resp] {
		return service.ServiceFunc[State, Req, Resp](func(ctx service.Context[State], req Req) (Resp, error) {
			std, span := tracer.Start(ctx.Std(), spanName)
			defer span.End()

			resp, err := inner.Serve(ctx.WithStd(std), req)

			classifyErr := err
			if classifyErr == nil {
				if sc, ok := any(resp).(StatusCarrier); ok && sc.StatusCode() >= 500 {
					classifyErr = errServerStatus
				}
			}
			tracing.SetStatus(span, classifyErr)
			if err != nil {
				tracing.SetError(span, err)
			}
			return resp, err
		})
	})
}

// errServerStatus marks a span as failed when a response carries a 5xx
// status but inner returned no Go error; it never escapes Trace.
var errServerStatus = traceStatusError("response status >= 500")

type traceStatusError string

func (e traceStatusError) Error() string { return string(e) }
