package middleware

import (
	"github.com/google/uuid"

	"mercator-hq/relay/pkg/service"
)

// RequestIDHeader is the conventional header name request IDs travel
// under.
const RequestIDHeader = "X-Request-ID"

// requestIDExt is the context extension type RequestID inserts so that
// PropagateRequestID (and any handler downstream) can read back the id
// without re-parsing headers.
type requestIDExt string

// RequestID generates a request id via uuid.NewString if the request does
// not already carry one in RequestIDHeader, and inserts it into the
// context extensions under its own type so PropagateRequestID can mirror
// it onto the response without re-parsing headers.
func RequestID[State any, Req HeaderCarrier, Resp any]() service.Layer[State, Req, Resp] {
	return service.LayerFunc[State, Req, Resp](func(inner service.Service[State, Req, Resp]) service.Service[State, Req, Resp] {
		return service.ServiceFunc[State, Req, Resp](func(ctx service.Context[State], req Req) (Resp, error) {
			id := req.Header().Get(RequestIDHeader)
			if id == "" {
				id = uuid.NewString()
				req.Header().Set(RequestIDHeader, id)
			}
			service.Insert(&ctx, requestIDExt(id))
			return inner.Serve(ctx, req)
		})
	})
}

// RequestIDFromContext returns the request id stashed by RequestID, if
// any.
func RequestIDFromContext[State any](ctx service.Context[State]) (string, bool) {
	id, ok := service.Get[requestIDExt](ctx)
	return string(id), ok
}

// PropagateRequestID mirrors the request id found in the context (as set
// by RequestID) onto the response's RequestIDHeader. It is a no-op if no
// request id is present in the context.
func PropagateRequestID[State any, Req any, Resp HeaderCarrier]() service.Layer[State, Req, Resp] {
	return service.LayerFunc[State, Req, Resp](func(inner service.Service[State, Req, Resp]) service.Service[State, Req, Resp] {
		return service.ServiceFunc[State, Req, Resp](func(ctx service.Context[State], req Req) (Resp, error) {
			resp, err := inner.Serve(ctx, req)
			if err != nil {
				return resp, err
			}
			if id, ok := RequestIDFromContext(ctx); ok {
				resp.Header().Set(RequestIDHeader, id)
			}
			return resp, nil
		})
	})
}
