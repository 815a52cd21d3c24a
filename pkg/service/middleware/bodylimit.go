package middleware

import "mercator-hq/relay/pkg/service"

// ContentLengther is implemented by request types that can report their
// body size in advance, e.g. via the Content-Length header.
type ContentLengther interface {
	ContentLength() int64
}

// RequestBodyLimit fails with service.ErrPayloadTooLarge when the
// request's declared content length exceeds n bytes. It only inspects the
// declared length; enforcing the limit against a body that lies about its
// size, or that has no declared length at all, is the inner service's
// responsibility (typically by wrapping its reader in an io.LimitReader).
func RequestBodyLimit[State any, Req ContentLengther, Resp any](n int64) service.Layer[State, Req, Resp] {
	return service.LayerFunc[State, Req, Resp](func(inner service.Service[State, Req, Resp]) service.Service[State, Req, Resp] {
		return service.ServiceFunc[State, Req, Resp](func(ctx service.Context[State], req Req) (Resp, error) {
			var zero Resp
			if cl := req.ContentLength(); cl >= 0 && cl > n {
				return zero, service.ErrPayloadTooLarge
			}
			return inner.Serve(ctx, req)
		})
	})
}
