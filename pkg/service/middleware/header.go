package middleware

import (
	"net/http"

	"mercator-hq/relay/pkg/service"
)

// HeaderCarrier is implemented by any request or response type that
// exposes a mutable header map, matching the shape of *http.Request and
// *http.Response. Header-mutating layers operate on whichever of Req/Resp
// the caller asks for via SetRequestHeader/SetResponseHeader's target
// selection.
type HeaderCarrier interface {
	Header() http.Header
}

// SetRequestHeader unconditionally sets header key to value on the
// request before calling inner, replacing any existing values.
func SetRequestHeader[State any, Req HeaderCarrier, Resp any](key, value string) service.Layer[State, Req, Resp] {
	return service.LayerFunc[State, Req, Resp](func(inner service.Service[State, Req, Resp]) service.Service[State, Req, Resp] {
		return service.ServiceFunc[State, Req, Resp](func(ctx service.Context[State], req Req) (Resp, error) {
			req.Header().Set(key, value)
			return inner.Serve(ctx, req)
		})
	})
}

// AppendRequestHeader adds value to key on the request without removing
// any values already present.
func AppendRequestHeader[State any, Req HeaderCarrier, Resp any](key, value string) service.Layer[State, Req, Resp] {
	return service.LayerFunc[State, Req, Resp](func(inner service.Service[State, Req, Resp]) service.Service[State, Req, Resp] {
		return service.ServiceFunc[State, Req, Resp](func(ctx service.Context[State], req Req) (Resp, error) {
			req.Header().Add(key, value)
			return inner.Serve(ctx, req)
		})
	})
}

// InsertRequestHeaderIfAbsent sets key to value on the request only if
// key has no value already.
func InsertRequestHeaderIfAbsent[State any, Req HeaderCarrier, Resp any](key, value string) service.Layer[State, Req, Resp] {
	return service.LayerFunc[State, Req, Resp](func(inner service.Service[State, Req, Resp]) service.Service[State, Req, Resp] {
		return service.ServiceFunc[State, Req, Resp](func(ctx service.Context[State], req Req) (Resp, error) {
			if req.Header().Get(key) == "" {
				req.Header().Set(key, value)
			}
			return inner.Serve(ctx, req)
		})
	})
}

// SetResponseHeader unconditionally sets header key to value on the
// response returned by inner, replacing any existing values.
func SetResponseHeader[State, Req any, Resp HeaderCarrier](key, value string) service.Layer[State, Req, Resp] {
	return service.LayerFunc[State, Req, Resp](func(inner service.Service[State, Req, Resp]) service.Service[State, Req, Resp] {
		return service.ServiceFunc[State, Req, Resp](func(ctx service.Context[State], req Req) (Resp, error) {
			resp, err := inner.Serve(ctx, req)
			if err != nil {
				return resp, err
			}
			resp.Header().Set(key, value)
			return resp, nil
		})
	})
}

// AppendResponseHeader adds value to key on the response returned by
// inner without removing any values already present.
func AppendResponseHeader[State, Req any, Resp HeaderCarrier](key, value string) service.Layer[State, Req, Resp] {
	return service.LayerFunc[State, Req, Resp](func(inner service.Service[State, Req, Resp]) service.Service[State, Req, Resp] {
		return service.ServiceFunc[State, Req, Resp](func(ctx service.Context[State], req Req) (Resp, error) {
			resp, err := inner.Serve(ctx, req)
			if err != nil {
				return resp, err
			}
			resp.Header().Add(key, value)
			return resp, nil
		})
	})
}

// InsertResponseHeaderIfAbsent sets key to value on the response returned
// by inner only if key has no value already.
func InsertResponseHeaderIfAbsent[State, Req any, Resp HeaderCarrier](key, value string) service.Layer[State, Req, Resp] {
	return service.LayerFunc[State, Req, Resp](func(inner service.Service[State, Req, Resp]) service.Service[State, Req, Resp] {
		return service.ServiceFunc[State, Req, Resp](func(ctx service.Context[State], req Req) (Resp, error) {
			resp, err := inner.Serve(ctx, req)
			if err != nil {
				return resp, err
			}
			if resp.Header().Get(key) == "" {
				resp.Header().Set(key, value)
			}
			return resp, nil
		})
	})
}
