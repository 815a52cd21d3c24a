package middleware

import "mercator-hq/relay/pkg/service"

// AddExtension inserts v into the context's extension map before calling
// inner, making it retrievable downstream via service.Get[T]. v is
// captured once at layer-construction time; use AddExtensionFunc when the
// value must be computed per request.
func AddExtension[T any, State, Req, Resp any](v T) service.Layer[State, Req, Resp] {
	return AddExtensionFunc[T, State, Req, Resp](func(service.Context[State], Req) T { return v })
}

// AddExtensionFunc inserts the result of f into the context's extension
// map before calling inner.
func AddExtensionFunc[T any, State, Req, Resp any](f func(service.Context[State], Req) T) service.Layer[State, Req, Resp] {
	return service.LayerFunc[State, Req, Resp](func(inner service.Service[State, Req, Resp]) service.Service[State, Req, Resp] {
		return service.ServiceFunc[State, Req, Resp](func(ctx service.Context[State], req Req) (Resp, error) {
			service.Insert(&ctx, f(ctx, req))
			return inner.Serve(ctx, req)
		})
	})
}
