package middleware

import "mercator-hq/relay/pkg/service"

// Predicate decides whether a request may proceed to the inner Service.
type Predicate[State, Req any] func(ctx service.Context[State], req Req) bool

// AsyncPredicate is the async-flavoured form of Predicate, for checks that
// themselves need to make a blocking call (a database lookup, a remote
// policy check). Filter does not distinguish between the two beyond
// calling one synchronously from Serve; Go has no separate async/sync
// function color, so FilterAsync exists to let a predicate's signature
// document that it may block and fail.
type AsyncPredicate[State, Req any] func(ctx service.Context[State], req Req) (bool, error)

// Filter short-circuits with service.ErrRejected when p returns false.
func Filter[State, Req, Resp any](p Predicate[State, Req]) service.Layer[State, Req, Resp] {
	return service.LayerFunc[State, Req, Resp](func(inner service.Service[State, Req, Resp]) service.Service[State, Req, Resp] {
		return service.ServiceFunc[State, Req, Resp](func(ctx service.Context[State], req Req) (Resp, error) {
			var zero Resp
			if !p(ctx, req) {
				return zero, service.ErrRejected
			}
			return inner.Serve(ctx, req)
		})
	})
}

// FilterAsync short-circuits with service.ErrRejected when p returns
// (false, nil), and propagates any error p itself returns.
func FilterAsync[State, Req, Resp any](p AsyncPredicate[State, Req]) service.Layer[State, Req, Resp] {
	return service.LayerFunc[State, Req, Resp](func(inner service.Service[State, Req, Resp]) service.Service[State, Req, Resp] {
		return service.ServiceFunc[State, Req, Resp](func(ctx service.Context[State], req Req) (Resp, error) {
			var zero Resp
			ok, err := p(ctx, req)
			if err != nil {
				return zero, err
			}
			if !ok {
				return zero, service.ErrRejected
			}
			return inner.Serve(ctx, req)
		})
	})
}
