package middleware

import (
	"context"
	"time"

	"mercator-hq/relay/pkg/service"
)

// Timeout fails a request with service.ErrTimeout if inner does not
// resolve within d. The inner Service is invoked in its own goroutine so
// that its context can be cancelled the moment the deadline passes;
// relay's contract is that a cancelled inner invocation abandons whatever
// it was doing, not that it stops instantaneously, so the goroutine is
// left to unwind on its own.
func Timeout[State, Req, Resp any](d time.Duration) service.Layer[State, Req, Resp] {
	return service.LayerFunc[State, Req, Resp](func(inner service.Service[State, Req, Resp]) service.Service[State, Req, Resp] {
		return service.ServiceFunc[State, Req, Resp](func(ctx service.Context[State], req Req) (Resp, error) {
			var zero Resp
			std, cancel := context.WithTimeout(ctx.Std(), d)
			defer cancel()
			tctx := ctx.WithStd(std)

			type result struct {
				resp Resp
				err  error
			}
			done := make(chan result, 1)
			go func() {
				resp, err := inner.Serve(tctx, req)
				done <- result{resp, err}
			}()

			select {
			case r := <-done:
				return r.resp, r.err
			case <-std.Done():
				return zero, service.ErrTimeout
			}
		})
	})
}
