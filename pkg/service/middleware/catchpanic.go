package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"mercator-hq/relay/pkg/service"
)

// CatchPanic recovers a synchronous panic raised by inner.Serve and
// converts it to service.ErrInternal, logging the recovered value and
// stack trace.
func CatchPanic[State, Req, Resp any]() service.Layer[State, Req, Resp] {
	return service.LayerFunc[State, Req, Resp](func(inner service.Service[State, Req, Resp]) service.Service[State, Req, Resp] {
		return service.ServiceFunc[State, Req, Resp](func(ctx service.Context[State], req Req) (resp Resp, err error) {
			defer func() {
				if r := recover(); r != nil {
					slog.ErrorContext(ctx.Std(), "panic in service",
						"panic", fmt.Sprintf("%v", r),
						"stack", string(debug.Stack()),
					)
					err = service.ErrInternal
				}
			}()
			return inner.Serve(ctx, req)
		})
	})
}
