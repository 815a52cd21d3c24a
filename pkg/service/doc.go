/*
Package service defines the core request/response contract shared by every
component in relay: a Service is anything that turns a request into a
response or an error, a Layer decorates a Service with cross-cutting
behaviour, and a Stack composes layers in order.

# Service

	type Service[State, Req, Resp any] interface {
	    Serve(ctx Context[State], req Req) (Resp, error)
	}

Any function with that shape can be lifted into a Service with ServiceFunc.
Services are expected to be cheap to hold by reference and safe to call
concurrently; relay never mutates a Service after construction.

# Context and extensions

Context[State] carries the shared State value threaded through a whole
pipeline, wraps a standard context.Context for cancellation and deadlines
(Context itself implements context.Context), and holds a type-keyed
extension map (see Insert/Get/Remove) used to pass optional values (peer
address info, forwarded headers, request IDs) between layers without
widening the Service signature for every cross-cutting concern. At most
one value is stored per type; insertion replaces.

# Layer and Stack

	type Layer[State, Req, Resp any] interface {
	    Layer(inner Service[State, Req, Resp]) Service[State, Req, Resp]
	}

A Stack holds an ordered list of layers and folds them around a leaf Service
with Then. Pushing layers in the order [A, B, C] and calling Then(leaf)
produces A(B(C(leaf))) — A sees the request first and the response last.

# Example

	stack := service.NewStack[AppState, *http.Request, *http.Response]().
	    Push(middleware.CatchPanic[AppState, *http.Request, *http.Response]()).
	    Push(middleware.Timeout[AppState, *http.Request, *http.Response](30 * time.Second))

	svc := stack.Then(leafService)
	resp, err := svc.Serve(ctx, req)
*/
package service
