package service

import (
	"context"
	"reflect"
	"time"
)

// Context carries the per-request state that flows through a Stack: a
// user-defined State value shared by reference across the whole pipeline,
// a standard context.Context for cancellation and deadlines, and a
// type-keyed extension map used to pass optional values (SocketInfo,
// Forwarded, request IDs, ...) between layers without widening Service's
// signature for every cross-cutting concern.
//
// Context implements context.Context itself so it can be threaded directly
// into anything that expects one (context.WithTimeout, outbound HTTP
// requests, etc.) via Std/WithStd.
type Context[State any] struct {
	std   context.Context
	state State
	ext   extensions
}

// extensions is a type-keyed single-slot map. At most one value is stored
// per concrete type; insertion replaces any prior value of that type.
type extensions map[reflect.Type]any

// New builds a Context wrapping std with the given state and an empty
// extension map.
func New[State any](std context.Context, state State) Context[State] {
	if std == nil {
		std = context.Background()
	}
	return Context[State]{std: std, state: state, ext: make(extensions)}
}

// State returns the shared state value.
func (c Context[State]) State() State {
	return c.state
}

// Std returns the embedded standard context.Context.
func (c Context[State]) Std() context.Context {
	return c.std
}

// WithStd returns a clone of c carrying std instead of the original
// standard context. Used by layers (e.g. Timeout) that need to replace
// the cancellation context without disturbing the extension map.
func (c Context[State]) WithStd(std context.Context) Context[State] {
	clone := c.Clone()
	clone.std = std
	return clone
}

// Clone returns a Context sharing the same state by reference and an
// independent copy of the extension map: inserts/removes made on the
// clone (or the original) after Clone is called are not observed by the
// other. This is the "cheap to clone" contract: the copy is O(number of
// extensions present), never O(request size).
func (c Context[State]) Clone() Context[State] {
	cp := make(extensions, len(c.ext))
	for k, v := range c.ext {
		cp[k] = v
	}
	return Context[State]{std: c.std, state: c.state, ext: cp}
}

// Deadline, Done, Err and Value satisfy context.Context by delegating to
// the embedded standard context.
func (c Context[State]) Deadline() (time.Time, bool) { return c.std.Deadline() }
func (c Context[State]) Done() <-chan struct{}       { return c.std.Done() }
func (c Context[State]) Err() error                  { return c.std.Err() }
func (c Context[State]) Value(key any) any           { return c.std.Value(key) }

func typeKeyOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Insert stores v in the context's extension map, replacing any existing
// value of type T. It mutates c in place; a service may freely mutate the
// extension map of the context it was handed before forwarding it inward.
func Insert[T any, State any](c *Context[State], v T) {
	if c.ext == nil {
		c.ext = make(extensions)
	}
	c.ext[typeKeyOf[T]()] = v
}

// Get returns the value of type T stored in the context's extension map,
// if any.
func Get[T any, State any](c Context[State]) (T, bool) {
	var zero T
	raw, ok := c.ext[typeKeyOf[T]()]
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	return v, ok
}

// Remove deletes the value of type T from the context's extension map, if
// present.
func Remove[T any, State any](c *Context[State]) {
	delete(c.ext, typeKeyOf[T]())
}
