package service

import (
	"context"
	"testing"
)

type fooExt struct{ V int }
type barExt struct{ S string }

func TestExtensionsInsertGetRemove(t *testing.T) {
	ctx := New[string](context.Background(), "state")

	if _, ok := Get[fooExt](ctx); ok {
		t.Fatalf("expected no fooExt before insert")
	}

	Insert(&ctx, fooExt{V: 42})
	got, ok := Get[fooExt](ctx)
	if !ok || got.V != 42 {
		t.Fatalf("Get[fooExt] = %+v, %v; want {42}, true", got, ok)
	}

	// Insert of a second type must not disturb the first.
	Insert(&ctx, barExt{S: "hello"})
	if got, ok := Get[fooExt](ctx); !ok || got.V != 42 {
		t.Fatalf("fooExt disturbed by inserting barExt: %+v, %v", got, ok)
	}

	// Re-insert replaces, not appends.
	Insert(&ctx, fooExt{V: 7})
	if got, ok := Get[fooExt](ctx); !ok || got.V != 7 {
		t.Fatalf("Get[fooExt] after replace = %+v, %v; want {7}, true", got, ok)
	}

	Remove[fooExt](&ctx)
	if _, ok := Get[fooExt](ctx); ok {
		t.Fatalf("expected fooExt removed")
	}
	if _, ok := Get[barExt](ctx); !ok {
		t.Fatalf("expected barExt to survive Remove[fooExt]")
	}
}

func TestContextCloneIsIndependent(t *testing.T) {
	ctx := New[int](context.Background(), 1)
	Insert(&ctx, fooExt{V: 1})

	clone := ctx.Clone()
	Insert(&clone, fooExt{V: 2})

	orig, _ := Get[fooExt](ctx)
	cloned, _ := Get[fooExt](clone)

	if orig.V != 1 {
		t.Fatalf("mutating clone leaked into original: orig.V = %d", orig.V)
	}
	if cloned.V != 2 {
		t.Fatalf("clone.V = %d, want 2", cloned.V)
	}

	if clone.State() != ctx.State() {
		t.Fatalf("clone should share state value: %v != %v", clone.State(), ctx.State())
	}
}

func TestContextSatisfiesStdContext(t *testing.T) {
	var _ context.Context = New[int](context.Background(), 0)
}

func TestContextWithStd(t *testing.T) {
	ctx := New[int](context.Background(), 0)
	Insert(&ctx, fooExt{V: 9})

	std, cancel := context.WithCancel(ctx.Std())
	defer cancel()

	replaced := ctx.WithStd(std)
	if got, ok := Get[fooExt](replaced); !ok || got.V != 9 {
		t.Fatalf("WithStd lost extensions: %+v, %v", got, ok)
	}

	cancel()
	select {
	case <-replaced.Done():
	default:
		t.Fatalf("replaced context should observe cancellation of its new std context")
	}
}
