package service

// Stack is an ordered sequence of layers. Pushing layers [A, B, C] and
// calling Then(leaf) produces A(B(C(leaf))): the first-pushed layer is
// outermost, seeing the request first and the response last.
//
// Stack is itself cheap to copy by value (it holds a single slice header);
// Push returns the receiver so calls can be chained, but a Stack can also
// be built incrementally and reused as a prefix for several Then calls.
type Stack[State, Req, Resp any] struct {
	layers []Layer[State, Req, Resp]
}

// NewStack returns an empty Stack.
func NewStack[State, Req, Resp any]() *Stack[State, Req, Resp] {
	return &Stack[State, Req, Resp]{}
}

// Push appends a layer to the stack and returns the receiver.
func (s *Stack[State, Req, Resp]) Push(l Layer[State, Req, Resp]) *Stack[State, Req, Resp] {
	s.layers = append(s.layers, l)
	return s
}

// Len returns the number of layers currently pushed.
func (s *Stack[State, Req, Resp]) Len() int {
	return len(s.layers)
}

// Then applies every pushed layer to leaf, outermost-first, and returns
// the fully decorated Service. Then does not mutate the Stack, so the
// same Stack can be reused to decorate multiple leaf services (e.g. one
// per upstream route) without re-declaring the middleware chain.
func (s *Stack[State, Req, Resp]) Then(leaf Service[State, Req, Resp]) Service[State, Req, Resp] {
	svc := leaf
	for i := len(s.layers) - 1; i >= 0; i-- {
		svc = s.layers[i].Layer(svc)
	}
	return svc
}
