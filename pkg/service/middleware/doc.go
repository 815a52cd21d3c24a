// Package middleware provides the canonical Layer implementations every
// relay stack is expected to be able to reach for: timeout, filtering,
// extension injection, header manipulation, tracing, request IDs, panic
// recovery, body size limits, sensitive header marking, and content-coding.
//
// Every layer here is generic over Service's (State, Req, Resp) type
// parameters. Layers whose behaviour is inherently about HTTP semantics
// (headers, status codes, bodies) depend on small interfaces — HeaderCarrier,
// StatusCarrier, BodyCarrier — rather than a concrete HTTP type, so the same
// layer works whether Req/Resp are *http.Request/*http.Response or a
// domain-specific pair that merely happens to expose headers.
package middleware
