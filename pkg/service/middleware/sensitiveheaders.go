package middleware

import "mercator-hq/relay/pkg/service"

// SensitiveHeaders is the context extension type listing header names
// that downstream logging must redact. pkg/telemetry/logging's redactor
// consults this set by name rather than hardcoding a header list, so a
// stack can mark additional sensitive headers (a custom auth scheme, an
// internal routing header) without changing the logger.
type SensitiveHeaders map[string]struct{}

// Contains reports whether header (case-sensitive, canonical form
// expected) is marked sensitive.
func (s SensitiveHeaders) Contains(header string) bool {
	_, ok := s[header]
	return ok
}

// SensitiveHeadersLayer inserts a SensitiveHeaders extension listing the
// given header names before calling inner. It never strips or mutates the
// headers themselves — it only marks which ones logging must treat as
// secret.
func SensitiveHeadersLayer[State, Req, Resp any](headers ...string) service.Layer[State, Req, Resp] {
	set := make(SensitiveHeaders, len(headers))
	for _, h := range headers {
		set[h] = struct{}{}
	}
	return service.LayerFunc[State, Req, Resp](func(inner service.Service[State, Req, Resp]) service.Service[State, Req, Resp] {
		return service.ServiceFunc[State, Req, Resp](func(ctx service.Context[State], req Req) (Resp, error) {
			service.Insert(&ctx, set)
			return inner.Serve(ctx, req)
		})
	})
}
