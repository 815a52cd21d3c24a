package service

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the canonical middleware layers in
// pkg/service/middleware. Callers should use errors.Is against these
// rather than comparing layer-specific error values.
var (
	// ErrTimeout is returned by the Timeout layer when the inner Service
	// does not resolve within the configured duration.
	ErrTimeout = errors.New("service: timeout")

	// ErrRejected is returned by the Filter/FilterAsync layers when the
	// predicate returns false.
	ErrRejected = errors.New("service: rejected")

	// ErrPayloadTooLarge is returned by the RequestBodyLimit layer when a
	// request exceeds the configured byte limit.
	ErrPayloadTooLarge = errors.New("service: payload too large")

	// ErrInternal is returned by the CatchPanic layer in place of a
	// recovered panic value.
	ErrInternal = errors.New("service: internal error")
)

// WrapContext wraps err with a "<prefix>: " message, matching the
// "<layer> (<config>): <operation>" error-string convention used
// throughout relay's layers (see pkg/proxyproto/client). Returns nil if
// err is nil.
func WrapContext(prefix string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", prefix, err)
}
