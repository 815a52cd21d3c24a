// Package logging provides structured logging with PII redaction.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - Structured logging with JSON and text formats
//   - Redaction of credentials and client addresses before encoding
//   - Context-aware logging with relay's request/connection fields
//   - An async line buffer that drops (and counts) rather than blocks
//   - Configurable log levels (debug, info, warn, error)
//
// # Usage
//
//	// Create a logger
//	logger, err := logging.New(logging.Config{
//	    Level:     "info",
//	    Format:    "json",
//	    RedactPII: true,
//	})
//
//	// Log structured data
//	logger.Info("Request processed",
//	    "request_id", "req-123",
//	    "api_key", "sk-abc123",  // redacted before encoding
//	    "duration_ms", 1234,
//	)
//
//	// Create context-aware logger
//	ctx := context.WithValue(ctx, logging.RequestIDKey, "req-123")
//	ctxLogger := logger.WithContext(ctx)
//	ctxLogger.Info("Processing")  // Includes request_id automatically
//
// # Redaction
//
// With RedactPII enabled, log fields are scrubbed before encoding:
//
//   - Bearer/Basic credentials: Bearer abc123 → Bearer [redacted]
//   - URL userinfo: http://user:pw@host → http://[redacted]@host
//   - key=value secrets: api_key=sk123 → api_key=[redacted]
//   - Logged PROXY v1 lines: the client (source) field is masked
//   - IPv4 addresses keep their /16: 192.168.1.100 → 192.168.x.x
//   - Values under sensitive keys (password, token, payload, ...) are
//     replaced wholesale
//
// # Performance
//
// The async line buffer ensures logging doesn't block connection
// handling:
//   - <1µs when log level filters out the message
//   - <10µs when writing to the buffer
//   - Dropped lines are counted (Logger.Dropped) when the buffer is full
package logging
