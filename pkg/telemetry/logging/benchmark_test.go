package logging

import (
	"context"
	"io"
	"testing"
)

func benchLogger(b *testing.B, redact bool) *Logger {
	b.Helper()
	logger, err := New(Config{
		Level:      "info",
		Format:     "json",
		RedactPII:  redact,
		BufferSize: 1 << 16,
		Writer:     io.Discard,
	})
	if err != nil {
		b.Fatalf("New: %v", err)
	}
	b.Cleanup(func() { logger.Shutdown() })
	return logger
}

// The accept loop logs one line per rejected connection, so the enabled
// path has a latency budget: target <10µs.
func BenchmarkInfoEnabled(b *testing.B) {
	logger := benchLogger(b, false)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		logger.Info("connection rejected", "remote", "203.0.113.9:51820", "reason", "family mismatch")
	}
}

// Filtered-out levels must be near free: target <1µs.
func BenchmarkDebugFiltered(b *testing.B) {
	logger := benchLogger(b, false)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		logger.Debug("header bytes", "size", 29)
	}
}

func BenchmarkInfoWithRedaction(b *testing.B) {
	logger := benchLogger(b, true)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		logger.Info("upstream authenticated",
			"remote", "203.0.113.9:51820",
			"authorization", "Bearer abc123xyz789",
		)
	}
}

func BenchmarkInfoContextFields(b *testing.B) {
	logger := benchLogger(b, false)
	ctx := WithTransport(WithRequestID(context.Background(), "req-123"), "tcp")

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		logger.InfoContext(ctx, "dialing upstream")
	}
}

func BenchmarkWithChildLogger(b *testing.B) {
	logger := benchLogger(b, false)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = logger.With("listener", "127.0.0.1:8404")
	}
}

func BenchmarkRedactString(b *testing.B) {
	redactor := NewRedactor(nil)
	input := "client 203.0.113.9 sent Authorization: Bearer abc123xyz789 via 192.168.1.100"

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = redactor.RedactString(input)
	}
}

func BenchmarkRedactArgs(b *testing.B) {
	redactor := NewRedactor(nil)
	args := []any{
		"remote", "203.0.113.9:51820",
		"api_key", "sk-abc123xyz789",
		"count", 42,
		"message", "header written",
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = redactor.RedactArgs(args...)
	}
}

// BenchmarkLineWriter measures the non-blocking buffer path alone.
func BenchmarkLineWriter(b *testing.B) {
	lw := newLineWriter(io.Discard, 1<<16)
	defer lw.Stop()
	line := []byte(`{"level":"INFO","msg":"header written","size":29}` + "\n")

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		lw.Write(line)
	}
}
