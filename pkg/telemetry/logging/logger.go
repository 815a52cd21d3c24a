package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"mercator-hq/relay/pkg/config"
)

// Format names accepted by Config.Format. "console" is kept as an alias
// for text so configs written for interactive use keep working.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Config contains configuration for the Logger.
type Config struct {
	// Level is the minimum log level ("debug", "info", "warn", "error")
	Level string

	// Format is the output format ("json", "text", "console")
	Format string

	// AddSource includes file and line number in logs
	AddSource bool

	// RedactPII enables redaction of secrets and client addresses
	RedactPII bool

	// BufferSize enables the async line buffer when > 0. Zero means
	// synchronous writes, which tests rely on for determinism.
	BufferSize int

	// RedactPatterns contains custom redaction patterns
	RedactPatterns []config.RedactPattern

	// Writer is the output writer (defaults to os.Stdout)
	Writer io.Writer
}

// Logger wraps log/slog with redaction applied before any attribute
// reaches the handler, and an optional async line buffer so a stalled
// log sink (a full pipe, a slow disk) cannot backpressure the accept
// loop. When the buffer fills, lines are dropped and counted rather than
// blocking a connection goroutine.
type Logger struct {
	h        *slog.Logger
	redactor *Redactor
	buf      *lineWriter
}

// New creates a Logger from cfg.
func New(cfg Config) (*Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	format, err := normalizeFormat(cfg.Format)
	if err != nil {
		return nil, fmt.Errorf("invalid log format: %w", err)
	}

	out := cfg.Writer
	if out == nil {
		out = os.Stdout
	}

	var buf *lineWriter
	if cfg.BufferSize > 0 {
		buf = newLineWriter(out, cfg.BufferSize)
		out = buf
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch format {
	case FormatJSON:
		handler = slog.NewJSONHandler(out, opts)
	case FormatText:
		handler = slog.NewTextHandler(out, opts)
	}

	var redactor *Redactor
	if cfg.RedactPII {
		redactor = NewRedactor(cfg.RedactPatterns)
	}

	return &Logger{
		h:        slog.New(handler),
		redactor: redactor,
		buf:      buf,
	}, nil
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...any) {
	l.log(context.Background(), slog.LevelDebug, msg, args...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, args ...any) {
	l.log(context.Background(), slog.LevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...any) {
	l.log(context.Background(), slog.LevelWarn, msg, args...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...any) {
	l.log(context.Background(), slog.LevelError, msg, args...)
}

// DebugContext logs a debug message, prepending relay's context-carried
// fields (request id, transport, upstream, remote address, layer).
func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelDebug, msg, append(extractContextFields(ctx), args...)...)
}

// InfoContext logs an info message with context fields.
func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelInfo, msg, append(extractContextFields(ctx), args...)...)
}

// WarnContext logs a warning message with context fields.
func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelWarn, msg, append(extractContextFields(ctx), args...)...)
}

// ErrorContext logs an error message with context fields.
func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelError, msg, append(extractContextFields(ctx), args...)...)
}

func (l *Logger) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if !l.h.Enabled(ctx, level) {
		return
	}
	if l.redactor != nil {
		args = l.redactor.RedactArgs(args...)
	}
	l.h.Log(ctx, level, msg, args...)
}

// With returns a child logger carrying the given fields on every record.
// The fields pass through redaction once, here, not per log call.
func (l *Logger) With(args ...any) *Logger {
	if l.redactor != nil {
		args = l.redactor.RedactArgs(args...)
	}
	return &Logger{
		h:        l.h.With(args...),
		redactor: l.redactor,
		buf:      l.buf,
	}
}

// WithContext returns a child logger carrying the context's relay fields.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	args := extractContextFields(ctx)
	if len(args) == 0 {
		return l
	}
	return l.With(args...)
}

// Dropped reports how many log lines the async buffer discarded because
// the sink could not keep up. Zero when buffering is disabled. The
// housekeeper logs this periodically so silent log loss is visible.
func (l *Logger) Dropped() int64 {
	if l.buf == nil {
		return 0
	}
	return l.buf.Dropped()
}

// Shutdown flushes the async buffer, if any, and stops its writer.
func (l *Logger) Shutdown() error {
	if l.buf != nil {
		l.buf.Stop()
	}
	return nil
}

// lineWriter is the async buffer between slog handlers and the real sink.
// Write never blocks: a full channel drops the line and counts it.
type lineWriter struct {
	out     io.Writer
	lines   chan []byte
	done    chan struct{}
	dropped atomic.Int64

	stopOnce sync.Once
	wg       sync.WaitGroup
}

func newLineWriter(out io.Writer, size int) *lineWriter {
	lw := &lineWriter{
		out:   out,
		lines: make(chan []byte, size),
		done:  make(chan struct{}),
	}
	lw.wg.Add(1)
	go lw.run()
	return lw
}

// Write implements io.Writer for slog handlers. The slice is copied
// because slog reuses its output buffer.
func (lw *lineWriter) Write(p []byte) (int, error) {
	line := make([]byte, len(p))
	copy(line, p)

	select {
	case lw.lines <- line:
	default:
		lw.dropped.Add(1)
	}
	return len(p), nil
}

func (lw *lineWriter) run() {
	defer lw.wg.Done()

	for {
		select {
		case line := <-lw.lines:
			lw.out.Write(line)
		case <-lw.done:
			for {
				select {
				case line := <-lw.lines:
					lw.out.Write(line)
				default:
					return
				}
			}
		}
	}
}

// Stop drains buffered lines and stops the writer goroutine.
func (lw *lineWriter) Stop() {
	lw.stopOnce.Do(func() { close(lw.done) })
	lw.wg.Wait()
}

// Dropped returns the number of lines discarded so far.
func (lw *lineWriter) Dropped() int64 {
	return lw.dropped.Load()
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", s)
	}
}

func normalizeFormat(s string) (string, error) {
	switch strings.ToLower(s) {
	case "json", "":
		return FormatJSON, nil
	case "text", "console":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown log format: %s", s)
	}
}
