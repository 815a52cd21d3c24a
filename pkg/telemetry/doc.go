// Package telemetry groups the observability subpackages relay wires into
// its listener and middleware stack.
//
// # Components
//
//   - logging: Structured logging (log/slog) with PII redaction
//   - metrics: Prometheus metrics for connections, PROXY headers and layers
//   - tracing: OpenTelemetry distributed tracing
//   - health: Liveness/readiness/version endpoints
//
// Each subpackage is initialized independently from its section of
// config.TelemetryConfig; there is no combined facade. cmd/relay's run
// command shows the canonical wiring:
//
//	logger, err := logging.New(logging.Config{Level: cfg.Telemetry.Logging.Level, Format: cfg.Telemetry.Logging.Format})
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, registry)
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
//
// # Performance
//
// The telemetry packages are designed for minimal overhead on the
// connection path:
//
//   - Logging: <10µs when enabled, <1µs when filtered by level
//   - Metrics: <50µs per metric update
//   - Tracing: <100µs per span
package telemetry
