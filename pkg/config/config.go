package config

import "time"

// Config is the root configuration structure for relay.
// It contains all configuration sections for the listener, the PROXY
// protocol client, telemetry, and the middleware stack assembled at
// startup.
type Config struct {
	// Listen contains the TCP listener configuration relay accepts
	// connections on.
	Listen ListenConfig `yaml:"listen"`

	// HaProxy contains configuration for the client-side PROXY protocol
	// encoder used when relay dials an upstream.
	HaProxy HaProxyConfig `yaml:"haproxy"`

	// Telemetry contains configuration for observability including logging,
	// metrics, and distributed tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Stack contains configuration for which named middleware layers are
	// mounted, and in what order.
	Stack StackConfig `yaml:"stack"`

	// Reload contains configuration for watching the config file itself
	// for changes and hot-reloading the global singleton.
	Reload ReloadConfig `yaml:"reload"`

	// Housekeeping contains configuration for the periodic background job
	// that logs connection-pool statistics.
	Housekeeping HousekeepingConfig `yaml:"housekeeping"`
}

// ReloadConfig contains configuration for the config file watcher.
type ReloadConfig struct {
	// Enabled controls whether relay watches its config file for changes
	// and reloads the global singleton when it does. Same zero-value
	// caveat as HaProxyConfig.Enabled.
	Enabled bool `yaml:"enabled"`

	// DebounceInterval is the quiet period required after the last
	// detected write before a reload is triggered, preventing reload
	// storms from editors that write a file in several steps.
	// Default: 100ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`
}

// HousekeepingConfig contains configuration for the cron-scheduled
// connection-pool statistics job.
type HousekeepingConfig struct {
	// Enabled controls whether the housekeeping job runs. Same zero-value
	// caveat as HaProxyConfig.Enabled.
	Enabled bool `yaml:"enabled"`

	// Schedule is a standard five-field cron expression (or "@every
	// <duration>") controlling how often pool statistics are logged.
	// Default: "@every 1m"
	Schedule string `yaml:"schedule"`
}

// ListenConfig contains configuration for the TCP listener relay accepts
// connections on.
type ListenConfig struct {
	// Network is the network relay listens on.
	// Options: "tcp", "tcp4", "tcp6"
	// Default: "tcp"
	Network string `yaml:"network"`

	// Address is the address and port for relay to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8404", "0.0.0.0:8404").
	// Default: "127.0.0.1:8404"
	Address string `yaml:"address"`

	// ShutdownTimeout is the maximum duration to wait for in-flight
	// connections to drain during graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// TLS contains TLS configuration for the listener. TLS termination is
	// handled at the listener boundary, before any stack layer runs.
	TLS TLSConfig `yaml:"tls"`
}

// TLSConfig contains TLS configuration for the listener.
type TLSConfig struct {
	// Enabled controls whether TLS is enabled for the listener.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// CertFile is the path to the TLS certificate file.
	// Required when Enabled is true.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the TLS private key file.
	// Required when Enabled is true.
	KeyFile string `yaml:"key_file"`

	// MinVersion is the minimum TLS version to accept.
	// Options: "1.2", "1.3"
	// Default: "1.3"
	MinVersion string `yaml:"min_version"`
}

// HaProxyConfig contains configuration for the client-side PROXY protocol
// layer relay pushes onto its outbound stack before dialing an upstream.
type HaProxyConfig struct {
	// Enabled controls whether the PROXY protocol layer is mounted.
	// Zero-value false is indistinguishable from "not set" in YAML, so an
	// empty haproxy section is treated as disabled rather than defaulted
	// to true.
	Enabled bool `yaml:"enabled"`

	// Version selects the wire format written ahead of the proxied
	// connection.
	// Options: "v1" (text), "v2" (binary)
	// Default: "v2"
	Version string `yaml:"version"`

	// Transport is the transport the upstream connection uses. UDP with
	// v1 is an impossible combination (v1 has no datagram form) and is
	// rejected at validation time.
	// Options: "tcp", "udp"
	// Default: "tcp"
	Transport string `yaml:"transport"`

	// Payload is an optional opaque payload (hex-encoded) appended to v2
	// headers (the Type-Length-Value extension area). Ignored for v1,
	// which has no payload section.
	Payload string `yaml:"payload,omitempty"`

	// UpstreamAddress is the dial address for the upstream relay
	// connects to once a PROXY header has been written.
	// Format: "host:port"
	UpstreamAddress string `yaml:"upstream_address"`

	// DialTimeout bounds how long relay waits to establish the upstream
	// connection.
	// Default: 10s
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`

	// Health contains health check configuration.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactSensitive enables automatic redaction of sensitive values in
	// logs: PROXY header payload bytes and upstream socket addresses.
	// Default: false (ApplyDefaults does not set it)
	RedactSensitive bool `yaml:"redact_sensitive"`

	// BufferSize is the size of the async log buffer.
	// Default: 10000
	BufferSize int `yaml:"buffer_size"`

	// RedactPatterns contains custom redaction patterns.
	// Each pattern has a name, regex, and replacement string.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactPattern defines a custom redaction pattern.
type RedactPattern struct {
	// Name is a descriptive name for the pattern.
	Name string `yaml:"name"`

	// Pattern is the regular expression to match.
	Pattern string `yaml:"pattern"`

	// Replacement is the string to replace matches with.
	Replacement string `yaml:"replacement"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active. Same
	// zero-value caveat as HaProxyConfig.Enabled.
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Port is the port of the separate telemetry HTTP server that serves
	// metrics and health endpoints (0 = listen on 127.0.0.1:9404).
	// Default: 0
	Port int `yaml:"port"`

	// Namespace is the metric name prefix.
	// Default: "relay"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "proxyproto"
	Subsystem string `yaml:"subsystem"`

	// LayerLatencyBuckets defines histogram buckets for per-layer
	// latency (seconds).
	// Default: [0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0]
	LayerLatencyBuckets []float64 `yaml:"layer_latency_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 0.1 (10%)
	SampleRatio float64 `yaml:"sample_ratio"`

	// Exporter determines the trace exporter to use.
	// Options accepted by validation: "otlp", "jaeger", "zipkin".
	// tracing.New builds only the OTLP exporter; "jaeger" and "zipkin"
	// make it fail with an error pointing at the collector's OTLP port.
	// Default: "otlp"
	Exporter string `yaml:"exporter"`

	// Endpoint is the trace collector endpoint.
	// Example: "localhost:4317" (OTLP), "localhost:6831" (Jaeger)
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "relay"
	ServiceName string `yaml:"service_name"`

	// OTLP contains OTLP exporter specific configuration.
	OTLP OTLPConfig `yaml:"otlp"`

	// Jaeger contains Jaeger exporter specific configuration.
	Jaeger JaegerConfig `yaml:"jaeger"`
}

// OTLPConfig contains OTLP exporter configuration.
type OTLPConfig struct {
	// Insecure disables TLS for OTLP connection.
	// Default: false (ApplyDefaults does not set it)
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// JaegerConfig contains Jaeger exporter configuration.
type JaegerConfig struct {
	// AgentHost is the Jaeger agent hostname.
	// Default: "localhost"
	AgentHost string `yaml:"agent_host"`

	// AgentPort is the Jaeger agent port.
	// Default: 6831
	AgentPort int `yaml:"agent_port"`
}

// HealthConfig contains health check endpoint configuration.
type HealthConfig struct {
	// Enabled controls whether health check endpoints are enabled. Same
	// zero-value caveat as HaProxyConfig.Enabled.
	Enabled bool `yaml:"enabled"`

	// LivenessPath is the path for the liveness probe endpoint.
	// Default: "/health"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the path for the readiness probe endpoint.
	// Default: "/ready"
	ReadinessPath string `yaml:"readiness_path"`

	// VersionPath is the path for the version information endpoint.
	// Default: "/version"
	VersionPath string `yaml:"version_path"`

	// CheckTimeout is the timeout for individual component health checks.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}

// StackConfig contains configuration for which named middleware layers
// are mounted on the outbound Stack, and in what order.
type StackConfig struct {
	// Layers lists the middleware layers to mount, innermost-last (the
	// order layers are pushed onto the Stack, matching pkg/service.Stack's
	// Push semantics).
	Layers []LayerConfig `yaml:"layers"`
}

// LayerConfig configures a single named middleware layer.
type LayerConfig struct {
	// Name identifies which middleware constructor to mount.
	// Options: "timeout", "request_id", "propagate_request_id",
	// "catch_panic", "compression", "decompression",
	// "request_body_limit", "sensitive_headers", "trace".
	// Validation accepts all of these (plus "filter" and "add_extension"),
	// but `relay run` mounts only "timeout", "catch_panic" and "trace" and
	// rejects the others at startup.
	Name string `yaml:"name"`

	// Timeout is used by the "timeout" layer.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// MaxBytes is used by the "request_body_limit" layer.
	MaxBytes int64 `yaml:"max_bytes,omitempty"`

	// Headers is used by the "sensitive_headers" layer.
	Headers []string `yaml:"headers,omitempty"`

	// CompressionLevel is used by the "compression" layer.
	CompressionLevel int `yaml:"compression_level,omitempty"`

	// SpanName is used by the "trace" layer.
	SpanName string `yaml:"span_name,omitempty"`
}
