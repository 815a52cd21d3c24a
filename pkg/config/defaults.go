package config

import "time"

// Default values for configuration fields.
const (
	// Listen defaults
	DefaultNetwork         = "tcp"
	DefaultListenAddress   = "127.0.0.1:8404"
	DefaultShutdownTimeout = 30 * time.Second

	// TLS defaults
	DefaultTLSEnabled    = false
	DefaultTLSMinVersion = "1.3"

	// HaProxy defaults
	DefaultHaProxyEnabled   = true
	DefaultHaProxyVersion   = "v2"
	DefaultHaProxyTransport = "tcp"
	DefaultHaProxyDialTimeout = 10 * time.Second

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "json"
	DefaultLoggingBufferSize  = 10000
	DefaultMetricsEnabled     = true
	DefaultMetricsPath        = "/metrics"
	DefaultMetricsNamespace   = "relay"
	DefaultMetricsSubsystem   = "proxyproto"
	DefaultTracingEnabled     = false
	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 0.1
	DefaultTracingExporter    = "otlp"
	DefaultTracingServiceName = "relay"
	DefaultOTLPInsecure       = true
	DefaultOTLPTimeout        = 10 * time.Second
	DefaultJaegerAgentHost    = "localhost"
	DefaultJaegerAgentPort    = 6831

	// Health defaults
	DefaultHealthEnabled       = true
	DefaultHealthLivenessPath  = "/health"
	DefaultHealthReadinessPath = "/ready"
	DefaultHealthVersionPath   = "/version"
	DefaultHealthCheckTimeout  = 5 * time.Second

	// Reload defaults
	DefaultReloadDebounceInterval = 100 * time.Millisecond

	// Housekeeping defaults
	DefaultHousekeepingSchedule = "@every 1m"
)

// DefaultLayerLatencyBuckets are the default histogram buckets (seconds)
// for per-layer latency metrics.
var DefaultLayerLatencyBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0}

// DefaultStackLayers is the default middleware ordering mounted when a
// config file does not specify stack.layers explicitly. Limited to the
// layers that are mountable from configuration alone for a connection
// establishment pipeline; header-shaped layers like request_id need a
// Req/Resp pair carrying HTTP-style headers and are only available to
// callers embedding pkg/service/middleware directly.
var DefaultStackLayers = []LayerConfig{
	{Name: "catch_panic"},
	{Name: "trace", SpanName: "relay.stack.serve"},
	{Name: "timeout", Timeout: 30 * time.Second},
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	applyListenDefaults(cfg)
	applyHaProxyDefaults(cfg)
	applyTelemetryDefaults(cfg)
	applyStackDefaults(cfg)
	applyReloadDefaults(cfg)
	applyHousekeepingDefaults(cfg)
}

func applyReloadDefaults(cfg *Config) {
	if cfg.Reload.DebounceInterval == 0 {
		cfg.Reload.DebounceInterval = DefaultReloadDebounceInterval
	}
}

func applyHousekeepingDefaults(cfg *Config) {
	if cfg.Housekeeping.Schedule == "" {
		cfg.Housekeeping.Schedule = DefaultHousekeepingSchedule
	}
}

func applyListenDefaults(cfg *Config) {
	if cfg.Listen.Network == "" {
		cfg.Listen.Network = DefaultNetwork
	}
	if cfg.Listen.Address == "" {
		cfg.Listen.Address = DefaultListenAddress
	}
	if cfg.Listen.ShutdownTimeout == 0 {
		cfg.Listen.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Listen.TLS.MinVersion == "" {
		cfg.Listen.TLS.MinVersion = DefaultTLSMinVersion
	}
}

func applyHaProxyDefaults(cfg *Config) {
	if cfg.HaProxy.Version == "" {
		cfg.HaProxy.Version = DefaultHaProxyVersion
	}
	if cfg.HaProxy.Transport == "" {
		cfg.HaProxy.Transport = DefaultHaProxyTransport
	}
	if cfg.HaProxy.DialTimeout == 0 {
		cfg.HaProxy.DialTimeout = DefaultHaProxyDialTimeout
	}
}

func applyTelemetryDefaults(cfg *Config) {
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Logging.BufferSize == 0 {
		cfg.Telemetry.Logging.BufferSize = DefaultLoggingBufferSize
	}

	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(cfg.Telemetry.Metrics.LayerLatencyBuckets) == 0 {
		cfg.Telemetry.Metrics.LayerLatencyBuckets = DefaultLayerLatencyBuckets
	}

	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Telemetry.Tracing.Exporter == "" {
		cfg.Telemetry.Tracing.Exporter = DefaultTracingExporter
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Telemetry.Tracing.OTLP.Timeout == 0 {
		cfg.Telemetry.Tracing.OTLP.Timeout = DefaultOTLPTimeout
	}
	if cfg.Telemetry.Tracing.Jaeger.AgentHost == "" {
		cfg.Telemetry.Tracing.Jaeger.AgentHost = DefaultJaegerAgentHost
	}
	if cfg.Telemetry.Tracing.Jaeger.AgentPort == 0 {
		cfg.Telemetry.Tracing.Jaeger.AgentPort = DefaultJaegerAgentPort
	}

	if cfg.Telemetry.Health.LivenessPath == "" {
		cfg.Telemetry.Health.LivenessPath = DefaultHealthLivenessPath
	}
	if cfg.Telemetry.Health.ReadinessPath == "" {
		cfg.Telemetry.Health.ReadinessPath = DefaultHealthReadinessPath
	}
	if cfg.Telemetry.Health.VersionPath == "" {
		cfg.Telemetry.Health.VersionPath = DefaultHealthVersionPath
	}
	if cfg.Telemetry.Health.CheckTimeout == 0 {
		cfg.Telemetry.Health.CheckTimeout = DefaultHealthCheckTimeout
	}
}

func applyStackDefaults(cfg *Config) {
	if len(cfg.Stack.Layers) == 0 {
		cfg.Stack.Layers = DefaultStackLayers
	}
}
