package config

import "time"

// ConfigBuilder provides a fluent API for building Config instances in tests.
// It starts with default values and allows selective overrides.
type ConfigBuilder struct {
	cfg Config
}

// NewTestConfig creates a new ConfigBuilder with sensible defaults for
// testing. The resulting configuration is valid and can be used
// immediately.
func NewTestConfig() *ConfigBuilder {
	cfg := Config{}
	ApplyDefaults(&cfg)
	cfg.HaProxy.Enabled = true
	cfg.HaProxy.UpstreamAddress = "127.0.0.1:9000"
	return &ConfigBuilder{cfg: cfg}
}

// Build returns the built Config instance.
func (b *ConfigBuilder) Build() *Config {
	return &b.cfg
}

// WithListenAddress sets the listener address.
func (b *ConfigBuilder) WithListenAddress(addr string) *ConfigBuilder {
	b.cfg.Listen.Address = addr
	return b
}

// WithShutdownTimeout sets the listener's graceful shutdown timeout.
func (b *ConfigBuilder) WithShutdownTimeout(d time.Duration) *ConfigBuilder {
	b.cfg.Listen.ShutdownTimeout = d
	return b
}

// WithHaProxyVersion sets the PROXY protocol wire version.
func (b *ConfigBuilder) WithHaProxyVersion(version string) *ConfigBuilder {
	b.cfg.HaProxy.Version = version
	return b
}

// WithHaProxyTransport sets the PROXY protocol transport.
func (b *ConfigBuilder) WithHaProxyTransport(transport string) *ConfigBuilder {
	b.cfg.HaProxy.Transport = transport
	return b
}

// WithHaProxyPayload sets a hex-encoded trailing payload for v2 headers.
func (b *ConfigBuilder) WithHaProxyPayload(hexPayload string) *ConfigBuilder {
	b.cfg.HaProxy.Payload = hexPayload
	return b
}

// WithUpstreamAddress sets the dial address the HaProxy layer writes a
// header to before forwarding bytes.
func (b *ConfigBuilder) WithUpstreamAddress(addr string) *ConfigBuilder {
	b.cfg.HaProxy.UpstreamAddress = addr
	return b
}

// WithLoggingLevel sets the logging level.
func (b *ConfigBuilder) WithLoggingLevel(level string) *ConfigBuilder {
	b.cfg.Telemetry.Logging.Level = level
	return b
}

// WithLoggingFormat sets the logging format.
func (b *ConfigBuilder) WithLoggingFormat(format string) *ConfigBuilder {
	b.cfg.Telemetry.Logging.Format = format
	return b
}

// WithMetricsEnabled sets whether metrics are enabled.
func (b *ConfigBuilder) WithMetricsEnabled(enabled bool) *ConfigBuilder {
	b.cfg.Telemetry.Metrics.Enabled = enabled
	return b
}

// WithTracingEnabled sets whether tracing is enabled, along with the
// collector endpoint.
func (b *ConfigBuilder) WithTracingEnabled(enabled bool, endpoint string) *ConfigBuilder {
	b.cfg.Telemetry.Tracing.Enabled = enabled
	b.cfg.Telemetry.Tracing.Endpoint = endpoint
	if b.cfg.Telemetry.Tracing.SampleRatio == 0 {
		b.cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	return b
}

// WithTLS sets listener TLS configuration.
func (b *ConfigBuilder) WithTLS(certFile, keyFile string) *ConfigBuilder {
	b.cfg.Listen.TLS.Enabled = true
	b.cfg.Listen.TLS.CertFile = certFile
	b.cfg.Listen.TLS.KeyFile = keyFile
	return b
}

// WithStackLayer appends a named middleware layer to the stack.
func (b *ConfigBuilder) WithStackLayer(layer LayerConfig) *ConfigBuilder {
	b.cfg.Stack.Layers = append(b.cfg.Stack.Layers, layer)
	return b
}

// MinimalConfig returns a minimal valid configuration for testing. This is
// useful for tests that don't care about most configuration values.
func MinimalConfig() *Config {
	return NewTestConfig().Build()
}
