package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "haproxy.version").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateListen(&cfg.Listen)...)
	errs = append(errs, validateHaProxy(&cfg.HaProxy)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)
	errs = append(errs, validateStack(&cfg.Stack)...)
	errs = append(errs, validateReload(&cfg.Reload)...)
	errs = append(errs, validateHousekeeping(&cfg.Housekeeping)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateListen validates the TCP listener configuration.
func validateListen(cfg *ListenConfig) []FieldError {
	var errs []FieldError

	validNetworks := map[string]bool{"tcp": true, "tcp4": true, "tcp6": true}
	if cfg.Network == "" {
		errs = append(errs, FieldError{
			Field:   "listen.network",
			Message: "network is required",
		})
	} else if !validNetworks[cfg.Network] {
		errs = append(errs, FieldError{
			Field:   "listen.network",
			Message: fmt.Sprintf("invalid network %q: must be 'tcp', 'tcp4', or 'tcp6'", cfg.Network),
		})
	}

	if cfg.Address == "" {
		errs = append(errs, FieldError{
			Field:   "listen.address",
			Message: "address is required",
		})
	}

	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "listen.shutdown_timeout",
			Message: "shutdown timeout must be non-negative",
		})
	}

	if cfg.TLS.Enabled {
		if cfg.TLS.CertFile == "" {
			errs = append(errs, FieldError{
				Field:   "listen.tls.cert_file",
				Message: "certificate file is required when TLS is enabled",
			})
		}
		if cfg.TLS.KeyFile == "" {
			errs = append(errs, FieldError{
				Field:   "listen.tls.key_file",
				Message: "key file is required when TLS is enabled",
			})
		}
		validVersions := map[string]bool{"1.2": true, "1.3": true}
		if cfg.TLS.MinVersion != "" && !validVersions[cfg.TLS.MinVersion] {
			errs = append(errs, FieldError{
				Field:   "listen.tls.min_version",
				Message: fmt.Sprintf("invalid min_version %q: must be '1.2' or '1.3'", cfg.TLS.MinVersion),
			})
		}
	}

	return errs
}

// validateHaProxy validates the PROXY protocol client layer configuration.
// The impossible UDP+v1 combination is rejected here; at the
// pkg/proxyproto/client API surface V1() is a no-op on a NewUDP()
// configuration, so it could not be expressed there anyway.
func validateHaProxy(cfg *HaProxyConfig) []FieldError {
	var errs []FieldError

	if !cfg.Enabled {
		return errs
	}

	validVersions := map[string]bool{"v1": true, "v2": true}
	if cfg.Version == "" {
		errs = append(errs, FieldError{
			Field:   "haproxy.version",
			Message: "version is required when haproxy is enabled",
		})
	} else if !validVersions[cfg.Version] {
		errs = append(errs, FieldError{
			Field:   "haproxy.version",
			Message: fmt.Sprintf("invalid version %q: must be 'v1' or 'v2'", cfg.Version),
		})
	}

	validTransports := map[string]bool{"tcp": true, "udp": true}
	if cfg.Transport == "" {
		errs = append(errs, FieldError{
			Field:   "haproxy.transport",
			Message: "transport is required when haproxy is enabled",
		})
	} else if !validTransports[cfg.Transport] {
		errs = append(errs, FieldError{
			Field:   "haproxy.transport",
			Message: fmt.Sprintf("invalid transport %q: must be 'tcp' or 'udp'", cfg.Transport),
		})
	}

	if cfg.Transport == "udp" && cfg.Version == "v1" {
		errs = append(errs, FieldError{
			Field:   "haproxy.version",
			Message: "UDP transport has no v1 form; set version to 'v2' or transport to 'tcp'",
		})
	}

	if cfg.UpstreamAddress == "" {
		errs = append(errs, FieldError{
			Field:   "haproxy.upstream_address",
			Message: "upstream_address is required when haproxy is enabled",
		})
	}

	if cfg.DialTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "haproxy.dial_timeout",
			Message: "dial_timeout must be non-negative",
		})
	}

	if cfg.Payload != "" && cfg.Version == "v1" {
		errs = append(errs, FieldError{
			Field:   "haproxy.payload",
			Message: "payload is ignored for v1 (no TLV area); remove it or switch to v2",
		})
	}

	return errs
}

// validateTelemetry validates the logging, metrics, tracing and health
// check configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if cfg.Logging.Level == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: "logging level is required",
		})
	} else if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if cfg.Logging.Format == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: "logging format is required",
		})
	} else if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json', 'text', or 'console'", cfg.Logging.Format),
		})
	}

	if cfg.Logging.BufferSize < 0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.buffer_size",
			Message: "buffer_size must be non-negative",
		})
	}

	for i, pattern := range cfg.Logging.RedactPatterns {
		prefix := fmt.Sprintf("telemetry.logging.redact_patterns[%d]", i)
		if pattern.Name == "" {
			errs = append(errs, FieldError{Field: prefix + ".name", Message: "name is required"})
		}
		if pattern.Pattern == "" {
			errs = append(errs, FieldError{Field: prefix + ".pattern", Message: "pattern is required"})
		}
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Path == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "path is required when metrics are enabled",
			})
		} else if cfg.Metrics.Path[0] != '/' {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "path must start with /",
			})
		}
		if cfg.Metrics.Port < 0 || cfg.Metrics.Port > 65535 {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.port",
				Message: "port must be between 0 and 65535",
			})
		}
		for i, b := range cfg.Metrics.LayerLatencyBuckets {
			if b <= 0 {
				errs = append(errs, FieldError{
					Field:   fmt.Sprintf("telemetry.metrics.layer_latency_buckets[%d]", i),
					Message: "bucket boundaries must be positive",
				})
				break
			}
		}
	}

	if cfg.Tracing.Enabled {
		validSamplers := map[string]bool{"always": true, "never": true, "ratio": true}
		if !validSamplers[cfg.Tracing.Sampler] {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sampler",
				Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never', or 'ratio'", cfg.Tracing.Sampler),
			})
		}
		if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1.0 {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sample_ratio",
				Message: "sample_ratio must be between 0.0 and 1.0",
			})
		}
		validExporters := map[string]bool{"otlp": true, "jaeger": true, "zipkin": true}
		if !validExporters[cfg.Tracing.Exporter] {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.exporter",
				Message: fmt.Sprintf("invalid exporter %q: must be 'otlp', 'jaeger', or 'zipkin'", cfg.Tracing.Exporter),
			})
		}
		if cfg.Tracing.Endpoint == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.endpoint",
				Message: "endpoint is required when tracing is enabled",
			})
		}
		if cfg.Tracing.ServiceName == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.service_name",
				Message: "service_name is required when tracing is enabled",
			})
		}
	}

	if cfg.Health.Enabled {
		for _, p := range []struct{ field, value string }{
			{"telemetry.health.liveness_path", cfg.Health.LivenessPath},
			{"telemetry.health.readiness_path", cfg.Health.ReadinessPath},
			{"telemetry.health.version_path", cfg.Health.VersionPath},
		} {
			if p.value == "" {
				errs = append(errs, FieldError{Field: p.field, Message: "path is required when health checks are enabled"})
			} else if p.value[0] != '/' {
				errs = append(errs, FieldError{Field: p.field, Message: "path must start with /"})
			}
		}
		if cfg.Health.CheckTimeout < 0 {
			errs = append(errs, FieldError{
				Field:   "telemetry.health.check_timeout",
				Message: "check_timeout must be non-negative",
			})
		}
	}

	return errs
}

// validLayerNames enumerates the middleware constructors pkg/service/middleware
// exposes; StackConfig.Layers.Name must name one of these (see cmd/relay's
// assembly of the Stack from config).
var validLayerNames = map[string]bool{
	"timeout":              true,
	"filter":               true,
	"add_extension":        true,
	"request_id":           true,
	"propagate_request_id": true,
	"catch_panic":          true,
	"compression":          true,
	"decompression":        true,
	"request_body_limit":   true,
	"sensitive_headers":    true,
	"trace":                true,
}

// validateReload validates the config file watcher configuration.
func validateReload(cfg *ReloadConfig) []FieldError {
	var errs []FieldError

	if cfg.Enabled && cfg.DebounceInterval < 0 {
		errs = append(errs, FieldError{
			Field:   "reload.debounce_interval",
			Message: "debounce_interval must not be negative",
		})
	}

	return errs
}

// validateHousekeeping validates the housekeeping cron schedule.
func validateHousekeeping(cfg *HousekeepingConfig) []FieldError {
	var errs []FieldError

	if !cfg.Enabled {
		return errs
	}
	if cfg.Schedule == "" {
		errs = append(errs, FieldError{
			Field:   "housekeeping.schedule",
			Message: "schedule is required when housekeeping is enabled",
		})
		return errs
	}
	if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
		errs = append(errs, FieldError{
			Field:   "housekeeping.schedule",
			Message: fmt.Sprintf("invalid cron schedule %q: %v", cfg.Schedule, err),
		})
	}

	return errs
}

// validateStack validates the named middleware layer list.
func validateStack(cfg *StackConfig) []FieldError {
	var errs []FieldError

	for i, layer := range cfg.Layers {
		prefix := fmt.Sprintf("stack.layers[%d]", i)
		if layer.Name == "" {
			errs = append(errs, FieldError{Field: prefix + ".name", Message: "name is required"})
			continue
		}
		if !validLayerNames[layer.Name] {
			errs = append(errs, FieldError{
				Field:   prefix + ".name",
				Message: fmt.Sprintf("unknown layer %q", layer.Name),
			})
			continue
		}
		if layer.Name == "timeout" && layer.Timeout <= 0 {
			errs = append(errs, FieldError{
				Field:   prefix + ".timeout",
				Message: "timeout layer requires a positive timeout",
			})
		}
		if layer.Name == "request_body_limit" && layer.MaxBytes <= 0 {
			errs = append(errs, FieldError{
				Field:   prefix + ".max_bytes",
				Message: "request_body_limit layer requires a positive max_bytes",
			})
		}
		if layer.Name == "sensitive_headers" && len(layer.Headers) == 0 {
			errs = append(errs, FieldError{
				Field:   prefix + ".headers",
				Message: "sensitive_headers layer requires at least one header name",
			})
		}
	}

	return errs
}
