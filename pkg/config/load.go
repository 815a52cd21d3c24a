package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention RELAY_SECTION_FIELD (e.g., RELAY_LISTEN_ADDRESS).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values and validate (via LoadConfig)
// 3. Apply environment variable overrides
// 4. Validate final configuration
//
// Because step 2 already validates, a file that is invalid on its own
// fails even if the environment would have corrected it.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables use the format RELAY_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("RELAY_LISTEN_NETWORK"); val != "" {
		cfg.Listen.Network = val
	}
	if val := os.Getenv("RELAY_LISTEN_ADDRESS"); val != "" {
		cfg.Listen.Address = val
	}
	if val := os.Getenv("RELAY_LISTEN_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Listen.ShutdownTimeout = d
		}
	}
	if val := os.Getenv("RELAY_LISTEN_TLS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Listen.TLS.Enabled = b
		}
	}
	if val := os.Getenv("RELAY_LISTEN_TLS_CERT_FILE"); val != "" {
		cfg.Listen.TLS.CertFile = val
	}
	if val := os.Getenv("RELAY_LISTEN_TLS_KEY_FILE"); val != "" {
		cfg.Listen.TLS.KeyFile = val
	}

	if val := os.Getenv("RELAY_HAPROXY_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.HaProxy.Enabled = b
		}
	}
	if val := os.Getenv("RELAY_HAPROXY_VERSION"); val != "" {
		cfg.HaProxy.Version = val
	}
	if val := os.Getenv("RELAY_HAPROXY_TRANSPORT"); val != "" {
		cfg.HaProxy.Transport = val
	}
	if val := os.Getenv("RELAY_HAPROXY_UPSTREAM_ADDRESS"); val != "" {
		cfg.HaProxy.UpstreamAddress = val
	}
	if val := os.Getenv("RELAY_HAPROXY_DIAL_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.HaProxy.DialTimeout = d
		}
	}

	if val := os.Getenv("RELAY_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("RELAY_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("RELAY_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("RELAY_TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}
	if val := os.Getenv("RELAY_TELEMETRY_TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Tracing.Enabled = b
		}
	}
	if val := os.Getenv("RELAY_TELEMETRY_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}
	if val := os.Getenv("RELAY_TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}
}
