// Package config provides configuration management for relay.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. It provides a type-safe
// configuration system with comprehensive validation and sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention RELAY_SECTION_FIELD.
// For example:
//
//   - RELAY_LISTEN_ADDRESS overrides listen.address
//   - RELAY_HAPROXY_VERSION overrides haproxy.version
//   - RELAY_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Environment variables always take precedence over file-based configuration.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Singleton Pattern
//
// For application-wide configuration access, use the singleton pattern:
//
//	// At application startup
//	if err := config.Initialize("config.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Anywhere in the application
//	cfg := config.GetConfig()
//	fmt.Println(cfg.Listen.Address)
//
// For testing, prefer dependency injection with explicit Config instances
// rather than the global singleton.
//
// # Validation
//
// All configuration is validated automatically during loading. Validation includes:
//
//   - Required field checks (e.g., haproxy.upstream_address when haproxy is enabled)
//   - Range validation (e.g., ports must be 0-65535)
//   - Format validation (e.g., paths must start with /)
//   - Logical validation (e.g., UDP transport has no v1 PROXY protocol form)
//
// Validation errors include field paths and helpful messages:
//
//	configuration validation failed with 2 errors:
//	  - haproxy.upstream_address: upstream_address is required when haproxy is enabled
//	  - haproxy.version: UDP transport has no v1 form; set version to 'v2' or transport to 'tcp'
//
// # Example Configuration
//
// Here is a minimal configuration file:
//
//	listen:
//	  address: "127.0.0.1:8404"
//
//	haproxy:
//	  enabled: true
//	  version: "v2"
//	  upstream_address: "10.0.0.5:9000"
//
//	stack:
//	  layers:
//	    - name: "catch_panic"
//	    - name: "trace"
//	    - name: "timeout"
//	      timeout: "30s"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
//
// # Thread Safety
//
// All configuration access is thread-safe. The singleton pattern uses read-write
// locks to allow concurrent reads while protecting against concurrent writes during
// reload operations.
package config
