package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_ValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
listen:
  network: "tcp"
  address: "0.0.0.0:8404"
  shutdown_timeout: "60s"

haproxy:
  enabled: true
  version: "v2"
  transport: "tcp"
  upstream_address: "10.0.0.5:9000"

telemetry:
  logging:
    level: "debug"
    format: "text"
  metrics:
    enabled: true
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Listen.Address != "0.0.0.0:8404" {
		t.Errorf("expected listen address %q, got %q", "0.0.0.0:8404", cfg.Listen.Address)
	}
	if cfg.Listen.ShutdownTimeout != 60*time.Second {
		t.Errorf("expected shutdown timeout %v, got %v", 60*time.Second, cfg.Listen.ShutdownTimeout)
	}
	if cfg.HaProxy.UpstreamAddress != "10.0.0.5:9000" {
		t.Errorf("expected upstream address %q, got %q", "10.0.0.5:9000", cfg.HaProxy.UpstreamAddress)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("expected logging level %q, got %q", "debug", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
haproxy:
  enabled: true
  upstream_address: "10.0.0.5:9000"
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Listen.Address != DefaultListenAddress {
		t.Errorf("expected default listen address, got %q", cfg.Listen.Address)
	}
	if cfg.HaProxy.Version != DefaultHaProxyVersion {
		t.Errorf("expected default haproxy version, got %q", cfg.HaProxy.Version)
	}
}

func TestLoadConfig_InvalidConfigFails(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// haproxy enabled with no upstream_address fails validation.
	configContent := `
haproxy:
  enabled: true
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := LoadConfig(configPath); err == nil {
		t.Fatal("expected validation error for missing upstream_address")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/path/config.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("listen: [not a map"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := LoadConfig(configPath); err == nil {
		t.Fatal("expected parse error for malformed YAML")
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
listen:
  address: "127.0.0.1:8404"

haproxy:
  enabled: true
  upstream_address: "10.0.0.5:9000"
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	os.Setenv("RELAY_LISTEN_ADDRESS", "0.0.0.0:9090")
	os.Setenv("RELAY_HAPROXY_VERSION", "v1")
	os.Setenv("RELAY_HAPROXY_TRANSPORT", "tcp")
	defer func() {
		os.Unsetenv("RELAY_LISTEN_ADDRESS")
		os.Unsetenv("RELAY_HAPROXY_VERSION")
		os.Unsetenv("RELAY_HAPROXY_TRANSPORT")
	}()

	cfg, err := LoadConfigWithEnvOverrides(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Listen.Address != "0.0.0.0:9090" {
		t.Errorf("expected env-overridden listen address, got %q", cfg.Listen.Address)
	}
	if cfg.HaProxy.Version != "v1" {
		t.Errorf("expected env-overridden haproxy version, got %q", cfg.HaProxy.Version)
	}
}

func TestLoadConfigWithEnvOverrides_InvalidOverrideFails(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
haproxy:
  enabled: true
  version: "v2"
  transport: "udp"
  upstream_address: "10.0.0.5:9000"
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	os.Setenv("RELAY_HAPROXY_VERSION", "v1")
	defer os.Unsetenv("RELAY_HAPROXY_VERSION")

	if _, err := LoadConfigWithEnvOverrides(configPath); err == nil {
		t.Fatal("expected validation error: UDP transport has no v1 form")
	}
}
