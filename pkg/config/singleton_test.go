package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

const validConfig = `
listen:
  address: "127.0.0.1:8404"

haproxy:
  enabled: true
  upstream_address: "10.0.0.5:9000"

telemetry:
  logging:
    level: "info"
    format: "json"
`

func TestInitialize(t *testing.T) {
	SetConfig(nil)
	t.Cleanup(func() { SetConfig(nil) })

	path := writeConfigFile(t, validConfig)

	if err := Initialize(path); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	cfg := GetConfig()
	if cfg == nil {
		t.Fatal("expected non-nil config after initialization")
	}
	if cfg.Listen.Address != "127.0.0.1:8404" {
		t.Errorf("listen address = %q, want %q", cfg.Listen.Address, "127.0.0.1:8404")
	}
	if Generation() != 1 {
		t.Errorf("Generation() = %d, want 1 after Initialize", Generation())
	}
	if LoadedAt().IsZero() {
		t.Error("LoadedAt() should be set after Initialize")
	}
}

func TestInitializeTwiceIsRejected(t *testing.T) {
	SetConfig(nil)
	t.Cleanup(func() { SetConfig(nil) })

	path := writeConfigFile(t, validConfig)

	if err := Initialize(path); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	err := Initialize(path)
	if err == nil {
		t.Fatal("second Initialize should be rejected")
	}
	if !strings.Contains(err.Error(), "already initialized") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestGetConfigBeforeInitialize(t *testing.T) {
	SetConfig(nil)

	if cfg := GetConfig(); cfg != nil {
		t.Error("expected nil config before initialization")
	}
	if Generation() != 0 {
		t.Errorf("Generation() = %d, want 0 before Initialize", Generation())
	}
}

func TestSetConfig(t *testing.T) {
	SetConfig(nil)
	t.Cleanup(func() { SetConfig(nil) })

	SetConfig(NewTestConfig().WithListenAddress("192.168.1.1:7070").Build())

	cfg := GetConfig()
	if cfg == nil {
		t.Fatal("expected non-nil config after SetConfig")
	}
	if cfg.Listen.Address != "192.168.1.1:7070" {
		t.Errorf("listen address = %q, want %q", cfg.Listen.Address, "192.168.1.1:7070")
	}
}

func TestReloadInstallsNewConfigAndNotifies(t *testing.T) {
	SetConfig(nil)
	t.Cleanup(func() { SetConfig(nil) })

	path := writeConfigFile(t, validConfig)
	if err := Initialize(path); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	var notified *Config
	Subscribe(func(cfg *Config) { notified = cfg })

	updated := `
listen:
  address: "0.0.0.0:9090"
haproxy:
  enabled: true
  upstream_address: "10.0.0.6:9000"
telemetry:
  logging:
    level: "debug"
    format: "text"
`
	if err := os.WriteFile(path, []byte(updated), 0644); err != nil {
		t.Fatalf("rewriting config: %v", err)
	}

	if err := Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	cfg := GetConfig()
	if cfg.Listen.Address != "0.0.0.0:9090" {
		t.Errorf("listen address = %q, want %q", cfg.Listen.Address, "0.0.0.0:9090")
	}
	if Generation() != 2 {
		t.Errorf("Generation() = %d, want 2 after one reload", Generation())
	}
	if notified == nil {
		t.Fatal("subscriber was not notified")
	}
	if notified.Telemetry.Logging.Level != "debug" {
		t.Errorf("subscriber saw level %q, want %q", notified.Telemetry.Logging.Level, "debug")
	}
}

func TestReloadKeepsCurrentConfigOnFailure(t *testing.T) {
	SetConfig(nil)
	t.Cleanup(func() { SetConfig(nil) })

	path := writeConfigFile(t, validConfig)
	if err := Initialize(path); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	notifications := 0
	Subscribe(func(*Config) { notifications++ })

	invalid := `
listen:
  address: "127.0.0.1:8404"
haproxy:
  enabled: true
telemetry:
  logging:
    level: "invalid"
    format: "json"
`
	if err := os.WriteFile(path, []byte(invalid), 0644); err != nil {
		t.Fatalf("rewriting config: %v", err)
	}

	if err := Reload(); err == nil {
		t.Fatal("expected error reloading invalid config")
	}

	if GetConfig().Listen.Address != "127.0.0.1:8404" {
		t.Error("current config should be preserved on reload failure")
	}
	if Generation() != 1 {
		t.Errorf("Generation() = %d, want 1 after failed reload", Generation())
	}
	if notifications != 0 {
		t.Errorf("subscribers notified %d times on failed reload, want 0", notifications)
	}
}

func TestReloadBeforeInitialize(t *testing.T) {
	SetConfig(nil)

	if err := Reload(); err == nil {
		t.Fatal("Reload before Initialize should fail")
	}
}
