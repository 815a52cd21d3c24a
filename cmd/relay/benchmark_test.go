package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// BenchmarkVersionCommand benchmarks the version command startup time
// Target: < 100ms per iteration
func BenchmarkVersionCommand(b *testing.B) {
	// Build binary once
	binaryPath := buildBinary(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cmd := exec.Command(binaryPath, "version")
		if err := cmd.Run(); err != nil {
			b.Fatalf("version command failed: %v", err)
		}
	}
}

// BenchmarkHelpCommand benchmarks the help command
// Target: < 100ms per iteration
func BenchmarkHelpCommand(b *testing.B) {
	binaryPath := buildBinary(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cmd := exec.Command(binaryPath, "--help")
		if err := cmd.Run(); err != nil {
			// Help command exits with code 0, so this should not fail
			b.Fatalf("help command failed: %v", err)
		}
	}
}

// BenchmarkConfigValidate benchmarks config validation
// Target: < 500ms per iteration
func BenchmarkConfigValidate(b *testing.B) {
	tmpDir := b.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")
	createBenchmarkConfig(b, configFile)

	binaryPath := buildBinary(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cmd := exec.Command(binaryPath, "config", "validate", "--config", configFile)
		if err := cmd.Run(); err != nil {
			b.Fatalf("config validate failed: %v", err)
		}
	}
}

// BenchmarkConfigLint benchmarks config linting
// Target: < 500ms per iteration
func BenchmarkConfigLint(b *testing.B) {
	tmpDir := b.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")
	createBenchmarkConfig(b, configFile)

	binaryPath := buildBinary(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cmd := exec.Command(binaryPath, "config", "lint", "--config", configFile)
		if err := cmd.Run(); err != nil {
			b.Fatalf("config lint failed: %v", err)
		}
	}
}

// BenchmarkRunDryRun benchmarks config loading via run --dry-run
// Target: < 1s per iteration
func BenchmarkRunDryRun(b *testing.B) {
	tmpDir := b.TempDir()

	configFile := filepath.Join(tmpDir, "config.yaml")
	createBenchmarkConfig(b, configFile)

	binaryPath := buildBinary(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cmd := exec.Command(binaryPath, "run", "--config", configFile, "--dry-run")
		cmd.Dir = tmpDir
		if err := cmd.Run(); err != nil {
			b.Fatalf("run --dry-run failed: %v", err)
		}
	}
}

// BenchmarkCompletionGeneration benchmarks shell completion generation
// Target: < 100ms per iteration
func BenchmarkCompletionGeneration(b *testing.B) {
	binaryPath := buildBinary(b)

	shells := []string{"bash", "zsh", "fish", "powershell"}

	for _, shell := range shells {
		b.Run(shell, func(b *testing.B) {
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				cmd := exec.Command(binaryPath, "completion", shell)
				if err := cmd.Run(); err != nil {
					b.Fatalf("completion %s failed: %v", shell, err)
				}
			}
		})
	}
}

// Helper functions

// createBenchmarkConfig creates a standard config file for benchmarking
func createBenchmarkConfig(b *testing.B, path string) {
	b.Helper()

	config := `listen:
  network: "tcp"
  address: "127.0.0.1:8404"
  shutdown_timeout: 30s

haproxy:
  enabled: true
  version: "v2"
  transport: "tcp"
  upstream_address: "127.0.0.1:9000"
  dial_timeout: 5s

stack:
  layers:
    - name: "catch_panic"
    - name: "timeout"
      timeout: 10s

telemetry:
  logging:
    level: "warn"
  metrics:
    enabled: false
  tracing:
    enabled: false
  health:
    enabled: false
`

	if err := os.WriteFile(path, []byte(config), 0644); err != nil {
		b.Fatalf("failed to create config file: %v", err)
	}
}

var cachedBinaryPath string

// buildBinary builds the relay binary once and caches the path
func buildBinary(b *testing.B) string {
	b.Helper()

	if cachedBinaryPath != "" {
		return cachedBinaryPath
	}

	// Check if binary exists in ../../bin/
	binaryPath := "../../bin/relay"
	if _, err := os.Stat(binaryPath); err == nil {
		cachedBinaryPath = binaryPath
		return binaryPath
	}

	// Build new binary
	tmpBinary := filepath.Join(b.TempDir(), "relay")
	cmd := exec.Command("go", "build", "-o", tmpBinary, ".")
	if err := cmd.Run(); err != nil {
		b.Fatalf("failed to build relay: %v", err)
	}

	cachedBinaryPath = tmpBinary
	return tmpBinary
}
