package config

import (
	"fmt"
	"sync"
	"time"
)

// relay loads its configuration exactly once at startup and thereafter
// replaces it only through Reload, which the file watcher drives. Every
// replacement bumps a generation counter and notifies subscribers, so
// long-lived components (the accept loop, the housekeeper, the telemetry
// server) can observe reloads without polling the store themselves.
type configStore struct {
	mu         sync.RWMutex
	cfg        *Config
	path       string
	generation uint64
	loadedAt   time.Time
	subs       []func(*Config)
}

var global configStore

// Initialize loads configuration from path (with environment variable
// overrides) and installs it as the process-wide configuration. Calling
// Initialize twice is a programming error and is rejected, not ignored:
// a second config file silently losing to the first has cost too much
// debugging time to allow.
func Initialize(path string) error {
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return err
	}

	global.mu.Lock()
	defer global.mu.Unlock()

	if global.cfg != nil {
		return fmt.Errorf("config: already initialized from %s", global.path)
	}

	global.cfg = cfg
	global.path = path
	global.generation = 1
	global.loadedAt = time.Now()
	return nil
}

// GetConfig returns the current configuration, or nil before Initialize.
// Safe for concurrent use.
func GetConfig() *Config {
	global.mu.RLock()
	defer global.mu.RUnlock()
	return global.cfg
}

// Generation returns how many configurations have been installed so far:
// 1 after Initialize, incremented by every successful Reload. Components
// that cache derived state (a compiled stack, a TLS config) can compare
// generations to notice staleness.
func Generation() uint64 {
	global.mu.RLock()
	defer global.mu.RUnlock()
	return global.generation
}

// LoadedAt returns when the current configuration was installed.
func LoadedAt() time.Time {
	global.mu.RLock()
	defer global.mu.RUnlock()
	return global.loadedAt
}

// Subscribe registers fn to be called after every successful Reload with
// the freshly installed config. Subscribers run on the reloading
// goroutine (the watcher's debounce timer), so they must not block.
func Subscribe(fn func(*Config)) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.subs = append(global.subs, fn)
}

// Reload re-reads the file Initialize loaded and, if it parses and
// validates, installs it and notifies subscribers. On failure the current
// configuration stays in place, which is the property the hot-reload path
// depends on: a broken edit must never take down a running relay.
func Reload() error {
	global.mu.RLock()
	path := global.path
	initialized := global.cfg != nil
	global.mu.RUnlock()

	if !initialized {
		return fmt.Errorf("config: Reload before Initialize")
	}

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return fmt.Errorf("config: reload rejected: %w", err)
	}

	global.mu.Lock()
	global.cfg = cfg
	global.generation++
	global.loadedAt = time.Now()
	subs := make([]func(*Config), len(global.subs))
	copy(subs, global.subs)
	global.mu.Unlock()

	for _, fn := range subs {
		fn(cfg)
	}
	return nil
}

// SetConfig installs cfg directly, bypassing file loading. Intended for
// tests; passing nil resets the store entirely (path, generation and
// subscribers included) so a test can re-run Initialize.
func SetConfig(cfg *Config) {
	global.mu.Lock()
	defer global.mu.Unlock()

	if cfg == nil {
		global.cfg = nil
		global.path = ""
		global.generation = 0
		global.loadedAt = time.Time{}
		global.subs = nil
		return
	}
	global.cfg = cfg
	global.generation++
	global.loadedAt = time.Now()
}
