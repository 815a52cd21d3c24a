// Package health provides health check endpoints for relay.
//
// # Overview
//
// The health package implements liveness and readiness probes for Kubernetes
// and other orchestration systems, along with version information endpoints.
// It provides a framework for checking the health of various system components.
//
// # Endpoints
//
// The package provides three main endpoints:
//
//   - /health: Liveness probe - indicates if the process is running
//   - /ready: Readiness probe - indicates if the system can serve traffic
//   - /version: Build information - version, commit, build time
//
// # Usage
//
//	// Create health checker with a per-check timeout
//	checker := health.New(5 * time.Second)
//
//	// Register component checks
//	checker.RegisterCheck("upstream", func(ctx context.Context) error {
//	    conn, err := (&net.Dialer{}).DialContext(ctx, "tcp", upstreamAddr)
//	    if err != nil {
//	        return err
//	    }
//	    return conn.Close()
//	})
//
//	// Add HTTP handlers
//	http.HandleFunc("/health", checker.LivenessHandler())
//	http.HandleFunc("/ready", checker.ReadinessHandler())
//	http.HandleFunc("/version", health.VersionHandler("1.0.0", "abc123", "2025-11-20"))
//
// # Liveness vs Readiness
//
// **Liveness Probe** (/health):
//   - Indicates if the process is alive; carries the relay's uptime
//   - Always returns 200 OK while the process can answer at all
//   - Deliberately free of dependency probes: a dead upstream must not
//     make the orchestrator restart a healthy relay
//
// **Readiness Probe** (/ready):
//   - Indicates if the relay should receive traffic
//   - Runs every registered check, sequentially, in name order
//   - Returns 200 OK when ready; 503 when degraded or unhealthy
//   - A check only counts against readiness after failing
//     SetFailureThreshold times in a row, so one lost dial is noise
//
// # Component Health Checks
//
// Components can register health check functions:
//
//	checker.RegisterCheck("upstream", func(ctx context.Context) error {
//	    conn, err := (&net.Dialer{}).DialContext(ctx, "tcp", upstreamAddr)
//	    if err != nil {
//	        return errors.New("upstream unreachable")
//	    }
//	    return conn.Close()
//	})
//
// Common component checks:
//   - config: Configuration loaded and valid
//   - upstream: The configured upstream accepts connections
//   - listener: The relay listener is accepting
//
// # Performance
//
// Health checks are designed to be lightweight:
//   - Liveness: <10ms
//   - Readiness: <100ms (all component checks)
//   - Version: <1ms
//
// # Example Response
//
// Liveness response (/health):
//
//	{
//	    "status": "ok",
//	    "uptime_seconds": 8412.3,
//	    "timestamp": "2026-08-01T10:30:00Z"
//	}
//
// Readiness response (/ready):
//
//	{
//	    "status": "ready",
//	    "checks": {
//	        "config": {"status": "ok", "duration_ms": 0.1},
//	        "upstream": {"status": "ok", "duration_ms": 4.2}
//	    },
//	    "timestamp": "2026-08-01T10:30:00Z"
//	}
//
// Degraded response (/ready):
//
//	{
//	    "status": "degraded",
//	    "checks": {
//	        "config": {"status": "ok", "duration_ms": 0.1},
//	        "upstream": {"status": "unhealthy", "message": "upstream unreachable",
//	                     "duration_ms": 5000.0, "consecutive_failures": 3}
//	    },
//	    "timestamp": "2026-08-01T10:30:00Z"
//	}
//
// Version response (/version):
//
//	{
//	    "version": "1.0.0",
//	    "commit": "abc123def456",
//	    "build_time": "2026-08-01T00:00:00Z",
//	    "go_version": "go1.25.0",
//	    "os_arch": "linux/amd64"
//	}
package health
