package health

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"
)

// VersionInfo is the /version endpoint's response body.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	OSArch    string `json:"os_arch"`
}

// livenessResponse is the /health response body: alive, and for how long.
type livenessResponse struct {
	Status        Status    `json:"status"`
	UptimeSeconds float64   `json:"uptime_seconds"`
	Timestamp     time.Time `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func methodAllowed(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// LivenessHandler serves the liveness probe: 200 as long as the process
// can answer HTTP at all, with the relay's uptime for operators
// eyeballing restarts.
func (c *Checker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !methodAllowed(w, r) {
			return
		}
		writeJSON(w, r, http.StatusOK, livenessResponse{
			Status:        StatusOK,
			UptimeSeconds: c.Uptime().Seconds(),
			Timestamp:     time.Now(),
		})
	}
}

// ReadinessHandler serves the readiness probe: it runs every registered
// check and answers 200 only when the relay should receive traffic.
// Degraded and unhealthy both map to 503 — a relay whose upstream is
// unreachable has nothing useful to do with a new connection.
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !methodAllowed(w, r) {
			return
		}

		status := c.CheckReadiness(r.Context())

		code := http.StatusOK
		if status.Status != StatusReady {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, r, code, status)
	}
}

// VersionHandler serves build information for the running binary.
func VersionHandler(version, commit, buildTime string) http.HandlerFunc {
	info := VersionInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
		OSArch:    runtime.GOOS + "/" + runtime.GOARCH,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if !methodAllowed(w, r) {
			return
		}
		writeJSON(w, r, http.StatusOK, info)
	}
}
