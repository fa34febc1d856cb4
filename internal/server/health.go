package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// HealthHandler serves liveness and readiness probes. Readiness flips to
// draining during shutdown so load balancers stop sending traffic before
// in-flight requests finish.
type HealthHandler struct {
	startTime time.Time
	draining  atomic.Bool
}

// NewHealthHandler creates a health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{startTime: time.Now()}
}

// SetDraining marks the server as draining; readiness probes fail from
// then on.
func (h *HealthHandler) SetDraining() {
	h.draining.Store(true)
}

type healthStatus struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

// ServeHTTP implements http.Handler.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := healthStatus{
		Status: "healthy",
		Uptime: time.Since(h.startTime).Round(time.Second).String(),
	}
	code := http.StatusOK

	if h.draining.Load() {
		status.Status = "draining"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(status)
}
