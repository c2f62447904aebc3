package api

import (
	"net/http"

	"github.com/okian/mobicost/internal/domain/model"
	"github.com/okian/mobicost/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessProvider reports whether predictions can be served.
type ReadinessProvider interface {
	Ready() model.Readiness
}

// HealthHandler handles health and readiness requests.
type HealthHandler struct {
	ready ReadinessProvider
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(ready ReadinessProvider) *HealthHandler {
	return &HealthHandler{ready: ready}
}

// HandleHealth handles GET /healthz requests by exposing the Prometheus
// metrics of the custom registry.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}

// HandleReady handles GET /readyz requests: 200 with the artifact kinds when
// ready, 503 otherwise.
func (h *HealthHandler) HandleReady(w http.ResponseWriter, _ *http.Request) {
	r := h.ready.Ready()
	status := http.StatusOK
	if !r.Ready {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, r)
}
