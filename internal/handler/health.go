package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yourorg/quotevault/pkg/database"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	pool   *database.ConnectionPool
	logger *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(pool *database.ConnectionPool, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{pool: pool, logger: logger}
}

// HealthResponse represents the health status response
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadinessResponse represents the readiness check response
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Health handles GET /healthz - simple liveness check
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(HealthResponse{Status: "ok"})
}

// Ready handles GET /readyz - store reachability check
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"database": "ok"}
	status := http.StatusOK

	if err := h.pool.Health(r.Context()); err != nil {
		h.logger.Warn("readiness check failed", slog.String("error", err.Error()))
		checks["database"] = err.Error()
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ReadinessResponse{Status: httpStatusText(status), Checks: checks})
}

func httpStatusText(status int) string {
	if status == http.StatusOK {
		return "ready"
	}
	return "not ready"
}
