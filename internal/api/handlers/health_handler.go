package handlers

import (
	"context"
	"net/http"

	"github.com/medassist/offline-triage/internal/application/services"
)

// HealthService defines the interface for health checks
type HealthService interface {
	Check(ctx context.Context) *services.HealthReport
}

// HealthHandler handles GET /health
type HealthHandler struct {
	service HealthService
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service HealthService) *HealthHandler {
	return &HealthHandler{service: service}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.service.Check(r.Context()))
}
