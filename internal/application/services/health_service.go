package services

import (
	"context"

	"github.com/medassist/offline-triage/internal/domain/entities"
	"github.com/medassist/offline-triage/internal/domain/providers"
	"github.com/medassist/offline-triage/internal/infrastructure/observability"
	"github.com/medassist/offline-triage/internal/offline"
)

// HealthReport is the gateway health view.
type HealthReport struct {
	Status           string              `json:"status"`
	ModelAvailable   bool                `json:"model_available"`
	BackendReachable bool                `json:"backend_reachable"`
	CacheVersion     string              `json:"cache_version,omitempty"`
	CacheState       entities.CacheState `json:"cache_state"`
}

// HealthService reports whether the gateway can serve, and how.
type HealthService struct {
	backend providers.HealthChecker
	manager *offline.Manager
}

// NewHealthService creates a new health service
func NewHealthService(backend providers.HealthChecker, manager *offline.Manager) *HealthService {
	return &HealthService{backend: backend, manager: manager}
}

// Check always reports healthy: the rule engine answers even when the backend
// is down. ModelAvailable reflects the backend's own report.
func (s *HealthService) Check(ctx context.Context) *HealthReport {
	report := &HealthReport{
		Status:     "healthy",
		CacheState: entities.CacheAbsent,
	}

	if version := s.manager.ActiveVersion(); version != "" {
		report.CacheVersion = version
		report.CacheState = s.manager.State(version)
	}

	health, err := s.backend.Health(ctx)
	if err != nil {
		observability.LoggerFromContext(ctx).Debug().Err(err).Msg("Backend health check failed")
		return report
	}
	report.BackendReachable = true
	report.ModelAvailable = health.ModelAvailable
	return report
}
