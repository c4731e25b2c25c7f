package providers

import (
	"context"

	"github.com/medassist/offline-triage/internal/domain/entities"
)

// HealthChecker reports the health of the remote diagnostic backend.
type HealthChecker interface {
	Health(ctx context.Context) (*entities.HealthResponse, error)
}
