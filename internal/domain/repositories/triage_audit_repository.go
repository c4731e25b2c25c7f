package repositories

import (
	"context"

	"github.com/medassist/offline-triage/internal/domain/entities"
)

// TriageAuditRepository records determinations the edge made on its own.
type TriageAuditRepository interface {
	Create(ctx context.Context, audit *entities.TriageAudit) error
	ListByPatient(ctx context.Context, patientID string, limit int) ([]*entities.TriageAudit, error)
}
