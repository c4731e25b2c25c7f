package database

import (
	"context"
	"sort"
	"sync"

	"github.com/medassist/offline-triage/internal/domain/entities"
	"github.com/medassist/offline-triage/internal/domain/repositories"
)

// MemoryTriageAuditRepository keeps audits in process memory. Used when no
// database is configured.
type MemoryTriageAuditRepository struct {
	mu     sync.RWMutex
	audits []*entities.TriageAudit
}

// NewMemoryTriageAuditRepository creates an empty in-memory audit repository
func NewMemoryTriageAuditRepository() repositories.TriageAuditRepository {
	return &MemoryTriageAuditRepository{}
}

// Create stores a copy of audit
func (r *MemoryTriageAuditRepository) Create(ctx context.Context, audit *entities.TriageAudit) error {
	copied := *audit
	copied.Record = audit.Record.Clone()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.audits = append(r.audits, &copied)
	return nil
}

// ListByPatient returns the most recent audits of a patient, newest first
func (r *MemoryTriageAuditRepository) ListByPatient(ctx context.Context, patientID string, limit int) ([]*entities.TriageAudit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entities.TriageAudit, 0)
	for _, a := range r.audits {
		if a.PatientID == patientID {
			copied := *a
			out = append(out, &copied)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
