package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/medassist/offline-triage/internal/domain/entities"
	"github.com/medassist/offline-triage/internal/domain/repositories"
	"github.com/medassist/offline-triage/internal/infrastructure/clients/postgres"
	"github.com/medassist/offline-triage/internal/infrastructure/observability"
	apperrors "github.com/medassist/offline-triage/pkg/errors"
)

const triageAuditTable = "triage_audits"

// TriageAuditAdapter implements the TriageAuditRepository interface
type TriageAuditAdapter struct {
	client  *postgres.Client
	db      *goqu.Database
	metrics *observability.Metrics
}

// NewTriageAuditAdapter creates a new triage audit adapter
func NewTriageAuditAdapter(client *postgres.Client, metrics *observability.Metrics) repositories.TriageAuditRepository {
	return &TriageAuditAdapter{
		client:  client,
		db:      goqu.New("postgres", client.DB()),
		metrics: metrics,
	}
}

// Create inserts an audit row
func (a *TriageAuditAdapter) Create(ctx context.Context, audit *entities.TriageAudit) error {
	if audit == nil {
		return apperrors.NewInternalError("audit is nil", fmt.Errorf("audit is nil"))
	}

	record, err := json.Marshal(audit.Record)
	if err != nil {
		return apperrors.NewInternalError("failed to encode diagnosis record", err)
	}

	query, args, err := a.db.Insert(triageAuditTable).Prepared(true).Rows(goqu.Record{
		"id":                audit.ID,
		"patient_id":        audit.PatientID,
		"symptoms":          audit.Symptoms,
		"language":          string(audit.Language),
		"primary_diagnosis": audit.PrimaryDiagnosis,
		"confidence_score":  audit.ConfidenceScore,
		"referral_needed":   audit.ReferralNeeded,
		"source":            string(audit.Source),
		"record":            string(record),
		"created_at":        audit.CreatedAt,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	start := time.Now()
	_, err = a.client.DB().ExecContext(ctx, query, args...)
	observability.RecordDBMetric(ctx, a.metrics, "triage_audit.insert", time.Since(start))
	if err != nil {
		return apperrors.NewInternalError("failed to create triage audit", err)
	}

	return nil
}

// ListByPatient returns the most recent audits of a patient, newest first
func (a *TriageAuditAdapter) ListByPatient(ctx context.Context, patientID string, limit int) ([]*entities.TriageAudit, error) {
	ds := a.db.Select(
		"id", "patient_id", "symptoms", "language", "primary_diagnosis",
		"confidence_score", "referral_needed", "source", "record", "created_at",
	).From(triageAuditTable).
		Prepared(true).
		Where(goqu.Ex{"patient_id": patientID}).
		Order(goqu.I("created_at").Desc())
	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	start := time.Now()
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	observability.RecordDBMetric(ctx, a.metrics, "triage_audit.list", time.Since(start))
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list triage audits", err)
	}
	defer rows.Close()

	audits := make([]*entities.TriageAudit, 0)
	for rows.Next() {
		audit := &entities.TriageAudit{}
		var language, source string
		var record []byte

		if err := rows.Scan(
			&audit.ID,
			&audit.PatientID,
			&audit.Symptoms,
			&language,
			&audit.PrimaryDiagnosis,
			&audit.ConfidenceScore,
			&audit.ReferralNeeded,
			&source,
			&record,
			&audit.CreatedAt,
		); err != nil {
			return nil, apperrors.NewInternalError("failed to scan triage audit", err)
		}

		audit.Language = entities.LanguageCode(language)
		audit.Source = entities.DiagnosisSource(source)
		if err := json.Unmarshal(record, &audit.Record); err != nil {
			return nil, apperrors.NewInternalError("failed to decode diagnosis record", err)
		}
		audits = append(audits, audit)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate triage audits", err)
	}

	return audits, nil
}
