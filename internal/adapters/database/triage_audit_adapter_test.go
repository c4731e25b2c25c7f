package database

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medassist/offline-triage/internal/domain/entities"
	"github.com/medassist/offline-triage/internal/infrastructure/clients/postgres"
	apperrors "github.com/medassist/offline-triage/pkg/errors"
)

func setupMockDB(t *testing.T) (*postgres.Client, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })
	return postgres.NewClientFromDB(mockDB), mock
}

func sampleAudit(id string, at time.Time) *entities.TriageAudit {
	record := entities.DiagnosisRecord{
		PrimaryDiagnosis: "Acute Gastroenteritis",
		ConfidenceScore:  0.75,
		ReferralNeeded:   true,
		RedFlags:         []string{"Blood in stool"},
		Source:           entities.SourceRuleEngine,
		Offline:          true,
	}
	return &entities.TriageAudit{
		ID:               id,
		PatientID:        "P-001",
		Symptoms:         "diarrhea blood",
		Language:         "en",
		PrimaryDiagnosis: record.PrimaryDiagnosis,
		ConfidenceScore:  record.ConfidenceScore,
		ReferralNeeded:   record.ReferralNeeded,
		Source:           record.Source,
		Record:           record,
		CreatedAt:        at,
	}
}

func TestTriageAuditAdapter_Create(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewTriageAuditAdapter(client, nil)

	mock.ExpectExec(`INSERT INTO "triage_audits"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := adapter.Create(context.Background(), sampleAudit("a1", time.Now()))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTriageAuditAdapter_CreateWrapsDriverError(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewTriageAuditAdapter(client, nil)

	mock.ExpectExec(`INSERT INTO "triage_audits"`).
		WillReturnError(errors.New("connection reset"))

	err := adapter.Create(context.Background(), sampleAudit("a1", time.Now()))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeInternal, apperrors.TypeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTriageAuditAdapter_ListByPatient(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewTriageAuditAdapter(client, nil)

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	audit := sampleAudit("a1", now)
	record, err := json.Marshal(audit.Record)
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{
		"id", "patient_id", "symptoms", "language", "primary_diagnosis",
		"confidence_score", "referral_needed", "source", "record", "created_at",
	}).AddRow(
		audit.ID, audit.PatientID, audit.Symptoms, "en", audit.PrimaryDiagnosis,
		audit.ConfidenceScore, audit.ReferralNeeded, "rule_engine", record, now,
	)

	mock.ExpectQuery(`SELECT .* FROM "triage_audits" WHERE \("patient_id" = \$1\) ORDER BY "created_at" DESC LIMIT`).
		WithArgs("P-001", sqlmock.AnyArg()).
		WillReturnRows(rows)

	audits, err := adapter.ListByPatient(context.Background(), "P-001", 20)
	require.NoError(t, err)
	require.Len(t, audits, 1)

	got := audits[0]
	assert.Equal(t, "a1", got.ID)
	assert.Equal(t, entities.LanguageCode("en"), got.Language)
	assert.Equal(t, entities.SourceRuleEngine, got.Source)
	assert.Equal(t, "Acute Gastroenteritis", got.Record.PrimaryDiagnosis)
	assert.Equal(t, []string{"Blood in stool"}, got.Record.RedFlags)
	assert.True(t, got.Record.Offline)
	assert.True(t, got.CreatedAt.Equal(now))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTriageAuditAdapter_ListByPatientBadRecord(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewTriageAuditAdapter(client, nil)

	rows := sqlmock.NewRows([]string{
		"id", "patient_id", "symptoms", "language", "primary_diagnosis",
		"confidence_score", "referral_needed", "source", "record", "created_at",
	}).AddRow("a1", "P-001", "cough", "en", "Common Cold", 0.75, false, "rule_engine", []byte("{not json"), time.Now())

	mock.ExpectQuery(`SELECT .* FROM "triage_audits"`).WillReturnRows(rows)

	_, err := adapter.ListByPatient(context.Background(), "P-001", 0)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeInternal, apperrors.TypeOf(err))
}

func TestMemoryTriageAuditRepository(t *testing.T) {
	repo := NewMemoryTriageAuditRepository()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, sampleAudit("old", base)))
	require.NoError(t, repo.Create(ctx, sampleAudit("new", base.Add(time.Hour))))
	other := sampleAudit("other", base)
	other.PatientID = "P-002"
	require.NoError(t, repo.Create(ctx, other))

	audits, err := repo.ListByPatient(ctx, "P-001", 0)
	require.NoError(t, err)
	require.Len(t, audits, 2)
	assert.Equal(t, "new", audits[0].ID)
	assert.Equal(t, "old", audits[1].ID)

	limited, err := repo.ListByPatient(ctx, "P-001", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "new", limited[0].ID)

	none, err := repo.ListByPatient(ctx, "P-404", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryTriageAuditRepository_StoresCopy(t *testing.T) {
	repo := NewMemoryTriageAuditRepository()
	ctx := context.Background()

	audit := sampleAudit("a1", time.Now())
	require.NoError(t, repo.Create(ctx, audit))
	audit.Record.RedFlags[0] = "mutated"

	audits, err := repo.ListByPatient(ctx, "P-001", 0)
	require.NoError(t, err)
	require.Len(t, audits, 1)
	assert.Equal(t, "Blood in stool", audits[0].Record.RedFlags[0])
}
