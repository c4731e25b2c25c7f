package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/medassist/offline-triage/internal/domain/entities"
	"github.com/medassist/offline-triage/internal/domain/repositories"
	"github.com/medassist/offline-triage/internal/infrastructure/observability"
	apperrors "github.com/medassist/offline-triage/pkg/errors"
)

// Remote patient endpoints.
const (
	RegisterPath       = "/api/patient/register"
	HistoryPathPrefix  = "/api/patient/history/"
	defaultHistorySize = 50
)

// PatientService relays patient registration and history to the backend.
type PatientService struct {
	dispatcher RequestDispatcher
	audits     repositories.TriageAuditRepository
}

// NewPatientService creates a new patient service. audits may be nil.
func NewPatientService(dispatcher RequestDispatcher, audits repositories.TriageAuditRepository) *PatientService {
	return &PatientService{
		dispatcher: dispatcher,
		audits:     audits,
	}
}

// Register forwards a registration. A patient that already exists is not an
// error: the backend's message is kept but the status becomes success.
func (s *PatientService) Register(ctx context.Context, body []byte, header http.Header) (*Result, error) {
	var patient entities.Patient
	if err := json.Unmarshal(body, &patient); err != nil {
		return nil, apperrors.NewValidationError("invalid request body")
	}
	if strings.TrimSpace(patient.ID) == "" {
		return nil, apperrors.NewValidationError("patient_id is required")
	}
	if strings.TrimSpace(patient.Name) == "" {
		return nil, apperrors.NewValidationError("name is required")
	}

	resp := s.dispatcher.Dispatch(ctx, &entities.FetchRequest{
		Method: http.MethodPost,
		Path:   RegisterPath,
		Header: header,
		Body:   body,
	})
	if resp.Source != entities.SourceNetwork {
		return relay(resp), nil
	}

	var status entities.StatusResponse
	if err := json.Unmarshal(resp.Body, &status); err != nil || status.Status != "error" {
		return relay(resp), nil
	}
	if !AlreadyExists(status.Message) {
		return relay(resp), nil
	}

	observability.LoggerFromContext(ctx).Info().
		Str("patient_id", patient.ID).
		Msg("Patient already registered")

	result, err := jsonResult(http.StatusOK, entities.SourceNetwork, entities.StatusResponse{
		Status:  "success",
		Message: status.Message,
	})
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode registration response", err)
	}
	return result, nil
}

// AlreadyExists reports whether a backend message says the patient exists.
func AlreadyExists(message string) bool {
	return strings.Contains(strings.ToLower(message), "already exists")
}

// History returns a patient's past determinations. Network and cached answers
// are relayed; when both are unavailable the locally audited offline
// determinations are served with offline set.
func (s *PatientService) History(ctx context.Context, patientID string, header http.Header) (*Result, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, apperrors.NewValidationError("patient id is required")
	}

	resp := s.dispatcher.Dispatch(ctx, &entities.FetchRequest{
		Method: http.MethodGet,
		Path:   HistoryPathPrefix + url.PathEscape(patientID),
		Header: header,
	})
	if resp.Source != entities.SourceOffline || s.audits == nil {
		return relay(resp), nil
	}

	audits, err := s.audits.ListByPatient(ctx, patientID, defaultHistorySize)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).
			Str("patient_id", patientID).
			Msg("Failed to read local history")
		return relay(resp), nil
	}

	history := make([]entities.HistoryEntry, 0, len(audits))
	for _, a := range audits {
		history = append(history, a.HistoryEntry())
	}

	result, err := jsonResult(http.StatusOK, entities.SourceFallback, entities.HistoryResponse{
		Status:  "success",
		History: history,
		Offline: true,
	})
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode history", err)
	}
	return result, nil
}
