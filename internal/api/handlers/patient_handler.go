package handlers

import (
	"context"
	"net/http"

	"github.com/medassist/offline-triage/internal/application/services"
)

// PatientService defines the interface for patient operations
type PatientService interface {
	Register(ctx context.Context, body []byte, header http.Header) (*services.Result, error)
	History(ctx context.Context, patientID string, header http.Header) (*services.Result, error)
}

// PatientHandler handles patient registration and history requests
type PatientHandler struct {
	service PatientService
}

// NewPatientHandler creates a new patient handler
func NewPatientHandler(service PatientService) *PatientHandler {
	return &PatientHandler{service: service}
}

// Register handles POST /api/patient/register
func (h *PatientHandler) Register(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	result, err := h.service.Register(r.Context(), body, r.Header)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	writeResult(w, result)
}

// History handles GET /api/patient/history/{patientId}
func (h *PatientHandler) History(w http.ResponseWriter, r *http.Request) {
	patientID := r.PathValue("patientId")
	if patientID == "" {
		respondWithError(w, http.StatusBadRequest, "patient ID is required")
		return
	}

	result, err := h.service.History(r.Context(), patientID, r.Header)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	writeResult(w, result)
}
