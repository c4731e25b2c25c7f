package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/medassist/offline-triage/internal/api/middleware"
	"github.com/medassist/offline-triage/internal/application/services"
	"github.com/medassist/offline-triage/internal/domain/entities"
	"github.com/medassist/offline-triage/internal/triage"
)

// TriageService defines the interface for diagnosis operations
type TriageService interface {
	Diagnose(ctx context.Context, body []byte, header http.Header) (*services.Result, error)
	LocalTriage(ctx context.Context, input entities.DiagnosisInput) (*entities.DiagnosisResponse, error)
}

// TriageHandler handles diagnosis requests
type TriageHandler struct {
	service   TriageService
	localizer *triage.Localizer
}

// NewTriageHandler creates a new triage handler
func NewTriageHandler(service TriageService, localizer *triage.Localizer) *TriageHandler {
	return &TriageHandler{
		service:   service,
		localizer: localizer,
	}
}

// Diagnose handles POST /api/diagnose
func (h *TriageHandler) Diagnose(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	result, err := h.service.Diagnose(r.Context(), body, r.Header)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	writeResult(w, result)
}

// LocalTriage handles POST /api/triage/local
func (h *TriageHandler) LocalTriage(w http.ResponseWriter, r *http.Request) {
	var input entities.DiagnosisInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	resp, err := h.service.LocalTriage(r.Context(), input)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.Header().Set(middleware.ResponseSourceHeader, string(entities.SourceFallback))
	respondWithJSON(w, http.StatusOK, resp)
}

// Labels handles GET /api/labels/{language}
func (h *TriageHandler) Labels(w http.ResponseWriter, r *http.Request) {
	requested := entities.LanguageCode(r.PathValue("language"))
	resolved := h.localizer.Resolve(requested)

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"language": resolved,
		"labels":   h.localizer.Labels(resolved),
	})
}
