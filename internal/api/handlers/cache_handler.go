package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/medassist/offline-triage/internal/domain/entities"
	"github.com/medassist/offline-triage/internal/offline"
)

// CacheService defines the interface for cache lifecycle operations
type CacheService interface {
	Install(ctx context.Context, version string) error
	Activate(ctx context.Context, version string) (*offline.ActivationResult, error)
	Status(ctx context.Context) (*entities.CacheSnapshot, error)
}

// CacheHandler exposes the cache lifecycle to operators
type CacheHandler struct {
	service CacheService
}

// NewCacheHandler creates a new cache handler
func NewCacheHandler(service CacheService) *CacheHandler {
	return &CacheHandler{service: service}
}

type versionRequest struct {
	Version string `json:"version"`
}

// decodeVersion reads an optional {"version": "..."} body.
func decodeVersion(w http.ResponseWriter, r *http.Request) (string, bool) {
	if r.ContentLength == 0 {
		return r.URL.Query().Get("version"), true
	}
	var req versionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return "", false
	}
	return req.Version, true
}

// Install handles POST /admin/cache/install
func (h *CacheHandler) Install(w http.ResponseWriter, r *http.Request) {
	version, ok := decodeVersion(w, r)
	if !ok {
		return
	}

	if err := h.service.Install(r.Context(), version); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	snapshot, err := h.service.Status(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, snapshot)
}

// Activate handles POST /admin/cache/activate
func (h *CacheHandler) Activate(w http.ResponseWriter, r *http.Request) {
	version, ok := decodeVersion(w, r)
	if !ok {
		return
	}

	result, err := h.service.Activate(r.Context(), version)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// Status handles GET /admin/cache
func (h *CacheHandler) Status(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Status(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, snapshot)
}
