package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/medassist/offline-triage/internal/api/middleware"
	"github.com/medassist/offline-triage/internal/application/services"
	"github.com/medassist/offline-triage/internal/infrastructure/observability"
	apperrors "github.com/medassist/offline-triage/pkg/errors"
)

const maxRequestBytes = 1 << 20

// relayedHeaders are copied from a dispatched response onto the client response.
var relayedHeaders = []string{"Content-Type", "Content-Language", "Last-Modified"}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"status":  "error",
		"message": message,
	})
}

// respondWithAppError maps an AppError type to its HTTP status.
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("Unhandled error")
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	switch appErr.Type {
	case apperrors.ErrorTypeValidation:
		respondWithError(w, http.StatusBadRequest, appErr.Message)
	case apperrors.ErrorTypeNotFound:
		respondWithError(w, http.StatusNotFound, appErr.Message)
	case apperrors.ErrorTypeOffline:
		respondWithError(w, http.StatusServiceUnavailable, appErr.Message)
	case apperrors.ErrorTypeExternal:
		respondWithError(w, http.StatusBadGateway, appErr.Message)
	default:
		observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("Request failed")
		respondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

// writeResult writes a service result, marking where the answer came from.
func writeResult(w http.ResponseWriter, result *services.Result) {
	for _, name := range relayedHeaders {
		if v := result.Header.Get(name); v != "" {
			w.Header().Set(name, v)
		}
	}
	if result.Source != "" {
		w.Header().Set(middleware.ResponseSourceHeader, string(result.Source))
	}
	w.WriteHeader(result.Status)
	w.Write(result.Body)
}

// readBody reads a bounded request body.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		return nil, apperrors.NewValidationError("request body too large or unreadable")
	}
	return body, nil
}
