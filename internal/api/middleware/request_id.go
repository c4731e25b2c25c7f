package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/medassist/offline-triage/internal/infrastructure/observability"
)

// Response headers set by the edge.
const (
	RequestIDHeader      = "X-Request-ID"
	ResponseSourceHeader = "X-Response-Source"
)

// RequestIDMiddleware propagates the caller's X-Request-ID or assigns a new
// one, and stores it on the request context.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		ctx := observability.ContextWithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
