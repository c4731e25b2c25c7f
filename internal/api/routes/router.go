package routes

import (
	"net/http"

	"github.com/medassist/offline-triage/internal/api/handlers"
	"github.com/medassist/offline-triage/internal/api/middleware"
	"github.com/medassist/offline-triage/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	triageHandler  *handlers.TriageHandler
	patientHandler *handlers.PatientHandler
	cacheHandler   *handlers.CacheHandler
	healthHandler  *handlers.HealthHandler
	staticHandler  *handlers.StaticHandler

	diagnoseLimiter *middleware.IPRateLimiter
	allowedOrigins  []string
	apiPrefix       string
	metrics         *observability.Metrics
}

// Options holds router settings that are not handlers
type Options struct {
	DiagnoseLimiter *middleware.IPRateLimiter
	AllowedOrigins  []string
	APIPrefix       string
	Metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	triageHandler *handlers.TriageHandler,
	patientHandler *handlers.PatientHandler,
	cacheHandler *handlers.CacheHandler,
	healthHandler *handlers.HealthHandler,
	staticHandler *handlers.StaticHandler,
	opts Options,
) *Router {
	apiPrefix := opts.APIPrefix
	if apiPrefix == "" {
		apiPrefix = "/api/"
	}
	return &Router{
		mux:             http.NewServeMux(),
		triageHandler:   triageHandler,
		patientHandler:  patientHandler,
		cacheHandler:    cacheHandler,
		healthHandler:   healthHandler,
		staticHandler:   staticHandler,
		diagnoseLimiter: opts.DiagnoseLimiter,
		allowedOrigins:  opts.AllowedOrigins,
		apiPrefix:       apiPrefix,
		metrics:         opts.Metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", r.healthHandler.Health)

	// Diagnosis endpoints
	r.mux.Handle("POST /api/diagnose", r.limited(http.HandlerFunc(r.triageHandler.Diagnose)))
	r.mux.Handle("POST /api/triage/local", r.limited(http.HandlerFunc(r.triageHandler.LocalTriage)))
	r.mux.HandleFunc("GET /api/labels/{language}", r.triageHandler.Labels)

	// Patient endpoints
	r.mux.HandleFunc("POST /api/patient/register", r.patientHandler.Register)
	r.mux.HandleFunc("GET /api/patient/history/{patientId}", r.patientHandler.History)

	// Cache lifecycle
	r.mux.HandleFunc("GET /admin/cache", r.cacheHandler.Status)
	r.mux.HandleFunc("POST /admin/cache/install", r.cacheHandler.Install)
	r.mux.HandleFunc("POST /admin/cache/activate", r.cacheHandler.Activate)

	// App shell, assets and any other read go through the dispatcher
	r.mux.HandleFunc("GET /", r.staticHandler.Serve)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = middleware.ResponseOptimization(r.apiPrefix)(handler)

	// CORS wraps everything so headers are set on every response
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}

func (r *Router) limited(next http.Handler) http.Handler {
	if r.diagnoseLimiter == nil {
		return next
	}
	return r.diagnoseLimiter.Middleware(next)
}
