package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/medassist/offline-triage/internal/infrastructure/observability"
)

// LoggingMiddleware logs one line per request with the response source, so
// offline answers can be told apart from relayed ones. Server errors log at
// warn level.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		logger := observability.LoggerFromContext(r.Context())
		var event *zerolog.Event
		if rw.statusCode >= http.StatusInternalServerError {
			event = logger.Warn()
		} else {
			event = logger.Info()
		}

		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("client_ip", getClientIP(r)).
			Int("status", rw.statusCode).
			Int("bytes", rw.written).
			Str("source", rw.Header().Get(ResponseSourceHeader)).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

// loggingResponseWriter captures the status code and body size.
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int
}

func (rw *loggingResponseWriter) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *loggingResponseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += n
	return n, err
}

func (rw *loggingResponseWriter) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
