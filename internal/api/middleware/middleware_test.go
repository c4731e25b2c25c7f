package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medassist/offline-triage/internal/infrastructure/observability"
)

func okHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(body))
	})
}

func TestGetClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.7:51234"
	assert.Equal(t, "10.0.0.7", getClientIP(r))

	r.Header.Set("X-Real-IP", "172.16.0.2")
	assert.Equal(t, "172.16.0.2", getClientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", getClientIP(r))

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "unix-socket"
	assert.Equal(t, "unix-socket", getClientIP(r))
}

func TestIPRateLimiter_PerClientBuckets(t *testing.T) {
	limiter := NewIPRateLimiter(0.001, 2)
	handler := limiter.Middleware(okHandler("ok"))

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/diagnose", nil)
		req.RemoteAddr = ip + ":1000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, send("10.0.0.1").Code)

	limited := send("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"status":"error","message":"too many requests"}`, limited.Body.String())

	assert.Equal(t, http.StatusOK, send("10.0.0.2").Code)
}

func TestIPRateLimiter_DisabledWhenRateNotPositive(t *testing.T) {
	handler := NewIPRateLimiter(0, 1).Middleware(okHandler("ok"))

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/diagnose", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestIPRateLimiter_SameLimiterPerIP(t *testing.T) {
	limiter := NewIPRateLimiter(1, 1)
	assert.Same(t, limiter.GetLimiter("10.0.0.1"), limiter.GetLimiter("10.0.0.1"))
	assert.NotSame(t, limiter.GetLimiter("10.0.0.1"), limiter.GetLimiter("10.0.0.2"))
}

func TestCORSMiddleware(t *testing.T) {
	t.Run("wildcard", func(t *testing.T) {
		handler := CORSMiddleware(nil)(okHandler("ok"))
		req := httptest.NewRequest(http.MethodGet, "/api/labels/en", nil)
		req.Header.Set("Origin", "https://clinic.example")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), ResponseSourceHeader)
	})

	t.Run("allow list", func(t *testing.T) {
		handler := CORSMiddleware([]string{"https://clinic.example"})(okHandler("ok"))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://clinic.example")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, "https://clinic.example", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Origin", rec.Header().Get("Vary"))

		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		called := false
		handler := CORSMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/diagnose", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, called)
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = observability.RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "req-42", seen)
	assert.Equal(t, "req-42", rec.Header().Get(RequestIDHeader))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
	assert.Equal(t, rec.Header().Get(RequestIDHeader), seen)
}

func TestCacheControl(t *testing.T) {
	handler := CacheControl("/api/")(okHandler("ok"))

	cases := map[string]string{
		"/api/diagnose":  "no-store",
		"/admin/cache":   "no-store",
		"/health":        "no-cache",
		"/static/app.js": "public, max-age=0, must-revalidate",
		"/":              "public, max-age=0, must-revalidate",
	}
	for path, want := range cases {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, rec.Header().Get("Cache-Control"), path)
	}
}

func TestETag(t *testing.T) {
	handler := ETag("/api/")(okHandler("<html>shell</html>"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)
	assert.Equal(t, "<html>shell</html>", rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/labels/en", nil))
	assert.Empty(t, rec.Header().Get("ETag"))
}

func TestETag_PassesErrorsThrough(t *testing.T) {
	handler := ETag("/api/")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("offline"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing.js", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "offline", rec.Body.String())
	assert.Empty(t, rec.Header().Get("ETag"))
}

func TestCompression(t *testing.T) {
	handler := Compression(okHandler("compressed shell"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	gz, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.Equal(t, "compressed shell", string(body))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, rec.Header().Get("Content-Encoding"))
	assert.Equal(t, "compressed shell", rec.Body.String())
}

func TestLoggingMiddleware_CapturesStatusAndSize(t *testing.T) {
	var captured *loggingResponseWriter
	handler := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = w.(*loggingResponseWriter)
		w.Header().Set(ResponseSourceHeader, "fallback")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("offline"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing.js", nil))

	require.NotNil(t, captured)
	assert.Equal(t, http.StatusServiceUnavailable, captured.statusCode)
	assert.Equal(t, len("offline"), captured.written)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouteClass(t *testing.T) {
	assert.Equal(t, "/api/*", routeClass("/api/unknown"))
	assert.Equal(t, "/*", routeClass("/static/app.js"))
}
