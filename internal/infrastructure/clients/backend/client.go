package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/medassist/offline-triage/internal/domain/entities"
	"github.com/medassist/offline-triage/internal/domain/providers"
	"github.com/medassist/offline-triage/internal/infrastructure/observability"
	apperrors "github.com/medassist/offline-triage/pkg/errors"
)

const maxResponseBytes = 8 << 20

// HealthPath is the remote health endpoint.
const HealthPath = "/api/health"

var errServerStatus = errors.New("backend server error")

// forwardedHeaders are copied from the inbound request to the backend.
var forwardedHeaders = []string{"Accept", "Accept-Language", "Content-Type", "Authorization", "X-Request-ID"}

// Options tunes the HTTP client.
type Options struct {
	Timeout         time.Duration
	BreakerFailures int
	BreakerCooldown time.Duration
}

// HTTPClient talks to the remote diagnostic backend. A circuit breaker stops
// calling a backend that keeps failing so offline fallbacks answer at once.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

// NewClient creates a backend client rooted at baseURL
func NewClient(baseURL string, opts Options) *HTTPClient {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.BreakerFailures <= 0 {
		opts.BreakerFailures = 5
	}
	if opts.BreakerCooldown <= 0 {
		opts.BreakerCooldown = 30 * time.Second
	}
	failures := uint32(opts.BreakerFailures)

	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "backend",
			MaxRequests: 1,
			Timeout:     opts.BreakerCooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				observability.GetLogger().Warn().
					Str("breaker", name).
					Str("from", from.String()).
					Str("to", to.String()).
					Msg("Backend circuit breaker changed state")
			},
		}),
	}
}

var _ providers.Fetcher = (*HTTPClient)(nil)

// BreakerState reports the circuit breaker state ("closed", "open", "half-open").
func (c *HTTPClient) BreakerState() string {
	return c.breaker.State().String()
}

// Fetch performs req against the backend. Responses of any status are
// returned without error; network failures and an open breaker return an
// Offline error.
func (c *HTTPClient) Fetch(ctx context.Context, req *entities.FetchRequest) (*entities.FetchResponse, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.do(ctx, method, req)
	})

	resp, _ := result.(*entities.FetchResponse)
	switch {
	case err == nil:
		return resp, nil
	case errors.Is(err, errServerStatus):
		return resp, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, apperrors.NewOfflineError("backend circuit open", err)
	default:
		return nil, apperrors.NewOfflineError("backend unreachable", err)
	}
}

func (c *HTTPClient) do(ctx context.Context, method string, req *entities.FetchRequest) (*entities.FetchResponse, error) {
	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+req.Path, body)
	if err != nil {
		return nil, err
	}
	for _, name := range forwardedHeaders {
		if v := req.Header.Get(name); v != "" {
			httpReq.Header.Set(name, v)
		}
	}
	if rid := observability.RequestIDFromContext(ctx); rid != "" && httpReq.Header.Get("X-Request-ID") == "" {
		httpReq.Header.Set("X-Request-ID", rid)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read backend response: %w", err)
	}

	out := &entities.FetchResponse{
		Status: resp.StatusCode,
		Header: resp.Header.Clone(),
		Body:   data,
		Source: entities.SourceNetwork,
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return out, errServerStatus
	}
	return out, nil
}

// Health queries the backend health endpoint.
func (c *HTTPClient) Health(ctx context.Context) (*entities.HealthResponse, error) {
	resp, err := c.Fetch(ctx, &entities.FetchRequest{
		Method: http.MethodGet,
		Path:   HealthPath,
		Header: http.Header{"Accept": []string{"application/json"}},
	})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, apperrors.NewExternalError(fmt.Sprintf("backend health returned status %d", resp.Status), nil)
	}

	out := &entities.HealthResponse{}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return nil, apperrors.NewExternalError("failed to decode backend health", err)
	}
	return out, nil
}
