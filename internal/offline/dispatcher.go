package offline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/medassist/offline-triage/internal/domain/entities"
	"github.com/medassist/offline-triage/internal/domain/providers"
	"github.com/medassist/offline-triage/internal/infrastructure/observability"
)

// Dispatch strategies.
const (
	StrategyCacheFirst   = "cache_first"
	StrategyNetworkFirst = "network_first"
)

// OfflineBody is returned for an API request when neither the network nor the
// cache can answer.
const OfflineBody = `{"status":"error","message":"offline","offline":true}`

// DispatcherOptions configures a Dispatcher.
type DispatcherOptions struct {
	// APIPrefix selects network-first handling, e.g. "/api/".
	APIPrefix string

	// CacheablePosts are API paths whose POST responses are cached, keyed
	// by the request body.
	CacheablePosts []string

	Metrics *observability.Metrics
	Now     func() time.Time
}

// Dispatcher picks a caching strategy per request: cache-first for static
// assets and navigations, network-first for API calls.
type Dispatcher struct {
	manager        *Manager
	fetcher        providers.Fetcher
	apiPrefix      string
	cacheablePosts []string
	metrics        *observability.Metrics
	now            func() time.Time
}

// NewDispatcher creates a dispatcher reading and writing the namespaces of
// manager's active version.
func NewDispatcher(manager *Manager, fetcher providers.Fetcher, opts DispatcherOptions) *Dispatcher {
	d := &Dispatcher{
		manager:        manager,
		fetcher:        fetcher,
		apiPrefix:      opts.APIPrefix,
		cacheablePosts: slices.Clone(opts.CacheablePosts),
		metrics:        opts.Metrics,
		now:            opts.Now,
	}
	if d.apiPrefix == "" {
		d.apiPrefix = "/api/"
	}
	if d.now == nil {
		d.now = time.Now
	}
	return d
}

// IsAPI reports whether path is handled network-first.
func (d *Dispatcher) IsAPI(path string) bool {
	return strings.HasPrefix(path, d.apiPrefix)
}

// CacheKey returns the key req is stored under, or "" when req is never
// cached. GETs are keyed by path; cacheable POSTs by method, path and a
// SHA-256 of the body, so a stored diagnosis only ever matches byte-identical
// clinical input.
func (d *Dispatcher) CacheKey(req *entities.FetchRequest) string {
	switch req.Method {
	case "", http.MethodGet:
		return req.Path
	case http.MethodPost:
		if !slices.Contains(d.cacheablePosts, pathOnly(req.Path)) {
			return ""
		}
		sum := sha256.Sum256(req.Body)
		return http.MethodPost + " " + req.Path + " " + hex.EncodeToString(sum[:])
	default:
		return ""
	}
}

// Dispatch answers req. It never fails: network errors end in a cached copy,
// the shell root document or a synthesized offline response.
func (d *Dispatcher) Dispatch(ctx context.Context, req *entities.FetchRequest) *entities.FetchResponse {
	var resp *entities.FetchResponse
	strategy := StrategyCacheFirst
	if d.IsAPI(pathOnly(req.Path)) {
		strategy = StrategyNetworkFirst
		resp = d.networkFirst(ctx, req)
	} else {
		resp = d.cacheFirst(ctx, req)
	}

	observability.RecordDispatch(ctx, d.metrics, strategy, string(resp.Source))
	observability.LoggerFromContext(ctx).Debug().
		Str("strategy", strategy).
		Str("method", req.Method).
		Str("path", req.Path).
		Str("source", string(resp.Source)).
		Int("status", resp.Status).
		Msg("Dispatched request")
	return resp
}

func (d *Dispatcher) cacheFirst(ctx context.Context, req *entities.FetchRequest) *entities.FetchResponse {
	ns, active := d.manager.Current()
	key := d.CacheKey(req)

	if active && key != "" {
		for _, namespace := range []string{ns.Shell, ns.Runtime} {
			if hit := d.match(ctx, namespace, key); hit != nil {
				return hit.Response(entities.SourceCache)
			}
		}
	}

	resp, err := d.fetcher.Fetch(ctx, req)
	if err == nil && resp.Status < http.StatusInternalServerError {
		resp.Source = entities.SourceNetwork
		if resp.OK() && active && key != "" {
			d.put(ctx, ns.Runtime, key, resp)
		}
		return resp
	}
	d.logNetworkFailure(ctx, req, resp, err)

	if req.Navigate && active {
		if root := d.match(ctx, ns.Shell, "/"); root != nil {
			return root.Response(entities.SourceFallback)
		}
	}
	return offlineResponse("text/plain; charset=utf-8", "offline")
}

func (d *Dispatcher) networkFirst(ctx context.Context, req *entities.FetchRequest) *entities.FetchResponse {
	ns, active := d.manager.Current()
	key := d.CacheKey(req)

	resp, err := d.fetcher.Fetch(ctx, req)
	if err == nil && resp.Status < http.StatusInternalServerError {
		resp.Source = entities.SourceNetwork
		if resp.OK() && active && key != "" {
			d.put(ctx, ns.API, key, resp)
		}
		return resp
	}
	d.logNetworkFailure(ctx, req, resp, err)

	if active && key != "" {
		if hit := d.match(ctx, ns.API, key); hit != nil {
			return hit.Response(entities.SourceCache)
		}
	}
	return offlineResponse("application/json", OfflineBody)
}

func (d *Dispatcher) match(ctx context.Context, namespace, key string) *entities.CachedResponse {
	hit, err := d.manager.Store().Match(ctx, namespace, key)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).
			Str("namespace", namespace).
			Msg("Cache read failed, treating as miss")
		return nil
	}
	return hit
}

func (d *Dispatcher) put(ctx context.Context, namespace, key string, resp *entities.FetchResponse) {
	entry := &entities.CachedResponse{
		Status:   resp.Status,
		Header:   resp.Header.Clone(),
		Body:     append([]byte(nil), resp.Body...),
		StoredAt: d.now(),
	}
	if err := d.manager.Store().Put(ctx, namespace, key, entry); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).
			Str("namespace", namespace).
			Msg("Cache write failed")
	}
}

func (d *Dispatcher) logNetworkFailure(ctx context.Context, req *entities.FetchRequest, resp *entities.FetchResponse, err error) {
	event := observability.LoggerFromContext(ctx).Info().Str("path", req.Path)
	if err != nil {
		event = event.Err(err)
	} else {
		event = event.Int("status", resp.Status)
	}
	event.Msg("Network unavailable, falling back")
}

func offlineResponse(contentType, body string) *entities.FetchResponse {
	return &entities.FetchResponse{
		Status: http.StatusServiceUnavailable,
		Header: http.Header{"Content-Type": []string{contentType}},
		Body:   []byte(body),
		Source: entities.SourceOffline,
	}
}

func pathOnly(p string) string {
	if i := strings.IndexByte(p, '?'); i >= 0 {
		return p[:i]
	}
	return p
}
