package entities

import (
	"net/http"
	"time"
)

// ResponseSource tells where a dispatched response came from.
type ResponseSource string

const (
	SourceNetwork  ResponseSource = "network"
	SourceCache    ResponseSource = "cache"
	SourceFallback ResponseSource = "fallback"
	SourceOffline  ResponseSource = "offline"
)

// FetchRequest is an outbound request as seen by the dispatcher.
type FetchRequest struct {
	Method string
	// Path is the request path plus query, relative to the backend root.
	Path   string
	Header http.Header
	Body   []byte

	// Navigate marks a top-level page load.
	Navigate bool
}

// FetchResponse is a complete, buffered response.
type FetchResponse struct {
	Status int
	Header http.Header
	Body   []byte
	Source ResponseSource
}

// OK reports whether the status is 2xx.
func (r *FetchResponse) OK() bool {
	return r != nil && r.Status >= 200 && r.Status < 300
}

// CachedResponse is one stored entry of a cache namespace.
type CachedResponse struct {
	Status   int         `json:"status"`
	Header   http.Header `json:"header,omitempty"`
	Body     []byte      `json:"body"`
	StoredAt time.Time   `json:"stored_at"`
}

// Response turns the entry back into a dispatchable response.
func (c *CachedResponse) Response(source ResponseSource) *FetchResponse {
	return &FetchResponse{
		Status: c.Status,
		Header: c.Header.Clone(),
		Body:   append([]byte(nil), c.Body...),
		Source: source,
	}
}

// CacheState is the lifecycle state of one cache version.
type CacheState string

const (
	CacheAbsent     CacheState = "absent"
	CacheInstalling CacheState = "installing"
	CacheInstalled  CacheState = "installed"
	CacheActive     CacheState = "active"
	CacheStale      CacheState = "stale"
	CacheDeleted    CacheState = "deleted"
)

// LifecycleEventType names a cache lifecycle transition broadcast to peers.
type LifecycleEventType string

const (
	LifecycleInstalled LifecycleEventType = "installed"
	LifecycleActivated LifecycleEventType = "activated"
)

// LifecycleEvent announces a cache lifecycle transition.
type LifecycleEvent struct {
	ID         string             `json:"id"`
	Type       LifecycleEventType `json:"type"`
	Version    string             `json:"version"`
	Namespaces []string           `json:"namespaces,omitempty"`
	Deleted    []string           `json:"deleted,omitempty"`
	Origin     string             `json:"origin,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
}

// CacheSnapshot is a point-in-time view of the cache manager.
type CacheSnapshot struct {
	Prefix        string                `json:"prefix"`
	ActiveVersion string                `json:"active_version,omitempty"`
	Versions      map[string]CacheState `json:"versions"`
	Namespaces    []string              `json:"namespaces"`
}
