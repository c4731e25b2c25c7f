package offline

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/medassist/offline-triage/internal/domain/entities"
)

var errNetworkDown = errors.New("dial tcp: connection refused")

// fakeFetcher answers from a path table; unknown paths and a downed network
// fail like an unreachable backend.
type fakeFetcher struct {
	mu       sync.Mutex
	routes   map[string]*entities.FetchResponse
	down     bool
	requests []entities.FetchRequest
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{routes: make(map[string]*entities.FetchResponse)}
}

func (f *fakeFetcher) serve(path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[path] = &entities.FetchResponse{
		Status: status,
		Header: http.Header{"Content-Type": []string{"text/plain"}},
		Body:   []byte(body),
	}
}

func (f *fakeFetcher) setDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = down
}

func (f *fakeFetcher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeFetcher) Fetch(ctx context.Context, req *entities.FetchRequest) (*entities.FetchResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, *req)

	if f.down {
		return nil, errNetworkDown
	}
	resp, ok := f.routes[pathOnly(req.Path)]
	if !ok {
		return nil, errNetworkDown
	}
	out := *resp
	out.Header = resp.Header.Clone()
	out.Body = append([]byte(nil), resp.Body...)
	return &out, nil
}

// recordingNotifier captures published lifecycle events.
type recordingNotifier struct {
	mu     sync.Mutex
	events []*entities.LifecycleEvent
}

func (n *recordingNotifier) Publish(ctx context.Context, event *entities.LifecycleEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *recordingNotifier) Subscribe(ctx context.Context) (<-chan *entities.LifecycleEvent, error) {
	return make(chan *entities.LifecycleEvent), nil
}

func (n *recordingNotifier) Close() error { return nil }

func (n *recordingNotifier) types() []entities.LifecycleEventType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]entities.LifecycleEventType, len(n.events))
	for i, e := range n.events {
		out[i] = e.Type
	}
	return out
}
