package cache

import (
	"context"
	"sort"
	"sync"

	"github.com/medassist/offline-triage/internal/domain/entities"
	"github.com/medassist/offline-triage/internal/domain/providers"
)

// MemoryStore is a process-local CacheStore.
type MemoryStore struct {
	mu         sync.RWMutex
	namespaces map[string]map[string]*entities.CachedResponse
}

// NewMemoryStore creates an empty in-memory cache store
func NewMemoryStore() providers.CacheStore {
	return &MemoryStore{
		namespaces: make(map[string]map[string]*entities.CachedResponse),
	}
}

// Namespaces lists existing namespaces in lexical order
func (s *MemoryStore) Namespaces(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.namespaces))
	for name := range s.namespaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Put stores a copy of resp
func (s *MemoryStore) Put(ctx context.Context, namespace, key string, resp *entities.CachedResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, ok := s.namespaces[namespace]
	if !ok {
		entries = make(map[string]*entities.CachedResponse)
		s.namespaces[namespace] = entries
	}
	entries[key] = copyEntry(resp)
	return nil
}

// Match returns a copy of the stored entry, or nil on a miss
func (s *MemoryStore) Match(ctx context.Context, namespace, key string) (*entities.CachedResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.namespaces[namespace][key]
	if !ok {
		return nil, nil
	}
	return copyEntry(entry), nil
}

// Keys lists the keys of a namespace in lexical order
func (s *MemoryStore) Keys(ctx context.Context, namespace string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.namespaces[namespace]))
	for key := range s.namespaces[namespace] {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// DeleteNamespace removes a namespace; absent namespaces report false
func (s *MemoryStore) DeleteNamespace(ctx context.Context, namespace string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.namespaces[namespace]; !ok {
		return false, nil
	}
	delete(s.namespaces, namespace)
	return true, nil
}

func copyEntry(resp *entities.CachedResponse) *entities.CachedResponse {
	if resp == nil {
		return nil
	}
	out := *resp
	out.Header = resp.Header.Clone()
	out.Body = append([]byte(nil), resp.Body...)
	return &out
}
