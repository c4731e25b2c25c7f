package offline

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medassist/offline-triage/internal/domain/entities"
	"github.com/medassist/offline-triage/internal/domain/providers"
	"github.com/medassist/offline-triage/internal/infrastructure/observability"
	apperrors "github.com/medassist/offline-triage/pkg/errors"
)

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	Prefix      string
	ShellAssets []string

	// Notifier receives installed/activated events. Optional.
	Notifier providers.LifecycleNotifier
	Metrics  *observability.Metrics

	// Origin identifies this instance in published events.
	Origin string
	Now    func() time.Time
}

// ActivationResult reports what an activation pruned.
type ActivationResult struct {
	Version string   `json:"version"`
	Deleted []string `json:"deleted"`
}

// Manager owns the versioned cache namespaces and their lifecycle:
// Absent → Installing → Installed → Active → Stale → Deleted.
//
// Install and Activate are serialized; reads of the current state are not
// blocked by a running install.
type Manager struct {
	lifecycle sync.Mutex

	mu      sync.RWMutex
	active  string
	pending string
	states  map[string]entities.CacheState

	store    providers.CacheStore
	fetcher  providers.Fetcher
	notifier providers.LifecycleNotifier
	metrics  *observability.Metrics
	prefix   string
	assets   []string
	origin   string
	now      func() time.Time
}

// NewManager creates a cache manager over store, fetching shell assets
// through fetcher.
func NewManager(store providers.CacheStore, fetcher providers.Fetcher, opts ManagerOptions) *Manager {
	m := &Manager{
		states:   make(map[string]entities.CacheState),
		store:    store,
		fetcher:  fetcher,
		notifier: opts.Notifier,
		metrics:  opts.Metrics,
		prefix:   opts.Prefix,
		assets:   slices.Clone(opts.ShellAssets),
		origin:   opts.Origin,
		now:      opts.Now,
	}
	if m.prefix == "" {
		m.prefix = "medassist"
	}
	if m.origin == "" {
		m.origin = uuid.NewString()
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// Prefix returns the namespace prefix.
func (m *Manager) Prefix() string {
	return m.prefix
}

// Origin returns the instance identifier stamped on published events.
func (m *Manager) Origin() string {
	return m.origin
}

// State returns the lifecycle state of version.
func (m *Manager) State(version string) entities.CacheState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stateLocked(version)
}

func (m *Manager) stateLocked(version string) entities.CacheState {
	if s, ok := m.states[version]; ok {
		return s
	}
	return entities.CacheAbsent
}

func (m *Manager) setState(version string, state entities.CacheState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[version] = state
}

// ActiveVersion returns the active version, or "" before the first activation.
func (m *Manager) ActiveVersion() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

// PendingVersion returns the installed version waiting for activation, if any.
func (m *Manager) PendingVersion() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pending
}

// Current returns the namespaces of the active version.
func (m *Manager) Current() (Namespaces, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.active == "" {
		return Namespaces{}, false
	}
	return namespacesFor(m.prefix, m.active), true
}

// Store returns the underlying cache store.
func (m *Manager) Store() providers.CacheStore {
	return m.store
}

// Install provisions the shell namespace of version. Every shell asset is
// fetched before anything is written; a single failure fails the whole
// install and leaves no shell namespace behind. A version whose shell is
// already complete in the store is adopted without refetching.
func (m *Manager) Install(ctx context.Context, version string) error {
	if version == "" {
		return apperrors.NewValidationError("cache version is required")
	}

	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	logger := observability.LoggerFromContext(ctx).With().
		Str("cache_version", version).
		Logger()

	switch m.State(version) {
	case entities.CacheInstalled, entities.CacheActive:
		return nil
	}

	previous := m.State(version)
	m.setState(version, entities.CacheInstalling)
	ns := namespacesFor(m.prefix, version)

	complete, err := m.shellComplete(ctx, ns.Shell)
	if err != nil {
		m.setState(version, previous)
		return apperrors.NewInternalError("failed to inspect shell namespace", err)
	}
	if complete {
		logger.Info().Str("namespace", ns.Shell).Msg("Adopting existing shell namespace")
		m.markInstalled(ctx, version)
		return nil
	}

	entries := make(map[string]*entities.CachedResponse, len(m.assets))
	for _, asset := range m.assets {
		resp, err := m.fetcher.Fetch(ctx, &entities.FetchRequest{Method: http.MethodGet, Path: asset})
		if err == nil && !resp.OK() {
			err = fmt.Errorf("unexpected status %d", resp.Status)
		}
		if err != nil {
			m.abortInstall(ctx, version, ns.Shell, previous)
			logger.Error().Err(err).Str("asset", asset).Msg("Shell install failed")
			return apperrors.NewInternalError(fmt.Sprintf("failed to fetch shell asset %s", asset), err)
		}
		entries[asset] = &entities.CachedResponse{
			Status:   resp.Status,
			Header:   resp.Header,
			Body:     resp.Body,
			StoredAt: m.now(),
		}
	}

	for _, asset := range m.assets {
		if err := m.store.Put(ctx, ns.Shell, asset, entries[asset]); err != nil {
			m.abortInstall(ctx, version, ns.Shell, previous)
			return apperrors.NewInternalError(fmt.Sprintf("failed to store shell asset %s", asset), err)
		}
	}

	logger.Info().Int("assets", len(m.assets)).Msg("Shell installed")
	m.markInstalled(ctx, version)
	return nil
}

func (m *Manager) shellComplete(ctx context.Context, namespace string) (bool, error) {
	if len(m.assets) == 0 {
		return false, nil
	}
	keys, err := m.store.Keys(ctx, namespace)
	if err != nil {
		return false, err
	}
	for _, asset := range m.assets {
		if !slices.Contains(keys, asset) {
			return false, nil
		}
	}
	return true, nil
}

func (m *Manager) abortInstall(ctx context.Context, version, shell string, previous entities.CacheState) {
	if _, err := m.store.DeleteNamespace(ctx, shell); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("namespace", shell).Msg("Failed to discard partial shell")
	}
	if previous == entities.CacheInstalling {
		previous = entities.CacheAbsent
	}
	m.setState(version, previous)
}

func (m *Manager) markInstalled(ctx context.Context, version string) {
	m.mu.Lock()
	m.states[version] = entities.CacheInstalled
	m.pending = version
	m.mu.Unlock()

	m.publish(ctx, &entities.LifecycleEvent{
		Type:       entities.LifecycleInstalled,
		Version:    version,
		Namespaces: namespacesFor(m.prefix, version).All(),
	})
}

// Activate makes version the active one, or the pending version when version
// is empty. Every namespace of this prefix that belongs to another version is
// deleted before the activation is announced. Activating the active version
// again deletes nothing new and is not an error.
func (m *Manager) Activate(ctx context.Context, version string) (*ActivationResult, error) {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	if version == "" {
		version = m.PendingVersion()
	}
	if version == "" {
		version = m.ActiveVersion()
	}
	if version == "" {
		return nil, apperrors.NewValidationError("no installed cache version to activate")
	}

	switch m.State(version) {
	case entities.CacheInstalled, entities.CacheActive:
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("cache version %s is not installed", version))
	}

	logger := observability.LoggerFromContext(ctx).With().
		Str("cache_version", version).
		Logger()

	names, err := m.store.Namespaces(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list cache namespaces", err)
	}

	result := &ActivationResult{Version: version, Deleted: []string{}}
	for _, name := range names {
		_, v, ok := ParseNamespace(m.prefix, name)
		if !ok || v == version {
			continue
		}
		m.setState(v, entities.CacheStale)
		deleted, err := m.store.DeleteNamespace(ctx, name)
		if err != nil {
			return nil, apperrors.NewInternalError(fmt.Sprintf("failed to delete cache namespace %s", name), err)
		}
		if deleted {
			result.Deleted = append(result.Deleted, name)
			observability.RecordNamespaceDeleted(ctx, m.metrics, name)
			logger.Info().Str("namespace", name).Msg("Removed old cache namespace")
		}
	}

	m.mu.Lock()
	for v := range m.states {
		if v != version {
			m.states[v] = entities.CacheDeleted
		}
	}
	m.states[version] = entities.CacheActive
	m.active = version
	// Every other version was pruned above, a pending one included.
	m.pending = ""
	m.mu.Unlock()

	// Pruning is complete; only now are other instances told to switch.
	m.publish(ctx, &entities.LifecycleEvent{
		Type:       entities.LifecycleActivated,
		Version:    version,
		Namespaces: namespacesFor(m.prefix, version).All(),
		Deleted:    result.Deleted,
	})

	return result, nil
}

func (m *Manager) publish(ctx context.Context, event *entities.LifecycleEvent) {
	if m.notifier == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Origin = m.origin
	event.Timestamp = m.now()
	if err := m.notifier.Publish(ctx, event); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).
			Str("event_type", string(event.Type)).
			Msg("Failed to publish cache lifecycle event")
	}
}

// Snapshot returns the current lifecycle view, including the namespaces
// present in the store.
func (m *Manager) Snapshot(ctx context.Context) (*entities.CacheSnapshot, error) {
	names, err := m.store.Namespaces(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list cache namespaces", err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	versions := make(map[string]entities.CacheState, len(m.states))
	for v, s := range m.states {
		versions[v] = s
	}
	return &entities.CacheSnapshot{
		Prefix:        m.prefix,
		ActiveVersion: m.active,
		Versions:      versions,
		Namespaces:    names,
	}, nil
}
