package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/medassist/offline-triage/internal/domain/entities"
	"github.com/medassist/offline-triage/internal/domain/providers"
	"github.com/medassist/offline-triage/internal/infrastructure/observability"
	"github.com/medassist/offline-triage/internal/offline"
)

// CacheService drives the cache lifecycle: the update loop that installs and
// activates the configured version, and following activations announced by
// other instances sharing the store.
type CacheService struct {
	manager  *offline.Manager
	notifier providers.LifecycleNotifier
	version  string
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewCacheService creates a new cache service. notifier may be nil.
func NewCacheService(manager *offline.Manager, notifier providers.LifecycleNotifier, version string, interval time.Duration) *CacheService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheService{
		manager:  manager,
		notifier: notifier,
		version:  version,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Version returns the configured cache version.
func (s *CacheService) Version() string {
	return s.version
}

// Install installs version side by side with the active one.
func (s *CacheService) Install(ctx context.Context, version string) error {
	if version == "" {
		version = s.version
	}
	return s.manager.Install(ctx, version)
}

// Activate promotes version, or the pending version when empty.
func (s *CacheService) Activate(ctx context.Context, version string) (*offline.ActivationResult, error) {
	return s.manager.Activate(ctx, version)
}

// Status returns the current lifecycle snapshot.
func (s *CacheService) Status(ctx context.Context) (*entities.CacheSnapshot, error) {
	return s.manager.Snapshot(ctx)
}

// Update installs and activates the configured version unless it is already
// active.
func (s *CacheService) Update(ctx context.Context) error {
	if s.manager.ActiveVersion() == s.version {
		return nil
	}
	if err := s.manager.Install(ctx, s.version); err != nil {
		return err
	}
	if _, err := s.manager.Activate(ctx, s.version); err != nil {
		return err
	}
	return nil
}

// Start runs a first update, then keeps retrying in the background until a
// version is active, and follows peer activations.
func (s *CacheService) Start() error {
	logger := observability.GetLogger()

	if s.notifier != nil {
		events, err := s.notifier.Subscribe(s.ctx)
		if err != nil {
			return fmt.Errorf("failed to subscribe to cache lifecycle events: %w", err)
		}
		s.wg.Add(1)
		go s.processEvents(events)
	}

	if err := s.Update(s.ctx); err != nil {
		logger.Warn().Err(err).Str("cache_version", s.version).Msg("Initial cache update failed, will retry")
	}

	s.wg.Add(1)
	go s.updateLoop()

	logger.Info().Str("cache_version", s.version).Msg("Cache lifecycle service started")
	return nil
}

// Stop stops background work and waits for it to finish.
func (s *CacheService) Stop() {
	s.cancel()
	s.wg.Wait()
	observability.GetLogger().Info().Msg("Cache lifecycle service stopped")
}

func (s *CacheService) updateLoop() {
	defer s.wg.Done()
	if s.interval <= 0 {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if s.manager.ActiveVersion() != "" {
				continue
			}
			if err := s.Update(s.ctx); err != nil {
				observability.GetLogger().Warn().Err(err).
					Str("cache_version", s.version).
					Msg("Cache update failed, will retry")
			}
		}
	}
}

// processEvents follows activations made by other instances so every
// instance serves from namespaces that still exist.
func (s *CacheService) processEvents(events <-chan *entities.LifecycleEvent) {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			s.handleEvent(s.ctx, event)
		}
	}
}

func (s *CacheService) handleEvent(ctx context.Context, event *entities.LifecycleEvent) {
	if event == nil || event.Type != entities.LifecycleActivated {
		return
	}
	if event.Origin == s.manager.Origin() || event.Version == s.manager.ActiveVersion() {
		return
	}

	logger := observability.GetLogger().With().
		Str("cache_version", event.Version).
		Str("origin", event.Origin).
		Logger()
	logger.Info().Msg("Following peer cache activation")

	if err := s.manager.Install(ctx, event.Version); err != nil {
		logger.Error().Err(err).Msg("Failed to install peer cache version")
		return
	}
	if _, err := s.manager.Activate(ctx, event.Version); err != nil {
		logger.Error().Err(err).Msg("Failed to activate peer cache version")
	}
}
