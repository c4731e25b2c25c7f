package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/medassist/offline-triage/internal/adapters/cache"
	"github.com/medassist/offline-triage/internal/adapters/database"
	"github.com/medassist/offline-triage/internal/adapters/events"
	"github.com/medassist/offline-triage/internal/api/handlers"
	"github.com/medassist/offline-triage/internal/api/middleware"
	"github.com/medassist/offline-triage/internal/api/routes"
	"github.com/medassist/offline-triage/internal/application/services"
	"github.com/medassist/offline-triage/internal/domain/entities"
	"github.com/medassist/offline-triage/internal/domain/providers"
	"github.com/medassist/offline-triage/internal/domain/repositories"
	"github.com/medassist/offline-triage/internal/infrastructure/clients/backend"
	"github.com/medassist/offline-triage/internal/infrastructure/clients/postgres"
	"github.com/medassist/offline-triage/internal/infrastructure/clients/redis"
	"github.com/medassist/offline-triage/internal/infrastructure/observability"
	"github.com/medassist/offline-triage/internal/offline"
	"github.com/medassist/offline-triage/internal/triage"
	"github.com/medassist/offline-triage/pkg/config"
	"github.com/medassist/offline-triage/pkg/secrets"
)

func main() {
	// Export Vault secrets before reading the environment
	vaultCtx, vaultCancel := context.WithTimeout(context.Background(), 10*time.Second)
	vaultResult, vaultErr := secrets.Load(vaultCtx, secrets.ConfigFromEnv())
	vaultCancel()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		observability.GetLogger().Fatal().Err(err).Msg("Failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Environment, cfg.Server.LogLevel)
	logger := observability.GetLogger()

	if vaultErr != nil {
		logger.Warn().Err(vaultErr).Str("path", vaultResult.Path).Msg("Failed to load secrets from Vault")
	} else if vaultResult.Enabled {
		logger.Info().Str("path", vaultResult.Path).Int("loaded", len(vaultResult.Loaded)).Int("skipped", len(vaultResult.Skipped)).Msg("Secrets loaded from Vault")
	}

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					logger.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			logger.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	// Remote diagnostic backend
	backendClient := backend.NewClient(cfg.Backend.URL, backend.Options{
		Timeout:         cfg.Backend.Timeout,
		BreakerFailures: cfg.Backend.BreakerFailures,
		BreakerCooldown: cfg.Backend.BreakerCooldown,
	})
	logger.Info().Str("backend_url", cfg.Backend.URL).Msg("Backend client initialized")

	// Redis backs the shared cache store and lifecycle broadcast
	var redisClient *redis.Client
	if cfg.Cache.Store == config.StoreRedis {
		redisClient, err = redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to initialize Redis client")
		}
		defer redisClient.Close()
	}

	var store providers.CacheStore
	var notifier providers.LifecycleNotifier
	if redisClient != nil {
		store = cache.NewRedisStore(redisClient, cfg.Cache.Prefix)
		notifier = events.NewRedisLifecycleNotifier(redisClient, cfg.Cache.Prefix)
		logger.Info().Msg("Cache namespaces stored in Redis")
	} else {
		store = cache.NewMemoryStore()
		notifier = events.NewLocalLifecycleNotifier()
		logger.Info().Msg("Cache namespaces stored in memory")
	}
	defer notifier.Close()

	// Offline determinations audit
	audits, closeAudits := initAuditRepository(ctx, cfg, metrics)
	defer closeAudits()

	// Offline layer
	manager := offline.NewManager(store, backendClient, offline.ManagerOptions{
		Prefix:      cfg.Cache.Prefix,
		ShellAssets: cfg.Cache.ShellAssets,
		Notifier:    notifier,
		Metrics:     metrics,
	})
	dispatcher := offline.NewDispatcher(manager, backendClient, offline.DispatcherOptions{
		APIPrefix:      cfg.Cache.APIPrefix,
		CacheablePosts: []string{services.DiagnosePath},
		Metrics:        metrics,
	})

	// Initialize services
	localizer := triage.NewLocalizer(entities.LanguageCode(cfg.Triage.DefaultLanguage))
	triageService := services.NewTriageService(dispatcher, triage.NewEngine(), localizer, audits, services.TriageServiceOptions{
		Timeout: cfg.Triage.DiagnoseTimeout,
		Metrics: metrics,
	})
	patientService := services.NewPatientService(dispatcher, audits)
	healthService := services.NewHealthService(backendClient, manager)

	cacheService := services.NewCacheService(manager, notifier, cfg.Cache.Version, cfg.Cache.UpdateInterval)
	if err := cacheService.Start(); err != nil {
		logger.Warn().Err(err).Msg("Failed to start cache lifecycle service")
	}

	// Set up router
	router := routes.NewRouter(
		handlers.NewTriageHandler(triageService, localizer),
		handlers.NewPatientHandler(patientService),
		handlers.NewCacheHandler(cacheService),
		handlers.NewHealthHandler(healthService),
		handlers.NewStaticHandler(dispatcher),
		routes.Options{
			DiagnoseLimiter: middleware.NewIPRateLimiter(cfg.Triage.DiagnoseRateLimit, cfg.Triage.DiagnoseRateBurst),
			AllowedOrigins:  cfg.Server.AllowedOrigins,
			APIPrefix:       cfg.Cache.APIPrefix,
			Metrics:         metrics,
		},
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Backend.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("Edge gateway starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("Edge gateway shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Error during server shutdown")
	}
	cacheService.Stop()

	logger.Info().Msg("Edge gateway stopped")
}

// initAuditRepository selects the audit store. A Postgres that cannot be
// reached falls back to memory so triage keeps working.
func initAuditRepository(ctx context.Context, cfg *config.Config, metrics *observability.Metrics) (repositories.TriageAuditRepository, func()) {
	logger := observability.GetLogger()

	switch cfg.Audit.Store {
	case config.StoreNone:
		logger.Info().Msg("Offline determinations are not audited")
		return nil, func() {}
	case config.StorePostgres:
		pgClient, err := postgres.NewClient(ctx, &cfg.Database)
		if err != nil {
			logger.Warn().Err(err).Msg("PostgreSQL unavailable, auditing in memory")
			break
		}
		if err := pgClient.EnsureSchema(ctx); err != nil {
			logger.Warn().Err(err).Msg("Failed to apply audit schema, auditing in memory")
			pgClient.Close()
			break
		}
		logger.Info().Msg("Auditing offline determinations in PostgreSQL")
		return database.NewTriageAuditAdapter(pgClient, metrics), func() { pgClient.Close() }
	}

	return database.NewMemoryTriageAuditRepository(), func() {}
}
