package setup

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/brainink/hub/internal/brainink/api"
	"github.com/brainink/hub/internal/brainink/fetcher"
	"github.com/brainink/hub/internal/preload"
	"github.com/brainink/hub/internal/redis"
	"github.com/brainink/hub/internal/session"
	"github.com/brainink/hub/internal/setup/client"
	"github.com/brainink/hub/internal/setup/config"
	"github.com/brainink/hub/internal/setup/telemetry"
	"go.uber.org/zap"
)

// SessionBackendRedis selects the redis-backed credential store.
const SessionBackendRedis = "redis"

// App bundles all core dependencies and services needed by the application.
// Each field represents a major subsystem that needs initialization and cleanup.
type App struct {
	Config       *config.Config     // Application configuration
	Logger       *zap.Logger        // Main application logger
	LogManager   *telemetry.Manager // Log management system
	RedisManager *redis.Manager     // Redis connection manager, nil for the memory backend
	Store        session.Store      // Credential store shared by every remote call
	API          *api.API           // BrainInk HTTP client
	Fetchers     preload.Fetchers   // Per-service fetchers
	Cache        *preload.Cache     // Preloaded data cache
	shutdownOtel func(context.Context) error
}

// InitializeApp bootstraps all application dependencies in the correct order,
// ensuring each component has its required dependencies available.
func InitializeApp(ctx context.Context, logDir string) (*App, error) {
	overrides, err := config.LoadOverrides()
	if err != nil {
		return nil, err
	}

	// Load app configuration
	cfg, _, err := config.LoadConfig(overrides.ConfigDir)
	if err != nil {
		return nil, err
	}

	if overrides.LogDir != "" {
		logDir = overrides.LogDir
	}

	if logDir == "" {
		logDir = defaultLogDir()
	}

	// Logging system is initialized next to capture setup issues
	logManager := telemetry.NewManager(logDir, &cfg.Debug)

	logger, err := logManager.GetLogger()
	if err != nil {
		return nil, err
	}

	// Spans from preload assembly and refresh are exported when configured
	shutdownOtel := telemetry.ConfigureTracing(&cfg.Telemetry, config.RepositoryVersion, logger)

	// Credential store backs every authenticated request
	var (
		redisManager *redis.Manager
		store        session.Store
	)

	switch cfg.Session.Backend {
	case SessionBackendRedis:
		redisManager = redis.NewManager(&cfg.Redis, logger)

		redisClient, err := redisManager.Session(ctx)
		if err != nil {
			redisManager.Close()
			return nil, err
		}

		store = session.NewRedisStore(redisClient, cfg.Session.Namespace)
	default:
		store = session.NewMemoryStore()
	}

	if overrides.AccessToken != "" {
		if err := store.SetToken(ctx, overrides.AccessToken); err != nil {
			return nil, fmt.Errorf("failed to store access token: %w", err)
		}
	}

	// HTTP client is configured with middleware chain
	httpClient, _ := client.New(cfg, store, logger)
	brainAPI := api.New(httpClient)

	fetchers := preload.Fetchers{
		Progress:     fetcher.NewProgressFetcher(brainAPI, cfg.Endpoints.Achievements, logger),
		Friends:      fetcher.NewFriendFetcher(brainAPI, cfg.Endpoints.Friends, logger),
		Achievements: fetcher.NewAchievementFetcher(brainAPI, cfg.Endpoints.Achievements, logger),
		Tournaments:  fetcher.NewTournamentFetcher(brainAPI, cfg.Endpoints.Tournaments, logger),
	}

	logger.Info("Initialized application",
		zap.String("sessionBackend", cfg.Session.Backend),
		zap.String("logDir", logManager.GetCurrentSessionDir()))

	// Bundle all initialized components
	return &App{
		Config:       cfg,
		Logger:       logger,
		LogManager:   logManager,
		RedisManager: redisManager,
		Store:        store,
		API:          brainAPI,
		Fetchers:     fetchers,
		Cache:        preload.New(store, fetchers, cfg.Preload, logger),
		shutdownOtel: shutdownOtel,
	}, nil
}

// Cleanup ensures graceful shutdown of all components in reverse initialization order.
// Logs but does not fail on cleanup errors to ensure all components get cleanup attempts.
func (s *App) Cleanup(ctx context.Context) {
	s.Cache.Clear()

	// Flush pending spans
	if err := s.shutdownOtel(ctx); err != nil {
		s.Logger.Error("Failed to shutdown trace exporter", zap.Error(err))
	}

	// Sync buffered logs before shutdown
	if err := s.Logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}

	// Close Redis connections last as other components might need it during cleanup
	if s.RedisManager != nil {
		s.RedisManager.Close()
	}
}

// defaultLogDir returns the per-user log directory.
func defaultLogDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "brainink", "logs")
	}
	return filepath.Join(os.TempDir(), "brainink-logs")
}
