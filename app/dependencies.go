package app

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/praxislegal/legal-ai-gateway/config"
	"github.com/praxislegal/legal-ai-gateway/internal/observability"
	"github.com/praxislegal/legal-ai-gateway/models"
	"github.com/praxislegal/legal-ai-gateway/repositories"
	"github.com/praxislegal/legal-ai-gateway/repositories/postgres"
	"github.com/praxislegal/legal-ai-gateway/services/cache"
	"github.com/praxislegal/legal-ai-gateway/services/gateway"
	"github.com/praxislegal/legal-ai-gateway/services/providers"
	"github.com/praxislegal/legal-ai-gateway/services/providers/anthropic"
	"github.com/praxislegal/legal-ai-gateway/services/providers/gemini"
	"github.com/praxislegal/legal-ai-gateway/services/providers/openai"
	"github.com/praxislegal/legal-ai-gateway/services/providers/selfhosted"
	"github.com/praxislegal/legal-ai-gateway/services/usage"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repositories
	Usage repositories.UsageRepository

	// Services
	Registry *providers.Registry
	Cache    cache.Store
	Tracker  *usage.Tracker
	Gateway  *gateway.Service
	Metrics  *observability.Metrics

	// Lifecycle
	sweeperStop chan struct{}
	redisClient *redis.Client
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps.Usage = postgres.NewUsageRepository(deps.DB, logger)

	if err := deps.initProviders(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize providers: %w", err)
	}

	if err := deps.initCache(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	deps.Metrics = observability.NewMetrics(prometheus.DefaultRegisterer)

	deps.Tracker = usage.NewTracker(deps.Usage, logger, usage.Config{
		BufferSize:    cfg.Usage.BufferSize,
		WorkerCount:   cfg.Usage.WorkerCount,
		MonthlyBudget: cfg.Usage.MonthlyBudget,
	})
	if err := deps.Tracker.Start(); err != nil {
		return nil, fmt.Errorf("failed to start usage tracker: %w", err)
	}

	deps.Gateway = gateway.NewService(deps.Registry, deps.Cache, deps.Tracker, deps.Metrics, logger, gateway.Config{
		CallTimeout: cfg.Gateway.CallTimeout,
		MaxInputLen: cfg.Gateway.MaxInputLen,
	})

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase initializes the PostgreSQL connection and schema.
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	db, err := postgres.NewDB(cfg.Database, d.Logger)
	if err != nil {
		return err
	}
	d.DB = db

	if err := db.InitSchema(ctx); err != nil {
		return err
	}

	return nil
}

// initProviders builds an adapter for every provider in the enumeration.
// Every adapter is constructed; enablement follows credential presence,
// so an unconfigured provider exists but is never selected.
func (d *Dependencies) initProviders(cfg *config.Config) error {
	registry := providers.NewRegistry()

	adapters := []struct {
		provider providers.Provider
		enabled  bool
		priority int
	}{
		{
			provider: selfhosted.NewAdapter(models.ProviderSelfHostedGeneral, providerConfig(cfg.Providers.SelfHostedGeneral)),
			enabled:  cfg.Providers.SelfHostedGeneral.BaseURL != "",
			priority: cfg.Providers.SelfHostedGeneral.Priority,
		},
		{
			provider: selfhosted.NewAdapter(models.ProviderSelfHostedLegal, providerConfig(cfg.Providers.SelfHostedLegal)),
			enabled:  cfg.Providers.SelfHostedLegal.BaseURL != "",
			priority: cfg.Providers.SelfHostedLegal.Priority,
		},
		{
			provider: openai.NewAdapter(providerConfig(cfg.Providers.OpenAI)),
			enabled:  cfg.Providers.OpenAI.APIKey != "",
			priority: cfg.Providers.OpenAI.Priority,
		},
		{
			provider: anthropic.NewAdapter(providerConfig(cfg.Providers.Anthropic)),
			enabled:  cfg.Providers.Anthropic.APIKey != "",
			priority: cfg.Providers.Anthropic.Priority,
		},
		{
			provider: gemini.NewAdapter(providerConfig(cfg.Providers.Gemini)),
			enabled:  cfg.Providers.Gemini.APIKey != "",
			priority: cfg.Providers.Gemini.Priority,
		},
	}

	for _, a := range adapters {
		if err := registry.Register(a.provider, a.enabled, a.priority); err != nil {
			return fmt.Errorf("register %s: %w", a.provider.ID(), err)
		}
		d.Logger.Info("registered provider",
			zap.String("provider", string(a.provider.ID())),
			zap.Bool("enabled", a.enabled),
			zap.Int("priority", a.priority))
	}

	d.Registry = registry
	return nil
}

// initCache builds the response cache selected by configuration.
func (d *Dependencies) initCache(cfg *config.Config) error {
	switch cfg.Cache.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping failed: %w", err)
		}

		d.redisClient = client
		d.Cache = cache.NewRedisStore(client, d.Logger)
		d.Logger.Info("using redis response cache", zap.String("addr", cfg.Cache.RedisAddr))

	default:
		store := cache.NewMemoryStore(cfg.Cache.MaxEntries)
		d.Cache = store

		d.sweeperStop = make(chan struct{})
		go store.StartCleanupWorker(cfg.Cache.SweepInterval, d.sweeperStop)
		d.Logger.Info("using in-memory response cache",
			zap.Int("max_entries", cfg.Cache.MaxEntries),
			zap.Duration("sweep_interval", cfg.Cache.SweepInterval))
	}

	return nil
}

// Shutdown stops background workers and closes connections.
func (d *Dependencies) Shutdown(timeout time.Duration) {
	if d.sweeperStop != nil {
		close(d.sweeperStop)
	}

	if d.Tracker != nil {
		if err := d.Tracker.Stop(timeout); err != nil {
			d.Logger.Warn("usage tracker shutdown incomplete", zap.Error(err))
		}
	}

	if d.redisClient != nil {
		if err := d.redisClient.Close(); err != nil {
			d.Logger.Warn("failed to close redis client", zap.Error(err))
		}
	}

	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			d.Logger.Warn("failed to close database", zap.Error(err))
		}
	}
}

func providerConfig(pc config.ProviderConfig) providers.Config {
	cfg := providers.DefaultConfig()
	cfg.APIKey = pc.APIKey
	cfg.BaseURL = pc.BaseURL
	cfg.Model = pc.Model
	cfg.CostPerToken = pc.CostPerToken
	if pc.Timeout > 0 {
		cfg.Timeout = pc.Timeout
	}
	return cfg
}
