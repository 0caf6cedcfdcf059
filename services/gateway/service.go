// Package gateway orchestrates analysis requests: validate, consult the
// cache, pick a provider, fail over along the fallback graph, then
// write the cache entry and exactly one usage record.
package gateway

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/praxislegal/legal-ai-gateway/internal/observability"
	"github.com/praxislegal/legal-ai-gateway/models"
	"github.com/praxislegal/legal-ai-gateway/services"
	"github.com/praxislegal/legal-ai-gateway/services/cache"
	"github.com/praxislegal/legal-ai-gateway/services/providers"
	"github.com/praxislegal/legal-ai-gateway/services/selection"
	"github.com/praxislegal/legal-ai-gateway/services/usage"
)

// fallbackGraph maps a failed provider to its ordered alternates. Only
// consulted at failure time; the visited set bounds traversal even if
// an edit introduces a cycle.
var fallbackGraph = map[models.ProviderID][]models.ProviderID{
	models.ProviderSelfHostedLegal:   {models.ProviderAnthropic, models.ProviderSelfHostedGeneral},
	models.ProviderSelfHostedGeneral: {models.ProviderOpenAI, models.ProviderGemini},
	models.ProviderOpenAI:            {models.ProviderAnthropic, models.ProviderGemini},
	models.ProviderAnthropic:         {models.ProviderOpenAI, models.ProviderGemini},
	models.ProviderGemini:            {models.ProviderOpenAI, models.ProviderSelfHostedGeneral},
}

// Cache TTLs per analysis kind. Research answers age slowly, so they
// keep for half a day; everything else defaults to an hour.
const defaultCacheTTL = time.Hour

var cacheTTLOverrides = map[models.AnalysisKind]time.Duration{
	models.KindLegalResearch: 12 * time.Hour,
}

// Config holds the gateway's tunables.
type Config struct {
	CallTimeout time.Duration // per provider call, not per request
	MaxInputLen int
}

// DefaultConfig returns the default gateway configuration.
func DefaultConfig() Config {
	return Config{
		CallTimeout: 30 * time.Second,
		MaxInputLen: 1 << 20,
	}
}

// Service is the gateway core.
type Service struct {
	registry *providers.Registry
	cache    cache.Store
	tracker  *usage.Tracker
	metrics  *observability.Metrics
	logger   *zap.Logger
	config   Config
}

// NewService creates the gateway core with its collaborators.
func NewService(registry *providers.Registry, cacheStore cache.Store, tracker *usage.Tracker, metrics *observability.Metrics, logger *zap.Logger, config Config) *Service {
	if config.CallTimeout == 0 {
		config.CallTimeout = 30 * time.Second
	}
	if config.MaxInputLen == 0 {
		config.MaxInputLen = 1 << 20
	}

	return &Service{
		registry: registry,
		cache:    cacheStore,
		tracker:  tracker,
		metrics:  metrics,
		logger:   logger,
		config:   config,
	}
}

// Process runs one analysis request end to end. Exactly one usage
// record is emitted per call, attributed to the final provider, whether
// the chain succeeded or was exhausted. Cached hits bill nothing.
func (s *Service) Process(ctx context.Context, req *models.AnalysisRequest, userID string) (*models.AnalysisResponse, error) {
	startTime := time.Now()

	if err := s.validate(req); err != nil {
		s.metrics.RequestsTotal.WithLabelValues(kindLabel(req.Kind), "validation_error").Inc()
		return nil, err
	}

	fingerprint := cache.Fingerprint(req)
	if cached, ok := s.cache.Get(ctx, fingerprint); ok {
		s.metrics.CacheHitsTotal.Inc()
		s.metrics.RequestsTotal.WithLabelValues(string(req.Kind), "cache_hit").Inc()

		hit := *cached
		hit.Cached = true
		hit.ProcessingTimeMs = int(time.Since(startTime).Milliseconds())
		return &hit, nil
	}
	s.metrics.CacheMissesTotal.Inc()

	first, err := selection.Select(req.Kind, s.registry.EnabledSet(), s.registry.Priorities())
	if err != nil {
		s.metrics.RequestsTotal.WithLabelValues(string(req.Kind), "no_provider").Inc()
		return nil, err
	}

	resp, attempted, err := s.invokeChain(ctx, req, first)
	processingMs := int(time.Since(startTime).Milliseconds())
	last := attempted[len(attempted)-1]

	record := models.NewUsageRecord(req.RequestID, userID, last, req.Kind)

	if err != nil {
		s.tracker.Record(record.WithOutcome(0, 0, false, processingMs))
		s.metrics.RequestsTotal.WithLabelValues(string(req.Kind), "exhausted").Inc()
		s.logger.Warn("analysis request exhausted all providers",
			zap.String("request_id", req.RequestID),
			zap.String("kind", string(req.Kind)),
			zap.Strings("attempted", providerNames(attempted)),
			zap.Error(err))
		return nil, err
	}

	resp.ProcessingTimeMs = processingMs
	s.cache.Set(ctx, fingerprint, resp, cacheTTL(req.Kind))
	s.tracker.Record(record.WithOutcome(resp.TokensUsed, resp.Cost, true, processingMs))
	s.metrics.RequestsTotal.WithLabelValues(string(req.Kind), "success").Inc()

	if len(attempted) > 1 {
		s.logger.Info("analysis served after failover",
			zap.String("request_id", req.RequestID),
			zap.String("provider", string(resp.Provider)),
			zap.Strings("attempted", providerNames(attempted)))
	}

	return resp, nil
}

// invokeChain walks the fallback graph starting at first. It returns
// the providers attempted in order; on failure the error is an
// AllProvidersExhaustedError carrying the last provider error.
func (s *Service) invokeChain(ctx context.Context, req *models.AnalysisRequest, first models.ProviderID) (*models.AnalysisResponse, []models.ProviderID, error) {
	visited := map[models.ProviderID]bool{first: true}
	attempted := []models.ProviderID{first}
	current := first

	var lastErr error
	for {
		resp, err := s.invoke(ctx, req, current)
		if err == nil {
			return resp, attempted, nil
		}
		lastErr = err

		next, ok := s.nextFallback(current, visited)
		if !ok {
			return nil, attempted, &services.AllProvidersExhaustedError{
				Attempted: attempted,
				Last:      lastErr,
			}
		}

		s.metrics.FallbackHops.Inc()
		s.logger.Info("provider failed, trying fallback",
			zap.String("request_id", req.RequestID),
			zap.String("failed", string(current)),
			zap.String("next", string(next)),
			zap.Error(err))

		visited[next] = true
		attempted = append(attempted, next)
		current = next
	}
}

// invoke runs a single provider attempt under the per-call timeout.
func (s *Service) invoke(ctx context.Context, req *models.AnalysisRequest, id models.ProviderID) (*models.AnalysisResponse, error) {
	adapter, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.config.CallTimeout)
	defer cancel()

	start := time.Now()
	resp, err := adapter.Process(callCtx, req)
	result := "success"
	if err != nil {
		result = "error"
	}
	s.metrics.ProviderLatency.WithLabelValues(string(id), result).Observe(time.Since(start).Seconds())

	return resp, err
}

// nextFallback picks the first alternate of the failed provider that is
// enabled and not yet attempted.
func (s *Service) nextFallback(failed models.ProviderID, visited map[models.ProviderID]bool) (models.ProviderID, bool) {
	for _, candidate := range fallbackGraph[failed] {
		if visited[candidate] {
			continue
		}
		if !s.registry.IsEnabled(candidate) {
			continue
		}
		return candidate, true
	}
	return "", false
}

func (s *Service) validate(req *models.AnalysisRequest) error {
	if !req.Kind.Valid() {
		return services.NewValidationError("unknown analysis kind: " + string(req.Kind))
	}
	if strings.TrimSpace(req.Input) == "" {
		return services.NewValidationError("input must not be empty")
	}
	if len(req.Input) > s.config.MaxInputLen {
		return services.NewValidationError("input exceeds maximum length")
	}
	if req.Options.Temperature != nil {
		t := *req.Options.Temperature
		if t < 0 || t > 2 {
			return services.NewValidationError("temperature must be between 0 and 2")
		}
	}
	if req.Options.MaxTokens != nil && *req.Options.MaxTokens <= 0 {
		return services.NewValidationError("maxTokens must be positive")
	}
	return nil
}

// kindLabel bounds the kind label to the known enumeration. Unknown
// values collapse to a single sentinel so caller input cannot mint new
// metric series.
func kindLabel(kind models.AnalysisKind) string {
	if kind.Valid() {
		return string(kind)
	}
	return "invalid"
}

func cacheTTL(kind models.AnalysisKind) time.Duration {
	if ttl, ok := cacheTTLOverrides[kind]; ok {
		return ttl
	}
	return defaultCacheTTL
}

func providerNames(ids []models.ProviderID) []string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(id)
	}
	return names
}
