package cache

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/praxislegal/legal-ai-gateway/models"
)

// RedisStore caches responses in Redis so multiple gateway instances
// share one cache. Backend failures degrade to misses; a broken cache
// must never fail an analysis request.
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
	hits   uint64
	misses uint64
}

// NewRedisStore creates a RedisStore on an existing client.
func NewRedisStore(client *redis.Client, logger *zap.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		logger: logger,
	}
}

// Get retrieves a cached response by fingerprint.
func (c *RedisStore) Get(ctx context.Context, fingerprint string) (*models.AnalysisResponse, bool) {
	data, err := c.client.Get(ctx, Key(fingerprint)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("cache read failed, treating as miss",
				zap.String("fingerprint", fingerprint),
				zap.Error(err))
		}
		atomic.AddUint64(&c.misses, 1)
		return nil, false
	}

	var resp models.AnalysisResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		c.logger.Warn("cache entry corrupt, treating as miss",
			zap.String("fingerprint", fingerprint),
			zap.Error(err))
		atomic.AddUint64(&c.misses, 1)
		return nil, false
	}

	atomic.AddUint64(&c.hits, 1)
	return &resp, true
}

// Set stores a response under its fingerprint for the given TTL.
func (c *RedisStore) Set(ctx context.Context, fingerprint string, resp *models.AnalysisResponse, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	data, err := json.Marshal(resp)
	if err != nil {
		c.logger.Warn("failed to marshal cache entry",
			zap.String("fingerprint", fingerprint),
			zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, Key(fingerprint), data, ttl).Err(); err != nil {
		c.logger.Warn("cache write failed",
			zap.String("fingerprint", fingerprint),
			zap.Error(err))
	}
}

// Stats returns hit and miss counters for this instance. Size is not
// tracked; Redis owns eviction.
func (c *RedisStore) Stats() Stats {
	hits := atomic.LoadUint64(&c.hits)
	misses := atomic.LoadUint64(&c.misses)

	s := Stats{Hits: hits, Misses: misses}
	if total := hits + misses; total > 0 {
		s.HitRate = float64(hits) / float64(total)
	}
	return s
}
