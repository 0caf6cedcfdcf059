package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/praxislegal/legal-ai-gateway/models"
)

// Store is the response cache consumed by the gateway. Implementations
// treat backend failures as misses so a degraded cache never fails a
// request.
type Store interface {
	Get(ctx context.Context, fingerprint string) (*models.AnalysisResponse, bool)
	Set(ctx context.Context, fingerprint string, resp *models.AnalysisResponse, ttl time.Duration)
	Stats() Stats
}

// Stats reports cache effectiveness counters.
type Stats struct {
	Size    int     `json:"size"`
	MaxSize int     `json:"maxSize"`
	Hits    uint64  `json:"hits"`
	Misses  uint64  `json:"misses"`
	HitRate float64 `json:"hitRate"`
}

// memoryEntry holds one cached response with its own deadline. Each
// entry carries its TTL because different analysis kinds cache for
// different durations.
type memoryEntry struct {
	response  *models.AnalysisResponse
	expiresAt time.Time
	element   *list.Element
}

func (e *memoryEntry) isExpired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// MemoryStore is an in-memory LRU cache with per-entry TTL.
// Thread-safe implementation using sync.RWMutex
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	lruList *list.List
	maxSize int
	hits    uint64
	misses  uint64
}

// NewMemoryStore creates a new MemoryStore bounded to maxSize entries
func NewMemoryStore(maxSize int) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		lruList: list.New(),
		maxSize: maxSize,
	}
}

// Get retrieves a cached response. Expired entries count as misses and
// are removed on the way out.
func (c *MemoryStore) Get(_ context.Context, fingerprint string) (*models.AnalysisResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[fingerprint]
	if !exists || entry.isExpired(time.Now()) {
		c.misses++
		if exists {
			c.removeEntry(fingerprint)
		}
		return nil, false
	}

	c.lruList.MoveToFront(entry.element)
	c.hits++

	return entry.response, true
}

// Set stores a response under its fingerprint for the given TTL.
func (c *MemoryStore) Set(_ context.Context, fingerprint string, resp *models.AnalysisResponse, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, exists := c.entries[fingerprint]; exists {
		entry.response = resp
		entry.expiresAt = time.Now().Add(ttl)
		c.lruList.MoveToFront(entry.element)
		return
	}

	if c.lruList.Len() >= c.maxSize {
		c.evictLRU()
	}

	entry := &memoryEntry{
		response:  resp,
		expiresAt: time.Now().Add(ttl),
	}
	entry.element = c.lruList.PushFront(fingerprint)
	c.entries[fingerprint] = entry
}

// Clear removes all entries from the cache
func (c *MemoryStore) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*memoryEntry)
	c.lruList.Init()
}

// Stats returns cache statistics
func (c *MemoryStore) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Stats{
		Size:    c.lruList.Len(),
		MaxSize: c.maxSize,
		Hits:    c.hits,
		Misses:  c.misses,
		HitRate: c.calculateHitRate(),
	}
}

func (c *MemoryStore) calculateHitRate() float64 {
	total := c.hits + c.misses
	if total == 0 {
		return 0
	}
	return float64(c.hits) / float64(total)
}

// removeEntry removes an entry from the cache (must be called with lock held)
func (c *MemoryStore) removeEntry(fingerprint string) {
	if entry, exists := c.entries[fingerprint]; exists {
		c.lruList.Remove(entry.element)
		delete(c.entries, fingerprint)
	}
}

// evictLRU evicts the least recently used entry (must be called with lock held)
func (c *MemoryStore) evictLRU() {
	backElement := c.lruList.Back()
	if backElement != nil {
		fingerprint := backElement.Value.(string)
		c.lruList.Remove(backElement)
		delete(c.entries, fingerprint)
	}
}

// CleanupExpired removes all expired entries and reports how many were
// dropped. Should be called periodically in a background goroutine.
func (c *MemoryStore) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	expired := make([]string, 0)
	for fingerprint, entry := range c.entries {
		if entry.isExpired(now) {
			expired = append(expired, fingerprint)
		}
	}

	for _, fingerprint := range expired {
		c.removeEntry(fingerprint)
	}

	return len(expired)
}

// StartCleanupWorker starts a background worker to periodically clean up expired entries
func (c *MemoryStore) StartCleanupWorker(interval time.Duration, stopCh <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.CleanupExpired()
		case <-stopCh:
			return
		}
	}
}
