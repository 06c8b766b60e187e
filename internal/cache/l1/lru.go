package l1

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/sinh-x/google-classroom-mcp/internal/interfaces"
	"github.com/sinh-x/google-classroom-mcp/internal/metrics"
	"github.com/sinh-x/google-classroom-mcp/internal/models"
	"github.com/sinh-x/google-classroom-mcp/internal/scheduler"
)

// Ensure LRUCache implements interfaces.Cache
var _ interfaces.Cache = (*LRUCache)(nil)

// metricsInterval is how often memory pool occupancy is published
const metricsInterval = 30 * time.Second

// LRUCache is the count-bounded, time-expiring memory tier.
// Capacity eviction is least-recently-used; expiry is checked on read.
type LRUCache struct {
	cache    *expirable.LRU[string, *models.CacheEntry]
	pool     models.Pool
	capacity int
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger

	metricsScheduler *scheduler.Scheduler
}

// NewLRUCache creates a memory pool holding at most capacity entries for ttl each
func NewLRUCache(pool models.Pool, capacity int, ttl time.Duration, logger *zap.Logger) *LRUCache {
	c := &LRUCache{
		cache:    expirable.NewLRU[string, *models.CacheEntry](capacity, nil, ttl),
		pool:     pool,
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
	}

	c.startMetricsCollection()

	return c
}

// Get returns the entry for key. Expired entries are removed and read as absent.
func (c *LRUCache) Get(_ context.Context, key string) (*models.CacheEntry, bool) {
	entry, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}

	if entry.IsExpiredAt(c.now()) {
		c.cache.Remove(key)
		return nil, false
	}

	return entry, true
}

// Set stores val under key with a fresh ttl window, replacing any previous entry
func (c *LRUCache) Set(_ context.Context, key string, val []byte) error {
	c.cache.Add(key, models.NewCacheEntry(val, c.now(), c.ttl))
	return nil
}

// Delete removes entry from cache
func (c *LRUCache) Delete(_ context.Context, key string) {
	c.cache.Remove(key)
}

// Len returns the number of entries currently held
func (c *LRUCache) Len() int {
	return c.cache.Len()
}

// Close stops metrics collection and drops all entries
func (c *LRUCache) Close() error {
	c.stopMetricsCollection()
	c.cache.Purge()
	return nil
}

func (c *LRUCache) startMetricsCollection() {
	c.metricsScheduler = scheduler.New(metricsInterval, c.updateMetrics)
	c.metricsScheduler.Start()

	c.updateMetrics()

	c.logger.Debug("Started memory cache metrics collection", zap.String("pool", string(c.pool)))
}

func (c *LRUCache) stopMetricsCollection() {
	if c.metricsScheduler != nil {
		c.metricsScheduler.Stop()
	}
}

func (c *LRUCache) updateMetrics() {
	metrics.UpdateMemoryPool(string(c.pool), int64(c.cache.Len()), int64(c.capacity))
}
