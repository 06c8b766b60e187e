package l1

import (
	"context"
	"encoding/json"
	"time"

	"github.com/allegro/bigcache/v3"
	"go.uber.org/zap"

	"github.com/sinh-x/google-classroom-mcp/internal/interfaces"
	"github.com/sinh-x/google-classroom-mcp/internal/metrics"
	"github.com/sinh-x/google-classroom-mcp/internal/models"
	"github.com/sinh-x/google-classroom-mcp/internal/scheduler"
)

// Ensure BigCache implements interfaces.Cache
var _ interfaces.Cache = (*BigCache)(nil)

// BigCache implements the memory tier on a byte-bounded sharded cache.
// Entries are JSON encoded so that their expiry travels with the value.
type BigCache struct {
	cache            *bigcache.BigCache
	pool             models.Pool
	capacity         int
	ttl              time.Duration
	now              func() time.Time
	logger           *zap.Logger
	metricsScheduler *scheduler.Scheduler
}

// NewBigCache creates a new BigCache instance. capacity is advisory and only
// reported; sizeMB is the hard memory bound.
func NewBigCache(pool models.Pool, sizeMB, capacity int, ttl time.Duration, logger *zap.Logger) (*BigCache, error) {
	config := bigcache.DefaultConfig(ttl)
	config.HardMaxCacheSize = sizeMB
	config.Verbose = false
	config.MaxEntrySize = 1024 * 1024
	config.CleanWindow = ttl

	cache, err := bigcache.New(context.Background(), config)
	if err != nil {
		return nil, err
	}

	bc := &BigCache{
		cache:    cache,
		pool:     pool,
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
	}

	bc.startMetricsCollection()

	return bc, nil
}

// Get retrieves an unexpired entry from cache
func (bc *BigCache) Get(_ context.Context, key string) (*models.CacheEntry, bool) {
	data, err := bc.cache.Get(key)
	if err != nil {
		return nil, false
	}

	var entry models.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		bc.logger.Warn("Failed to unmarshal memory cache entry", zap.String("key", key), zap.Error(err))
		metrics.RecordCacheError("l1", "decode")
		_ = bc.cache.Delete(key)
		return nil, false
	}

	if entry.IsExpiredAt(bc.now()) {
		_ = bc.cache.Delete(key)
		return nil, false
	}

	return &entry, true
}

// Set stores value in cache with a fresh ttl window
func (bc *BigCache) Set(_ context.Context, key string, val []byte) error {
	data, err := json.Marshal(models.NewCacheEntry(val, bc.now(), bc.ttl))
	if err != nil {
		bc.logger.Error("Failed to marshal cache entry", zap.String("key", key), zap.Error(err))
		metrics.RecordCacheError("l1", "encode")
		return err
	}

	if err := bc.cache.Set(key, data); err != nil {
		bc.logger.Error("Failed to set cache entry", zap.String("key", key), zap.Error(err))
		metrics.RecordCacheError("l1", "write")
		return err
	}
	return nil
}

// Delete removes entry from cache
func (bc *BigCache) Delete(_ context.Context, key string) {
	_ = bc.cache.Delete(key)
}

// Len returns the number of entries currently held, including expired ones not yet read
func (bc *BigCache) Len() int {
	return bc.cache.Len()
}

// Close closes the cache
func (bc *BigCache) Close() error {
	bc.stopMetricsCollection()

	return bc.cache.Close()
}

func (bc *BigCache) startMetricsCollection() {
	bc.metricsScheduler = scheduler.New(metricsInterval, bc.updateMetrics)
	bc.metricsScheduler.Start()

	bc.updateMetrics()

	bc.logger.Debug("Started memory cache metrics collection", zap.String("pool", string(bc.pool)))
}

func (bc *BigCache) stopMetricsCollection() {
	if bc.metricsScheduler != nil {
		bc.metricsScheduler.Stop()
		bc.logger.Debug("Stopped memory cache metrics collection", zap.String("pool", string(bc.pool)))
	}
}

func (bc *BigCache) updateMetrics() {
	metrics.UpdateMemoryPool(string(bc.pool), int64(bc.cache.Len()), int64(bc.capacity))
}
