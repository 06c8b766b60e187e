package multi

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/sinh-x/google-classroom-mcp/internal/interfaces"
	"github.com/sinh-x/google-classroom-mcp/internal/models"
)

// Ensure MultiCache implements interfaces.LevelAwareCache
var _ interfaces.LevelAwareCache = (*MultiCache)(nil)

// MultiCache chains cache tiers from fastest to slowest.
// A hit on a lower tier is copied into every tier above it.
type MultiCache struct {
	caches []interfaces.Cache
	logger *zap.Logger
}

// NewMultiCache creates a new MultiCache over caches, ordered memory first
func NewMultiCache(caches []interfaces.Cache, logger *zap.Logger) *MultiCache {
	return &MultiCache{
		caches: caches,
		logger: logger,
	}
}

// Get retrieves value from the first cache that has the key
func (mc *MultiCache) Get(ctx context.Context, key string) (*models.CacheEntry, bool) {
	result := mc.GetWithLevel(ctx, key)
	return result.Entry, result.Found
}

// GetWithLevel retrieves value and reports which tier answered
func (mc *MultiCache) GetWithLevel(ctx context.Context, key string) interfaces.LevelResult {
	if len(mc.caches) == 0 {
		mc.logger.Warn("No caches available for get operation", zap.String("key", key))
		return interfaces.LevelResult{Level: models.CacheLevelMiss}
	}

	for i, cache := range mc.caches {
		entry, found := cache.Get(ctx, key)
		if !found {
			continue
		}

		if i > 0 {
			mc.backfill(ctx, key, entry.Data, i)
		}

		return interfaces.LevelResult{
			Entry: entry,
			Found: true,
			Level: levelFor(i),
		}
	}

	return interfaces.LevelResult{Level: models.CacheLevelMiss}
}

// backfill writes val into the tiers above the one that answered
func (mc *MultiCache) backfill(ctx context.Context, key string, val []byte, hitIndex int) {
	for i := 0; i < hitIndex; i++ {
		if err := mc.caches[i].Set(ctx, key, val); err != nil {
			mc.logger.Warn("Failed to backfill cache level",
				zap.String("key", key),
				zap.String("level", string(levelFor(i))),
				zap.Error(err))
		}
	}
}

// Set stores value in every tier. A failing tier does not stop the others;
// the joined error is informative only.
func (mc *MultiCache) Set(ctx context.Context, key string, val []byte) error {
	if len(mc.caches) == 0 {
		mc.logger.Warn("No caches available for set operation", zap.String("key", key))
		return nil
	}

	var errs []error
	for _, cache := range mc.caches {
		if err := cache.Set(ctx, key, val); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Delete removes entry from all available caches
func (mc *MultiCache) Delete(ctx context.Context, key string) {
	for _, cache := range mc.caches {
		cache.Delete(ctx, key)
	}
}

// GetCacheCount returns the number of caches in the multi-cache
func (mc *MultiCache) GetCacheCount() int {
	return len(mc.caches)
}

func levelFor(index int) models.CacheLevel {
	if index == 0 {
		return models.CacheLevelL1
	}
	return models.CacheLevelL2
}
