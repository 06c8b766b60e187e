package service

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/sinh-x/google-classroom-mcp/internal/cache/multi"
	"github.com/sinh-x/google-classroom-mcp/internal/interfaces"
	"github.com/sinh-x/google-classroom-mcp/internal/metrics"
	"github.com/sinh-x/google-classroom-mcp/internal/models"
)

// Ensure CacheService implements interfaces.EntitySource
var _ interfaces.EntitySource = (*CacheService)(nil)

type chainKey struct {
	pool    models.Pool
	durable bool
}

// CacheService is the cache-aside client: memory, then durable, then remote.
// Misses for the same key share a single remote call.
type CacheService struct {
	memory     map[models.Pool]interfaces.Cache
	durable    interfaces.Cache
	chains     map[chainKey]interfaces.LevelAwareCache
	fetcher    interfaces.Fetcher
	keyBuilder interfaces.KeyBuilder
	classifier interfaces.TierClassifier
	flights    singleflight.Group
	logger     *zap.Logger
}

// NewCacheService wires memory pools and the durable tier into per-policy
// chains. memory must contain models.PoolGeneral.
func NewCacheService(
	memory map[models.Pool]interfaces.Cache,
	durable interfaces.Cache,
	fetcher interfaces.Fetcher,
	keyBuilder interfaces.KeyBuilder,
	classifier interfaces.TierClassifier,
	logger *zap.Logger,
) *CacheService {
	chains := make(map[chainKey]interfaces.LevelAwareCache, len(memory)*2)
	for pool, mem := range memory {
		chains[chainKey{pool: pool}] = multi.NewMultiCache([]interfaces.Cache{mem}, logger)
		chains[chainKey{pool: pool, durable: true}] = multi.NewMultiCache([]interfaces.Cache{mem, durable}, logger)
	}

	return &CacheService{
		memory:     memory,
		durable:    durable,
		chains:     chains,
		fetcher:    fetcher,
		keyBuilder: keyBuilder,
		classifier: classifier,
		logger:     logger,
	}
}

// Fetch validates the scope, builds the key and returns the cached or
// freshly fetched value for it
func (s *CacheService) Fetch(ctx context.Context, kind models.Kind, scope ...string) ([]byte, error) {
	key, err := s.keyBuilder.Build(kind, scope...)
	if err != nil {
		return nil, err
	}
	return s.FetchKey(ctx, key)
}

// FetchKey returns the value for key. A caller whose ctx ends stops waiting
// but the shared remote call keeps running for other callers.
func (s *CacheService) FetchKey(ctx context.Context, key models.Key) ([]byte, error) {
	kind := string(key.Kind)
	policy := s.classifier.Policy(key.Kind)
	cacheKey := key.String()

	metrics.RecordCacheRequest(kind)

	if entry, ok := s.memoryFor(policy).Get(ctx, cacheKey); ok {
		metrics.RecordCacheHit(kind, "l1")
		s.logger.Debug("Memory cache hit", zap.String("key", cacheKey))
		return entry.Data, nil
	}

	flightCtx := context.WithoutCancel(ctx)
	ch := s.flights.DoChan(cacheKey, func() (interface{}, error) {
		return s.load(flightCtx, key, policy)
	})

	select {
	case res := <-ch:
		if res.Shared {
			metrics.RecordSharedFetch(kind)
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// load runs once per in-flight key: tier lookup, remote fetch, write-back
func (s *CacheService) load(ctx context.Context, key models.Key, policy models.TierPolicy) ([]byte, error) {
	kind := string(key.Kind)
	cacheKey := key.String()
	chain := s.chainFor(policy)

	if res := chain.GetWithLevel(ctx, cacheKey); res.Found {
		metrics.RecordCacheHit(kind, levelLabel(res.Level))
		s.logger.Debug("Cache hit", zap.String("key", cacheKey), zap.String("level", string(res.Level)))
		return res.Entry.Data, nil
	}

	metrics.RecordCacheMiss(kind)

	data, err := s.fetcher.Fetch(ctx, key)
	if err != nil {
		if policy.Durable() {
			if entry, ok := s.durable.Get(ctx, cacheKey); ok {
				s.logger.Warn("Remote fetch failed, serving durable copy",
					zap.String("key", cacheKey), zap.Error(err))
				metrics.RecordDurableFallback(kind)
				if setErr := s.memoryFor(policy).Set(ctx, cacheKey, entry.Data); setErr != nil {
					s.logger.Warn("Failed to backfill memory cache", zap.String("key", cacheKey), zap.Error(setErr))
				}
				return entry.Data, nil
			}
		}
		return nil, &FetchError{Key: key, Err: err}
	}

	if err := chain.Set(ctx, cacheKey, data); err != nil {
		s.logger.Warn("Fetched value not fully cached", zap.String("key", cacheKey), zap.Error(err))
	}

	return data, nil
}

func (s *CacheService) memoryFor(policy models.TierPolicy) interfaces.Cache {
	if mem, ok := s.memory[policy.Pool]; ok {
		return mem
	}
	return s.memory[models.PoolGeneral]
}

func (s *CacheService) chainFor(policy models.TierPolicy) interfaces.LevelAwareCache {
	pool := policy.Pool
	if _, ok := s.memory[pool]; !ok {
		pool = models.PoolGeneral
	}
	return s.chains[chainKey{pool: pool, durable: policy.Durable()}]
}

func levelLabel(level models.CacheLevel) string {
	switch level {
	case models.CacheLevelL1:
		return "l1"
	case models.CacheLevelL2:
		return "l2"
	default:
		return "unknown"
	}
}
