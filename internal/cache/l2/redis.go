package l2

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/sinh-x/google-classroom-mcp/internal/config"
	"github.com/sinh-x/google-classroom-mcp/internal/interfaces"
	"github.com/sinh-x/google-classroom-mcp/internal/metrics"
	"github.com/sinh-x/google-classroom-mcp/internal/models"
)

// Ensure RedisStore implements interfaces.Cache
var _ interfaces.Cache = (*RedisStore)(nil)

// RedisStore is the durable tier on Redis or KeyDB. Keys are written without expiry.
type RedisStore struct {
	client interfaces.RedisClient
	config config.RedisConfig
	now    func() time.Time
	logger *zap.Logger
}

// NewRedisStore creates a new RedisStore instance with provided client
func NewRedisStore(cfg config.RedisConfig, client interfaces.RedisClient, logger *zap.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		config: cfg,
		now:    time.Now,
		logger: logger,
	}
}

func (rs *RedisStore) storageKey(key string) string {
	return rs.config.KeyPrefix + key
}

// Get retrieves and decodes the entry for key
func (rs *RedisStore) Get(ctx context.Context, key string) (*models.CacheEntry, bool) {
	ctx, cancel := context.WithTimeout(ctx, rs.config.ReadTimeout)
	defer cancel()

	data, err := rs.client.Get(ctx, rs.storageKey(key)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			rs.logger.Warn("Durable cache get error", zap.String("key", key), zap.Error(err))
			metrics.RecordCacheError(durableLevel, "read")
		}
		return nil, false
	}

	var entry models.CacheEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		rs.logger.Warn("Malformed durable cache entry", zap.String("key", key), zap.Error(err))
		metrics.RecordCacheError(durableLevel, "decode")
		return nil, false
	}

	return &entry, true
}

// Set stores the entry with no expiration
func (rs *RedisStore) Set(ctx context.Context, key string, val []byte) error {
	ctx, cancel := context.WithTimeout(ctx, rs.config.WriteTimeout)
	defer cancel()

	data, err := json.Marshal(models.NewCacheEntry(val, rs.now(), 0))
	if err != nil {
		metrics.RecordCacheError(durableLevel, "encode")
		return err
	}

	if err := rs.client.Set(ctx, rs.storageKey(key), data, 0).Err(); err != nil {
		rs.logger.Warn("Failed to persist durable cache entry", zap.String("key", key), zap.Error(err))
		metrics.RecordCacheError(durableLevel, "write")
		return err
	}
	return nil
}

// Delete removes entry from Redis
func (rs *RedisStore) Delete(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(ctx, rs.config.WriteTimeout)
	defer cancel()

	if err := rs.client.Del(ctx, rs.storageKey(key)).Err(); err != nil {
		rs.logger.Warn("Failed to delete durable cache entry", zap.String("key", key), zap.Error(err))
	}
}

// Close closes the Redis connection
func (rs *RedisStore) Close() error {
	return rs.client.Close()
}
