package l2

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/sinh-x/google-classroom-mcp/internal/config"
	"github.com/sinh-x/google-classroom-mcp/internal/interfaces"
)

// Ensure GoRedisClient implements interfaces.RedisClient
var _ interfaces.RedisClient = (*GoRedisClient)(nil)

// GoRedisClient wraps redis.Client to implement the RedisClient interface
type GoRedisClient struct {
	client *redis.Client
}

// NewGoRedisClient connects to redisURL (redis://[:password@]host[:port][/db])
// and verifies the connection with a ping.
func NewGoRedisClient(cfg config.RedisConfig, redisURL string, logger *zap.Logger) (*GoRedisClient, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.DialTimeout = cfg.ConnectTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout
	opts.PoolSize = cfg.PoolSize

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
	}

	logger.Info("Connected to Redis",
		zap.String("address", opts.Addr),
		zap.Int("db", opts.DB),
		zap.Int("pool_size", opts.PoolSize))

	return &GoRedisClient{client: client}, nil
}

// Get retrieves a value by key
func (r *GoRedisClient) Get(ctx context.Context, key string) *redis.StringCmd {
	return r.client.Get(ctx, key)
}

// Set stores a value with expiration; zero means no expiry
func (r *GoRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	return r.client.Set(ctx, key, value, expiration)
}

// Del deletes one or more keys
func (r *GoRedisClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	return r.client.Del(ctx, keys...)
}

// Ping tests connectivity
func (r *GoRedisClient) Ping(ctx context.Context) *redis.StatusCmd {
	return r.client.Ping(ctx)
}

// Close closes the client connection
func (r *GoRedisClient) Close() error {
	return r.client.Close()
}
