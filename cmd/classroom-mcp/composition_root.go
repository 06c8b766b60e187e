package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dgraph-io/badger/v4"
	mcpgo "github.com/felixgeelhaar/mcp-go"
	"github.com/go-git/go-billy/v5/osfs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/api/classroom/v1"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/sinh-x/google-classroom-mcp/internal/aggregator"
	"github.com/sinh-x/google-classroom-mcp/internal/auth"
	"github.com/sinh-x/google-classroom-mcp/internal/cache"
	"github.com/sinh-x/google-classroom-mcp/internal/cache/l1"
	"github.com/sinh-x/google-classroom-mcp/internal/cache/l2"
	"github.com/sinh-x/google-classroom-mcp/internal/cache/noop"
	"github.com/sinh-x/google-classroom-mcp/internal/cache/service"
	"github.com/sinh-x/google-classroom-mcp/internal/cache_rules"
	"github.com/sinh-x/google-classroom-mcp/internal/config"
	"github.com/sinh-x/google-classroom-mcp/internal/httpserver"
	"github.com/sinh-x/google-classroom-mcp/internal/interfaces"
	"github.com/sinh-x/google-classroom-mcp/internal/models"
	"github.com/sinh-x/google-classroom-mcp/internal/remote"
	"github.com/sinh-x/google-classroom-mcp/internal/tools"
)

// CompositionRoot holds all application dependencies and provides a centralized
// place for dependency injection and service initialization.
type CompositionRoot struct {
	// Configuration
	Config     *config.Config
	Logger     *zap.Logger
	Classifier interfaces.TierClassifier

	// Cache components
	Memory     map[models.Pool]interfaces.Cache
	Durable    interfaces.Cache
	KeyBuilder interfaces.KeyBuilder

	// Remote
	Fetcher interfaces.Fetcher

	// Services
	CacheService *service.CacheService
	Aggregator   *aggregator.Aggregator
	Registry     *tools.Registry
	MCPServer    *mcpgo.Server
	HTTPServer   *httpserver.Server
}

// NewCompositionRoot creates and initializes all application dependencies.
//
// Initialization order:
// 1. Logger and configuration
// 2. Tier rules
// 3. Cache components (memory pools, durable store, key builder)
// 4. Remote fetcher (OAuth token, Google clients, resilience)
// 5. Services (cache-aside client, aggregator, tools, MCP and HTTP servers)
func NewCompositionRoot(ctx context.Context, version string) (*CompositionRoot, error) {
	root := &CompositionRoot{}

	if err := root.initBase(); err != nil {
		return nil, err
	}

	if err := root.loadTierRules(); err != nil {
		return nil, fmt.Errorf("failed to load tier rules: %w", err)
	}

	if err := root.initCacheComponents(); err != nil {
		_ = root.Cleanup()
		return nil, fmt.Errorf("failed to initialize cache components: %w", err)
	}

	if err := root.initRemote(ctx); err != nil {
		_ = root.Cleanup()
		return nil, fmt.Errorf("failed to initialize remote client: %w", err)
	}

	root.initServices(version)

	return root, nil
}

// initBase initializes the logger and loads configuration
func (r *CompositionRoot) initBase() error {
	level := zap.NewAtomicLevel()
	if err := r.initLogger(level); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := config.Load(r.Logger)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	r.Config = cfg

	parsed, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	level.SetLevel(parsed)
	return nil
}

// initLogger initializes a JSON logger on stderr. stdout carries the MCP
// protocol and must stay clean.
func (r *CompositionRoot) initLogger(level zap.AtomicLevel) error {
	cfg := zap.NewProductionConfig()
	cfg.Level = level
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		return err
	}
	r.Logger = logger
	return nil
}

// loadTierRules loads per-kind tier overrides
func (r *CompositionRoot) loadTierRules() error {
	rules, err := cache_rules.LoadTierRules(r.Config.TierRulesFile, r.Logger)
	if err != nil {
		return err
	}

	r.Classifier = cache_rules.NewClassifier(r.Logger, rules)
	return nil
}

// initCacheComponents initializes all cache-related components
func (r *CompositionRoot) initCacheComponents() error {
	if err := r.initMemory(); err != nil {
		return fmt.Errorf("failed to initialize memory tier: %w", err)
	}

	if err := r.initDurable(); err != nil {
		return fmt.Errorf("failed to initialize durable tier: %w", err)
	}

	r.KeyBuilder = cache.NewKeyBuilder()
	return nil
}

// initMemory creates one expiring pool for general entities and one for file content
func (r *CompositionRoot) initMemory() error {
	mc := r.Config.Memory
	r.Memory = make(map[models.Pool]interfaces.Cache, 2)

	capacities := map[models.Pool]int{
		models.PoolGeneral: mc.Capacity,
		models.PoolFiles:   mc.FileCapacity,
	}

	for pool, capacity := range capacities {
		switch mc.Backend {
		case "bigcache":
			bc, err := l1.NewBigCache(pool, mc.BigCacheSizeMB, capacity, mc.TTL, r.Logger)
			if err != nil {
				return err
			}
			r.Memory[pool] = bc
		default:
			r.Memory[pool] = l1.NewLRUCache(pool, capacity, mc.TTL, r.Logger)
		}
	}

	r.Logger.Info("Memory tier initialized",
		zap.String("backend", mc.Backend),
		zap.Int("capacity", mc.Capacity),
		zap.Int("file_capacity", mc.FileCapacity),
		zap.Duration("ttl", mc.TTL))
	return nil
}

// initDurable initializes the permanent tier
func (r *CompositionRoot) initDurable() error {
	dc := r.Config.Durable

	switch dc.Backend {
	case "fs":
		store, err := l2.NewFSStore(osfs.New(dc.Dir), r.Logger)
		if err != nil {
			return err
		}
		r.Durable = store
		r.Logger.Info("Durable tier initialized", zap.String("backend", "fs"), zap.String("dir", dc.Dir))

	case "badger":
		opts := badger.DefaultOptions(dc.Dir).WithLogger(NewBadgerLogger(r.Logger))
		store, err := l2.NewBadgerStore(opts, r.Logger)
		if err != nil {
			return err
		}
		r.Durable = store
		r.Logger.Info("Durable tier initialized", zap.String("backend", "badger"), zap.String("dir", dc.Dir))

	case "redis":
		redisURL := GetRedisURL(r.Logger)
		client, err := l2.NewGoRedisClient(dc.Redis, redisURL, r.Logger)
		if err != nil {
			// Memory-only caching still serves every request
			r.Logger.Warn("Failed to connect to Redis, falling back to no durable tier",
				zap.Error(err))
			r.Durable = noop.NewNoOpCache()
			return nil
		}
		r.Durable = l2.NewRedisStore(dc.Redis, client, r.Logger)
		r.Logger.Info("Durable tier initialized", zap.String("backend", "redis"))

	default:
		r.Durable = noop.NewNoOpCache()
		r.Logger.Info("Durable tier disabled")
	}
	return nil
}

// initRemote builds the authenticated Google clients behind the resilience layer
func (r *CompositionRoot) initRemote(ctx context.Context) error {
	oauthConfig, err := auth.LoadOAuthConfig(r.Config.Google.CredentialsFile)
	if err != nil {
		return err
	}

	store := auth.NewFileTokenStore(r.Config.Google.TokenFile)
	tokenSource, err := auth.TokenSource(ctx, oauthConfig, store, r.Logger)
	if err != nil {
		return err
	}

	classroomSvc, err := classroom.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return fmt.Errorf("failed to create classroom client: %w", err)
	}
	driveSvc, err := drive.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return fmt.Errorf("failed to create drive client: %w", err)
	}

	google := remote.NewGoogleFetcher(classroomSvc, driveSvc, r.Logger)
	r.Fetcher = remote.NewResilientFetcher(google, r.Config.Remote, r.Logger)
	return nil
}

// initServices initializes application services
func (r *CompositionRoot) initServices(version string) {
	r.CacheService = service.NewCacheService(
		r.Memory,
		r.Durable,
		r.Fetcher,
		r.KeyBuilder,
		r.Classifier,
		r.Logger,
	)

	r.Aggregator = aggregator.New(r.CacheService, r.Logger)
	r.Registry = tools.NewRegistry(r.CacheService, r.Aggregator, r.Logger)
	r.MCPServer = tools.NewMCPServer(r.Registry, version)

	if r.Config.HTTP.Enabled {
		r.HTTPServer = httpserver.NewServer(r.Registry, r.Logger)
	}
}

// Cleanup performs cleanup of all resources
func (r *CompositionRoot) Cleanup() error {
	var errs []error

	for pool, mem := range r.Memory {
		if closer, ok := mem.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close memory pool %s: %w", pool, err))
			}
		}
	}

	if closer, ok := r.Durable.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close durable tier: %w", err))
		}
	}

	// Sync logger last; stderr sync errors are not actionable
	if r.Logger != nil {
		_ = r.Logger.Sync()
	}

	return errors.Join(errs...)
}
