package interfaces

import (
	"context"

	"github.com/sinh-x/google-classroom-mcp/internal/models"
)

//go:generate mockgen -package=mock -source=cache.go -destination=mock/cache.go

// Cache interface defines the contract for a single cache tier.
// Implementations absorb their own storage faults: a failed read is a miss.
type Cache interface {
	Get(ctx context.Context, key string) (*models.CacheEntry, bool) // returns entry and found flag
	Set(ctx context.Context, key string, val []byte) error          // error is informative only
	Delete(ctx context.Context, key string)
}

// LevelResult reports which level of a chained cache answered
type LevelResult struct {
	Entry *models.CacheEntry
	Found bool
	Level models.CacheLevel
}

// LevelAwareCache is a Cache that can report the level of a hit
type LevelAwareCache interface {
	Cache
	GetWithLevel(ctx context.Context, key string) LevelResult
}
