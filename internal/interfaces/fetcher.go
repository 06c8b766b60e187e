package interfaces

import (
	"context"

	"github.com/sinh-x/google-classroom-mcp/internal/models"
)

//go:generate mockgen -package=mock -source=fetcher.go -destination=mock/fetcher.go

// Fetcher performs one remote call for an entity key and returns the
// serialized record. Failures are *remote.Error values.
type Fetcher interface {
	Fetch(ctx context.Context, key models.Key) ([]byte, error)
}
