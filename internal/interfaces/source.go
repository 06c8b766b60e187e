package interfaces

import (
	"context"

	"github.com/sinh-x/google-classroom-mcp/internal/models"
)

//go:generate mockgen -package=mock -source=source.go -destination=mock/source.go

// EntitySource returns the serialized record for an entity, validating the
// scope identifiers first. The cache service is the production implementation.
type EntitySource interface {
	Fetch(ctx context.Context, kind models.Kind, scope ...string) ([]byte, error)
}
