package interfaces

import "github.com/sinh-x/google-classroom-mcp/internal/models"

//go:generate mockgen -package=mock -source=keybuilder.go -destination=mock/keybuilder.go

// KeyBuilder validates scope identifiers and canonizes them into cache keys
type KeyBuilder interface {
	Build(kind models.Kind, scope ...string) (models.Key, error)
}
