package interfaces

import "github.com/sinh-x/google-classroom-mcp/internal/models"

//go:generate mockgen -package=mock -source=tier_classifier.go -destination=mock/tier_classifier.go

// TierClassifier decides the caching policy for an entity kind
type TierClassifier interface {
	Policy(kind models.Kind) models.TierPolicy
}
