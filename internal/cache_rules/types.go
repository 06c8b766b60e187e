package cache_rules

import (
	"github.com/sinh-x/google-classroom-mcp/internal/models"
)

// TierRulesConfig maps entity kinds to their cache tier and memory pool
type TierRulesConfig struct {
	Tiers map[models.Kind]models.Tier `yaml:"tiers"`
	Pools map[models.Kind]models.Pool `yaml:"pools"`
}
