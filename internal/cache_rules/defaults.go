package cache_rules

import (
	"github.com/sinh-x/google-classroom-mcp/internal/models"
)

// DefaultTierRules returns the built-in policy: materials, topics and file
// content survive loss of remote access; file content has its own memory pool.
func DefaultTierRules() *TierRulesConfig {
	return &TierRulesConfig{
		Tiers: map[models.Kind]models.Tier{
			models.KindCourses:       models.TierMemory,
			models.KindCourse:        models.TierMemory,
			models.KindAnnouncements: models.TierMemory,
			models.KindAssignments:   models.TierMemory,
			models.KindSubmissions:   models.TierMemory,
			models.KindMaterials:     models.TierDurable,
			models.KindTopics:        models.TierDurable,
			models.KindFileContent:   models.TierDurable,
		},
		Pools: map[models.Kind]models.Pool{
			models.KindFileContent: models.PoolFiles,
		},
	}
}

// merge overlays the entries of override onto c
func (c *TierRulesConfig) merge(override *TierRulesConfig) {
	for kind, tier := range override.Tiers {
		c.Tiers[kind] = tier
	}
	for kind, pool := range override.Pools {
		c.Pools[kind] = pool
	}
}
