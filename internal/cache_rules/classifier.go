package cache_rules

import (
	"go.uber.org/zap"

	"github.com/sinh-x/google-classroom-mcp/internal/interfaces"
	"github.com/sinh-x/google-classroom-mcp/internal/models"
)

// Classifier implements the TierClassifier interface
type Classifier struct {
	logger *zap.Logger
	rules  *TierRulesConfig
}

// Ensure Classifier implements the TierClassifier interface
var _ interfaces.TierClassifier = (*Classifier)(nil)

// NewClassifier creates a new Classifier instance. Nil rules means the defaults.
func NewClassifier(logger *zap.Logger, rules *TierRulesConfig) *Classifier {
	if rules == nil {
		rules = DefaultTierRules()
	}
	return &Classifier{
		logger: logger,
		rules:  rules,
	}
}

// Policy returns the tier and memory pool for kind. Unlisted kinds are
// memory-only in the general pool.
func (c *Classifier) Policy(kind models.Kind) models.TierPolicy {
	policy := models.TierPolicy{Tier: models.TierMemory, Pool: models.PoolGeneral}

	if tier, ok := c.rules.Tiers[kind]; ok {
		policy.Tier = tier
	} else {
		c.logger.Debug("Kind not found in tier rules, using memory tier", zap.String("kind", string(kind)))
	}

	if pool, ok := c.rules.Pools[kind]; ok {
		policy.Pool = pool
	}

	return policy
}
