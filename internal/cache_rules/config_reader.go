package cache_rules

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sinh-x/google-classroom-mcp/internal/models"
)

// LoadTierRules reads per-kind overrides from a YAML file and merges them
// onto the defaults. An empty path yields the defaults.
func LoadTierRules(rulesPath string, logger *zap.Logger) (*TierRulesConfig, error) {
	rules := DefaultTierRules()
	if rulesPath == "" {
		return rules, nil
	}

	logger.Info("Loading tier rules", zap.String("path", rulesPath))

	file, err := os.Open(rulesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open tier rules file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var override TierRulesConfig
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&override); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode YAML tier rules: %w", err)
	}

	if err := validateRules(&override); err != nil {
		return nil, fmt.Errorf("tier rules validation failed: %w", err)
	}

	rules.merge(&override)

	logger.Info("Tier rules loaded",
		zap.Int("tier_overrides", len(override.Tiers)),
		zap.Int("pool_overrides", len(override.Pools)))

	return rules, nil
}

// validateRules checks pool names; kinds and tiers are checked while decoding
func validateRules(rules *TierRulesConfig) error {
	for kind, pool := range rules.Pools {
		switch pool {
		case models.PoolGeneral, models.PoolFiles:
		default:
			return fmt.Errorf("invalid memory pool %q for kind %q", pool, kind)
		}
	}
	return nil
}
