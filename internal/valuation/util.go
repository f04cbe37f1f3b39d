package valuation

import "isxcli/pkg/contracts/domain"

// BuildUtilPool runs Stage E (spec.md §4.4): unions every converged hitter
// pool's replacement and below-replacement tiers plus pure-DH players,
// dedupes by id, and builds a UTIL pool sized to UTIL's roster slots.
// Callers must run Converge on the returned pool (as a singleton list)
// before using its tiers.
func BuildUtilPool(hitterPools []*PositionPool, allHitters []*Player, utilSlots int, cfg BudgetConfig) *PositionPool {
	seen := make(map[string]bool)
	var candidates []*Player

	for _, pool := range hitterPools {
		for _, p := range pool.Replacement {
			if !seen[p.ID] {
				seen[p.ID] = true
				candidates = append(candidates, p)
			}
		}
		for _, p := range pool.BelowReplacement {
			if !seen[p.ID] {
				seen[p.ID] = true
				candidates = append(candidates, p)
			}
		}
	}

	for _, p := range allHitters {
		if len(p.Positions) == 1 && p.Positions[0] == "DH" && !seen[p.ID] {
			seen[p.ID] = true
			candidates = append(candidates, p)
		}
	}

	return BuildPositionPool(cfg.UtilPositionName, domain.RoleHitter, candidates, utilSlots, cfg)
}

// PromoteUtilRostered marks every player elevated into UTIL's rostered
// tier with Tier=ROSTERED while leaving their primary-position pool
// membership untouched for diagnostics (spec.md §4.4).
func PromoteUtilRostered(utilPool *PositionPool) {
	for _, p := range utilPool.Rostered {
		p.Computed.Tier = domain.TierRostered
	}
}
