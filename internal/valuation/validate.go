package valuation

import (
	"fmt"

	"isxcli/internal/trperrors"
)

// ValidateResult carries Stage H's non-fatal findings (spec.md §4.7 items
// 4-5 are warnings, not aborts) alongside any fatal conservation-law
// violation.
type ValidateResult struct {
	Warnings []string
}

// ValidateAndNormalize runs the five checks of spec.md §4.7 across every
// pool, rescaling rostered total_dollars in place when the budget-balance
// check drifts beyond ±$1. Item 1 returns an error only when the rostered
// dollar sum is zero and cannot be rescaled; items 2-3 return an error on
// failure; items 4-5 are collected as warnings.
func ValidateAndNormalize(pools []*PositionPool, allPlayers []*Player, league LeagueBudget) (ValidateResult, error) {
	result := ValidateResult{}

	// 1. Budget balance.
	sumDollars := 0.0
	rosteredCount := 0
	for _, pool := range pools {
		for _, p := range pool.Rostered {
			sumDollars += p.Computed.TotalDollars
			rosteredCount++
		}
	}
	if diff := sumDollars - league.Total; diff > 1 || diff < -1 {
		if sumDollars == 0 {
			return result, trperrors.NumericalFailure("league", "budget_balance")
		}
		scale := league.Total / sumDollars
		for _, pool := range pools {
			for _, p := range pool.Rostered {
				p.Computed.TotalDollars *= scale
				for cat := range p.Computed.DollarValues {
					p.Computed.DollarValues[cat] *= scale
				}
			}
		}
	}

	// 2. No orphan players — every normalized player must appear in at
	// least one pool's player union (a UTIL pool may repeat a player).
	seen := make(map[string]int, len(allPlayers))
	for _, pool := range pools {
		for _, p := range pool.AllPlayers() {
			seen[p.ID]++
		}
	}
	for _, p := range allPlayers {
		if seen[p.ID] == 0 {
			return result, trperrors.InsufficientPool(p.Computed.PrimaryPosition, fmt.Sprintf("player %s assigned to no pool", p.ID))
		}
	}

	// 3. Tier size — exactly roster_slots ROSTERED per pool, unless the
	// pool itself reported a deficit (fewer eligible players than slots).
	for _, pool := range pools {
		if pool.Deficit {
			continue
		}
		if len(pool.Rostered) != pool.RosterSlots {
			return result, trperrors.InsufficientPool(pool.Position, fmt.Sprintf("rostered tier has %d players, want %d", len(pool.Rostered), pool.RosterSlots))
		}
	}

	// 4. RLP Z sanity.
	for _, pool := range pools {
		if len(pool.Replacement) == 0 {
			continue
		}
		var sum float64
		for _, p := range byStableID(pool.Replacement) {
			sum += p.Computed.TotalZ
		}
		mean := sum / float64(len(pool.Replacement))
		if mean < -0.5 || mean > 0.5 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("pool %s: replacement-tier mean total_z %.3f outside ±0.5", pool.Position, mean))
		}
	}

	// 5. Dollar sanity.
	for _, pool := range pools {
		for _, p := range byStableID(pool.Rostered) {
			if p.Computed.TotalDollars < 0 {
				result.Warnings = append(result.Warnings, fmt.Sprintf("rostered player %s has negative total_dollars (%.2f)", p.ID, p.Computed.TotalDollars))
			}
		}
	}

	return result, nil
}
