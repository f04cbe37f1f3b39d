package valuation

import (
	"sort"

	"isxcli/pkg/contracts/domain"
)

// metricFn extracts the ranking metric for a player — composite metric at
// pool-construction time, total_z during convergence re-tiering.
type metricFn func(*Player) float64

// assignTiers sorts players descending by metric (ties broken by id
// ascending for determinism, spec.md §4.1/§9) and splits them into
// rostered / replacement / below-replacement using the percentage-band
// rule (spec.md §4.2). threshold = metric - |metric|*pct preserves
// direction even when metric is non-positive (spec.md §4.2 edge case).
func assignTiers(players []*Player, rosterSlots int, pct float64, minReplacementSize int, metric metricFn) (rostered, replacement, belowReplacement []*Player, deficit bool) {
	sorted := make([]*Player, len(players))
	copy(sorted, players)
	sort.Slice(sorted, func(i, j int) bool {
		mi, mj := metric(sorted[i]), metric(sorted[j])
		if mi != mj {
			return mi > mj
		}
		return sorted[i].ID < sorted[j].ID
	})

	n := len(sorted)
	if rosterSlots > n {
		rosterSlots = n
		deficit = true
	}

	rostered = sorted[:rosterSlots]
	rest := sorted[rosterSlots:]

	if len(rest) == 0 || rosterSlots == 0 {
		return rostered, nil, rest, deficit
	}

	lastRosteredMetric := metric(rostered[len(rostered)-1])
	threshold := lastRosteredMetric - abs(lastRosteredMetric)*pct

	repCount := 0
	for _, p := range rest {
		if metric(p) >= threshold {
			repCount++
		} else {
			break
		}
	}
	if repCount < minReplacementSize {
		repCount = minReplacementSize
	}
	if repCount > len(rest) {
		repCount = len(rest)
	}

	replacement = rest[:repCount]
	belowReplacement = rest[repCount:]
	return rostered, replacement, belowReplacement, deficit
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// BuildPositionPool constructs the initial PositionPool for one
// (position, role) from all players whose primary position is p
// (spec.md §4.2). The same logic builds single-role pitcher pools
// (SP/RP) — the open question on BUILD_SINGLE_POOL sizing is resolved in
// SPEC_FULL.md §D.1 by sharing this exact function.
func BuildPositionPool(position string, role domain.Role, players []*Player, rosterSlots int, cfg BudgetConfig) *PositionPool {
	rostered, replacement, below, deficit := assignTiers(
		players, rosterSlots, cfg.ReplacementTierPct, cfg.MinReplacementTierSize,
		func(p *Player) float64 { return p.CompositeMetric() },
	)

	var categories []string
	switch role {
	case domain.RoleHitter:
		categories = HitterCategories
	case domain.RoleSP:
		categories = SPCategories
	default:
		categories = RPCategories
	}

	for _, p := range rostered {
		p.Computed.Tier = domain.TierRostered
	}
	for _, p := range replacement {
		p.Computed.Tier = domain.TierReplacement
	}
	for _, p := range below {
		p.Computed.Tier = domain.TierBelowReplacement
	}

	return &PositionPool{
		Position:    position,
		Role:        role,
		RosterSlots: rosterSlots,
		Rostered:    rostered,
		Replacement: replacement,
		BelowReplacement: below,
		Categories:  categories,
		Deficit:     deficit,
	}
}

// playersByPrimaryPosition groups players by their assigned primary
// position, for handing off to BuildPositionPool per position.
func playersByPrimaryPosition(players []*Player) map[string][]*Player {
	byPos := make(map[string][]*Player)
	for _, p := range players {
		byPos[p.Computed.PrimaryPosition] = append(byPos[p.Computed.PrimaryPosition], p)
	}
	return byPos
}
