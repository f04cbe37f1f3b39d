package valuation

import (
	"math"
	"sort"
)

// RosterSlots maps a position name to the number of slots one team fields
// at that position.
type RosterSlots map[string]int

// scarcity is slots_per_team × num_teams, ascending order processes the
// scarcest position first (spec.md §4.1).
func scarcity(slotsPerTeam, numTeams int) int { return slotsPerTeam * numTeams }

// AssignPrimaryPositions assigns every player's Computed.PrimaryPosition
// exactly once, processing positions scarcest-first with a 1.5x buffer so
// the replacement tier has candidates (spec.md §4.1).
func AssignPrimaryPositions(players []*Player, slots RosterSlots, numTeams int) {
	positions := make([]string, 0, len(slots))
	for pos := range slots {
		positions = append(positions, pos)
	}
	sort.Slice(positions, func(i, j int) bool {
		si, sj := scarcity(slots[positions[i]], numTeams), scarcity(slots[positions[j]], numTeams)
		if si != sj {
			return si < sj
		}
		return positions[i] < positions[j]
	})

	assigned := make(map[string]bool, len(players))

	for _, pos := range positions {
		totalSlots := slots[pos] * numTeams
		buffer := int(math.Ceil(1.5 * float64(totalSlots)))

		var candidates []*Player
		for _, p := range players {
			if assigned[p.ID] {
				continue
			}
			if p.HasPosition(pos) {
				candidates = append(candidates, p)
			}
		}

		sort.Slice(candidates, func(i, j int) bool {
			mi, mj := candidates[i].CompositeMetric(), candidates[j].CompositeMetric()
			if mi != mj {
				return mi > mj
			}
			return candidates[i].ID < candidates[j].ID
		})

		limit := buffer
		if limit > len(candidates) {
			limit = len(candidates)
		}
		for i := 0; i < limit; i++ {
			candidates[i].Computed.PrimaryPosition = pos
			assigned[candidates[i].ID] = true
		}
	}

	// Fallback: anyone left unassigned goes to their first-listed eligible
	// position (spec.md §4.1).
	for _, p := range players {
		if assigned[p.ID] {
			continue
		}
		if len(p.Positions) > 0 {
			p.Computed.PrimaryPosition = p.Positions[0]
		}
		assigned[p.ID] = true
	}
}
