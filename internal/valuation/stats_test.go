package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"isxcli/pkg/contracts/domain"
)

func newHitter(id string, r float64) *Player {
	return &Player{
		ID:        id,
		Role:      domain.RoleHitter,
		Positions: []string{"OF"},
		Hitter:    HitterStats{R: r},
	}
}

func TestMeanStdevPopulation(t *testing.T) {
	players := []*Player{
		newHitter("b", 10),
		newHitter("a", 20),
		newHitter("c", 30),
	}

	mean, stdev := meanStdev(players, "R")

	assert.InDelta(t, 20.0, mean, 1e-9)
	// population stdev of {10,20,30}: variance = ((10)^2+(0)^2+(10)^2)/3 = 66.667
	assert.InDelta(t, 8.16496581, stdev, 1e-6)
}

func TestMeanStdevZeroVariance(t *testing.T) {
	players := []*Player{newHitter("a", 15), newHitter("b", 15), newHitter("c", 15)}

	mean, stdev := meanStdev(players, "R")

	assert.InDelta(t, 15.0, mean, 1e-9)
	assert.Equal(t, 0.0, stdev)
}

func TestByStableIDIsOrderIndependent(t *testing.T) {
	players := []*Player{newHitter("zeta", 1), newHitter("alpha", 2), newHitter("mu", 3)}

	sorted := byStableID(players)

	assert.Equal(t, []string{"alpha", "mu", "zeta"}, idsOf(sorted))
	// original slice untouched
	assert.Equal(t, "zeta", players[0].ID)
}

func idsOf(players []*Player) []string {
	ids := make([]string, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}
	return ids
}

func TestIsFiniteFloat(t *testing.T) {
	assert.True(t, isFiniteFloat(1.5))
	assert.True(t, isFiniteFloat(0))
	assert.False(t, isFiniteFloat(1.0/zero()))
	assert.False(t, isFiniteFloat(zero()/zero()))
}

func zero() float64 { return 0 }
