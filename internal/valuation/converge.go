package valuation

import (
	"context"

	"golang.org/x/sync/errgroup"

	"isxcli/internal/trperrors"
	"isxcli/pkg/contracts/domain"
)

// ConvergenceResult reports whether the loop stabilized and how many
// iterations it took, so callers can surface spec.md §7's "convergence
// exhaustion" as a warning rather than an error.
type ConvergenceResult struct {
	Iterations int
	Converged  bool
}

// Converge iterates Stage D over every pool in the slice until tier
// membership stabilizes across all of them or max_iterations is reached
// (spec.md §4.3). Iteration N's output for pool P depends only on
// iteration N-1's output for the same pool P (spec.md §5), so one
// iteration's per-pool recompute runs concurrently via errgroup.
func Converge(ctx context.Context, pools []*PositionPool, cfg BudgetConfig) (ConvergenceResult, error) {
	prevRostered := make([]map[string]struct{}, len(pools))
	for i, pool := range pools {
		prevRostered[i] = pool.RosteredIDs()
	}

	for iter := 1; iter <= cfg.MaxIterations; iter++ {
		g, gctx := errgroup.WithContext(ctx)
		for _, pool := range pools {
			pool := pool
			g.Go(func() error {
				return converenceIteration(gctx, pool, cfg)
			})
		}
		if err := g.Wait(); err != nil {
			return ConvergenceResult{Iterations: iter}, err
		}

		changed := 0
		for i, pool := range pools {
			current := pool.RosteredIDs()
			if !sameIDSet(prevRostered[i], current) {
				changed++
			}
			prevRostered[i] = current
		}

		if changed <= cfg.ConvergenceThreshold {
			return ConvergenceResult{Iterations: iter, Converged: true}, nil
		}
	}

	return ConvergenceResult{Iterations: cfg.MaxIterations, Converged: false}, nil
}

// converenceIteration runs steps 1-6 of spec.md §4.3's per-iteration
// per-pool sequence for a single pool.
func converenceIteration(ctx context.Context, pool *PositionPool, cfg BudgetConfig) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	// Step 1: rostered-tier means/stdevs.
	pool.RosteredTierMeans = make(map[string]float64, len(pool.Categories))
	pool.RosteredTierStdevs = make(map[string]float64, len(pool.Categories))
	for _, cat := range pool.Categories {
		mean, stdev := meanStdev(pool.Rostered, cat)
		pool.RosteredTierMeans[cat] = mean
		pool.RosteredTierStdevs[cat] = stdev
	}

	all := pool.AllPlayers()

	// Step 2: raw Z for every player in the pool union.
	for _, p := range all {
		if p.Computed.RawZ == nil {
			p.Computed.RawZ = make(map[string]float64, len(pool.Categories))
		}
		for _, cat := range pool.Categories {
			stdev := pool.RosteredTierStdevs[cat]
			if stdev == 0 {
				p.Computed.RawZ[cat] = 0
				continue
			}
			mean := pool.RosteredTierMeans[cat]
			value := p.CategoryValue(cat)
			var z float64
			if cfg.InvertedCategories[cat] {
				z = (mean - value) / stdev
			} else {
				z = (value - mean) / stdev
			}
			if !isFiniteFloat(z) {
				return trperrors.NumericalFailure(pool.Position, cat)
			}
			p.Computed.RawZ[cat] = z
		}
	}

	// Step 3: replacement-tier baseline (rlp_raw_z_avg).
	pool.RLPRawZAvg = make(map[string]float64, len(pool.Categories))
	for _, cat := range pool.Categories {
		values := make([]float64, len(pool.Replacement))
		for i, p := range byStableID(pool.Replacement) {
			values[i] = p.Computed.RawZ[cat]
		}
		pool.RLPRawZAvg[cat] = calculateMean(values)
	}

	// Step 4: normalized Z and total_z.
	for _, p := range all {
		if p.Computed.NormalizedZ == nil {
			p.Computed.NormalizedZ = make(map[string]float64, len(pool.Categories))
		}
		var total float64
		for _, cat := range pool.Categories {
			nz := p.Computed.RawZ[cat] - pool.RLPRawZAvg[cat]
			p.Computed.NormalizedZ[cat] = nz
			total += nz
		}
		p.Computed.TotalZ = total
	}

	// Step 5: re-sort by total_z desc, reassign tiers via the same
	// percentage-band rule.
	rostered, replacement, below, deficit := assignTiers(
		all, pool.RosterSlots, cfg.ReplacementTierPct, cfg.MinReplacementTierSize,
		func(p *Player) float64 { return p.Computed.TotalZ },
	)
	pool.Rostered = rostered
	pool.Replacement = replacement
	pool.BelowReplacement = below
	pool.Deficit = deficit

	for _, p := range rostered {
		p.Computed.Tier = domain.TierRostered
	}
	for _, p := range replacement {
		p.Computed.Tier = domain.TierReplacement
	}
	for _, p := range below {
		p.Computed.Tier = domain.TierBelowReplacement
	}

	return nil
}

func sameIDSet(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for id := range a {
		if _, ok := b[id]; !ok {
			return false
		}
	}
	return true
}
