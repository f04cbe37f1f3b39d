package valuation

import "isxcli/pkg/contracts/domain"

// hitterRateCategories are PA-weighted at the per-position allocation step;
// everything else in HitterCategories is a counting stat allocated by
// production share (spec.md §4.5).
var hitterRateCategories = map[string]bool{"OBP": true, "SLG": true}

// BuildLeagueBudget computes the league-wide, role, and category budgets
// (Stage F, spec.md §4.5) from the league summary and a budget config.
func BuildLeagueBudget(league domain.LeagueSummary, cfg BudgetConfig) LeagueBudget {
	total := float64(league.Teams) * (league.AuctionBudget - cfg.BenchReserve)

	hitterBudget := total * cfg.HitterPitcherSplit
	pitcherBudget := total * (1 - cfg.HitterPitcherSplit)
	spBudget := pitcherBudget * cfg.SPRPSplit
	rpBudget := pitcherBudget * (1 - cfg.SPRPSplit)

	hitterCat := make(map[string]float64, len(cfg.HitterCategoryWeights))
	for c, w := range cfg.HitterCategoryWeights {
		hitterCat[c] = hitterBudget * w
	}
	spCat := make(map[string]float64, len(cfg.SPCategoryWeights))
	for c, w := range cfg.SPCategoryWeights {
		spCat[c] = spBudget * w
	}
	rpCat := make(map[string]float64, len(cfg.RPCategoryWeights))
	for c, w := range cfg.RPCategoryWeights {
		rpCat[c] = rpBudget * w
	}

	return LeagueBudget{
		Total:                 total,
		HitterBudget:          hitterBudget,
		PitcherBudget:         pitcherBudget,
		SPBudget:              spBudget,
		RPBudget:              rpBudget,
		HitterCategoryBudgets: hitterCat,
		SPCategoryBudgets:     spCat,
		RPCategoryBudgets:     rpCat,
	}
}

// AllocateHitterPoolBudgets splits the league's hitter category budgets
// across position pools by production share (counting stats) or weighted-PA
// share (rate stats), per spec.md §4.5's "Per-position hitter allocation".
func AllocateHitterPoolBudgets(pools []*PositionPool, league LeagueBudget, cfg BudgetConfig) {
	totalWeightedPA := 0.0
	for _, pool := range pools {
		totalWeightedPA += float64(len(pool.Rostered)) * cfg.PAWeight(pool.Position)
	}

	countingTotals := make(map[string]float64, len(HitterCategories))
	for _, cat := range HitterCategories {
		if hitterRateCategories[cat] {
			continue
		}
		sum := 0.0
		for _, pool := range pools {
			for _, p := range pool.Rostered {
				sum += p.CategoryValue(cat)
			}
		}
		countingTotals[cat] = sum
	}

	for _, pool := range pools {
		pool.CategoryBudgets = make(map[string]float64, len(pool.Categories))
		weightedPA := float64(len(pool.Rostered)) * cfg.PAWeight(pool.Position)

		for _, cat := range pool.Categories {
			leagueCatBudget := league.HitterCategoryBudgets[cat]

			if hitterRateCategories[cat] {
				if totalWeightedPA == 0 {
					pool.CategoryBudgets[cat] = 0
					continue
				}
				pool.CategoryBudgets[cat] = leagueCatBudget * weightedPA / totalWeightedPA
				continue
			}

			poolSum := 0.0
			for _, p := range pool.Rostered {
				poolSum += p.CategoryValue(cat)
			}
			total := countingTotals[cat]
			if total == 0 {
				pool.CategoryBudgets[cat] = 0
				continue
			}
			pool.CategoryBudgets[cat] = leagueCatBudget * poolSum / total
		}
	}
}

// AllocatePitcherPoolBudget applies the role budget directly — pitcher
// pools are single-position per role, so no production-share split is
// needed (spec.md §4.5's "Per-pool pitcher allocation", SPEC_FULL.md §D.3).
func AllocatePitcherPoolBudget(pool *PositionPool, roleBudget float64, roleWeights map[string]float64) {
	pool.CategoryBudgets = make(map[string]float64, len(pool.Categories))
	for _, cat := range pool.Categories {
		pool.CategoryBudgets[cat] = roleBudget * roleWeights[cat]
	}
}
