package valuation

// TranslateDollars runs Stage G for a single pool: $/Z per category, then
// per-player signed dollar values (spec.md §4.6). Must run after the pool's
// category_budgets are set (Stage F) and its final tiers/Z-scores are fixed
// (Stage D's last iteration).
func TranslateDollars(pool *PositionPool) {
	pool.TotalPoolZ = make(map[string]float64, len(pool.Categories))
	pool.DollarsPerZ = make(map[string]float64, len(pool.Categories))

	for _, cat := range pool.Categories {
		total := 0.0
		for _, p := range pool.Rostered {
			if nz := p.Computed.NormalizedZ[cat]; nz > 0 {
				total += nz
			}
		}
		pool.TotalPoolZ[cat] = total

		if total > 0 {
			pool.DollarsPerZ[cat] = pool.CategoryBudgets[cat] / total
		} else {
			pool.DollarsPerZ[cat] = 0
		}
	}

	for _, p := range pool.AllPlayers() {
		if p.Computed.DollarValues == nil {
			p.Computed.DollarValues = make(map[string]float64, len(pool.Categories))
		}
		var total float64
		for _, cat := range pool.Categories {
			dv := p.Computed.NormalizedZ[cat] * pool.DollarsPerZ[cat]
			p.Computed.DollarValues[cat] = dv
			total += dv
		}
		p.Computed.TotalDollars = total
	}
}
