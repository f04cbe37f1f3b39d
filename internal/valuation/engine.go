package valuation

import (
	"context"

	"golang.org/x/sync/errgroup"

	"isxcli/internal/trperrors"
	"isxcli/pkg/contracts/domain"
)

// Result is the engine's full output: one valuation per projected player,
// one diagnostic summary per pool, and the run's warnings.
type Result struct {
	Valuations []domain.PlayerValuation
	Summaries  []domain.PositionSummary
	Warnings   []string
}

// Engine wires stages A through H in the strict order spec.md §5 requires.
type Engine struct {
	tracer *StageTracer
}

// NewEngine returns a ready-to-run Engine.
func NewEngine() *Engine {
	return &Engine{tracer: NewStageTracer()}
}

// Run executes one full valuation pass: normalize, assign positions, build
// and converge hitter pools, build and converge the UTIL pool, build and
// converge pitcher pools, allocate budgets, translate to dollars, validate.
func (e *Engine) Run(ctx context.Context, hitterRecords []domain.HitterRecord, pitcherRecords []domain.PitcherRecord, league domain.LeagueSummary, cfg BudgetConfig) (*Result, error) {
	cfg = cfg.WithInvertedCategories(league.Scoring.Reverse)
	if err := cfg.Validate(); err != nil {
		return nil, trperrors.BadConfigWithCause("invalid budget config", err)
	}

	// Stage A.
	ctx, endA := e.tracer.TraceStage(ctx, "normalize")
	hitters, herr := NormalizeHitters(hitterRecords)
	pitchers, perr := NormalizePitchers(pitcherRecords)
	herr.Errors = append(herr.Errors, perr.Errors...)
	if herr.HasErrors() {
		endA(herr)
		return nil, herr
	}
	endA(nil)

	hitterSlots := hitterRosterSlots(league.RosterSlots, cfg.UtilPositionName)

	// Stage B.
	_, endB := e.tracer.TraceStage(ctx, "assign_primary_positions")
	AssignPrimaryPositions(hitters, hitterSlots, league.Teams)
	endB(nil)

	// Stage C: one pool per hitter position.
	_, endC := e.tracer.TraceStage(ctx, "build_position_pools")
	byPos := playersByPrimaryPosition(hitters)
	var hitterPools []*PositionPool
	for pos, slotsPerTeam := range hitterSlots {
		pool := BuildPositionPool(pos, domain.RoleHitter, byPos[pos], slotsPerTeam*league.Teams, cfg)
		hitterPools = append(hitterPools, pool)
	}
	endC(nil)

	// Stage D over hitter pools.
	ctx, endD1 := e.tracer.TraceStage(ctx, "converge_hitters")
	if _, err := Converge(ctx, hitterPools, cfg); err != nil {
		endD1(err)
		return nil, err
	}
	endD1(nil)

	// Stage E: UTIL pool, built after hitter convergence, then converged
	// as its own singleton pass (spec.md §4.4).
	_, endE := e.tracer.TraceStage(ctx, "build_util_pool")
	utilSlotsPerTeam := league.RosterSlots[cfg.UtilPositionName]
	utilPool := BuildUtilPool(hitterPools, hitters, utilSlotsPerTeam*league.Teams, cfg)
	if _, err := Converge(ctx, []*PositionPool{utilPool}, cfg); err != nil {
		endE(err)
		return nil, err
	}
	PromoteUtilRostered(utilPool)
	endE(nil)

	// Stage C/D for pitchers: single-position SP and RP pools.
	_, endPitch := e.tracer.TraceStage(ctx, "build_pitcher_pools")
	var spPlayers, rpPlayers []*Player
	for _, p := range pitchers {
		if p.Role == domain.RoleSP {
			spPlayers = append(spPlayers, p)
		} else {
			rpPlayers = append(rpPlayers, p)
		}
	}
	spSlotsPerTeam := league.RosterSlots["SP"]
	rpSlotsPerTeam := league.RosterSlots["RP"]
	spPool := BuildPositionPool("SP", domain.RoleSP, spPlayers, spSlotsPerTeam*league.Teams, cfg)
	rpPool := BuildPositionPool("RP", domain.RoleRP, rpPlayers, rpSlotsPerTeam*league.Teams, cfg)
	endPitch(nil)

	ctx, endD2 := e.tracer.TraceStage(ctx, "converge_pitchers")
	if err := convergePitchersParallel(ctx, spPool, rpPool, cfg); err != nil {
		endD2(err)
		return nil, err
	}
	endD2(nil)

	// Stage F.
	_, endF := e.tracer.TraceStage(ctx, "allocate_budgets")
	leagueBudget := BuildLeagueBudget(league, cfg)
	allHitterPools := append(append([]*PositionPool{}, hitterPools...), utilPool)
	AllocateHitterPoolBudgets(allHitterPools, leagueBudget, cfg)
	AllocatePitcherPoolBudget(spPool, leagueBudget.SPBudget, cfg.SPCategoryWeights)
	AllocatePitcherPoolBudget(rpPool, leagueBudget.RPBudget, cfg.RPCategoryWeights)
	endF(nil)

	// Stage G.
	_, endG := e.tracer.TraceStage(ctx, "translate_dollars")
	allPools := append(append([]*PositionPool{}, allHitterPools...), spPool, rpPool)
	for _, pool := range allPools {
		TranslateDollars(pool)
	}
	endG(nil)

	// Stage H.
	_, endH := e.tracer.TraceStage(ctx, "validate")
	allPlayers := append(append([]*Player{}, hitters...), pitchers...)
	vr, err := ValidateAndNormalize(allPools, allPlayers, leagueBudget)
	if err != nil {
		endH(err)
		return nil, err
	}
	endH(nil)

	return &Result{
		Valuations: buildValuations(allPlayers),
		Summaries:  buildSummaries(allPools),
		Warnings:   vr.Warnings,
	}, nil
}

// convergePitchersParallel runs Stage D over the two pitcher pools
// concurrently, mirroring the hitter convergence's errgroup wiring.
func convergePitchersParallel(ctx context.Context, spPool, rpPool *PositionPool, cfg BudgetConfig) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := Converge(gctx, []*PositionPool{spPool}, cfg)
		return err
	})
	g.Go(func() error {
		_, err := Converge(gctx, []*PositionPool{rpPool}, cfg)
		return err
	})
	return g.Wait()
}

// hitterRosterSlots filters a league's full roster_slots map down to the
// hitter positions (everything that isn't SP, RP, or the UTIL slot).
func hitterRosterSlots(rosterSlots map[string]int, utilName string) RosterSlots {
	out := make(RosterSlots, len(rosterSlots))
	for pos, n := range rosterSlots {
		if pos == "SP" || pos == "RP" || pos == utilName {
			continue
		}
		out[pos] = n
	}
	return out
}

func buildValuations(players []*Player) []domain.PlayerValuation {
	out := make([]domain.PlayerValuation, 0, len(players))
	for _, p := range byStableID(players) {
		out = append(out, domain.PlayerValuation{
			PlayerID:        p.ID,
			Name:            p.Name,
			PrimaryPosition: p.Computed.PrimaryPosition,
			Role:            p.Role,
			RawZ:            p.Computed.RawZ,
			NormalizedZ:     p.Computed.NormalizedZ,
			TotalZ:          p.Computed.TotalZ,
			DollarValues:    p.Computed.DollarValues,
			TotalDollars:    p.Computed.TotalDollars,
			Tier:            p.Computed.Tier,
		})
	}
	return out
}

func buildSummaries(pools []*PositionPool) []domain.PositionSummary {
	out := make([]domain.PositionSummary, 0, len(pools))
	for _, pool := range pools {
		var totalBudget float64
		for _, v := range pool.CategoryBudgets {
			totalBudget += v
		}
		out = append(out, domain.PositionSummary{
			Position:             pool.Position,
			Role:                 pool.Role,
			RosteredCount:        len(pool.Rostered),
			ReplacementTierCount: len(pool.Replacement),
			TotalBudget:          totalBudget,
			DollarsPerZ:          pool.DollarsPerZ,
			ReplacementBaseline:  pool.RLPRawZAvg,
			Deficit:              pool.Deficit,
		})
	}
	return out
}
