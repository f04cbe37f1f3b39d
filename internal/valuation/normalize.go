package valuation

import (
	"isxcli/internal/trperrors"
	"isxcli/pkg/contracts/domain"
)

// NormalizeHitters projects raw hitter records into engine-facing Players,
// deriving sbn = sb - cs when the upstream feed didn't precompute it
// (Stage A, spec.md §2). Shape errors are collected rather than returned
// immediately, per spec.md §7's aggregate propagation policy.
func NormalizeHitters(records []domain.HitterRecord) ([]*Player, *trperrors.MultiError) {
	merr := &trperrors.MultiError{}
	players := make([]*Player, 0, len(records))

	for _, rec := range records {
		if rec.ID == "" {
			merr.Add(trperrors.MalformedInput("<unknown>", "hitter record missing id"))
			continue
		}
		if len(rec.EligibleSlots) == 0 {
			merr.Add(trperrors.MalformedInput(rec.ID, "hitter record missing eligible_slots"))
			continue
		}

		stats := HitterStats{
			PA:      rec.Projections["PA"],
			AB:      rec.Projections["AB"],
			R:       rec.Projections["R"],
			HR:      rec.Projections["HR"],
			RBI:     rec.Projections["RBI"],
			OBP:     rec.Projections["OBP"],
			SLG:     rec.Projections["SLG"],
			WRCPlus: rec.Projections["wRC+"],
		}
		if sbn, ok := rec.Projections["SBN"]; ok {
			stats.SBN = sbn
		} else {
			stats.SBN = rec.Projections["SB"] - rec.Projections["CS"]
		}

		players = append(players, &Player{
			ID:        rec.ID,
			Name:      rec.Name,
			Team:      rec.Team,
			Positions: rec.EligibleSlots,
			Role:      domain.RoleHitter,
			Hitter:    stats,
		})
	}
	return players, merr
}

// NormalizePitchers projects raw pitcher records into engine-facing
// Players, deriving outs = ip*3 and svhd = sv+hld when absent, and zeroing
// role-foreign categories (SP carries svhd=0, RP carries qs=0; spec.md §3).
func NormalizePitchers(records []domain.PitcherRecord) ([]*Player, *trperrors.MultiError) {
	merr := &trperrors.MultiError{}
	players := make([]*Player, 0, len(records))

	for _, rec := range records {
		if rec.ID == "" {
			merr.Add(trperrors.MalformedInput("<unknown>", "pitcher record missing id"))
			continue
		}
		if len(rec.EligibleSlots) == 0 {
			merr.Add(trperrors.MalformedInput(rec.ID, "pitcher record missing eligible_slots"))
			continue
		}

		role := pitcherRole(rec.EligibleSlots)

		outs, ok := rec.Projections["OUTS"]
		if !ok {
			outs = rec.Projections["IP"] * 3
		}

		svhd, ok := rec.Projections["SVHD"]
		if !ok {
			svhd = rec.Projections["SV"] + rec.Projections["HLD"]
		}

		// internal/ingest rewrites the upstream "K/9" key to "K9"; records
		// built elsewhere may still carry "K/9".
		k9, ok := rec.Projections["K9"]
		if !ok {
			k9 = rec.Projections["K/9"]
		}

		stats := PitcherStats{
			Outs: outs,
			ERA:  rec.Projections["ERA"],
			WHIP: rec.Projections["WHIP"],
			K9:   k9,
			FIP:  rec.Projections["FIP"],
		}
		if role == domain.RoleSP {
			stats.QS = rec.Projections["QS"]
			stats.SVHD = 0
		} else {
			stats.QS = 0
			stats.SVHD = svhd
		}

		players = append(players, &Player{
			ID:        rec.ID,
			Name:      rec.Name,
			Team:      rec.Team,
			Positions: rec.EligibleSlots,
			Role:      role,
			Pitcher:   stats,
		})
	}
	return players, merr
}

// pitcherRole derives SP/RP from the eligible_slots set: a player eligible
// at SP is valued as a starter, otherwise as a reliever.
func pitcherRole(eligible []string) domain.Role {
	for _, pos := range eligible {
		if pos == "SP" {
			return domain.RoleSP
		}
	}
	return domain.RoleRP
}
