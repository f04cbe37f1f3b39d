// Package ingest decodes the upstream projection and league artifacts
// (spec.md §6) into the domain records the valuation kernel consumes.
package ingest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v2"

	"isxcli/internal/valuation"
	"isxcli/pkg/contracts/domain"
)

// hitterWire mirrors the FanGraphs-derived batters_matched.json /
// batters_merged.json record shape. Only the fields the engine consumes
// are declared; anything else in the source file is ignored by
// json.Unmarshal.
type hitterWire struct {
	IDESPN        string  `json:"id_espn"`
	Name          string  `json:"name"`
	ProTeam       string  `json:"pro_team"`
	PrimaryPos    string  `json:"primary_position"`
	EligibleSlots []string `json:"eligible_slots"`
	Stats         struct {
		Projections map[string]float64 `json:"projections"`
	} `json:"stats"`
}

// pitcherWire mirrors pitchers_matched.json / pitchers_merged.json.
type pitcherWire struct {
	IDESPN        string   `json:"id_espn"`
	Name          string   `json:"name"`
	ProTeam       string   `json:"pro_team"`
	PrimaryPos    string   `json:"primary_position"`
	EligibleSlots []string `json:"eligible_slots"`
	Stats         struct {
		Projections map[string]float64 `json:"projections"`
	} `json:"stats"`
}

// leagueWire mirrors the subset of league_<id>_summary.json the engine
// consumes.
type leagueWire struct {
	Teams             int     `json:"teams"`
	AuctionBudget     float64 `json:"auctionBudget"`
	AcquisitionBudget float64 `json:"acquisitionBudget"`
	Scoring           struct {
		Batting  []string `json:"batting"`
		Pitching []string `json:"pitching"`
		Reverse  []string `json:"reverse"`
	} `json:"scoring"`
	RosterSlots map[string]int `json:"rosterSlots"`
}

// LoadHitters reads a batters_matched.json / batters_merged.json file
// and returns the decoded records. FanGraphs projection keys land in
// Projections verbatim; the "K/9" pitching key does not appear here.
func LoadHitters(path string) ([]domain.HitterRecord, error) {
	var wire []hitterWire
	if err := decodeFile(path, &wire); err != nil {
		return nil, fmt.Errorf("failed to load hitters from %s: %w", path, err)
	}

	records := make([]domain.HitterRecord, 0, len(wire))
	for _, w := range wire {
		records = append(records, domain.HitterRecord{
			ID:            w.IDESPN,
			Name:          w.Name,
			Team:          w.ProTeam,
			PrimaryPos:    w.PrimaryPos,
			EligibleSlots: w.EligibleSlots,
			Projections:   w.Stats.Projections,
		})
	}

	slog.Info("loaded hitter projections", slog.String("path", path), slog.Int("count", len(records)))
	return records, nil
}

// LoadPitchers reads a pitchers_matched.json / pitchers_merged.json file
// and returns the decoded records. OUTS and SVHD are derived later by
// valuation.NormalizePitchers when the source omits them.
func LoadPitchers(path string) ([]domain.PitcherRecord, error) {
	var wire []pitcherWire
	if err := decodeFile(path, &wire); err != nil {
		return nil, fmt.Errorf("failed to load pitchers from %s: %w", path, err)
	}

	records := make([]domain.PitcherRecord, 0, len(wire))
	for _, w := range wire {
		proj := normalizeK9Key(w.Stats.Projections)

		records = append(records, domain.PitcherRecord{
			ID:            w.IDESPN,
			Name:          w.Name,
			Team:          w.ProTeam,
			PrimaryPos:    w.PrimaryPos,
			EligibleSlots: w.EligibleSlots,
			Projections:   proj,
		})
	}

	slog.Info("loaded pitcher projections", slog.String("path", path), slog.Int("count", len(records)))
	return records, nil
}

// LoadLeagueSummary reads league_<id>_summary.json.
func LoadLeagueSummary(path string) (domain.LeagueSummary, error) {
	var w leagueWire
	if err := decodeFile(path, &w); err != nil {
		return domain.LeagueSummary{}, fmt.Errorf("failed to load league summary from %s: %w", path, err)
	}

	summary := domain.LeagueSummary{
		Teams:             w.Teams,
		AuctionBudget:     w.AuctionBudget,
		AcquisitionBudget: w.AcquisitionBudget,
		Scoring: domain.ScoringSettings{
			Batting:  w.Scoring.Batting,
			Pitching: w.Scoring.Pitching,
			Reverse:  w.Scoring.Reverse,
		},
		RosterSlots: w.RosterSlots,
	}

	slog.Info("loaded league summary", slog.String("path", path), slog.Int("teams", summary.Teams))
	return summary, nil
}

// LoadBudgetConfig reads the YAML budget configuration named by
// config.PathsConfig.BudgetConfig. The file is optional: when it does not
// exist, valuation.DefaultBudgetConfig is returned. Any field the file
// omits keeps the value from valuation.DefaultBudgetConfig, and the merged
// result is run through BudgetConfig.Validate before being returned.
func LoadBudgetConfig(path string) (valuation.BudgetConfig, error) {
	cfg := valuation.DefaultBudgetConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		slog.Info("no budget configuration file, using defaults", slog.String("path", path))
		return cfg, nil
	}
	if err != nil {
		return valuation.BudgetConfig{}, fmt.Errorf("failed to read budget config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return valuation.BudgetConfig{}, fmt.Errorf("failed to parse budget config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return valuation.BudgetConfig{}, fmt.Errorf("invalid budget config %s: %w", path, err)
	}

	slog.Info("loaded budget configuration", slog.String("path", path))
	return cfg, nil
}

func decodeFile(path string, v interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	return dec.Decode(v)
}

// normalizeK9Key rewrites the "K/9" projection key to "K9" so it survives
// as a Go map key and matches the category names budget config weights
// key off of. The source map is not mutated; a copy is returned.
func normalizeK9Key(src map[string]float64) map[string]float64 {
	proj := make(map[string]float64, len(src))
	for k, v := range src {
		if k == "K/9" {
			proj["K9"] = v
			continue
		}
		proj[k] = v
	}
	return proj
}

