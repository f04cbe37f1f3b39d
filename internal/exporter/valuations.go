package exporter

import (
	"sort"

	"isxcli/internal/config"
	"isxcli/pkg/contracts/domain"
)

// ValuationExporter writes the valuation engine's output artifacts:
// valuations.csv and position_summary.csv (spec.md §6).
type ValuationExporter struct {
	csvWriter *CSVWriter
}

// NewValuationExporter creates a new valuation artifact exporter.
func NewValuationExporter(paths *config.Paths) *ValuationExporter {
	return &ValuationExporter{
		csvWriter: NewCSVWriter(paths),
	}
}

var valuationBaseHeaders = []string{"player_id", "name", "position", "role", "total_z", "dollar_value", "tier"}

// ExportValuations writes one row per player, sorted by total dollar value
// descending with ties broken by player_id ascending. Category columns
// (z_<CAT>, dollar_<CAT>) are derived from the union of categories present
// across all players; a player missing a category gets a blank cell.
func (e *ValuationExporter) ExportValuations(valuations []domain.PlayerValuation, filePath string) error {
	sorted := make([]domain.PlayerValuation, len(valuations))
	copy(sorted, valuations)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].TotalDollars != sorted[j].TotalDollars {
			return sorted[i].TotalDollars > sorted[j].TotalDollars
		}
		return sorted[i].PlayerID < sorted[j].PlayerID
	})

	categories := unionCategories(sorted)

	headers := make([]string, 0, len(valuationBaseHeaders)+2*len(categories))
	headers = append(headers, valuationBaseHeaders...)
	for _, cat := range categories {
		headers = append(headers, "z_"+cat)
	}
	for _, cat := range categories {
		headers = append(headers, "dollar_"+cat)
	}

	rows := make([][]string, 0, len(sorted))
	for _, v := range sorted {
		row := []string{
			v.PlayerID,
			v.Name,
			v.PrimaryPosition,
			string(v.Role),
			formatFloat(v.TotalZ),
			formatFloat(v.TotalDollars),
			string(v.Tier),
		}
		for _, cat := range categories {
			row = append(row, categoryCell(v.NormalizedZ, cat))
		}
		for _, cat := range categories {
			row = append(row, categoryCell(v.DollarValues, cat))
		}
		rows = append(rows, row)
	}

	return e.csvWriter.WriteSimpleCSV(filePath, headers, rows)
}

var positionSummaryBaseHeaders = []string{"position", "role", "rostered_count", "replacement_tier_count", "total_budget", "deficit"}

// ExportPositionSummaries writes one diagnostic row per position pool,
// sorted by position name, with dollars_per_z_<CAT> and
// replacement_baseline_<CAT> columns for every category the pool set carries.
func (e *ValuationExporter) ExportPositionSummaries(summaries []domain.PositionSummary, filePath string) error {
	sorted := make([]domain.PositionSummary, len(summaries))
	copy(sorted, summaries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Position < sorted[j].Position
	})

	categories := unionSummaryCategories(sorted)

	headers := make([]string, 0, len(positionSummaryBaseHeaders)+2*len(categories))
	headers = append(headers, positionSummaryBaseHeaders...)
	for _, cat := range categories {
		headers = append(headers, "dollars_per_z_"+cat)
	}
	for _, cat := range categories {
		headers = append(headers, "replacement_baseline_"+cat)
	}

	rows := make([][]string, 0, len(sorted))
	for _, s := range sorted {
		row := []string{
			s.Position,
			string(s.Role),
			formatInt(int64(s.RosteredCount)),
			formatInt(int64(s.ReplacementTierCount)),
			formatFloat(s.TotalBudget),
			formatBool(s.Deficit),
		}
		for _, cat := range categories {
			row = append(row, categoryCell(s.DollarsPerZ, cat))
		}
		for _, cat := range categories {
			row = append(row, categoryCell(s.ReplacementBaseline, cat))
		}
		rows = append(rows, row)
	}

	return e.csvWriter.WriteSimpleCSV(filePath, headers, rows)
}

func categoryCell(values map[string]float64, cat string) string {
	v, ok := values[cat]
	if !ok {
		return ""
	}
	return formatFloat(v)
}

func unionCategories(valuations []domain.PlayerValuation) []string {
	seen := make(map[string]bool)
	for _, v := range valuations {
		for cat := range v.NormalizedZ {
			seen[cat] = true
		}
	}
	return sortedKeys(seen)
}

func unionSummaryCategories(summaries []domain.PositionSummary) []string {
	seen := make(map[string]bool)
	for _, s := range summaries {
		for cat := range s.DollarsPerZ {
			seen[cat] = true
		}
	}
	return sortedKeys(seen)
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
