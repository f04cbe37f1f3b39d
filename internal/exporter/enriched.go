package exporter

import (
	"encoding/json"
	"fmt"
	"os"

	"isxcli/pkg/contracts/domain"
)

// EnrichedValuation is the stats.valuations sub-record appended to each
// re-emitted hitter/pitcher record (spec.md §6): the computed Z vectors,
// dollar breakdown, total_z, total_dollars, and tier.
type EnrichedValuation struct {
	RawZ         map[string]float64 `json:"raw_z"`
	NormalizedZ  map[string]float64 `json:"normalized_z"`
	TotalZ       float64            `json:"total_z"`
	DollarValues map[string]float64 `json:"dollar_values"`
	TotalDollars float64            `json:"total_dollars"`
	Tier         domain.Tier        `json:"tier"`
}

// ExportEnrichedJSON re-emits the upstream record file at inputPath with
// each record's stats.valuations populated from valuations (keyed by
// id_espn), preserving every other field the source file carries
// untouched. Records whose id_espn has no matching valuation are written
// back unchanged.
func ExportEnrichedJSON(inputPath, outputPath string, valuations []domain.PlayerValuation) error {
	byID := make(map[string]domain.PlayerValuation, len(valuations))
	for _, v := range valuations {
		byID[v.PlayerID] = v
	}

	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", inputPath, err)
	}

	var records []map[string]interface{}
	if err := json.Unmarshal(raw, &records); err != nil {
		return fmt.Errorf("failed to decode %s: %w", inputPath, err)
	}

	for _, record := range records {
		id, _ := record["id_espn"].(string)
		v, ok := byID[id]
		if !ok {
			continue
		}

		stats, ok := record["stats"].(map[string]interface{})
		if !ok {
			stats = make(map[string]interface{})
			record["stats"] = stats
		}
		stats["valuations"] = EnrichedValuation{
			RawZ:         v.RawZ,
			NormalizedZ:  v.NormalizedZ,
			TotalZ:       v.TotalZ,
			DollarValues: v.DollarValues,
			TotalDollars: v.TotalDollars,
			Tier:         v.Tier,
		}
	}

	out, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode enriched records: %w", err)
	}
	if err := os.WriteFile(outputPath, out, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}
	return nil
}
