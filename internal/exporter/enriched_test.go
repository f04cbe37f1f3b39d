package exporter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"isxcli/pkg/contracts/domain"
)

func TestExportEnrichedJSONPreservesInputAndAppendsValuations(t *testing.T) {
	tempDir := t.TempDir()
	inputPath := filepath.Join(tempDir, "batters_matched.json")
	outputPath := filepath.Join(tempDir, "hitters.json")

	input := `[
		{"id_espn": "h1", "name": "Sam Batter", "pro_team": "NYY", "stats": {"projections": {"HR": 30}}},
		{"id_espn": "h2", "name": "No Pool", "pro_team": "BOS", "stats": {"projections": {"HR": 5}}}
	]`
	require.NoError(t, os.WriteFile(inputPath, []byte(input), 0644))

	valuations := []domain.PlayerValuation{
		{
			PlayerID:     "h1",
			RawZ:         map[string]float64{"HR": 1.2},
			NormalizedZ:  map[string]float64{"HR": 1.2},
			TotalZ:       1.2,
			DollarValues: map[string]float64{"HR": 18.5},
			TotalDollars: 18.5,
			Tier:         domain.TierRostered,
		},
	}

	require.NoError(t, ExportEnrichedJSON(inputPath, outputPath, valuations))

	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)

	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 2)

	h1 := records[0]
	assert.Equal(t, "Sam Batter", h1["name"])
	stats := h1["stats"].(map[string]interface{})
	assert.NotNil(t, stats["projections"])
	valuation := stats["valuations"].(map[string]interface{})
	assert.Equal(t, "ROSTERED", valuation["tier"])
	assert.Equal(t, 18.5, valuation["total_dollars"])

	h2 := records[1]
	stats2 := h2["stats"].(map[string]interface{})
	_, hasValuations := stats2["valuations"]
	assert.False(t, hasValuations, "record with no matching valuation should be left untouched")
}
