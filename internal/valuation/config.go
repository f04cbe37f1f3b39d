package valuation

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// BudgetConfig is the single immutable configuration object spec.md §9
// calls for: every tunable of the allocation and convergence stages in
// one struct, enumerated rather than scattered.
type BudgetConfig struct {
	HitterPitcherSplit    float64            `yaml:"hitter_pitcher_split" validate:"gt=0,lt=1"`
	SPRPSplit             float64            `yaml:"sp_rp_split" validate:"gt=0,lt=1"`
	HitterCategoryWeights map[string]float64 `yaml:"hitter_category_weights" validate:"required"`
	SPCategoryWeights     map[string]float64 `yaml:"sp_category_weights" validate:"required"`
	RPCategoryWeights     map[string]float64 `yaml:"rp_category_weights" validate:"required"`
	PAWeights             map[string]float64 `yaml:"pa_weights"`
	ReplacementTierPct    float64            `yaml:"replacement_tier_pct" validate:"gt=0,lt=1"`
	MinReplacementTierSize int               `yaml:"min_replacement_tier_size" validate:"gt=0"`
	MaxIterations         int                `yaml:"max_iterations" validate:"gt=0"`
	ConvergenceThreshold  int                `yaml:"convergence_threshold" validate:"gte=0"`
	BenchReserve          float64            `yaml:"bench_reserve" validate:"gte=0"`
	UtilPositionName      string             `yaml:"util_position_name"`
	InvertedCategories    map[string]bool    `yaml:"-"`
}

// DefaultBudgetConfig returns the spec.md-documented defaults.
func DefaultBudgetConfig() BudgetConfig {
	return BudgetConfig{
		HitterPitcherSplit: 0.70,
		SPRPSplit:          0.50,
		HitterCategoryWeights: map[string]float64{
			"R": 0.125, "HR": 0.125, "RBI": 0.125, "SBN": 0.125,
			"OBP": 0.25, "SLG": 0.25,
		},
		SPCategoryWeights: map[string]float64{
			"K9": 0.40, "ERA": 0.15, "WHIP": 0.15, "OUTS": 0.15, "QS": 0.15,
		},
		RPCategoryWeights: map[string]float64{
			"K9": 0.40, "ERA": 0.15, "WHIP": 0.15, "OUTS": 0.15, "SVHD": 0.15,
		},
		PAWeights:              map[string]float64{"C": 500, "default": 600},
		ReplacementTierPct:     0.03,
		MinReplacementTierSize: 3,
		MaxIterations:          10,
		ConvergenceThreshold:   0,
		BenchReserve:           10,
		UtilPositionName:       "UTIL",
		InvertedCategories:     map[string]bool{"ERA": true, "WHIP": true},
	}
}

// PAWeight returns the plate-appearance weight for a position, falling
// back to the configured default (spec.md §4.5: C=500, others=600).
func (c BudgetConfig) PAWeight(position string) float64 {
	if w, ok := c.PAWeights[position]; ok {
		return w
	}
	if w, ok := c.PAWeights["default"]; ok {
		return w
	}
	return 600
}

var validate = validator.New()

// Validate checks the struct tags and the category-weight sum invariant
// spec.md §4.5 requires ("Sum must equal 1.0"). A violation is a BadConfig
// error per spec.md §7.
func (c BudgetConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("budget config: %w", err)
	}
	if err := validateWeightSum("hitter_category_weights", c.HitterCategoryWeights); err != nil {
		return err
	}
	if err := validateWeightSum("sp_category_weights", c.SPCategoryWeights); err != nil {
		return err
	}
	if err := validateWeightSum("rp_category_weights", c.RPCategoryWeights); err != nil {
		return err
	}
	return nil
}

func validateWeightSum(name string, weights map[string]float64) error {
	var sum float64
	for _, w := range weights {
		sum += w
	}
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("%s must sum to 1.0, got %.4f", name, sum)
	}
	return nil
}

// WithInvertedCategories returns a copy of c with InvertedCategories set
// from the league summary's scoring.reverse list, which is the source of
// truth for which categories are inverted (spec.md §4.3).
func (c BudgetConfig) WithInvertedCategories(reverse []string) BudgetConfig {
	inv := make(map[string]bool, len(reverse))
	for _, cat := range reverse {
		inv[cat] = true
	}
	c.InvertedCategories = inv
	return c
}
