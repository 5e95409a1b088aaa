package engine

import (
	"fmt"

	"github.com/piwi3910/PlateCut/internal/model"
)

// Scenario names one sheet configuration to evaluate against an order.
type Scenario struct {
	Name   string
	Config model.SheetConfig
}

// ScenarioResult holds the packing outcome and summary statistics for a
// single scenario.
type ScenarioResult struct {
	Scenario     Scenario
	Result       model.PackResult
	SheetsUsed   int
	PlacedCount  int
	SkippedCount int
	WasteRatio   float64
}

// CompareScenarios packs the same pieces under each scenario and
// returns the results in scenario order, enabling side-by-side
// comparison of blade widths, stock sizes or grain constraints. Any
// scenario failing validation or capacity fails the whole comparison.
func CompareScenarios(scenarios []Scenario, pieces []model.Piece) ([]ScenarioResult, error) {
	results := make([]ScenarioResult, 0, len(scenarios))

	for _, sc := range scenarios {
		result, err := PackPieces(pieces, sc.Config)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", sc.Name, err)
		}

		waste := 0.0
		if len(result.Sheets) > 0 {
			waste = 1 - result.OverallEfficiency
		}

		results = append(results, ScenarioResult{
			Scenario:     sc,
			Result:       result,
			SheetsUsed:   len(result.Sheets),
			PlacedCount:  result.PlacedCount(),
			SkippedCount: len(result.Skipped),
			WasteRatio:   waste,
		})
	}

	return results, nil
}

// BuildDefaultScenarios generates what-if scenarios around the current
// configuration, varying the parameters that most often move the sheet
// count on a real order.
func BuildDefaultScenarios(base model.SheetConfig) []Scenario {
	scenarios := []Scenario{
		{Name: "Current settings", Config: base},
	}

	// Scenario: thinner blade
	if base.Kerf > 1 {
		tight := base
		tight.Kerf = base.Kerf / 2
		scenarios = append(scenarios, Scenario{
			Name:   fmt.Sprintf("Kerf %dmm (half)", tight.Kerf),
			Config: tight,
		})
	}

	// Scenario: lift the grain lock so pieces may rotate
	if base.Grain != model.GrainNone {
		free := base
		free.Grain = model.GrainNone
		scenarios = append(scenarios, Scenario{
			Name:   "No grain lock",
			Config: free,
		})
	}

	// Scenario: feed the stock turned 90 degrees
	if base.StockWidth != base.StockHeight {
		turned := base
		turned.StockWidth, turned.StockHeight = base.StockHeight, base.StockWidth
		scenarios = append(scenarios, Scenario{
			Name:   fmt.Sprintf("Turned stock %dx%dmm", turned.StockWidth, turned.StockHeight),
			Config: turned,
		})
	}

	return scenarios
}

// KerfSweep packs the same pieces at each kerf value, reporting how the
// blade width moves sheet count and efficiency.
func KerfSweep(pieces []model.Piece, base model.SheetConfig, kerfs []int) ([]ScenarioResult, error) {
	scenarios := make([]Scenario, 0, len(kerfs))
	for _, k := range kerfs {
		cfg := base
		cfg.Kerf = k
		scenarios = append(scenarios, Scenario{
			Name:   fmt.Sprintf("Kerf %dmm", k),
			Config: cfg,
		})
	}
	return CompareScenarios(scenarios, pieces)
}
