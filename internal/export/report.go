package export

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/piwi3910/PlateCut/internal/model"
)

// WriteReport renders a self-contained HTML efficiency report: a bar
// chart of per-sheet utilization with the run totals in the chart
// subtitle. The output opens directly in a browser, no server needed.
func WriteReport(w io.Writer, result model.PackResult) error {
	if len(result.Sheets) == 0 {
		return fmt.Errorf("no sheets to report on")
	}

	labels := make([]string, len(result.Sheets))
	values := make([]opts.BarData, len(result.Sheets))
	for i, sheet := range result.Sheets {
		labels[i] = fmt.Sprintf("Sheet %d (%s)", i+1, sheet.Material)
		efficiency := 0.0
		if i < len(result.PerSheetEfficiency) {
			efficiency = result.PerSheetEfficiency[i]
		}
		values[i] = opts.BarData{Value: roundPercent(efficiency)}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Sheet Utilization",
			Subtitle: fmt.Sprintf("%d sheets, %d pieces placed, %d skipped, overall efficiency %.1f%%",
				len(result.Sheets), result.PlacedCount(), len(result.Skipped), result.OverallEfficiency*100),
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Efficiency %", Max: 100}),
	)
	bar.SetXAxis(labels).AddSeries("Efficiency %", values)

	return bar.Render(w)
}

// roundPercent converts a [0,1] ratio to a percentage with one decimal.
func roundPercent(ratio float64) float64 {
	return float64(int(ratio*1000+0.5)) / 10
}
