package model

import (
	"sort"

	"github.com/google/uuid"
)

// Offcut represents a usable rectangular remnant left on a sheet after
// cutting. Kickplate stock is expensive, so remnants above the size
// thresholds go back on the rack as reusable stock.
type Offcut struct {
	ID         string `json:"id"`
	SheetIndex int    `json:"sheet_index"` // Index of the source sheet in the result
	Material   string `json:"material"`
	X          int    `json:"x_mm"` // Position on the sheet (mm from left)
	Y          int    `json:"y_mm"` // Position on the sheet (mm from top)
	Width      int    `json:"width_mm"`
	Height     int    `json:"height_mm"`
}

// Area returns the area of the offcut in mm².
func (o Offcut) Area() int {
	return o.Width * o.Height
}

// MinOffcutDimension is the minimum width or height (in mm) for a remnant
// to be considered a usable offcut. Remnants smaller than this are waste.
const MinOffcutDimension = 100

// MinOffcutArea is the minimum area (in mm²) for a remnant to be usable.
const MinOffcutArea = 50000 // 500mm x 100mm equivalent

// DetectOffcuts identifies the remnant strips on one sheet that are large
// enough to reuse: the strip right of all placements and the strip below
// them, separated from the pieces by one kerf.
func DetectOffcuts(sheet Sheet, cfg SheetConfig) []Offcut {
	if len(sheet.Placements) == 0 {
		return []Offcut{{
			ID:         uuid.New().String()[:8],
			SheetIndex: sheet.Index,
			Material:   sheet.Material,
			Width:      cfg.StockWidth,
			Height:     cfg.StockHeight,
		}}
	}

	// Bounding box of all placements, inflated by the kerf the saw takes
	// when freeing the remnant.
	var maxRight, maxBottom int
	for _, p := range sheet.Placements {
		if right := p.X + p.PlacedWidth + cfg.Kerf; right > maxRight {
			maxRight = right
		}
		if bottom := p.Y + p.PlacedHeight + cfg.Kerf; bottom > maxBottom {
			maxBottom = bottom
		}
	}

	var offcuts []Offcut

	// Right strip: full sheet height, right of every placement.
	rightW := cfg.StockWidth - maxRight
	if rightW >= MinOffcutDimension && cfg.StockHeight >= MinOffcutDimension && rightW*cfg.StockHeight >= MinOffcutArea {
		offcuts = append(offcuts, Offcut{
			ID:         uuid.New().String()[:8],
			SheetIndex: sheet.Index,
			Material:   sheet.Material,
			X:          maxRight,
			Y:          0,
			Width:      rightW,
			Height:     cfg.StockHeight,
		})
	}

	// Bottom strip: below every placement, stopping at the right strip.
	bottomH := cfg.StockHeight - maxBottom
	bottomW := maxRight
	if bottomW > cfg.StockWidth {
		bottomW = cfg.StockWidth
	}
	if bottomH >= MinOffcutDimension && bottomW >= MinOffcutDimension && bottomH*bottomW >= MinOffcutArea {
		offcuts = append(offcuts, Offcut{
			ID:         uuid.New().String()[:8],
			SheetIndex: sheet.Index,
			Material:   sheet.Material,
			X:          0,
			Y:          maxBottom,
			Width:      bottomW,
			Height:     bottomH,
		})
	}

	sort.Slice(offcuts, func(i, j int) bool {
		return offcuts[i].Area() > offcuts[j].Area()
	})

	return offcuts
}

// DetectAllOffcuts finds offcuts across all sheets of a packing result.
func DetectAllOffcuts(result PackResult, cfg SheetConfig) []Offcut {
	var all []Offcut
	for _, sheet := range result.Sheets {
		all = append(all, DetectOffcuts(sheet, cfg)...)
	}
	return all
}

// TotalOffcutArea returns the total area of all offcuts in mm².
func TotalOffcutArea(offcuts []Offcut) int {
	var total int
	for _, o := range offcuts {
		total += o.Area()
	}
	return total
}
