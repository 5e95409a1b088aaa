package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/piwi3910/PlateCut/internal/model"
)

// WriteCutlist renders the packing result as a cutting-checklist CSV:
// one row per placement, in the order pieces were placed on each sheet,
// so the saw operator works top of the list to bottom.
func WriteCutlist(w io.Writer, result model.PackResult) error {
	cw := csv.NewWriter(w)

	header := []string{"Sheet", "Material", "Piece", "Part Code", "X (mm)", "Y (mm)", "Width (mm)", "Height (mm)", "Rotated"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write cutlist header: %w", err)
	}

	for _, sheet := range result.Sheets {
		for i, p := range sheet.Placements {
			rotated := "no"
			if p.Rotated {
				rotated = "yes"
			}
			row := []string{
				fmt.Sprintf("%d", sheet.Index+1),
				sheet.Material,
				fmt.Sprintf("%d", i+1),
				p.PartCode,
				fmt.Sprintf("%d", p.X),
				fmt.Sprintf("%d", p.Y),
				fmt.Sprintf("%d", p.PlacedWidth),
				fmt.Sprintf("%d", p.PlacedHeight),
				rotated,
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write cutlist row: %w", err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
