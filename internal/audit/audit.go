// Package audit independently re-verifies packing results against the
// layout rules the engine promises: piece accounting, sheet bounds,
// kerf clearance, grain and rotation legality, and efficiency ranges.
// It never trusts the engine's own bookkeeping; every check works from
// the raw placements.
package audit

import (
	"fmt"
	"math"

	"github.com/piwi3910/PlateCut/internal/model"
)

// Violation names one broken rule found in a result.
type Violation struct {
	Rule   string `json:"rule"`
	Detail string `json:"detail"`
}

func (v Violation) String() string {
	return v.Rule + ": " + v.Detail
}

// Rule names reported in violations.
const (
	RuleAccounting = "accounting"
	RuleBounds     = "bounds"
	RuleKerf       = "kerf"
	RuleRotation   = "rotation"
	RuleMaterial   = "material"
	RuleIndexing   = "indexing"
	RuleEfficiency = "efficiency"
)

// efficiencyTolerance absorbs float rounding when recomputed ratios
// are compared against the reported ones.
const efficiencyTolerance = 1e-9

// Verify checks a packing result against the pieces and configuration
// that produced it and returns every violation found. An empty slice
// means the result is sound.
func Verify(pieces []model.Piece, cfg model.SheetConfig, result model.PackResult) []Violation {
	var violations []Violation

	byID := make(map[string]model.Piece, len(pieces))
	for _, p := range pieces {
		byID[p.ID] = p
	}

	violations = append(violations, checkAccounting(pieces, byID, result)...)
	violations = append(violations, checkPlacements(byID, cfg, result)...)
	violations = append(violations, checkEfficiency(cfg, result)...)

	return violations
}

// checkAccounting verifies every input piece appears exactly once
// across placements and the skipped list, and that nothing else does.
func checkAccounting(pieces []model.Piece, byID map[string]model.Piece, result model.PackResult) []Violation {
	var violations []Violation

	seen := make(map[string]int, len(pieces))
	for _, sheet := range result.Sheets {
		for _, p := range sheet.Placements {
			seen[p.PieceID]++
			if _, known := byID[p.PieceID]; !known {
				violations = append(violations, Violation{
					Rule:   RuleAccounting,
					Detail: fmt.Sprintf("placement references unknown piece %q", p.PieceID),
				})
			}
		}
	}
	for _, s := range result.Skipped {
		seen[s.PieceID]++
		if _, known := byID[s.PieceID]; !known {
			violations = append(violations, Violation{
				Rule:   RuleAccounting,
				Detail: fmt.Sprintf("skipped list references unknown piece %q", s.PieceID),
			})
		}
	}

	for _, p := range pieces {
		switch n := seen[p.ID]; {
		case n == 0:
			violations = append(violations, Violation{
				Rule:   RuleAccounting,
				Detail: fmt.Sprintf("piece %q is missing from the result", p.ID),
			})
		case n > 1:
			violations = append(violations, Violation{
				Rule:   RuleAccounting,
				Detail: fmt.Sprintf("piece %q appears %d times in the result", p.ID, n),
			})
		}
	}

	return violations
}

// checkPlacements verifies bounds, kerf clearance, rotation legality,
// dimension consistency, material grouping and index alignment for
// every placement.
func checkPlacements(byID map[string]model.Piece, cfg model.SheetConfig, result model.PackResult) []Violation {
	var violations []Violation

	for si, sheet := range result.Sheets {
		if sheet.Index != si {
			violations = append(violations, Violation{
				Rule:   RuleIndexing,
				Detail: fmt.Sprintf("sheet at position %d carries index %d", si, sheet.Index),
			})
		}

		for _, p := range sheet.Placements {
			if p.SheetIndex != sheet.Index {
				violations = append(violations, Violation{
					Rule:   RuleIndexing,
					Detail: fmt.Sprintf("piece %q on sheet %d carries sheet index %d", p.PieceID, sheet.Index, p.SheetIndex),
				})
			}

			if p.X < 0 || p.Y < 0 ||
				p.X+p.PlacedWidth > cfg.StockWidth || p.Y+p.PlacedHeight > cfg.StockHeight {
				violations = append(violations, Violation{
					Rule: RuleBounds,
					Detail: fmt.Sprintf("piece %q at (%d,%d) %dx%dmm exceeds the %dx%dmm sheet",
						p.PieceID, p.X, p.Y, p.PlacedWidth, p.PlacedHeight, cfg.StockWidth, cfg.StockHeight),
				})
			}

			piece, known := byID[p.PieceID]
			if !known {
				continue // already reported by accounting
			}

			if piece.Material != sheet.Material {
				violations = append(violations, Violation{
					Rule: RuleMaterial,
					Detail: fmt.Sprintf("piece %q (%s) placed on a %s sheet",
						p.PieceID, piece.Material, sheet.Material),
				})
			}

			switch {
			case p.Rotated:
				if !cfg.AllowsRotation(piece) {
					violations = append(violations, Violation{
						Rule:   RuleRotation,
						Detail: fmt.Sprintf("piece %q is rotated but rotation is not allowed", p.PieceID),
					})
				}
				if p.PlacedWidth != piece.Height || p.PlacedHeight != piece.Width {
					violations = append(violations, Violation{
						Rule: RuleRotation,
						Detail: fmt.Sprintf("rotated piece %q placed as %dx%dmm, expected %dx%dmm",
							p.PieceID, p.PlacedWidth, p.PlacedHeight, piece.Height, piece.Width),
					})
				}
			default:
				if p.PlacedWidth != piece.Width || p.PlacedHeight != piece.Height {
					violations = append(violations, Violation{
						Rule: RuleRotation,
						Detail: fmt.Sprintf("piece %q placed as %dx%dmm, expected %dx%dmm",
							p.PieceID, p.PlacedWidth, p.PlacedHeight, piece.Width, piece.Height),
					})
				}
			}
		}

		violations = append(violations, checkKerfClearance(sheet, cfg)...)
	}

	return violations
}

// checkKerfClearance verifies every pair of placements on one sheet is
// separated by at least the kerf on some axis — equivalent to neither
// rectangle overlapping the other after inflating both by kerf/2 per
// edge.
func checkKerfClearance(sheet model.Sheet, cfg model.SheetConfig) []Violation {
	var violations []Violation

	for i := 0; i < len(sheet.Placements); i++ {
		for j := i + 1; j < len(sheet.Placements); j++ {
			a, b := sheet.Placements[i], sheet.Placements[j]
			separated := a.X+a.PlacedWidth+cfg.Kerf <= b.X ||
				b.X+b.PlacedWidth+cfg.Kerf <= a.X ||
				a.Y+a.PlacedHeight+cfg.Kerf <= b.Y ||
				b.Y+b.PlacedHeight+cfg.Kerf <= a.Y
			if !separated {
				violations = append(violations, Violation{
					Rule: RuleKerf,
					Detail: fmt.Sprintf("pieces %q at (%d,%d) and %q at (%d,%d) on sheet %d are closer than the %dmm kerf",
						a.PieceID, a.X, a.Y, b.PieceID, b.X, b.Y, sheet.Index, cfg.Kerf),
				})
			}
		}
	}

	return violations
}

// checkEfficiency recomputes the utilization ratios from placed areas
// and compares them against the reported values.
func checkEfficiency(cfg model.SheetConfig, result model.PackResult) []Violation {
	var violations []Violation

	if len(result.PerSheetEfficiency) != len(result.Sheets) {
		violations = append(violations, Violation{
			Rule: RuleEfficiency,
			Detail: fmt.Sprintf("per-sheet efficiency has %d entries for %d sheets",
				len(result.PerSheetEfficiency), len(result.Sheets)),
		})
		return violations
	}

	sheetArea := cfg.Area()
	var placedArea int
	for i, sheet := range result.Sheets {
		placedArea += sheet.UsedArea()
		want := float64(sheet.UsedArea()) / float64(sheetArea)
		got := result.PerSheetEfficiency[i]
		if got < 0 || got > 1 || math.Abs(got-want) > efficiencyTolerance {
			violations = append(violations, Violation{
				Rule:   RuleEfficiency,
				Detail: fmt.Sprintf("sheet %d efficiency %g, recomputed %g", i, got, want),
			})
		}
	}

	want := 0.0
	if len(result.Sheets) > 0 {
		want = float64(placedArea) / float64(len(result.Sheets)*sheetArea)
	}
	got := result.OverallEfficiency
	if got < 0 || got > 1 || math.Abs(got-want) > efficiencyTolerance {
		violations = append(violations, Violation{
			Rule:   RuleEfficiency,
			Detail: fmt.Sprintf("overall efficiency %g, recomputed %g", got, want),
		})
	}

	return violations
}
