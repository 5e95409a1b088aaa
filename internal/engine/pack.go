package engine

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/piwi3910/PlateCut/internal/model"
)

var (
	// ErrInvalidRequest marks a malformed request, rejected before any
	// packing starts. The request fails as a whole; there is no partial
	// result.
	ErrInvalidRequest = errors.New("invalid pack request")

	// ErrCapacityExceeded marks a request that needs more sheets than a
	// single run may open. The caller must split the order and retry;
	// the piece list is never silently truncated.
	ErrCapacityExceeded = errors.New("sheet capacity exceeded")
)

// MaxSheetsPerGroup caps how many sheets one material group may open in
// a single run, bounding free-rectangle growth on pathological input.
const MaxSheetsPerGroup = 1000

// Pack validates a request, expands its piece specs into unit pieces
// and packs them. It is a pure function of its input: the engine keeps
// no state between calls, so identical requests yield identical results.
func Pack(req model.PackRequest) (model.PackResult, error) {
	if err := validateRequest(req); err != nil {
		return model.PackResult{}, err
	}
	return PackPieces(req.BuildPieces(), req.Config())
}

// PackPieces packs an already-expanded piece catalog. Pieces are
// partitioned by material, ordered largest-first within each group and
// placed onto as many sheets as each group needs. Every input piece
// ends up in exactly one of the result's placements or its skipped
// list.
func PackPieces(pieces []model.Piece, cfg model.SheetConfig) (model.PackResult, error) {
	if err := validateConfig(cfg); err != nil {
		return model.PackResult{}, err
	}
	if err := validatePieces(pieces); err != nil {
		return model.PackResult{}, err
	}

	materials, groups := groupByMaterial(pieces)

	// Material groups never share a sheet, so each group packs on its
	// own goroutine. Results land in a fixed slot per group, keeping
	// the output order independent of goroutine scheduling.
	results := make([]groupResult, len(materials))
	var wg sync.WaitGroup
	for i, mat := range materials {
		wg.Add(1)
		go func(slot int, material string, group []model.Piece) {
			defer wg.Done()
			results[slot] = packGroup(material, group, cfg)
		}(i, mat, groups[mat])
	}
	wg.Wait()

	return assemble(results, cfg)
}

// groupResult is the outcome of packing one material group.
type groupResult struct {
	sheets  []model.Sheet
	skipped []model.SkippedPiece
	err     error
}

// validateRequest rejects malformed requests before expansion so the
// error can name the offending order line rather than a derived piece.
func validateRequest(req model.PackRequest) error {
	if err := validateConfig(req.Config()); err != nil {
		return err
	}
	for i, spec := range req.Pieces {
		if spec.Width <= 0 || spec.Height <= 0 {
			return fmt.Errorf("%w: piece %q (line %d): dimensions %dx%dmm must be positive",
				ErrInvalidRequest, spec.PartCode, i+1, spec.Width, spec.Height)
		}
		if spec.Quantity < 0 {
			return fmt.Errorf("%w: piece %q (line %d): quantity %d must not be negative",
				ErrInvalidRequest, spec.PartCode, i+1, spec.Quantity)
		}
	}
	return nil
}

func validateConfig(cfg model.SheetConfig) error {
	if cfg.StockWidth <= 0 || cfg.StockHeight <= 0 {
		return fmt.Errorf("%w: stock dimensions %dx%dmm must be positive",
			ErrInvalidRequest, cfg.StockWidth, cfg.StockHeight)
	}
	if cfg.Kerf < 0 {
		return fmt.Errorf("%w: kerf %dmm must not be negative", ErrInvalidRequest, cfg.Kerf)
	}
	switch cfg.Grain {
	case model.GrainNone, model.GrainHorizontal, model.GrainVertical:
	default:
		return fmt.Errorf("%w: unknown grain value %d", ErrInvalidRequest, int(cfg.Grain))
	}
	return nil
}

func validatePieces(pieces []model.Piece) error {
	seen := make(map[string]struct{}, len(pieces))
	for i, p := range pieces {
		if p.Width <= 0 || p.Height <= 0 {
			return fmt.Errorf("%w: piece %q (index %d): dimensions %dx%dmm must be positive",
				ErrInvalidRequest, p.PartCode, i, p.Width, p.Height)
		}
		if p.ID == "" {
			return fmt.Errorf("%w: piece %q (index %d): missing piece ID", ErrInvalidRequest, p.PartCode, i)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: piece ID %q (index %d) is not unique", ErrInvalidRequest, p.ID, i)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

// groupByMaterial partitions pieces by material code. Group order
// follows the first appearance of each material in the input, and the
// relative order of pieces within a group is preserved.
func groupByMaterial(pieces []model.Piece) ([]string, map[string][]model.Piece) {
	groups := make(map[string][]model.Piece)
	var materials []string
	for _, p := range pieces {
		if _, seen := groups[p.Material]; !seen {
			materials = append(materials, p.Material)
		}
		groups[p.Material] = append(groups[p.Material], p)
	}
	return materials, groups
}

// sortForPacking orders a group's pieces for the packer: decreasing
// area, ties by decreasing height, then decreasing width, then input
// order. Placing large pieces first leaves the small ones to fill the
// residual strips.
func sortForPacking(pieces []model.Piece) []model.Piece {
	sorted := make([]model.Piece, len(pieces))
	copy(sorted, pieces)
	sort.SliceStable(sorted, func(i, j int) bool {
		if ai, aj := sorted[i].Area(), sorted[j].Area(); ai != aj {
			return ai > aj
		}
		if sorted[i].Height != sorted[j].Height {
			return sorted[i].Height > sorted[j].Height
		}
		return sorted[i].Width > sorted[j].Width
	})
	return sorted
}

// assemble merges per-group results into one response, renumbering
// sheets into a single global sequence. Group order is the material
// first-appearance order, so the merged output is deterministic.
func assemble(results []groupResult, cfg model.SheetConfig) (model.PackResult, error) {
	for _, gr := range results {
		if gr.err != nil {
			return model.PackResult{}, gr.err
		}
	}

	var out model.PackResult
	var placedArea int
	for _, gr := range results {
		for _, sheet := range gr.sheets {
			sheet.Index = len(out.Sheets)
			for i := range sheet.Placements {
				sheet.Placements[i].SheetIndex = sheet.Index
			}
			out.Sheets = append(out.Sheets, sheet)
			out.PerSheetEfficiency = append(out.PerSheetEfficiency,
				float64(sheet.UsedArea())/float64(cfg.Area()))
			placedArea += sheet.UsedArea()
		}
		out.Skipped = append(out.Skipped, gr.skipped...)
	}
	if len(out.Sheets) > 0 {
		out.OverallEfficiency = float64(placedArea) / float64(len(out.Sheets)*cfg.Area())
	}
	return out, nil
}
