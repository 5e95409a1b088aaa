package engine

import (
	"fmt"

	"github.com/piwi3910/PlateCut/internal/model"
)

// freeRect is one free rectangle on an open sheet. All coordinates are
// exact integer millimetres; the placement loop never touches floats.
type freeRect struct {
	x, y, w, h int
}

func (r freeRect) area() int {
	return r.w * r.h
}

// contains reports whether r fully covers o.
func (r freeRect) contains(o freeRect) bool {
	return r.x <= o.x && r.y <= o.y &&
		r.x+r.w >= o.x+o.w && r.y+r.h >= o.y+o.h
}

// openSheet is one stock sheet being filled: the placements made so far
// and the free rectangles still available to the group's remaining
// pieces.
type openSheet struct {
	placements []model.Placement
	freeRects  []freeRect
}

// split consumes freeRects[idx] for a w x h piece placed at the
// rectangle's top-left corner. A guillotine split leaves at most two
// residuals, one to the right of the piece and one below it, each
// offset from the piece by one kerf. Degenerate residuals are dropped,
// and any free rectangle fully contained in another is discarded.
func (s *openSheet) split(idx, w, h, kerf int) {
	r := s.freeRects[idx]
	s.freeRects = append(s.freeRects[:idx], s.freeRects[idx+1:]...)

	right := freeRect{x: r.x + w + kerf, y: r.y, w: r.w - w - kerf, h: h}
	if right.w > 0 && right.h > 0 {
		s.freeRects = append(s.freeRects, right)
	}
	below := freeRect{x: r.x, y: r.y + h + kerf, w: r.w, h: r.h - h - kerf}
	if below.w > 0 && below.h > 0 {
		s.freeRects = append(s.freeRects, below)
	}

	s.freeRects = pruneContained(s.freeRects)
}

// pruneContained removes any free rectangle fully contained in another.
// Exact duplicates keep their first occurrence.
func pruneContained(rects []freeRect) []freeRect {
	if len(rects) <= 1 {
		return rects
	}
	kept := make([]freeRect, 0, len(rects))
	for i, a := range rects {
		contained := false
		for j, b := range rects {
			if i == j || (a == b && i < j) {
				continue
			}
			if b.contains(a) {
				contained = true
				break
			}
		}
		if !contained {
			kept = append(kept, a)
		}
	}
	return kept
}

// orientation is one way a piece can lie on the sheet.
type orientation struct {
	w, h    int
	rotated bool
}

// allowedOrientations lists the orientations the grain rule permits,
// unrotated first. A directional grain pins every piece, and rotating
// a square changes nothing, so either way only one candidate remains.
func allowedOrientations(p model.Piece, cfg model.SheetConfig) []orientation {
	orients := []orientation{{w: p.Width, h: p.Height}}
	if cfg.AllowsRotation(p) && p.Width != p.Height {
		orients = append(orients, orientation{w: p.Height, h: p.Width, rotated: true})
	}
	return orients
}

// candidate is the best free rectangle found so far for a piece, with
// the numbers needed to compare it against later finds.
type candidate struct {
	sheet    int // index into groupPacker.sheets
	rect     int // index into that sheet's freeRects
	w, h     int // placed dimensions
	rotated  bool
	x, y     int
	leftover int
}

// beats reports whether c is a strictly better fit than other: smaller
// leftover area first, then the higher, then the more leftward free
// rectangle. Remaining ties keep the earlier find, so the scan order
// (sheet, then orientation, then rectangle) settles them.
func (c candidate) beats(other candidate) bool {
	if c.leftover != other.leftover {
		return c.leftover < other.leftover
	}
	if c.y != other.y {
		return c.y < other.y
	}
	return c.x < other.x
}

// groupPacker fills sheets for a single material group. Sheet indices
// are local to the group until the assembler renumbers them.
type groupPacker struct {
	cfg      model.SheetConfig
	material string
	sheets   []*openSheet
}

// packGroup places one material group's pieces, largest first, opening
// sheets as needed. Pieces too large for the bare sheet in every
// allowed orientation are returned as skipped; running past the sheet
// cap is fatal for the whole request.
func packGroup(material string, pieces []model.Piece, cfg model.SheetConfig) groupResult {
	gp := &groupPacker{cfg: cfg, material: material}
	var skipped []model.SkippedPiece

	for _, p := range sortForPacking(pieces) {
		placed, reason, err := gp.place(p)
		if err != nil {
			return groupResult{err: err}
		}
		if !placed {
			skipped = append(skipped, model.SkippedPiece{
				PieceID:  p.ID,
				PartCode: p.PartCode,
				Width:    p.Width,
				Height:   p.Height,
				Reason:   reason,
			})
		}
	}

	sheets := make([]model.Sheet, len(gp.sheets))
	for i, sh := range gp.sheets {
		sheets[i] = model.Sheet{Index: i, Material: material, Placements: sh.placements}
	}
	return groupResult{sheets: sheets, skipped: skipped}
}

// place puts one piece onto the best-fitting free rectangle across all
// open sheets, or opens a new sheet for it. It reports false with a
// reason when the piece exceeds the bare sheet in every allowed
// orientation.
func (gp *groupPacker) place(p model.Piece) (bool, string, error) {
	if best, ok := gp.findBestFit(p); ok {
		gp.commit(p, best)
		return true, "", nil
	}

	w, h, rotated, fits := gp.newSheetOrientation(p)
	if !fits {
		return false, fmt.Sprintf("piece %dx%dmm exceeds %dx%dmm stock in every allowed orientation",
			p.Width, p.Height, gp.cfg.StockWidth, gp.cfg.StockHeight), nil
	}
	if len(gp.sheets) >= MaxSheetsPerGroup {
		return false, "", fmt.Errorf("%w: material %s needs more than %d sheets",
			ErrCapacityExceeded, gp.material, MaxSheetsPerGroup)
	}
	gp.openNewSheet(p, w, h, rotated)
	return true, "", nil
}

// findBestFit scans every free rectangle on every open sheet, in every
// allowed orientation, and keeps the candidate with the least leftover
// area after placing the kerf-inflated footprint.
func (gp *groupPacker) findBestFit(p model.Piece) (candidate, bool) {
	var best candidate
	found := false
	for si, sh := range gp.sheets {
		for _, o := range allowedOrientations(p, gp.cfg) {
			wk := o.w + gp.cfg.Kerf
			hk := o.h + gp.cfg.Kerf
			for ri, r := range sh.freeRects {
				if wk > r.w || hk > r.h {
					continue
				}
				c := candidate{
					sheet:    si,
					rect:     ri,
					w:        o.w,
					h:        o.h,
					rotated:  o.rotated,
					x:        r.x,
					y:        r.y,
					leftover: r.area() - wk*hk,
				}
				if !found || c.beats(best) {
					best = c
					found = true
				}
			}
		}
	}
	return best, found
}

// commit records the placement at the chosen rectangle's top-left
// corner and splits the rectangle around the piece.
func (gp *groupPacker) commit(p model.Piece, c candidate) {
	sh := gp.sheets[c.sheet]
	sh.placements = append(sh.placements, model.Placement{
		PieceID:      p.ID,
		PartCode:     p.PartCode,
		SheetIndex:   c.sheet,
		X:            c.x,
		Y:            c.y,
		PlacedWidth:  c.w,
		PlacedHeight: c.h,
		Rotated:      c.rotated,
	})
	sh.split(c.rect, c.w, c.h, gp.cfg.Kerf)
}

// newSheetOrientation picks how a piece lies on a fresh sheet,
// preferring unrotated. The gate uses bare stock dimensions: kerf
// claims clearance between pieces, not between a piece and the sheet
// edge, so a full-sheet piece still places with a positive kerf.
func (gp *groupPacker) newSheetOrientation(p model.Piece) (w, h int, rotated, ok bool) {
	if p.Width <= gp.cfg.StockWidth && p.Height <= gp.cfg.StockHeight {
		return p.Width, p.Height, false, true
	}
	if gp.cfg.AllowsRotation(p) && p.Height <= gp.cfg.StockWidth && p.Width <= gp.cfg.StockHeight {
		return p.Height, p.Width, true, true
	}
	return 0, 0, false, false
}

// openNewSheet starts a sheet with the piece at its origin and splits
// the sheet's single free rectangle around it.
func (gp *groupPacker) openNewSheet(p model.Piece, w, h int, rotated bool) {
	sh := &openSheet{
		freeRects: []freeRect{{x: 0, y: 0, w: gp.cfg.StockWidth, h: gp.cfg.StockHeight}},
	}
	gp.sheets = append(gp.sheets, sh)
	sh.placements = append(sh.placements, model.Placement{
		PieceID:      p.ID,
		PartCode:     p.PartCode,
		SheetIndex:   len(gp.sheets) - 1,
		X:            0,
		Y:            0,
		PlacedWidth:  w,
		PlacedHeight: h,
		Rotated:      rotated,
	})
	sh.split(0, w, h, gp.cfg.Kerf)
}
