package model

import (
	"fmt"

	"github.com/google/uuid"
)

// Grain represents the grain direction constraint of the stock material.
type Grain int

const (
	GrainNone       Grain = iota // No grain constraint, pieces can rotate freely
	GrainHorizontal              // Grain runs along the width
	GrainVertical                // Grain runs along the height
)

func (g Grain) String() string {
	switch g {
	case GrainHorizontal:
		return "horizontal"
	case GrainVertical:
		return "vertical"
	default:
		return "none"
	}
}

// ParseGrain converts a wire value into a Grain. Accepted values are
// "none", "horizontal" and "vertical"; anything else is an error.
func ParseGrain(s string) (Grain, error) {
	switch s {
	case "none":
		return GrainNone, nil
	case "horizontal":
		return GrainHorizontal, nil
	case "vertical":
		return GrainVertical, nil
	default:
		return GrainNone, fmt.Errorf("unknown grain %q", s)
	}
}

// MarshalJSON encodes the grain as its lowercase wire string.
func (g Grain) MarshalJSON() ([]byte, error) {
	return []byte(`"` + g.String() + `"`), nil
}

// UnmarshalJSON decodes a lowercase wire string into a Grain.
func (g *Grain) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("grain must be a string, got %s", data)
	}
	parsed, err := ParseGrain(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// Piece represents a single physical kickplate to cut. A quantity-N order
// line is expanded into N Piece records before packing; the packer never
// sees quantities. All dimensions are exact integer millimetres.
type Piece struct {
	ID          string `json:"id"`
	PartCode    string `json:"part_code"`
	Width       int    `json:"width_mm"`
	Height      int    `json:"height_mm"`
	Material    string `json:"material"`
	Rotatable   bool   `json:"rotatable"`
	Description string `json:"description,omitempty"`
}

// NewPiece creates a rotatable Piece with a generated ID and the
// conventional KP part code for its dimensions and material.
func NewPiece(width, height int, material string) Piece {
	return Piece{
		ID:          uuid.New().String()[:8],
		PartCode:    MakePartCode(width, height, material),
		Width:       width,
		Height:      height,
		Material:    material,
		Rotatable:   true,
		Description: fmt.Sprintf("%dx%dmm %s kickplate", width, height, material),
	}
}

// MakePartCode builds the conventional KP<width><height><material> code,
// e.g. MakePartCode(800, 300, "SSS") = "KP800300SSS".
func MakePartCode(width, height int, material string) string {
	return fmt.Sprintf("KP%d%d%s", width, height, material)
}

// Area returns the piece area in mm².
func (p Piece) Area() int {
	return p.Width * p.Height
}

// SheetConfig describes the stock sheets a packing run cuts from.
// One config applies to the whole run; every sheet of the run shares it.
type SheetConfig struct {
	StockWidth  int   `json:"stock_width_mm"`
	StockHeight int   `json:"stock_height_mm"`
	Kerf        int   `json:"kerf_mm"` // Blade width in mm, consumed between adjacent cuts
	Grain       Grain `json:"grain"`
}

// Area returns the stock sheet area in mm².
func (c SheetConfig) Area() int {
	return c.StockWidth * c.StockHeight
}

// AllowsRotation reports whether the piece may be placed with its
// dimensions swapped. A directional grain forbids rotation for every
// piece regardless of the piece's own flag.
func (c SheetConfig) AllowsRotation(p Piece) bool {
	return c.Grain == GrainNone && p.Rotatable
}

// Placement represents one piece placed on a sheet. Placed dimensions
// equal the piece's original dimensions, or are swapped when rotated.
type Placement struct {
	PieceID      string `json:"piece_id"`
	PartCode     string `json:"part_code"`
	SheetIndex   int    `json:"sheet_index"`
	X            int    `json:"x_mm"` // Distance from the sheet's left edge
	Y            int    `json:"y_mm"` // Distance from the sheet's top edge
	PlacedWidth  int    `json:"width_mm"`
	PlacedHeight int    `json:"height_mm"`
	Rotated      bool   `json:"rotated"`
}

// Sheet represents one stock sheet with its placements, in the order the
// pieces were placed. Sheets never mix materials.
type Sheet struct {
	Index      int         `json:"index"`
	Material   string      `json:"material"`
	Placements []Placement `json:"placements"`
}

// UsedArea returns the total area covered by placed pieces in mm².
func (s Sheet) UsedArea() int {
	var total int
	for _, p := range s.Placements {
		total += p.PlacedWidth * p.PlacedHeight
	}
	return total
}

// SkippedPiece records a piece that could not be placed on any sheet of
// the configured dimensions, with the reason it was skipped.
type SkippedPiece struct {
	PieceID  string `json:"piece_id"`
	PartCode string `json:"part_code"`
	Width    int    `json:"width_mm"`
	Height   int    `json:"height_mm"`
	Reason   string `json:"reason"`
}

// PackResult holds the full solution of one packing run. The caller owns
// it exclusively; the engine retains no state between runs.
type PackResult struct {
	Sheets             []Sheet        `json:"sheets"`
	Skipped            []SkippedPiece `json:"skipped"`
	OverallEfficiency  float64        `json:"overall_efficiency"`
	PerSheetEfficiency []float64      `json:"per_sheet_efficiency"`
}

// PlacedCount returns the number of placements across all sheets.
func (r PackResult) PlacedCount() int {
	var n int
	for _, s := range r.Sheets {
		n += len(s.Placements)
	}
	return n
}

// PieceSpec is one line of a pack request as produced by the ingestion
// boundary: an unexpanded order line with a quantity. Rotatable is
// optional and defaults to true when omitted.
type PieceSpec struct {
	PartCode    string `json:"part_code"`
	Width       int    `json:"width_mm"`
	Height      int    `json:"height_mm"`
	Quantity    int    `json:"quantity"`
	Material    string `json:"material"`
	Description string `json:"description,omitempty"`
	Rotatable   *bool  `json:"rotatable,omitempty"`
}

// PackRequest is the wire form of one packing run: unexpanded piece specs
// plus the stock sheet configuration.
type PackRequest struct {
	Pieces      []PieceSpec `json:"pieces"`
	StockWidth  int         `json:"stock_width_mm"`
	StockHeight int         `json:"stock_height_mm"`
	Kerf        int         `json:"kerf_mm"`
	Grain       Grain       `json:"grain"`
}

// Config returns the SheetConfig portion of the request.
func (r PackRequest) Config() SheetConfig {
	return SheetConfig{
		StockWidth:  r.StockWidth,
		StockHeight: r.StockHeight,
		Kerf:        r.Kerf,
		Grain:       r.Grain,
	}
}

// BuildPieces expands every quantity-N spec into N Piece records with
// deterministic IDs (<part_code>-<n>, numbered per part code across the
// whole request). The expansion order follows the request order, so two
// identical requests expand to identical catalogs.
func (r PackRequest) BuildPieces() []Piece {
	var pieces []Piece
	seq := make(map[string]int)
	for _, spec := range r.Pieces {
		rotatable := true
		if spec.Rotatable != nil {
			rotatable = *spec.Rotatable
		}
		for n := 0; n < spec.Quantity; n++ {
			seq[spec.PartCode]++
			pieces = append(pieces, Piece{
				ID:          fmt.Sprintf("%s-%d", spec.PartCode, seq[spec.PartCode]),
				PartCode:    spec.PartCode,
				Width:       spec.Width,
				Height:      spec.Height,
				Material:    spec.Material,
				Rotatable:   rotatable,
				Description: spec.Description,
			})
		}
	}
	return pieces
}
