package model

import "math"

// EdgeFinishSummary holds the shop consumables estimate for a packed
// order: polished edge length and protective film area. Stainless and
// brass kickplates ship with all four edges polished and a peel-off film
// on the face.
type EdgeFinishSummary struct {
	TotalEdgeMM      int     `json:"total_edge_mm"`       // Total edge length to polish (no waste)
	TotalEdgeM       float64 `json:"total_edge_m"`        // Total edge length in metres (no waste)
	WastePercent     float64 `json:"waste_percent"`       // Waste percentage applied
	TotalWithWasteMM int     `json:"total_with_waste_mm"` // Edge length with waste, rounded up
	TotalWithWasteM  float64 `json:"total_with_waste_m"`  // Edge length with waste in metres
	FilmAreaMM2      int     `json:"film_area_mm2"`       // Protective film area (one face per piece)
	FilmAreaM2       float64 `json:"film_area_m2"`        // Film area in m²
	PieceCount       int     `json:"piece_count"`         // Pieces included in the estimate
}

// EstimateEdgeFinish computes the polishing length and film area needed
// for every placed piece of a packing result. Skipped pieces are not
// counted; they were never cut. wastePercent is the extra film/polish
// allowance (e.g. 10 for 10%).
func EstimateEdgeFinish(result PackResult, wastePercent float64) EdgeFinishSummary {
	var edgeMM, filmMM2, pieces int
	for _, sheet := range result.Sheets {
		for _, p := range sheet.Placements {
			edgeMM += 2 * (p.PlacedWidth + p.PlacedHeight)
			filmMM2 += p.PlacedWidth * p.PlacedHeight
			pieces++
		}
	}

	wasteFactor := 1.0 + wastePercent/100.0
	withWaste := int(math.Ceil(float64(edgeMM) * wasteFactor))

	return EdgeFinishSummary{
		TotalEdgeMM:      edgeMM,
		TotalEdgeM:       float64(edgeMM) / 1000.0,
		WastePercent:     wastePercent,
		TotalWithWasteMM: withWaste,
		TotalWithWasteM:  float64(withWaste) / 1000.0,
		FilmAreaMM2:      filmMM2,
		FilmAreaM2:       float64(filmMM2) / 1e6,
		PieceCount:       pieces,
	}
}
