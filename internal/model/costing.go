package model

import (
	"math"

	"github.com/shopspring/decimal"
)

// OrderLine is one kickplate line of a customer order as ingested from a
// ProMaster export: resolved dimensions plus the money fields. Money is
// always decimal, never float.
type OrderLine struct {
	PartCode    string          `json:"part_code"`
	Description string          `json:"description,omitempty"`
	Width       int             `json:"width_mm"`
	Height      int             `json:"height_mm"`
	Material    string          `json:"material"`
	Quantity    int             `json:"quantity"`
	Rotatable   bool            `json:"rotatable"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}

// Spec converts the line into the wire PieceSpec consumed by the packer.
func (l OrderLine) Spec() PieceSpec {
	rotatable := l.Rotatable
	return PieceSpec{
		PartCode:    l.PartCode,
		Width:       l.Width,
		Height:      l.Height,
		Quantity:    l.Quantity,
		Material:    l.Material,
		Description: l.Description,
		Rotatable:   &rotatable,
	}
}

// BuildRequest assembles a PackRequest from order lines and a sheet config.
func BuildRequest(lines []OrderLine, cfg SheetConfig) PackRequest {
	specs := make([]PieceSpec, len(lines))
	for i, l := range lines {
		specs[i] = l.Spec()
	}
	return PackRequest{
		Pieces:      specs,
		StockWidth:  cfg.StockWidth,
		StockHeight: cfg.StockHeight,
		Kerf:        cfg.Kerf,
		Grain:       cfg.Grain,
	}
}

// OrderCosting summarizes the money side of a packed order.
type OrderCosting struct {
	LineCount    int             `json:"line_count"`
	PieceCount   int             `json:"piece_count"`
	SheetsUsed   int             `json:"sheets_used"`
	TotalRevenue decimal.Decimal `json:"total_revenue"` // Sum of unit price x quantity
	TotalCost    decimal.Decimal `json:"total_cost"`    // Sum of unit cost x quantity
	SheetSpend   decimal.Decimal `json:"sheet_spend"`   // Sheet cost x sheets used
	Margin       decimal.Decimal `json:"margin"`        // Revenue - cost - sheet spend
}

// CostOrder computes revenue, cost and margin for an order against the
// packing result it produced. sheetCost is the purchase price of one
// stock sheet.
func CostOrder(lines []OrderLine, result PackResult, sheetCost decimal.Decimal) OrderCosting {
	c := OrderCosting{
		LineCount:  len(lines),
		SheetsUsed: len(result.Sheets),
	}
	for _, l := range lines {
		qty := decimal.NewFromInt(int64(l.Quantity))
		c.PieceCount += l.Quantity
		c.TotalRevenue = c.TotalRevenue.Add(l.UnitPrice.Mul(qty))
		c.TotalCost = c.TotalCost.Add(l.UnitCost.Mul(qty))
	}
	c.SheetSpend = sheetCost.Mul(decimal.NewFromInt(int64(c.SheetsUsed)))
	c.Margin = c.TotalRevenue.Sub(c.TotalCost).Sub(c.SheetSpend)
	return c
}

// PurchaseEstimate holds the results of a sheet purchasing calculation
// made before packing, from piece areas alone.
type PurchaseEstimate struct {
	TotalPieceArea    int             `json:"total_piece_area_mm2"` // Kerf-inflated piece area (sq mm)
	SheetArea         int             `json:"sheet_area_mm2"`       // Area of one sheet (sq mm)
	SheetsNeededExact float64         `json:"sheets_needed_exact"`  // Exact fractional number of sheets
	SheetsNeededMin   int             `json:"sheets_needed_min"`    // Minimum sheets (ceiling of exact)
	SheetsWithWaste   int             `json:"sheets_with_waste"`    // Recommended sheets including waste factor
	WastePercent      float64         `json:"waste_percent"`        // Waste factor applied (e.g. 15 for 15%)
	PricePerSheet     decimal.Decimal `json:"price_per_sheet"`      // Price used for estimation
	EstimatedSpend    decimal.Decimal `json:"estimated_spend"`      // Sheets with waste x price
}

// EstimatePurchase computes how many sheets to buy for a piece list before
// running the packer. Each piece is inflated by the kerf on both axes so
// the area estimate accounts for blade waste.
func EstimatePurchase(pieces []Piece, cfg SheetConfig, wastePercent float64, pricePerSheet decimal.Decimal) PurchaseEstimate {
	est := PurchaseEstimate{
		SheetArea:     cfg.Area(),
		WastePercent:  wastePercent,
		PricePerSheet: pricePerSheet,
	}
	for _, p := range pieces {
		est.TotalPieceArea += (p.Width + cfg.Kerf) * (p.Height + cfg.Kerf)
	}
	if est.SheetArea <= 0 {
		return est
	}

	est.SheetsNeededExact = float64(est.TotalPieceArea) / float64(est.SheetArea)
	est.SheetsNeededMin = int(math.Ceil(est.SheetsNeededExact))

	wasteFactor := 1.0 + wastePercent/100.0
	est.SheetsWithWaste = int(math.Ceil(est.SheetsNeededExact * wasteFactor))
	if est.SheetsWithWaste < est.SheetsNeededMin {
		est.SheetsWithWaste = est.SheetsNeededMin
	}

	est.EstimatedSpend = pricePerSheet.Mul(decimal.NewFromInt(int64(est.SheetsWithWaste)))
	return est
}
