// Package export renders packing results into the artifacts the shop
// floor consumes: cut-diagram PDFs, QR part labels, cutting-checklist
// CSVs and HTML efficiency reports.
package export

import (
	"fmt"
	"io"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/PlateCut/internal/model"
)

// pieceColor represents an RGB fill color for a placed piece.
type pieceColor struct {
	R, G, B int
}

// pieceColors cycles per placement so adjacent pieces stay easy to tell
// apart on the diagram.
var pieceColors = []pieceColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	statsHeight  = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// WritePDF renders the packing result as a PDF document: one page per
// sheet with a scaled layout diagram, followed by a summary page with
// overall statistics, skipped-piece warnings and the sheet settings.
func WritePDF(w io.Writer, result model.PackResult, cfg model.SheetConfig) error {
	if len(result.Sheets) == 0 {
		return fmt.Errorf("no sheets to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	for i, sheet := range result.Sheets {
		pdf.AddPage()
		renderSheetPage(pdf, sheet, cfg, i+1)
	}

	pdf.AddPage()
	renderSummaryPage(pdf, result, cfg)

	return pdf.Output(w)
}

// renderSheetPage draws a single sheet's cut diagram on the current page.
func renderSheetPage(pdf *fpdf.Fpdf, sheet model.Sheet, cfg model.SheetConfig, sheetNum int) {
	// Title
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Sheet %d: %s (%d x %d mm)", sheetNum, sheet.Material, cfg.StockWidth, cfg.StockHeight)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	// Stats line
	efficiency := 0.0
	if cfg.Area() > 0 {
		efficiency = float64(sheet.UsedArea()) / float64(cfg.Area())
	}
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Pieces: %d | Used area: %d mm² | Sheet area: %d mm² | Efficiency: %.1f%% | Kerf: %d mm",
		len(sheet.Placements), sheet.UsedArea(), cfg.Area(), efficiency*100, cfg.Kerf)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	// Scale the stock sheet into the drawing area
	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - statsHeight

	scaleX := drawWidth / float64(cfg.StockWidth)
	scaleY := drawHeight / float64(cfg.StockHeight)
	scale := math.Min(scaleX, scaleY)

	canvasW := float64(cfg.StockWidth) * scale
	canvasH := float64(cfg.StockHeight) * scale

	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	// Stock sheet background, brushed-metal grey
	pdf.SetFillColor(222, 224, 228)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	// Placed pieces
	for i, p := range sheet.Placements {
		col := pieceColors[i%len(pieceColors)]
		pw := float64(p.PlacedWidth) * scale
		ph := float64(p.PlacedHeight) * scale
		px := offsetX + float64(p.X)*scale
		py := offsetY + float64(p.Y)*scale

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Rect(px, py, pw, ph, "FD")

		// Piece label, only when the rectangle has room for it
		if pw > 15 && ph > 8 {
			pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
			pdf.SetTextColor(0, 0, 0)

			label := p.PartCode
			dims := fmt.Sprintf("%dx%d", p.PlacedWidth, p.PlacedHeight)
			if p.Rotated {
				dims += " R"
			}

			labelW := pdf.GetStringWidth(label)
			dimsW := pdf.GetStringWidth(dims)

			if labelW < pw-2 {
				pdf.SetXY(px+(pw-labelW)/2, py+ph/2-4)
				pdf.CellFormat(labelW, 4, label, "", 0, "C", false, 0, "")
			}
			if ph > 14 && dimsW < pw-2 {
				pdf.SetXY(px+(pw-dimsW)/2, py+ph/2)
				pdf.CellFormat(dimsW, 4, dims, "", 0, "C", false, 0, "")
			}
		}
	}

	drawDimensionAnnotations(pdf, cfg, offsetX, offsetY, canvasW, canvasH)
	drawPiecesLegend(pdf, sheet, offsetY+canvasH+5)
}

// drawDimensionAnnotations adds the stock width and height labels
// outside the sheet rectangle.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, cfg model.SheetConfig, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	// Width annotation below the sheet
	widthLabel := fmt.Sprintf("%d mm", cfg.StockWidth)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX+(canvasW-wLabelW)/2, offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	// Height annotation left of the sheet, rotated
	heightLabel := fmt.Sprintf("%d mm", cfg.StockHeight)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(offsetX-3-hLabelW/2, offsetY+canvasH/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// drawPiecesLegend renders a compact legend of placed pieces at the
// bottom of the sheet page, in cutting order.
func drawPiecesLegend(pdf *fpdf.Fpdf, sheet model.Sheet, startY float64) {
	if len(sheet.Placements) == 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Cutting order:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	maxX := pageWidth - marginRight

	for i, p := range sheet.Placements {
		col := pieceColors[i%len(pieceColors)]
		label := fmt.Sprintf("%d. %s (%dx%d)", i+1, p.PartCode, p.PlacedWidth, p.PlacedHeight)
		if p.Rotated {
			label += " R"
		}
		labelW := pdf.GetStringWidth(label) + 6

		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")

		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")

		xPos += labelW + 2
	}
}

// renderSummaryPage draws the final summary page with overall
// statistics, the per-sheet breakdown, skipped-piece warnings and the
// sheet settings echo.
func renderSummaryPage(pdf *fpdf.Fpdf, result model.PackResult, cfg model.SheetConfig) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Kickplate Packing Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Overall Statistics", "", 0, "L", false, 0, "")
	y += 9

	summaryItems := []struct {
		label string
		value string
	}{
		{"Sheets Used", fmt.Sprintf("%d", len(result.Sheets))},
		{"Overall Efficiency", fmt.Sprintf("%.1f%%", result.OverallEfficiency*100)},
		{"Pieces Placed", fmt.Sprintf("%d", result.PlacedCount())},
		{"Pieces Skipped", fmt.Sprintf("%d", len(result.Skipped))},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5

	// Per-sheet breakdown table
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Sheet Breakdown", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{20, 45, 50, 30, 35, 60}
	headers := []string{"Sheet", "Material", "Dimensions", "Pieces", "Efficiency", "Used / Sheet Area"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, sheet := range result.Sheets {
		efficiency := 0.0
		if i < len(result.PerSheetEfficiency) {
			efficiency = result.PerSheetEfficiency[i]
		}
		xPos = marginLeft
		rowData := []string{
			fmt.Sprintf("%d", i+1),
			sheet.Material,
			fmt.Sprintf("%d x %d mm", cfg.StockWidth, cfg.StockHeight),
			fmt.Sprintf("%d", len(sheet.Placements)),
			fmt.Sprintf("%.1f%%", efficiency*100),
			fmt.Sprintf("%d / %d mm²", sheet.UsedArea(), cfg.Area()),
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	// Skipped-piece warning block
	if len(result.Skipped) > 0 {
		y += 8
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(200, 7, "WARNING: Skipped Pieces", "", 0, "L", false, 0, "")
		y += 8

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)

		for _, s := range result.Skipped {
			pdf.SetXY(marginLeft+5, y)
			text := fmt.Sprintf("- %s: %d x %d mm (%s)", s.PartCode, s.Width, s.Height, s.Reason)
			pdf.CellFormat(250, 5, text, "", 0, "L", false, 0, "")
			y += 5
		}
	}

	// Sheet settings echo
	y += 8
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Sheet Settings", "", 0, "L", false, 0, "")
	y += 9

	settingsItems := []struct {
		label string
		value string
	}{
		{"Stock Size", fmt.Sprintf("%d x %d mm", cfg.StockWidth, cfg.StockHeight)},
		{"Kerf Width", fmt.Sprintf("%d mm", cfg.Kerf)},
		{"Grain Direction", cfg.Grain.String()},
	}

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range settingsItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(50, 5, item.label+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 5, item.value, "", 0, "L", false, 0, "")
		y += 5
	}

	// Footer
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by PlateCut - Kickplate Cutting Optimizer", "", 0, "C", false, 0, "")
}

// labelFontSize returns an appropriate font size for a piece rectangle.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}
