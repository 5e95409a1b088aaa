package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/PlateCut/internal/model"
)

// LabelInfo holds the data printed and QR-encoded on each piece label,
// enough for the shop floor to match a cut piece back to its order
// line and its position on the cutting diagram.
type LabelInfo struct {
	PieceID    string `json:"piece_id"`
	PartCode   string `json:"part_code"`
	Width      int    `json:"width_mm"`
	Height     int    `json:"height_mm"`
	SheetIndex int    `json:"sheet"`
	Material   string `json:"material"`
	Rotated    bool   `json:"rotated"`
	X          int    `json:"x_mm"`
	Y          int    `json:"y_mm"`
}

// Label layout constants for Avery 5160-compatible sheets (3 columns,
// 10 rows per page on US Letter).
const (
	labelMarginTop  = 12.7 // mm
	labelMarginLeft = 4.8  // mm
	labelWidth      = 66.7 // mm per label
	labelHeight     = 25.4 // mm per label
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0 // QR code size in mm
	labelPadding    = 2.0  // mm internal padding
)

// WriteLabels renders a PDF of QR-coded labels, one per placed piece,
// in placement order. Each label carries the part code, dimensions and
// a QR code encoding the full label info as JSON.
func WriteLabels(w io.Writer, result model.PackResult) error {
	labels := CollectLabelInfos(result)
	if len(labels) == 0 {
		return fmt.Errorf("no pieces placed to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderLabel(pdf, x, y, label); err != nil {
			return fmt.Errorf("failed to render label for %q: %w", label.PieceID, err)
		}
	}

	return pdf.Output(w)
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, x, y float64, info LabelInfo) error {
	// Light border as a cutting guide
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_%s", info.PieceID)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	// QR code on the right side of the label
	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	// Text area on the left
	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)

	partCode := info.PartCode
	if pdf.GetStringWidth(partCode) > textW {
		for len(partCode) > 0 && pdf.GetStringWidth(partCode+"...") > textW {
			partCode = partCode[:len(partCode)-1]
		}
		partCode += "..."
	}
	pdf.CellFormat(textW, 4.5, partCode, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	dims := fmt.Sprintf("%d x %d mm  %s", info.Width, info.Height, info.Material)
	pdf.CellFormat(textW, 3.5, dims, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	sheetInfo := fmt.Sprintf("Sheet %d @ (%d, %d)", info.SheetIndex, info.X, info.Y)
	pdf.CellFormat(textW, 3, sheetInfo, "", 1, "L", false, 0, "")

	if info.Rotated {
		pdf.SetXY(textX, y+labelPadding+12.5)
		pdf.SetFont("Helvetica", "I", 6)
		pdf.SetTextColor(150, 100, 0)
		pdf.CellFormat(textW, 3, "Rotated 90\xb0", "", 0, "L", false, 0, "")
	}

	pdf.SetTextColor(0, 0, 0)

	return nil
}

// CollectLabelInfos extracts label data from a packing result, in
// sheet then placement order.
func CollectLabelInfos(result model.PackResult) []LabelInfo {
	var labels []LabelInfo
	for _, sheet := range result.Sheets {
		for _, p := range sheet.Placements {
			labels = append(labels, LabelInfo{
				PieceID:    p.PieceID,
				PartCode:   p.PartCode,
				Width:      p.PlacedWidth,
				Height:     p.PlacedHeight,
				SheetIndex: sheet.Index + 1,
				Material:   sheet.Material,
				Rotated:    p.Rotated,
				X:          p.X,
				Y:          p.Y,
			})
		}
	}
	return labels
}
