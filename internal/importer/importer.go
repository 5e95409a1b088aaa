// Package importer ingests kickplate order files into order lines ready
// for packing. It reads ProMaster order exports (part codes like
// KP800300SSS with quantity, price and cost columns) as well as generic
// cut-list files with explicit width/height columns, from CSV or Excel,
// with automatic delimiter detection and case-insensitive header
// recognition. All parsing and validation happens here; the packing
// engine only ever sees resolved numeric fields.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/PlateCut/internal/model"
)

// DefaultMaterial is assumed when a cut-list row names no material.
const DefaultMaterial = "SSS"

// ImportResult holds the outcome of one import: the order lines that
// parsed cleanly plus per-row errors and warnings. Bad rows are
// reported and skipped, never fatal for the file.
type ImportResult struct {
	Lines    []model.OrderLine
	Errors   []string
	Warnings []string
}

// ColumnMapping maps semantic column roles to their indices in the
// data. An index of -1 means the column is absent.
type ColumnMapping struct {
	PartCode    int
	Description int
	Width       int
	Height      int
	Quantity    int
	Material    int
	Grain       int
	Price       int
	Cost        int
}

// headerAliases maps canonical column roles to their accepted header
// spellings (all lowercase). The ProMaster export headers and the
// common hand-written cut-list variants are both covered.
var headerAliases = map[string][]string{
	"partcode":    {"partcode", "part code", "part_code", "code", "sku", "product code"},
	"description": {"description", "desc", "label", "name", "part", "item", "piece"},
	"width":       {"width", "w", "width_mm", "width (mm)", "length", "x"},
	"height":      {"height", "h", "height_mm", "height (mm)", "y"},
	"quantity":    {"quantity", "qty", "productquantity", "product quantity", "count", "pcs", "pieces"},
	"material":    {"material", "mat", "finish", "grade"},
	"grain":       {"grain", "grain direction", "direction", "orientation", "rotatable"},
	"price":       {"price", "productprice", "product price", "unit price", "unit_price"},
	"cost":        {"cost", "productcost", "product cost", "unit cost", "unit_cost"},
}

// DetectCSVDelimiter determines the most likely CSV delimiter from the
// raw file content. It tries comma, semicolon, tab and pipe; the
// delimiter producing the most consistent multi-column split wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		// Prefer higher consistency, then more columns.
		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// Matching is case-insensitive against the known aliases per role. When
// no alias matches at all, a positional fallback is returned
// (description, width, height, quantity, material) and the boolean is
// false.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{
		PartCode:    -1,
		Description: -1,
		Width:       -1,
		Height:      -1,
		Quantity:    -1,
		Material:    -1,
		Grain:       -1,
		Price:       -1,
		Cost:        -1,
	}

	assign := func(role string, idx int) {
		switch role {
		case "partcode":
			if mapping.PartCode == -1 {
				mapping.PartCode = idx
			}
		case "description":
			if mapping.Description == -1 {
				mapping.Description = idx
			}
		case "width":
			if mapping.Width == -1 {
				mapping.Width = idx
			}
		case "height":
			if mapping.Height == -1 {
				mapping.Height = idx
			}
		case "quantity":
			if mapping.Quantity == -1 {
				mapping.Quantity = idx
			}
		case "material":
			if mapping.Material == -1 {
				mapping.Material = idx
			}
		case "grain":
			if mapping.Grain == -1 {
				mapping.Grain = idx
			}
		case "price":
			if mapping.Price == -1 {
				mapping.Price = idx
			}
		case "cost":
			if mapping.Cost == -1 {
				mapping.Cost = idx
			}
		}
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized == alias {
					isHeader = true
					assign(role, i)
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{
			PartCode:    -1,
			Description: 0,
			Width:       1,
			Height:      2,
			Quantity:    3,
			Material:    4,
			Grain:       -1,
			Price:       -1,
			Cost:        -1,
		}, false
	}

	return mapping, true
}

// parseRotatable converts a grain/rotation cell into the line's
// rotatable flag. A directional grain locks the piece; empty or "none"
// leaves it free.
func parseRotatable(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "horizontal", "vertical", "h", "v", "locked", "no", "false":
		return false, true
	case "", "none", "n", "-", "yes", "true", "any":
		return true, true
	default:
		return true, false
	}
}

// getCell safely retrieves a trimmed cell value by column index.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseMoney reads a decimal money cell, tolerating a currency prefix
// and thousands separators. Empty cells are zero.
func parseMoney(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimLeft(strings.ReplaceAll(s, ",", ""), "£$€ ")
	if cleaned == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(cleaned)
}

// parseDimension reads an integer millimetre cell, accepting plain
// integers and whole-valued floats ("800" and "800.0" both parse).
func parseDimension(s string) (int, error) {
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("%s is not a whole number of millimetres", s)
	}
	return int(f), nil
}

// parseRow extracts an OrderLine from one data row. When the row
// carries a KP part code its dimensions and material are resolved from
// the code; otherwise explicit width/height columns are required and
// defaultMaterial fills an absent material cell. Returns the line, an
// error message and any warnings for the row.
func parseRow(row []string, mapping ColumnMapping, rowLabel, defaultMaterial string) (model.OrderLine, string, []string) {
	line := model.OrderLine{
		Description: getCell(row, mapping.Description),
		Rotatable:   true,
	}

	code := getCell(row, mapping.PartCode)
	if code != "" {
		width, height, material, err := ParsePartCode(code)
		if err != nil {
			return model.OrderLine{}, fmt.Sprintf("%s: %v", rowLabel, err), nil
		}
		line.PartCode = strings.ToUpper(code)
		line.Width = width
		line.Height = height
		line.Material = material
	} else {
		widthStr := getCell(row, mapping.Width)
		if widthStr == "" {
			return model.OrderLine{}, fmt.Sprintf("%s: missing width value", rowLabel), nil
		}
		width, err := parseDimension(widthStr)
		if err != nil {
			return model.OrderLine{}, fmt.Sprintf("%s: invalid width %q", rowLabel, widthStr), nil
		}

		heightStr := getCell(row, mapping.Height)
		if heightStr == "" {
			return model.OrderLine{}, fmt.Sprintf("%s: missing height value", rowLabel), nil
		}
		height, err := parseDimension(heightStr)
		if err != nil {
			return model.OrderLine{}, fmt.Sprintf("%s: invalid height %q", rowLabel, heightStr), nil
		}

		line.Width = width
		line.Height = height
		line.Material = getCell(row, mapping.Material)
		if line.Material == "" {
			line.Material = defaultMaterial
		}
		line.PartCode = model.MakePartCode(width, height, line.Material)
	}

	qtyStr := getCell(row, mapping.Quantity)
	line.Quantity = 1
	if qtyStr != "" {
		qty, err := strconv.Atoi(qtyStr)
		if err != nil {
			return model.OrderLine{}, fmt.Sprintf("%s: invalid quantity %q", rowLabel, qtyStr), nil
		}
		line.Quantity = qty
	}

	if line.Width <= 0 || line.Height <= 0 || line.Quantity <= 0 {
		return model.OrderLine{}, fmt.Sprintf("%s: width, height and quantity must be positive", rowLabel), nil
	}

	var warnings []string
	if grainStr := getCell(row, mapping.Grain); grainStr != "" {
		rotatable, ok := parseRotatable(grainStr)
		if ok {
			line.Rotatable = rotatable
		} else {
			warnings = append(warnings, fmt.Sprintf("%s: unknown grain value %q, leaving piece rotatable", rowLabel, grainStr))
		}
	}

	if price, err := parseMoney(getCell(row, mapping.Price)); err == nil {
		line.UnitPrice = price
	} else {
		warnings = append(warnings, fmt.Sprintf("%s: invalid price %q, using zero", rowLabel, getCell(row, mapping.Price)))
	}
	if cost, err := parseMoney(getCell(row, mapping.Cost)); err == nil {
		line.UnitCost = cost
	} else {
		warnings = append(warnings, fmt.Sprintf("%s: invalid cost %q, using zero", rowLabel, getCell(row, mapping.Cost)))
	}

	return line, "", warnings
}

// isEmptyRow reports whether the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports order lines from a CSV file, auto-detecting the
// delimiter and mapping columns by header names. defaultMaterial fills
// rows without a material cell; empty means DefaultMaterial.
func ImportCSV(path, defaultMaterial string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "file is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	var warnings []string
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		warnings = append(warnings, fmt.Sprintf("detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot read CSV: %v", err))
		return result
	}

	return importFromRows(records, "line", warnings, defaultMaterial)
}

// ImportCSVFromReader imports order lines from a CSV stream with a
// known delimiter. Useful for tests and piped input.
func ImportCSVFromReader(reader io.Reader, delimiter rune, defaultMaterial string) ImportResult {
	result := ImportResult{}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot read CSV: %v", err))
		return result
	}

	return importFromRows(records, "line", nil, defaultMaterial)
}

// ImportExcel imports order lines from the first sheet of an .xlsx
// file, with the same header detection as the CSV path.
func ImportExcel(path, defaultMaterial string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot read Excel data: %v", err))
		return result
	}

	return importFromRows(rows, "row", nil, defaultMaterial)
}

// ImportFile dispatches on the file extension: .xlsx goes through
// excelize, anything else is treated as CSV.
func ImportFile(path, defaultMaterial string) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ImportExcel(path, defaultMaterial)
	default:
		return ImportCSV(path, defaultMaterial)
	}
}

// importFromRows is the shared row pipeline for CSV and Excel data: it
// detects the header, maps columns and parses each data row into an
// order line. Rows whose part code is present but not a kickplate code
// are skipped with a warning, so a full ProMaster order export can be
// fed in unfiltered.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string, defaultMaterial string) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	defaultMaterial = strings.ToUpper(strings.TrimSpace(defaultMaterial))
	if defaultMaterial == "" {
		defaultMaterial = DefaultMaterial
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "no data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "detected header row, skipping")

		if mapping.PartCode == -1 {
			missing := []string{}
			if mapping.Width == -1 {
				missing = append(missing, "width")
			}
			if mapping.Height == -1 {
				missing = append(missing, "height")
			}
			if len(missing) > 0 {
				result.Errors = append(result.Errors,
					fmt.Sprintf("required columns not found in header: %s", strings.Join(missing, ", ")))
				return result
			}
		}
	} else if len(rows[0]) >= 3 {
		// No recognized header: if the width cell of the first row is
		// not numeric, treat the row as an unknown header and fall
		// back to positional mapping for the rest.
		if _, err := parseDimension(strings.TrimSpace(rows[0][1])); err != nil {
			startRow = 1
			result.Warnings = append(result.Warnings, "detected header row, skipping")
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)

		if code := getCell(row, mapping.PartCode); code != "" && !IsKickplateCode(code) {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %q is not a kickplate line, skipping", rowLabel, code))
			continue
		}

		line, errMsg, warnings := parseRow(row, mapping, rowLabel, defaultMaterial)
		result.Warnings = append(result.Warnings, warnings...)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}

		result.Lines = append(result.Lines, line)
	}

	return result
}
