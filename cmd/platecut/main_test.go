package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/PlateCut/internal/model"
	"github.com/piwi3910/PlateCut/internal/project"
)

func TestPieceFlag_Set(t *testing.T) {
	var pieces pieceFlag
	if err := pieces.Set("800x300:sss:5"); err != nil {
		t.Fatal(err)
	}
	if err := pieces.Set("600x150:BRS"); err != nil {
		t.Fatal(err)
	}

	if len(pieces) != 2 {
		t.Fatalf("expected 2 pieces, got %d", len(pieces))
	}
	if pieces[0].Width != 800 || pieces[0].Height != 300 || pieces[0].Material != "SSS" || pieces[0].Quantity != 5 {
		t.Errorf("unexpected first piece: %+v", pieces[0])
	}
	if pieces[0].PartCode != "KP800300SSS" {
		t.Errorf("expected generated code KP800300SSS, got %s", pieces[0].PartCode)
	}
	if pieces[1].Quantity != 1 {
		t.Errorf("quantity should default to 1, got %d", pieces[1].Quantity)
	}
}

func TestPieceFlag_SetRejectsMalformed(t *testing.T) {
	var pieces pieceFlag
	for _, bad := range []string{"800x300", "800:SSS", "axb:SSS", "800x300:SSS:x", "800x300:SSS:1:extra"} {
		if err := pieces.Set(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestParseStock(t *testing.T) {
	w, h, err := parseStock("2440x1220")
	if err != nil {
		t.Fatal(err)
	}
	if w != 2440 || h != 1220 {
		t.Errorf("expected 2440x1220, got %dx%d", w, h)
	}

	if _, _, err := parseStock("2440"); err == nil {
		t.Error("expected error for missing height")
	}
	if _, _, err := parseStock("axb"); err == nil {
		t.Error("expected error for non-numeric stock")
	}
}

func TestParseKerfs(t *testing.T) {
	values, err := parseKerfs("0, 3,5")
	if err != nil {
		t.Fatal(err)
	}
	if len(values) != 3 || values[0] != 0 || values[1] != 3 || values[2] != 5 {
		t.Errorf("unexpected kerf values: %v", values)
	}

	if _, err := parseKerfs("0,x"); err == nil {
		t.Error("expected error for non-numeric kerf")
	}
}

func TestBuildRequest_MaterialFlagFlowsIntoImport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cutlist.csv")
	content := "Label,Width,Height,Qty\nEntrance plate,800,300,2\nWard plate,726,150,1\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	of := orderFlags{
		input:    path,
		stock:    "2440x1220",
		kerf:     3,
		grain:    "none",
		material: "BRS",
	}
	req, lines, err := of.buildRequest()
	if err != nil {
		t.Fatal(err)
	}

	if len(lines) != 2 {
		t.Fatalf("expected 2 order lines, got %d", len(lines))
	}
	for _, l := range lines {
		if l.Material != "BRS" {
			t.Errorf("expected material BRS from the flag, got %s", l.Material)
		}
	}
	for _, spec := range req.Pieces {
		if spec.Material != "BRS" {
			t.Errorf("expected request material BRS, got %s", spec.Material)
		}
		if !strings.HasSuffix(spec.PartCode, "BRS") {
			t.Errorf("expected a BRS part code, got %s", spec.PartCode)
		}
	}
}

func TestBuildRequest_MaterialColumnWinsOverFlag(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cutlist.csv")
	content := "Label,Width,Height,Qty,Material\nEntrance plate,800,300,2,SAA\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	of := orderFlags{
		input:    path,
		stock:    "2440x1220",
		kerf:     3,
		grain:    "none",
		material: "BRS",
	}
	_, lines, err := of.buildRequest()
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 || lines[0].Material != "SAA" {
		t.Errorf("material column must win over the flag, got %+v", lines)
	}
}

func TestBuildRequest_TemplateInput(t *testing.T) {
	of := orderFlags{
		template: "Standard Door Pack",
		stock:    "2440x1220",
		kerf:     3,
		grain:    "none",
	}
	req, lines, err := of.buildRequest()
	if err != nil {
		t.Fatal(err)
	}

	if lines != nil {
		t.Errorf("template input should carry no order lines, got %v", lines)
	}
	if len(req.Pieces) != 3 {
		t.Fatalf("expected the 3 standard leaf widths, got %d pieces", len(req.Pieces))
	}
	if req.StockWidth != 2440 || req.Kerf != 3 {
		t.Errorf("sheet settings not applied to template request: %+v", req)
	}
}

func TestLookupTemplate(t *testing.T) {
	store := model.NewTemplateStore()
	store.Add(model.NewSizeTemplate("Shop Pack", "", []model.PieceSpec{
		{PartCode: "KP800300SSS", Width: 800, Height: 300, Quantity: 1, Material: "SSS"},
	}))
	builtins := model.BuiltinTemplates()

	tmpl, err := lookupTemplate(store, builtins, "Shop Pack")
	if err != nil {
		t.Fatal(err)
	}
	if len(tmpl.Pieces) != 1 {
		t.Errorf("expected the saved template, got %+v", tmpl)
	}

	tmpl, err = lookupTemplate(store, builtins, "Fire Door Pack")
	if err != nil {
		t.Fatal(err)
	}
	if len(tmpl.Pieces) != 1 || tmpl.Pieces[0].Quantity != 2 {
		t.Errorf("expected the builtin fire door pack, got %+v", tmpl)
	}

	if _, err := lookupTemplate(store, builtins, "No Such Pack"); err == nil {
		t.Error("expected error for an unknown template name")
	}
}

func TestBuildRequest_NoInputErrors(t *testing.T) {
	of := orderFlags{stock: "2440x1220", kerf: 3, grain: "none"}
	if _, _, err := of.buildRequest(); err == nil {
		t.Error("expected error when no input is given")
	}
}

func TestPrintJobs(t *testing.T) {
	result := model.PackResult{Sheets: []model.Sheet{{Index: 0, Material: "SSS"}}}
	jobs := []project.SavedJob{
		project.NewSavedJob("Ward 3 doors", model.PackRequest{
			Pieces:      []model.PieceSpec{{PartCode: "KP800300SSS", Width: 800, Height: 300, Quantity: 2, Material: "SSS"}},
			StockWidth:  2440,
			StockHeight: 1220,
			Kerf:        3,
		}, &result),
		project.NewSavedJob("Unpacked draft", model.PackRequest{}, nil),
	}

	var buf bytes.Buffer
	printJobs(&buf, jobs)
	out := buf.String()

	if !strings.Contains(out, "Ward 3 doors") {
		t.Errorf("expected job name in listing, got:\n%s", out)
	}
	if !strings.Contains(out, jobs[0].ID) {
		t.Errorf("expected job ID in listing, got:\n%s", out)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Errorf("expected header plus 2 jobs, got %d lines:\n%s", len(lines), out)
	}
	// The draft has no result snapshot, so its sheet count is a dash.
	if !strings.HasSuffix(strings.TrimRight(lines[2], " "), "-") {
		t.Errorf("expected a dash sheet count for the unpacked job, got:\n%s", out)
	}
}
