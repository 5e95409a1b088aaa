package model

import (
	"encoding/json"
	"testing"
)

func TestParseGrain(t *testing.T) {
	tests := []struct {
		in      string
		want    Grain
		wantErr bool
	}{
		{"none", GrainNone, false},
		{"horizontal", GrainHorizontal, false},
		{"vertical", GrainVertical, false},
		{"", GrainNone, true},
		{"Horizontal", GrainNone, true},
		{"diagonal", GrainNone, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseGrain(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseGrain(%q): expected error, got %v", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseGrain(%q): unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseGrain(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestGrainJSONRoundTrip(t *testing.T) {
	for _, g := range []Grain{GrainNone, GrainHorizontal, GrainVertical} {
		data, err := json.Marshal(g)
		if err != nil {
			t.Fatalf("marshal %v: %v", g, err)
		}
		var decoded Grain
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if decoded != g {
			t.Errorf("round trip of %v produced %v", g, decoded)
		}
	}
}

func TestGrainUnmarshalRejectsUnknown(t *testing.T) {
	var g Grain
	if err := json.Unmarshal([]byte(`"diagonal"`), &g); err == nil {
		t.Error("expected error for unknown grain string")
	}
	if err := json.Unmarshal([]byte(`1`), &g); err == nil {
		t.Error("expected error for numeric grain")
	}
}

func TestMakePartCode(t *testing.T) {
	got := MakePartCode(800, 300, "SSS")
	if got != "KP800300SSS" {
		t.Errorf("MakePartCode(800, 300, SSS) = %q, want KP800300SSS", got)
	}
	got = MakePartCode(1000, 150, "BRS")
	if got != "KP1000150BRS" {
		t.Errorf("MakePartCode(1000, 150, BRS) = %q, want KP1000150BRS", got)
	}
}

func TestNewPiece(t *testing.T) {
	p := NewPiece(826, 150, "SSS")
	if len(p.ID) != 8 {
		t.Errorf("expected 8-char generated ID, got %q", p.ID)
	}
	if p.PartCode != "KP826150SSS" {
		t.Errorf("wrong part code: %q", p.PartCode)
	}
	if p.Width != 826 || p.Height != 150 {
		t.Errorf("wrong dimensions: %dx%d", p.Width, p.Height)
	}
	if !p.Rotatable {
		t.Error("new pieces should be rotatable by default")
	}
	if p.Area() != 826*150 {
		t.Errorf("Area() = %d, want %d", p.Area(), 826*150)
	}
}

func TestAllowsRotation(t *testing.T) {
	tests := []struct {
		name      string
		grain     Grain
		rotatable bool
		want      bool
	}{
		{"no grain, rotatable", GrainNone, true, true},
		{"no grain, fixed", GrainNone, false, false},
		{"horizontal grain, rotatable", GrainHorizontal, true, false},
		{"horizontal grain, fixed", GrainHorizontal, false, false},
		{"vertical grain, rotatable", GrainVertical, true, false},
		{"vertical grain, fixed", GrainVertical, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := SheetConfig{StockWidth: 2440, StockHeight: 1220, Grain: tt.grain}
			p := Piece{ID: "p1", Width: 800, Height: 300, Rotatable: tt.rotatable}
			if got := cfg.AllowsRotation(p); got != tt.want {
				t.Errorf("AllowsRotation = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSheetUsedArea(t *testing.T) {
	s := Sheet{
		Index:    0,
		Material: "SSS",
		Placements: []Placement{
			{PieceID: "a", X: 0, Y: 0, PlacedWidth: 800, PlacedHeight: 300},
			{PieceID: "b", X: 803, Y: 0, PlacedWidth: 300, PlacedHeight: 600, Rotated: true},
		},
	}
	want := 800*300 + 300*600
	if got := s.UsedArea(); got != want {
		t.Errorf("UsedArea() = %d, want %d", got, want)
	}
}

func TestPackResultPlacedCount(t *testing.T) {
	r := PackResult{
		Sheets: []Sheet{
			{Placements: []Placement{{PieceID: "a"}, {PieceID: "b"}}},
			{Placements: []Placement{{PieceID: "c"}}},
		},
	}
	if got := r.PlacedCount(); got != 3 {
		t.Errorf("PlacedCount() = %d, want 3", got)
	}
}

func TestBuildPiecesExpandsQuantities(t *testing.T) {
	req := PackRequest{
		Pieces: []PieceSpec{
			{PartCode: "KP800300SSS", Width: 800, Height: 300, Quantity: 3, Material: "SSS"},
			{PartCode: "KP600300SSS", Width: 600, Height: 300, Quantity: 1, Material: "SSS"},
		},
		StockWidth:  2440,
		StockHeight: 1220,
	}
	pieces := req.BuildPieces()
	if len(pieces) != 4 {
		t.Fatalf("expected 4 pieces, got %d", len(pieces))
	}
	wantIDs := []string{"KP800300SSS-1", "KP800300SSS-2", "KP800300SSS-3", "KP600300SSS-1"}
	for i, want := range wantIDs {
		if pieces[i].ID != want {
			t.Errorf("piece %d: ID = %q, want %q", i, pieces[i].ID, want)
		}
	}
	for i, p := range pieces {
		if !p.Rotatable {
			t.Errorf("piece %d: expected rotatable by default", i)
		}
	}
}

func TestBuildPiecesNumbersAcrossDuplicateLines(t *testing.T) {
	req := PackRequest{
		Pieces: []PieceSpec{
			{PartCode: "KP800300SSS", Width: 800, Height: 300, Quantity: 2, Material: "SSS"},
			{PartCode: "KP800300SSS", Width: 800, Height: 300, Quantity: 2, Material: "SSS"},
		},
	}
	pieces := req.BuildPieces()
	if len(pieces) != 4 {
		t.Fatalf("expected 4 pieces, got %d", len(pieces))
	}
	if pieces[3].ID != "KP800300SSS-4" {
		t.Errorf("duplicate lines must keep numbering unique, got last ID %q", pieces[3].ID)
	}
}

func TestBuildPiecesHonorsRotatableFlag(t *testing.T) {
	fixed := false
	req := PackRequest{
		Pieces: []PieceSpec{
			{PartCode: "KP800300SSS", Width: 800, Height: 300, Quantity: 1, Rotatable: &fixed},
		},
	}
	pieces := req.BuildPieces()
	if len(pieces) != 1 {
		t.Fatalf("expected 1 piece, got %d", len(pieces))
	}
	if pieces[0].Rotatable {
		t.Error("explicit rotatable=false was not preserved")
	}
}

func TestPackRequestConfig(t *testing.T) {
	req := PackRequest{StockWidth: 2440, StockHeight: 1220, Kerf: 3, Grain: GrainHorizontal}
	cfg := req.Config()
	if cfg.StockWidth != 2440 || cfg.StockHeight != 1220 || cfg.Kerf != 3 || cfg.Grain != GrainHorizontal {
		t.Errorf("Config() = %+v", cfg)
	}
	if cfg.Area() != 2440*1220 {
		t.Errorf("Area() = %d, want %d", cfg.Area(), 2440*1220)
	}
}

func TestPackRequestJSONUsesWireNames(t *testing.T) {
	req := PackRequest{
		Pieces: []PieceSpec{
			{PartCode: "KP800300SSS", Width: 800, Height: 300, Quantity: 5, Material: "SSS"},
		},
		StockWidth:  2400,
		StockHeight: 1200,
		Kerf:        3,
		Grain:       GrainNone,
	}
	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"pieces", "stock_width_mm", "stock_height_mm", "kerf_mm", "grain"} {
		if _, ok := m[key]; !ok {
			t.Errorf("wire JSON missing key %q", key)
		}
	}
	if m["grain"] != "none" {
		t.Errorf("grain serialized as %v, want \"none\"", m["grain"])
	}
}
