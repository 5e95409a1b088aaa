package export

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/piwi3910/PlateCut/internal/model"
)

func TestCollectLabelInfos(t *testing.T) {
	result := buildTestResult()
	labels := CollectLabelInfos(result)

	if len(labels) != 4 {
		t.Fatalf("expected 4 labels, got %d", len(labels))
	}

	first := labels[0]
	if first.PieceID != "KP800300SSS-1" {
		t.Errorf("expected piece ID KP800300SSS-1, got %s", first.PieceID)
	}
	if first.SheetIndex != 1 {
		t.Errorf("expected 1-based sheet index 1, got %d", first.SheetIndex)
	}
	if first.Material != "SSS" {
		t.Errorf("expected material SSS, got %s", first.Material)
	}

	rotated := labels[2]
	if !rotated.Rotated {
		t.Error("expected third label to be rotated")
	}
	if rotated.Width != 150 || rotated.Height != 600 {
		t.Errorf("expected placed dims 150x600, got %dx%d", rotated.Width, rotated.Height)
	}

	last := labels[3]
	if last.SheetIndex != 2 || last.Material != "BRS" {
		t.Errorf("expected sheet 2 BRS, got sheet %d %s", last.SheetIndex, last.Material)
	}
}

func TestCollectLabelInfos_Empty(t *testing.T) {
	labels := CollectLabelInfos(model.PackResult{})
	if len(labels) != 0 {
		t.Errorf("expected no labels, got %d", len(labels))
	}
}

func TestLabelInfo_JSONRoundtrip(t *testing.T) {
	info := LabelInfo{
		PieceID:    "KP800300SSS-1",
		PartCode:   "KP800300SSS",
		Width:      800,
		Height:     300,
		SheetIndex: 1,
		Material:   "SSS",
		X:          0,
		Y:          303,
	}

	data, err := json.Marshal(info)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded LabelInfo
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded != info {
		t.Errorf("roundtrip mismatch: %+v != %+v", decoded, info)
	}
}

func TestWriteLabels_ProducesDocument(t *testing.T) {
	var buf bytes.Buffer

	if err := WriteLabels(&buf, buildTestResult()); err != nil {
		t.Fatalf("WriteLabels returned error: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Error("output does not start with a PDF header")
	}
	// Four QR images embedded, so the file is not tiny
	if buf.Len() < 1000 {
		t.Errorf("labels PDF seems too small: %d bytes", buf.Len())
	}
}

func TestWriteLabels_EmptyResult(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteLabels(&buf, model.PackResult{}); err == nil {
		t.Fatal("expected error for empty result, got nil")
	}
}
