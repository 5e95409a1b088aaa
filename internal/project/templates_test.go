package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/PlateCut/internal/model"
)

func TestSaveAndLoadTemplates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "templates.json")

	store := model.NewTemplateStore()
	store.Add(model.NewSizeTemplate("Test Pack", "Two plates",
		[]model.PieceSpec{
			{PartCode: "KP826150SSS", Width: 826, Height: 150, Quantity: 2, Material: "SSS"},
		}))

	if err := SaveTemplates(path, store); err != nil {
		t.Fatalf("SaveTemplates failed: %v", err)
	}

	loaded, err := LoadTemplates(path)
	if err != nil {
		t.Fatalf("LoadTemplates failed: %v", err)
	}
	if len(loaded.Templates) != 1 {
		t.Fatalf("expected 1 template, got %d", len(loaded.Templates))
	}
	if loaded.Templates[0].Name != "Test Pack" {
		t.Errorf("expected name 'Test Pack', got %s", loaded.Templates[0].Name)
	}
	if len(loaded.Templates[0].Pieces) != 1 {
		t.Errorf("expected 1 piece spec, got %d", len(loaded.Templates[0].Pieces))
	}
}

func TestLoadTemplates_MissingFileReturnsEmptyStore(t *testing.T) {
	store, err := LoadTemplates(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("LoadTemplates failed: %v", err)
	}
	if store.Templates == nil {
		t.Error("Templates slice should never be nil")
	}
	if len(store.Templates) != 0 {
		t.Errorf("expected empty store, got %d templates", len(store.Templates))
	}
}

func TestLoadTemplates_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "templates.json")
	if err := os.WriteFile(path, []byte("]["), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadTemplates(path); err == nil {
		t.Error("expected error for corrupt templates file")
	}
}
