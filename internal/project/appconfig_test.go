package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/piwi3910/PlateCut/internal/model"
)

func TestSaveAndLoadAppConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := model.DefaultAppConfig()
	cfg.DefaultKerf = 5
	cfg.DefaultGrain = model.GrainHorizontal
	cfg.DefaultMaterial = "BRS"
	cfg.SheetCost = decimal.RequireFromString("186.00")
	cfg.RecentJobs = []string{"abc12345", "def67890"}

	if err := SaveAppConfig(path, cfg); err != nil {
		t.Fatalf("SaveAppConfig failed: %v", err)
	}

	loaded, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}

	if loaded.DefaultKerf != 5 {
		t.Errorf("expected DefaultKerf=5, got %d", loaded.DefaultKerf)
	}
	if loaded.DefaultGrain != model.GrainHorizontal {
		t.Errorf("expected horizontal grain, got %v", loaded.DefaultGrain)
	}
	if loaded.DefaultMaterial != "BRS" {
		t.Errorf("expected DefaultMaterial=BRS, got %s", loaded.DefaultMaterial)
	}
	if !loaded.SheetCost.Equal(cfg.SheetCost) {
		t.Errorf("expected SheetCost=%s, got %s", cfg.SheetCost, loaded.SheetCost)
	}
	if len(loaded.RecentJobs) != 2 {
		t.Errorf("expected 2 recent jobs, got %d", len(loaded.RecentJobs))
	}
}

func TestLoadAppConfig_MissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missing.json")

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}

	defaults := model.DefaultAppConfig()
	if cfg.DefaultStockWidth != defaults.DefaultStockWidth {
		t.Errorf("expected default stock width %d, got %d", defaults.DefaultStockWidth, cfg.DefaultStockWidth)
	}
	if cfg.DefaultKerf != defaults.DefaultKerf {
		t.Errorf("expected default kerf %d, got %d", defaults.DefaultKerf, cfg.DefaultKerf)
	}
}

func TestLoadAppConfig_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadAppConfig(path); err == nil {
		t.Error("expected error for corrupt config file")
	}
}

func TestLoadAppConfig_NilRecentJobsNormalized(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"default_kerf_mm": 3}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if cfg.RecentJobs == nil {
		t.Error("RecentJobs should never be nil after load")
	}
}

func TestSaveAppConfig_CreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deeper", "config.json")

	if err := SaveAppConfig(path, model.DefaultAppConfig()); err != nil {
		t.Fatalf("SaveAppConfig failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file was not created: %v", err)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()
	if !strings.HasSuffix(path, filepath.Join(".platecut", "config.json")) {
		t.Errorf("unexpected config path: %s", path)
	}
}
