package project

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/piwi3910/PlateCut/internal/model"
)

// DefaultInventoryPath returns the default file path for the sheet
// preset inventory, ~/.platecut/presets.json.
func DefaultInventoryPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".platecut", "presets.json"), nil
}

// SaveInventory writes the sheet presets to the specified JSON file,
// creating parent directories if needed.
func SaveInventory(path string, inv model.Inventory) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(inv, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadInventory reads the sheet presets from the specified JSON file.
// A missing file seeds the default inventory and saves it.
func LoadInventory(path string) (model.Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			inv := model.DefaultInventory()
			if saveErr := SaveInventory(path, inv); saveErr != nil {
				return inv, saveErr
			}
			return inv, nil
		}
		return model.Inventory{}, err
	}
	var inv model.Inventory
	if err := json.Unmarshal(data, &inv); err != nil {
		return model.Inventory{}, err
	}
	return inv, nil
}

// LoadOrCreateInventory loads the presets from the default path,
// creating the file with the shop defaults when it does not exist.
func LoadOrCreateInventory() (model.Inventory, string, error) {
	path, err := DefaultInventoryPath()
	if err != nil {
		return model.DefaultInventory(), "", err
	}
	inv, err := LoadInventory(path)
	return inv, path, err
}

// ExportInventory exports the presets to a user-specified JSON file.
func ExportInventory(path string, inv model.Inventory) error {
	return SaveInventory(path, inv)
}

// ImportInventory merges presets from a user-specified JSON file into
// the existing inventory. Presets whose ID already exists are skipped.
func ImportInventory(path string, existing model.Inventory) (model.Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return existing, err
	}
	var imported model.Inventory
	if err := json.Unmarshal(data, &imported); err != nil {
		return existing, err
	}

	ids := make(map[string]bool, len(existing.Sheets))
	for _, s := range existing.Sheets {
		ids[s.ID] = true
	}
	for _, s := range imported.Sheets {
		if !ids[s.ID] {
			existing.Sheets = append(existing.Sheets, s)
			ids[s.ID] = true
		}
	}

	return existing, nil
}
