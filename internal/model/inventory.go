package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SheetPreset represents a reusable stock sheet definition: a named size
// and material the shop keeps on the rack, with its purchase price.
type SheetPreset struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Width    int             `json:"width_mm"`
	Height   int             `json:"height_mm"`
	Material string          `json:"material"`
	Cost     decimal.Decimal `json:"cost"`
}

// NewSheetPreset creates a new SheetPreset with a generated ID.
func NewSheetPreset(name string, width, height int, material string, cost decimal.Decimal) SheetPreset {
	return SheetPreset{
		ID:       uuid.New().String()[:8],
		Name:     name,
		Width:    width,
		Height:   height,
		Material: material,
		Cost:     cost,
	}
}

// Config builds a SheetConfig cutting from this preset.
func (sp SheetPreset) Config(kerf int, grain Grain) SheetConfig {
	return SheetConfig{
		StockWidth:  sp.Width,
		StockHeight: sp.Height,
		Kerf:        kerf,
		Grain:       grain,
	}
}

// Inventory holds the user's saved sheet presets.
type Inventory struct {
	Sheets []SheetPreset `json:"sheets"`
}

// DefaultInventory returns an inventory populated with the sheet sizes
// kickplate suppliers actually stock.
func DefaultInventory() Inventory {
	price := decimal.RequireFromString
	return Inventory{
		Sheets: []SheetPreset{
			NewSheetPreset("Satin Stainless 2440x1220", 2440, 1220, "SSS", price("186.00")),
			NewSheetPreset("Satin Stainless 3000x1500", 3000, 1500, "SSS", price("278.50")),
			NewSheetPreset("Polished Stainless 2440x1220", 2440, 1220, "PSS", price("214.00")),
			NewSheetPreset("Brass 2000x1000", 2000, 1000, "BRS", price("342.00")),
			NewSheetPreset("Satin Anodised Aluminium 2500x1250", 2500, 1250, "SAA", price("96.40")),
			NewSheetPreset("Bronze 2000x1000", 2000, 1000, "BRZ", price("395.00")),
		},
	}
}

// FindSheetByID returns a pointer to the preset with the given ID, or nil.
func (inv *Inventory) FindSheetByID(id string) *SheetPreset {
	for i := range inv.Sheets {
		if inv.Sheets[i].ID == id {
			return &inv.Sheets[i]
		}
	}
	return nil
}

// FindSheetByName returns a pointer to the first preset with the given name, or nil.
func (inv *Inventory) FindSheetByName(name string) *SheetPreset {
	for i := range inv.Sheets {
		if inv.Sheets[i].Name == name {
			return &inv.Sheets[i]
		}
	}
	return nil
}

// SheetNames returns the preset names in inventory order.
func (inv *Inventory) SheetNames() []string {
	names := make([]string, len(inv.Sheets))
	for i, s := range inv.Sheets {
		names[i] = s.Name
	}
	return names
}
