package model

import "github.com/shopspring/decimal"

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Default sheet settings applied to new packing runs
	DefaultStockWidth  int             `json:"default_stock_width_mm"`
	DefaultStockHeight int             `json:"default_stock_height_mm"`
	DefaultKerf        int             `json:"default_kerf_mm"`
	DefaultGrain       Grain           `json:"default_grain"`
	DefaultMaterial    string          `json:"default_material"`
	SheetCost          decimal.Decimal `json:"sheet_cost"` // Purchase price of one default sheet

	// Application preferences
	RecentJobs []string `json:"recent_jobs"`
}

// maxRecentJobs caps the recent-jobs list carried in the config file.
const maxRecentJobs = 10

// DefaultAppConfig returns an AppConfig populated with the shop's stock
// defaults: 2440x1220 satin stainless, 3mm blade.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		DefaultStockWidth:  2440,
		DefaultStockHeight: 1220,
		DefaultKerf:        3,
		DefaultGrain:       GrainNone,
		DefaultMaterial:    "SSS",
		SheetCost:          decimal.Zero,
		RecentJobs:         []string{},
	}
}

// SheetConfig returns the default sheet configuration from the config.
func (c AppConfig) SheetConfig() SheetConfig {
	return SheetConfig{
		StockWidth:  c.DefaultStockWidth,
		StockHeight: c.DefaultStockHeight,
		Kerf:        c.DefaultKerf,
		Grain:       c.DefaultGrain,
	}
}

// AddRecentJob prepends a job path to the recent list, dropping any
// earlier occurrence and trimming the list to its cap.
func (c *AppConfig) AddRecentJob(path string) {
	recent := []string{path}
	for _, p := range c.RecentJobs {
		if p != path {
			recent = append(recent, p)
		}
	}
	if len(recent) > maxRecentJobs {
		recent = recent[:maxRecentJobs]
	}
	c.RecentJobs = recent
}
