package model

import (
	"time"

	"github.com/google/uuid"
)

// SizeTemplate is a reusable set of kickplate piece specs, typically a
// standard door pack a customer orders over and over. Templates capture
// specs, never packing results.
type SizeTemplate struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	CreatedAt   string      `json:"created_at"`
	UpdatedAt   string      `json:"updated_at"`
	Pieces      []PieceSpec `json:"pieces"`
}

// NewSizeTemplate creates a template from the given piece specs.
func NewSizeTemplate(name, description string, pieces []PieceSpec) SizeTemplate {
	now := time.Now().UTC().Format(time.RFC3339)
	return SizeTemplate{
		ID:          uuid.New().String()[:8],
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Pieces:      copySpecs(pieces),
	}
}

// Request builds a PackRequest from the template and a sheet config.
func (t SizeTemplate) Request(cfg SheetConfig) PackRequest {
	return PackRequest{
		Pieces:      copySpecs(t.Pieces),
		StockWidth:  cfg.StockWidth,
		StockHeight: cfg.StockHeight,
		Kerf:        cfg.Kerf,
		Grain:       cfg.Grain,
	}
}

// BuiltinTemplates returns the standard kickplate packs stocked for UK
// door leaf widths (726/826/926mm) in satin stainless.
func BuiltinTemplates() []SizeTemplate {
	spec := func(w, h int) PieceSpec {
		return PieceSpec{
			PartCode: MakePartCode(w, h, "SSS"),
			Width:    w,
			Height:   h,
			Quantity: 1,
			Material: "SSS",
		}
	}
	return []SizeTemplate{
		NewSizeTemplate("Standard Door Pack", "One 150mm kickplate per standard leaf width",
			[]PieceSpec{spec(726, 150), spec(826, 150), spec(926, 150)}),
		NewSizeTemplate("Fire Door Pack", "200mm kickplates both faces, 826mm leaf",
			[]PieceSpec{{PartCode: MakePartCode(826, 200, "SSS"), Width: 826, Height: 200, Quantity: 2, Material: "SSS"}}),
		NewSizeTemplate("Hospital Corridor Pack", "Tall 300mm plates for impact zones",
			[]PieceSpec{spec(726, 300), spec(826, 300), spec(926, 300)}),
	}
}

// TemplateStore holds a collection of size templates.
type TemplateStore struct {
	Templates []SizeTemplate `json:"templates"`
}

// NewTemplateStore creates an empty template store.
func NewTemplateStore() TemplateStore {
	return TemplateStore{
		Templates: []SizeTemplate{},
	}
}

// Add adds a template to the store.
func (ts *TemplateStore) Add(t SizeTemplate) {
	ts.Templates = append(ts.Templates, t)
}

// Remove removes a template by ID. Returns true if found and removed.
func (ts *TemplateStore) Remove(id string) bool {
	for i, t := range ts.Templates {
		if t.ID == id {
			ts.Templates = append(ts.Templates[:i], ts.Templates[i+1:]...)
			return true
		}
	}
	return false
}

// FindByID returns a pointer to the template with the given ID, or nil.
func (ts *TemplateStore) FindByID(id string) *SizeTemplate {
	for i := range ts.Templates {
		if ts.Templates[i].ID == id {
			return &ts.Templates[i]
		}
	}
	return nil
}

// FindByName returns a pointer to the first template with the given name, or nil.
func (ts *TemplateStore) FindByName(name string) *SizeTemplate {
	for i := range ts.Templates {
		if ts.Templates[i].Name == name {
			return &ts.Templates[i]
		}
	}
	return nil
}

// Names returns the template names in store order.
func (ts *TemplateStore) Names() []string {
	names := make([]string, len(ts.Templates))
	for i, t := range ts.Templates {
		names[i] = t.Name
	}
	return names
}

// copySpecs creates a copy of a specs slice.
func copySpecs(specs []PieceSpec) []PieceSpec {
	if specs == nil {
		return []PieceSpec{}
	}
	cp := make([]PieceSpec, len(specs))
	copy(cp, specs)
	return cp
}
