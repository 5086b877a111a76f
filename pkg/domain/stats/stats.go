// Package stats reduces drawing files to per-category totals.
package stats

import (
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/detection"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/drawing"
)

// Totals is the aggregate over every roof plan visited.
type Totals struct {
	Sheets       int `json:"sheets"`
	Drains       int `json:"drains"`
	Scuppers     int `json:"scuppers"`
	RTUs         int `json:"rtus"`
	Penetrations int `json:"penetrations"`
}

// Aggregate sums detection counts across all roof plans. Files without roof
// plans contribute nothing.
func Aggregate(drawings []drawing.File) Totals {
	var t Totals
	for _, f := range drawings {
		for _, p := range f.RoofPlans {
			t.Sheets++
			t.Drains += detection.ExtractCount(p.Drains)
			t.Scuppers += detection.ExtractCount(p.Scuppers)
			t.RTUs += detection.ExtractCount(p.RTUsCurbs)
			t.Penetrations += detection.ExtractCount(p.Penetrations)
		}
	}
	return t
}

// Category returns the total for c.
func (t Totals) Category(c drawing.Category) int {
	switch c {
	case drawing.CategoryDrains:
		return t.Drains
	case drawing.CategoryScuppers:
		return t.Scuppers
	case drawing.CategoryRTUs:
		return t.RTUs
	case drawing.CategoryPenetrations:
		return t.Penetrations
	default:
		return 0
	}
}

// Elements is the sum of all four categories.
func (t Totals) Elements() int {
	return t.Drains + t.Scuppers + t.RTUs + t.Penetrations
}

// AveragePerSheet returns Elements/Sheets, or 0 when there are no sheets.
func (t Totals) AveragePerSheet() float64 {
	if t.Sheets == 0 {
		return 0
	}
	return float64(t.Elements()) / float64(t.Sheets)
}

// Add returns the category-wise sum of t and o.
func (t Totals) Add(o Totals) Totals {
	return Totals{
		Sheets:       t.Sheets + o.Sheets,
		Drains:       t.Drains + o.Drains,
		Scuppers:     t.Scuppers + o.Scuppers,
		RTUs:         t.RTUs + o.RTUs,
		Penetrations: t.Penetrations + o.Penetrations,
	}
}
