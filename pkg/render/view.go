// Package render projects a parse result and the review board into sheet
// views, and renders them as tables, cards, charts and CSV.
//
// Every renderer is a pure function of State: the same data, statuses, mode
// and query always produce the same bytes.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/detection"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/drawing"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/stats"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/workflow"
)

// Placeholder is shown for absent detail numbers, types, scales and counts.
const Placeholder = "-"

// UnknownSheet labels a card whose detail number is absent.
const UnknownSheet = "Unknown"

// ViewMode selects the listing layout.
type ViewMode string

const (
	ViewTable ViewMode = "table"
	ViewCards ViewMode = "cards"
)

// IsValid returns true for table and cards.
func (m ViewMode) IsValid() bool {
	return m == ViewTable || m == ViewCards
}

func (m ViewMode) String() string {
	return string(m)
}

// ParseViewMode parses a view mode name.
func ParseViewMode(s string) (ViewMode, error) {
	m := ViewMode(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", fmt.Errorf("invalid view mode: %s (want table or cards)", s)
	}
	return m, nil
}

// Cell is one detection category on one sheet.
type Cell struct {
	Category   drawing.Category
	Count      int
	Confidence detection.Confidence
	Present    bool
}

// Label returns the category heading.
func (c Cell) Label() string {
	return c.Category.Label()
}

// Icon returns the emoji shown next to the category.
func (c Cell) Icon() string {
	return CategoryIcon(c.Category)
}

// Display returns the count, or the placeholder when nothing was detected.
func (c Cell) Display() string {
	if c.Count == 0 {
		return Placeholder
	}
	return strconv.Itoa(c.Count)
}

// Badge returns the badge class; zero counts are always neutral.
func (c Cell) Badge() string {
	if c.Count == 0 {
		return detection.ConfidenceNone.Badge()
	}
	return c.Confidence.Badge()
}

// CategoryIcon returns the emoji for c.
func CategoryIcon(c drawing.Category) string {
	switch c {
	case drawing.CategoryDrains:
		return "💧"
	case drawing.CategoryScuppers:
		return "🌊"
	case drawing.CategoryRTUs:
		return "⚡"
	case drawing.CategoryPenetrations:
		return "🔧"
	default:
		return ""
	}
}

// SheetView is everything a renderer needs for one sheet.
type SheetView struct {
	ID        drawing.SheetID
	FileIndex int
	Filename  string
	Detail    string
	Type      string
	Scale     string
	Cells     []Cell
	Status    workflow.Status
}

// DetailOrPlaceholder is the table and CSV sheet label.
func (v SheetView) DetailOrPlaceholder() string {
	if v.Detail == "" {
		return Placeholder
	}
	return v.Detail
}

// CardTitle is the sheet line shown on a card.
func (v SheetView) CardTitle() string {
	if v.Detail == "" {
		return "Sheet: " + UnknownSheet
	}
	return "Sheet: " + v.Detail
}

// TypeOrPlaceholder returns the type or the placeholder.
func (v SheetView) TypeOrPlaceholder() string {
	if v.Type == "" {
		return Placeholder
	}
	return v.Type
}

// ScaleOrPlaceholder returns the scale or the placeholder.
func (v SheetView) ScaleOrPlaceholder() string {
	if v.Scale == "" {
		return Placeholder
	}
	return v.Scale
}

// Action returns the workflow button label for the sheet.
func (v SheetView) Action() string {
	return v.Status.ActionLabel()
}

// CanAdvance reports whether the sheet shows an interactive button.
func (v SheetView) CanAdvance() bool {
	return !v.Status.IsFinal()
}

// Cell returns the cell for c.
func (v SheetView) Cell(c drawing.Category) Cell {
	for _, cell := range v.Cells {
		if cell.Category == c {
			return cell
		}
	}
	return Cell{Category: c, Confidence: detection.ConfidenceNone}
}

// Project builds one view per roof plan in document order. Sheets missing
// from statuses are detected.
func Project(set *drawing.Set, statuses map[drawing.SheetID]workflow.Status) []SheetView {
	sheets := set.Sheets()
	views := make([]SheetView, 0, len(sheets))
	for _, sh := range sheets {
		status, ok := statuses[sh.ID]
		if !ok || !status.IsValid() {
			status = workflow.StatusDetected
		}

		cells := make([]Cell, 0, 4)
		for _, c := range drawing.AllCategories() {
			field := sh.Plan.Field(c)
			d := detection.Summarize(field)
			cells = append(cells, Cell{
				Category:   c,
				Count:      d.Count,
				Confidence: d.Confidence,
				Present:    field != nil,
			})
		}

		views = append(views, SheetView{
			ID:        sh.ID,
			FileIndex: sh.FileIndex,
			Filename:  sh.Filename,
			Detail:    sh.Plan.Detail(),
			Type:      sh.Plan.TypeText(),
			Scale:     sh.Plan.ScaleText(),
			Cells:     cells,
			Status:    status,
		})
	}
	return views
}

// State is the full input to a renderer.
type State struct {
	Data     *drawing.Set
	Statuses map[drawing.SheetID]workflow.Status
	Mode     ViewMode
	Query    string
	// Busy is set while an upload is in flight.
	Busy bool
}

// ModeOrDefault returns Mode, or table when unset.
func (s State) ModeOrDefault() ViewMode {
	if s.Mode.IsValid() {
		return s.Mode
	}
	return ViewTable
}

// Views projects the state's data.
func (s State) Views() []SheetView {
	return Project(s.Data, s.Statuses)
}

// Totals aggregates the state's drawings.
func (s State) Totals() stats.Totals {
	if s.Data == nil {
		return stats.Totals{}
	}
	return stats.Aggregate(s.Data.Drawings)
}

// HasDrawings reports whether there is anything to list.
func (s State) HasDrawings() bool {
	return s.Data.HasDrawings()
}

// Renderer turns a State into output.
type Renderer interface {
	Render(State) (string, error)
}
