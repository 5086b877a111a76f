package render

import (
	"strings"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/drawing"
)

// VisibleText is the text a row shows, used for full-text search.
func (v SheetView) VisibleText() string {
	parts := []string{
		v.Filename,
		v.DetailOrPlaceholder(),
		v.CardTitle(),
		v.TypeOrPlaceholder(),
		v.Status.DisplayName(),
	}
	for _, c := range v.Cells {
		parts = append(parts, c.Label(), c.Display())
	}
	parts = append(parts, v.ScaleOrPlaceholder(), v.Action())
	return strings.Join(parts, " ")
}

// Matches reports whether the view passes query. Matching is a
// case-insensitive substring test on the filename, the sheet identifier or
// the visible text. An empty query matches everything.
func (v SheetView) Matches(query string) bool {
	term := strings.ToLower(strings.TrimSpace(query))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(v.Filename), term) ||
		strings.Contains(strings.ToLower(v.Detail), term) ||
		strings.Contains(strings.ToLower(v.VisibleText()), term)
}

// Visibility marks whether a sheet is shown under the current query.
type Visibility struct {
	ID      drawing.SheetID
	Visible bool
}

// Filter marks each view visible or hidden. Views are never removed, so
// clearing the query restores the full listing.
func Filter(views []SheetView, query string) []Visibility {
	out := make([]Visibility, len(views))
	for i, v := range views {
		out[i] = Visibility{ID: v.ID, Visible: v.Matches(query)}
	}
	return out
}

// VisibleCount returns how many entries are visible.
func VisibleCount(vis []Visibility) int {
	n := 0
	for _, v := range vis {
		if v.Visible {
			n++
		}
	}
	return n
}
