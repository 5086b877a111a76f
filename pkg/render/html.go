package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/stats"
)

//go:embed templates/*.html
var templatesFS embed.FS

// HTMLRenderer renders the results fragment and chart panel for the web
// dashboard. Prefix is prepended to every action URL.
type HTMLRenderer struct {
	Prefix string
	tmpl   *template.Template
}

// NewHTMLRenderer parses the embedded templates.
func NewHTMLRenderer(prefix string) (*HTMLRenderer, error) {
	tmpl, err := Templates()
	if err != nil {
		return nil, err
	}
	return &HTMLRenderer{Prefix: prefix, tmpl: tmpl}, nil
}

// FuncMap returns the helpers the templates use.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"statusBadge": StatusBadge,
		"even":        func(i int) bool { return i%2 == 0 },
	}
}

// Templates parses the embedded templates. Callers may add their own page
// templates to the returned set.
func Templates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(FuncMap()).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

// Row is one sheet in the results fragment.
type Row struct {
	View   SheetView
	Hidden bool
	Prefix string
	Busy   bool
	Done   string
}

// ResultsData is the template input for the "results" fragment.
type ResultsData struct {
	Prefix    string
	Mode      ViewMode
	Query     string
	Busy      bool
	Totals    stats.Totals
	Rows      []Row
	Documents []Section
}

// NewResultsData builds the fragment input from s.
func NewResultsData(s State, prefix string) ResultsData {
	mode := s.ModeOrDefault()
	done := "✓✓✓"
	if mode == ViewCards {
		done = CardConfirmation
	}

	views := s.Views()
	vis := Filter(views, s.Query)
	rows := make([]Row, len(views))
	for i, v := range views {
		rows[i] = Row{View: v, Hidden: !vis[i].Visible, Prefix: prefix, Busy: s.Busy, Done: done}
	}

	return ResultsData{
		Prefix:    prefix,
		Mode:      mode,
		Query:     s.Query,
		Busy:      s.Busy,
		Totals:    s.Totals(),
		Rows:      rows,
		Documents: Documents(s.Data),
	}
}

// Render implements Renderer.
func (r *HTMLRenderer) Render(s State) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "results", NewResultsData(s, r.Prefix)); err != nil {
		return "", fmt.Errorf("render results: %w", err)
	}
	return buf.String(), nil
}

// RenderChart renders the chart panel for s.
func (r *HTMLRenderer) RenderChart(s State) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "chart", BuildChart(s.Totals(), HTMLBarWidth)); err != nil {
		return "", fmt.Errorf("render chart: %w", err)
	}
	return buf.String(), nil
}
