package render_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/detection"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/drawing"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/workflow"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/render"
)

const payload = `{
  "scope": {"summary": "Replace roof", "materials": ["TPO", "ISO"], "notes": ""},
  "spec": {"section": "07 54 23"},
  "drawing": [
    {"filename": "roof.pdf", "roof_plans": [
      {"detail_number": "A1.1", "type": "Roof Plan", "scale": "1/8\" = 1'-0\"", "drains": "✓✓ (3)", "scuppers": "(0)"},
      {"detail_number": "A1.2", "scale": "Not specified", "rtus_curbs": "✓✓✓ (2)"}
    ]},
    {"filename": "annex \"B\".pdf", "roof_plans": [
      {"penetrations": "✓ (4)"}
    ]}
  ],
  "assembly": [
    {"filename": "a.pdf", "manufacturer": "Carlisle", "membrane": "TPO 60 mil"}
  ]
}`

func mustSet(t *testing.T) *drawing.Set {
	t.Helper()
	set, err := drawing.Decode([]byte(payload))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	return set
}

func TestProject(t *testing.T) {
	set := mustSet(t)
	sheets := set.Sheets()
	views := render.Project(set, map[drawing.SheetID]workflow.Status{
		sheets[1].ID: workflow.StatusVerified,
		sheets[2].ID: workflow.Status("bogus"),
	})

	if len(views) != 3 {
		t.Fatalf("expected 3 views, got %d", len(views))
	}
	if views[0].Status != workflow.StatusDetected {
		t.Errorf("missing status should be detected, got %s", views[0].Status)
	}
	if views[1].Status != workflow.StatusVerified {
		t.Errorf("expected verified, got %s", views[1].Status)
	}
	if views[2].Status != workflow.StatusDetected {
		t.Errorf("invalid status should fall back to detected, got %s", views[2].Status)
	}

	drains := views[0].Cell(drawing.CategoryDrains)
	if drains.Count != 3 || drains.Confidence != detection.ConfidenceMedium || !drains.Present {
		t.Errorf("unexpected drains cell %+v", drains)
	}
	if got := views[0].Cell(drawing.CategoryScuppers); got.Display() != "-" || got.Badge() != "badge-none" || !got.Present {
		t.Errorf("zero count should show placeholder with neutral badge, got %+v", got)
	}
	if views[1].Scale != "" || views[1].ScaleOrPlaceholder() != "-" {
		t.Errorf("not-specified scale should read as placeholder, got %q", views[1].Scale)
	}
	if views[2].CardTitle() != "Sheet: Unknown" || views[2].DetailOrPlaceholder() != "-" {
		t.Errorf("missing detail: got %q / %q", views[2].CardTitle(), views[2].DetailOrPlaceholder())
	}
	if views[2].FileIndex != 1 {
		t.Errorf("expected file index 1, got %d", views[2].FileIndex)
	}
}

func TestProject_NumericDetection(t *testing.T) {
	set, err := drawing.Decode([]byte(`{"drawing": {"filename": "r.pdf", "roof_plans": [{"detail_number": 7, "drains": 3}]}}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	views := render.Project(set, nil)
	if len(views) != 1 {
		t.Fatalf("expected 1 view, got %d", len(views))
	}
	drains := views[0].Cell(drawing.CategoryDrains)
	if drains.Count != 0 || drains.Confidence != detection.ConfidenceNone || drains.Display() != "-" {
		t.Errorf("numeric drains should render as placeholder, got %+v", drains)
	}
	if views[0].DetailOrPlaceholder() != "7" {
		t.Errorf("expected detail 7, got %q", views[0].DetailOrPlaceholder())
	}
}

func TestProject_NilSet(t *testing.T) {
	if views := render.Project(nil, nil); len(views) != 0 {
		t.Errorf("expected no views, got %d", len(views))
	}
}

func TestParseViewMode(t *testing.T) {
	tests := []struct {
		in      string
		want    render.ViewMode
		wantErr bool
	}{
		{"table", render.ViewTable, false},
		{" Cards ", render.ViewCards, false},
		{"grid", "", true},
	}
	for _, tt := range tests {
		got, err := render.ParseViewMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseViewMode(%q) = %q, %v", tt.in, got, err)
		}
	}
	if (render.State{}).ModeOrDefault() != render.ViewTable {
		t.Error("default mode should be table")
	}
}

func TestFilter(t *testing.T) {
	set := mustSet(t)
	views := render.Project(set, nil)

	tests := []struct {
		query string
		want  []bool
	}{
		{"", []bool{true, true, true}},
		{"a1.1", []bool{true, false, false}},
		{"ANNEX", []bool{false, false, true}},
		{"roof.pdf", []bool{true, true, false}},
		{"zzz", []bool{false, false, false}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			vis := render.Filter(views, tt.query)
			got := make([]bool, len(vis))
			for i, v := range vis {
				got[i] = v.Visible
				if v.ID != views[i].ID {
					t.Errorf("visibility %d has id %s, want %s", i, v.ID, views[i].ID)
				}
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("visibility mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestVisibleCount(t *testing.T) {
	vis := []render.Visibility{{Visible: true}, {Visible: false}, {Visible: true}}
	if n := render.VisibleCount(vis); n != 2 {
		t.Errorf("expected 2, got %d", n)
	}
}

func TestBuildChart(t *testing.T) {
	set := mustSet(t)
	c := render.BuildChart((render.State{Data: set}).Totals(), render.HTMLBarWidth)

	if c.Sheets != 3 || c.Elements != 9 {
		t.Errorf("unexpected summary: sheets=%d elements=%d", c.Sheets, c.Elements)
	}
	if c.AverageText() != "3.0" {
		t.Errorf("expected average 3.0, got %s", c.AverageText())
	}

	want := map[drawing.Category]float64{
		drawing.CategoryDrains:       45,
		drawing.CategoryScuppers:     0,
		drawing.CategoryRTUs:         30,
		drawing.CategoryPenetrations: 60,
	}
	for _, b := range c.Bars {
		if b.Width != want[b.Category] {
			t.Errorf("%s width = %v, want %v", b.Category, b.Width, want[b.Category])
		}
		if b.Color != render.CategoryColor(b.Category) {
			t.Errorf("%s colour = %s", b.Category, b.Color)
		}
	}
}

func TestBarFraction(t *testing.T) {
	tests := []struct {
		value int
		want  float64
	}{
		{-1, 0},
		{0, 0},
		{10, 0.5},
		{20, 1},
		{45, 1},
	}
	for _, tt := range tests {
		if got := render.BarFraction(tt.value); got != tt.want {
			t.Errorf("BarFraction(%d) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestBuildChart_Empty(t *testing.T) {
	c := render.BuildChart((render.State{}).Totals(), render.HTMLBarWidth)
	if c.AverageText() != "0.0" {
		t.Errorf("expected 0.0 average on empty data, got %s", c.AverageText())
	}
	for _, b := range c.Bars {
		if b.Width != 0 {
			t.Errorf("%s should be empty, got %v", b.Category, b.Width)
		}
	}
}

func TestWriteCSV(t *testing.T) {
	set := mustSet(t)
	sheets := set.Sheets()
	var buf bytes.Buffer
	err := render.WriteCSV(&buf, set, map[drawing.SheetID]workflow.Status{
		sheets[0].ID: workflow.StatusApproved,
	})
	if err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	want := []string{
		"File,Sheet,Type,Workflow Status,Drains,Scuppers,RTUs,Penetrations,Scale",
		`"roof.pdf","A1.1","Roof Plan","approved",3,0,-,-,"1/8"" = 1'-0"""`,
		`"roof.pdf","A1.2","-","detected",-,-,2,-,"-"`,
		`"annex ""B"".pdf","-","-","detected",-,-,-,4,"-"`,
	}
	got := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestCSVFilename(t *testing.T) {
	loc := time.FixedZone("east", 10*3600)
	now := time.Date(2024, 3, 2, 5, 0, 0, 0, loc)
	if got := render.CSVFilename(now); got != "drawing_analysis_2024-03-01.csv" {
		t.Errorf("unexpected filename %s", got)
	}
}

func TestDocuments(t *testing.T) {
	set := mustSet(t)
	docs := render.Documents(set)

	titles := make([]string, len(docs))
	for i, d := range docs {
		titles[i] = d.Title
	}
	if diff := cmp.Diff([]string{"Scope of Work", "Specification", "Assembly Letters"}, titles); diff != "" {
		t.Errorf("section order (-want +got):\n%s", diff)
	}

	scope := docs[0]
	if len(scope.Fields) != 2 {
		t.Fatalf("falsy notes should be omitted, got %+v", scope.Fields)
	}
	if scope.Fields[0].Key != "materials" || len(scope.Fields[0].Items) != 2 {
		t.Errorf("expected materials list first, got %+v", scope.Fields[0])
	}

	asm := docs[2]
	if len(asm.Groups) != 1 || asm.Groups[0].Title != "a.pdf" {
		t.Errorf("unexpected assembly groups %+v", asm.Groups)
	}

	if render.Documents(nil) != nil {
		t.Error("nil set should have no documents")
	}
}

func TestHTMLRenderer(t *testing.T) {
	set := mustSet(t)
	sheets := set.Sheets()
	r, err := render.NewHTMLRenderer("/app")
	if err != nil {
		t.Fatalf("NewHTMLRenderer failed: %v", err)
	}

	s := render.State{
		Data:     set,
		Statuses: map[drawing.SheetID]workflow.Status{sheets[0].ID: workflow.StatusApproved, sheets[1].ID: workflow.StatusReviewing},
		Query:    "annex",
	}
	out, err := r.Render(s)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	for _, want := range []string{
		"✅ Approved",
		"✓✓✓",
		"✓ Verify",
		"👀 Review",
		`action="/app/sheets/` + string(sheets[1].ID) + `/advance"`,
		`data-id="` + string(sheets[0].ID) + `" hidden`,
		"Scope of Work",
		"Carlisle",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("results missing %q", want)
		}
	}
	if strings.Contains(out, `data-id="`+string(sheets[2].ID)+`" hidden`) {
		t.Error("matching row should not be hidden")
	}
	if strings.Contains(out, "/sheets/"+string(sheets[0].ID)+"/advance") {
		t.Error("approved sheet should not offer an action")
	}

	s.Mode = render.ViewCards
	cards, err := r.Render(s)
	if err != nil {
		t.Fatalf("Render cards failed: %v", err)
	}
	if !strings.Contains(cards, render.CardConfirmation) || !strings.Contains(cards, "Sheet: Unknown") {
		t.Error("cards should show the approval confirmation and unknown sheet label")
	}
}

func TestHTMLRenderer_BusyDisablesActions(t *testing.T) {
	r, err := render.NewHTMLRenderer("")
	if err != nil {
		t.Fatalf("NewHTMLRenderer failed: %v", err)
	}
	out, err := r.Render(render.State{Data: mustSet(t), Busy: true})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(out, " disabled>") {
		t.Error("expected disabled workflow buttons while busy")
	}
}

func TestHTMLRenderer_Chart(t *testing.T) {
	r, err := render.NewHTMLRenderer("")
	if err != nil {
		t.Fatalf("NewHTMLRenderer failed: %v", err)
	}
	out, err := r.RenderChart(render.State{Data: mustSet(t)})
	if err != nil {
		t.Fatalf("RenderChart failed: %v", err)
	}
	for _, want := range []string{"width: 45px", "width: 0px", "Avg per Sheet:</strong> 3.0", "#FF6B47"} {
		if !strings.Contains(out, want) {
			t.Errorf("chart missing %q", want)
		}
	}
}

func TestRenderers_Idempotent(t *testing.T) {
	set := mustSet(t)
	html, err := render.NewHTMLRenderer("")
	if err != nil {
		t.Fatalf("NewHTMLRenderer failed: %v", err)
	}
	renderers := map[string]render.Renderer{
		"html": html,
		"text": render.TextRenderer{Width: 120},
	}

	for name, r := range renderers {
		for _, mode := range []render.ViewMode{render.ViewTable, render.ViewCards} {
			s := render.State{Data: set, Mode: mode, Query: "roof"}
			first, err := r.Render(s)
			if err != nil {
				t.Fatalf("%s/%s: %v", name, mode, err)
			}
			second, err := r.Render(s)
			if err != nil {
				t.Fatalf("%s/%s: %v", name, mode, err)
			}
			if diff := cmp.Diff(first, second); diff != "" {
				t.Errorf("%s/%s not idempotent:\n%s", name, mode, diff)
			}
		}
	}
}

func TestTextRenderer(t *testing.T) {
	set := mustSet(t)
	r := render.TextRenderer{}

	out, err := r.Render(render.State{Data: set, Query: "a1.2"})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(out, "A1.2") || strings.Contains(out, "A1.1") {
		t.Errorf("query should limit rows:\n%s", out)
	}
	if !strings.Contains(out, "Showing 1 of 3 sheets") {
		t.Errorf("expected match footer:\n%s", out)
	}

	empty, err := r.Render(render.State{})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(empty, "No drawings.") {
		t.Errorf("expected empty notice:\n%s", empty)
	}

	chart, err := r.RenderChart(render.State{Data: set})
	if err != nil {
		t.Fatalf("RenderChart failed: %v", err)
	}
	for _, want := range []string{"Total Sheets: 3", "Total Elements: 9", "Avg per Sheet: 3.0"} {
		if !strings.Contains(chart, want) {
			t.Errorf("chart missing %q", want)
		}
	}
}
