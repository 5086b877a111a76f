package drawing_test

import (
	"testing"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/drawing"
)

func plan(detail string) drawing.RoofPlan {
	return drawing.RoofPlan{DetailNumber: &detail}
}

func TestSheetID_StableAcrossReorder(t *testing.T) {
	a := drawing.File{Filename: "a.pdf", RoofPlans: []drawing.RoofPlan{plan("A1"), plan("A2")}}
	b := drawing.File{Filename: "b.pdf", RoofPlans: []drawing.RoofPlan{plan("B1")}}

	first := &drawing.Set{Drawings: []drawing.File{a, b}}
	second := &drawing.Set{Drawings: []drawing.File{b, a}}

	ids := make(map[string]drawing.SheetID)
	for _, sh := range first.Sheets() {
		ids[sh.Filename+"/"+sh.Plan.Detail()] = sh.ID
	}
	for _, sh := range second.Sheets() {
		if ids[sh.Filename+"/"+sh.Plan.Detail()] != sh.ID {
			t.Errorf("id for %s/%s changed after reorder", sh.Filename, sh.Plan.Detail())
		}
	}
}

func TestSheetID_DuplicatesDisambiguated(t *testing.T) {
	set := &drawing.Set{Drawings: []drawing.File{
		{Filename: "a.pdf", RoofPlans: []drawing.RoofPlan{plan("A1"), plan("A1"), {}}},
	}}
	sheets := set.Sheets()
	if len(sheets) != 3 {
		t.Fatalf("expected 3 sheets, got %d", len(sheets))
	}
	seen := make(map[drawing.SheetID]bool)
	for _, sh := range sheets {
		if seen[sh.ID] {
			t.Errorf("duplicate id %s", sh.ID)
		}
		seen[sh.ID] = true
		if len(sh.ID) != 12 {
			t.Errorf("expected 12-char id, got %q", sh.ID)
		}
	}

	got, ok := set.Sheet(sheets[1].ID)
	if !ok || got.PlanIndex != 1 {
		t.Errorf("Sheet lookup returned %+v, %v", got, ok)
	}
	if _, ok := set.Sheet("missing"); ok {
		t.Error("expected lookup miss")
	}
}

func TestLegacyIDs(t *testing.T) {
	set := &drawing.Set{Drawings: []drawing.File{
		{Filename: "a.pdf", RoofPlans: []drawing.RoofPlan{plan("A1")}},
		{Filename: "b.pdf", RoofPlans: []drawing.RoofPlan{plan("B1"), plan("B2")}},
	}}
	legacy := set.LegacyIDs()
	if len(legacy) != 3 {
		t.Fatalf("expected 3 legacy ids, got %d", len(legacy))
	}
	want := drawing.NewSheetID("b.pdf", "B2", 0)
	if legacy[drawing.PositionalID(1, 1)] != want {
		t.Errorf("legacy 1-1 = %s, want %s", legacy["1-1"], want)
	}
}

func TestSheets_NilSet(t *testing.T) {
	var set *drawing.Set
	if set.Sheets() != nil || set.SheetCount() != 0 || set.HasDrawings() {
		t.Error("nil set should have no sheets")
	}
}
