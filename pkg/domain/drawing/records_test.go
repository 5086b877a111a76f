package drawing_test

import (
	"reflect"
	"testing"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/drawing"
)

func TestIsFalsy(t *testing.T) {
	tests := []struct {
		v    any
		want bool
	}{
		{nil, true},
		{"", true},
		{float64(0), true},
		{false, true},
		{[]any{}, true},
		{map[string]any{}, true},
		{"x", false},
		{float64(2), false},
		{true, false},
		{[]any{"a"}, false},
	}
	for _, tt := range tests {
		if got := drawing.IsFalsy(tt.v); got != tt.want {
			t.Errorf("IsFalsy(%#v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestEnumerate(t *testing.T) {
	rec := map[string]any{
		"summary":      "Tear off and replace",
		"materials":    []any{"TPO", "", "ISO"},
		"requirements": nil,
		"area_sqft":    float64(12000),
		"phased":       false,
	}
	fields := drawing.Enumerate(rec)

	var keys []string
	for _, f := range fields {
		keys = append(keys, f.Key)
	}
	want := []string{"area_sqft", "materials", "summary"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("keys = %v, want %v", keys, want)
	}
	if fields[0].Text != "12000" || fields[0].Label != "Area Sqft" {
		t.Errorf("unexpected scalar field %+v", fields[0])
	}
	if !reflect.DeepEqual(fields[1].Items, []string{"TPO", "ISO"}) {
		t.Errorf("unexpected items %v", fields[1].Items)
	}
}

func TestAssemblyRecord_FieldOrder(t *testing.T) {
	rec := drawing.AssemblyRecord{
		"notes":        "Fully adhered",
		"membrane":     "TPO",
		"filename":     "letter.pdf",
		"deck":         "",
		"zeta":         "extra",
		"manufacturer": "Carlisle",
	}
	var keys []string
	for _, f := range rec.Fields() {
		keys = append(keys, f.Key)
	}
	want := []string{"filename", "manufacturer", "membrane", "notes", "zeta"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("keys = %v, want %v", keys, want)
	}
	if rec.Filename() != "letter.pdf" {
		t.Errorf("unexpected filename %q", rec.Filename())
	}
}

func TestAssemblyBundle_SharedFields(t *testing.T) {
	b := &drawing.AssemblyBundle{Shared: map[string]any{
		"manufacturer": "GAF",
		"project_name": "Depot",
		"project_date": "",
	}}
	fields := b.SharedFields()
	if len(fields) != 2 || fields[0].Key != "project_name" || fields[1].Key != "manufacturer" {
		t.Errorf("unexpected shared fields %+v", fields)
	}
	var nilBundle *drawing.AssemblyBundle
	if nilBundle.SharedFields() != nil {
		t.Error("nil bundle should have no shared fields")
	}
}

func TestHumanize(t *testing.T) {
	tests := map[string]string{
		"project_name": "Project Name",
		"rtus_curbs":   "RTUs Curbs",
		"deck":         "Deck",
	}
	for in, want := range tests {
		if got := drawing.Humanize(in); got != want {
			t.Errorf("Humanize(%q) = %q, want %q", in, got, want)
		}
	}
}
