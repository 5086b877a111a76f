// Package drawing models the parse result returned by the analysis service:
// drawing files with their roof-plan sheets, plus the scope, spec and
// assembly records that accompany them.
package drawing

import (
	"encoding/json"
	"fmt"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/detection"
)

// ScaleNotSpecified is the sentinel the parser writes when no scale was found.
const ScaleNotSpecified = "Not specified"

// Category is one of the four element kinds detected on a roof plan.
type Category string

const (
	CategoryDrains       Category = "drains"
	CategoryScuppers     Category = "scuppers"
	CategoryRTUs         Category = "rtus_curbs"
	CategoryPenetrations Category = "penetrations"
)

// AllCategories returns the categories in display order.
func AllCategories() []Category {
	return []Category{CategoryDrains, CategoryScuppers, CategoryRTUs, CategoryPenetrations}
}

// IsValid returns true if c is a known category.
func (c Category) IsValid() bool {
	switch c {
	case CategoryDrains, CategoryScuppers, CategoryRTUs, CategoryPenetrations:
		return true
	default:
		return false
	}
}

func (c Category) String() string {
	return string(c)
}

// Label returns the column heading for the category.
func (c Category) Label() string {
	switch c {
	case CategoryDrains:
		return "Drains"
	case CategoryScuppers:
		return "Scuppers"
	case CategoryRTUs:
		return "RTUs"
	case CategoryPenetrations:
		return "Penetrations"
	default:
		return string(c)
	}
}

// ParseCategory parses a category name. "rtus" is accepted for rtus_curbs.
func ParseCategory(s string) (Category, error) {
	if s == "rtus" {
		return CategoryRTUs, nil
	}
	c := Category(s)
	if !c.IsValid() {
		return "", fmt.Errorf("invalid category: %s", s)
	}
	return c, nil
}

// RoofPlan is one sheet's extracted data. Pointer fields keep "absent"
// distinct from an empty string.
type RoofPlan struct {
	DetailNumber *string `json:"detail_number,omitempty"`
	Type         *string `json:"type,omitempty"`
	Scale        *string `json:"scale,omitempty"`
	Drains       *string `json:"drains,omitempty"`
	Scuppers     *string `json:"scuppers,omitempty"`
	RTUsCurbs    *string `json:"rtus_curbs,omitempty"`
	Penetrations *string `json:"penetrations,omitempty"`
}

// UnmarshalJSON decodes a roof plan tolerantly. Numeric detail numbers,
// types and scales are kept as their JSON text; any other non-string value
// reads as absent, so one malformed field never fails the whole set.
func (p *RoofPlan) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode roof plan: %w", err)
	}
	*p = RoofPlan{
		DetailNumber: labelField(raw["detail_number"]),
		Type:         labelField(raw["type"]),
		Scale:        labelField(raw["scale"]),
		Drains:       stringField(raw["drains"]),
		Scuppers:     stringField(raw["scuppers"]),
		RTUsCurbs:    stringField(raw["rtus_curbs"]),
		Penetrations: stringField(raw["penetrations"]),
	}
	return nil
}

func stringField(raw json.RawMessage) *string {
	var s string
	if len(raw) == 0 || string(raw) == "null" || json.Unmarshal(raw, &s) != nil {
		return nil
	}
	return &s
}

func labelField(raw json.RawMessage) *string {
	if s := stringField(raw); s != nil {
		return s
	}
	var n json.Number
	if len(raw) == 0 || string(raw) == "null" || json.Unmarshal(raw, &n) != nil {
		return nil
	}
	s := n.String()
	return &s
}

// Field returns the raw detection string for c.
func (p RoofPlan) Field(c Category) *string {
	switch c {
	case CategoryDrains:
		return p.Drains
	case CategoryScuppers:
		return p.Scuppers
	case CategoryRTUs:
		return p.RTUsCurbs
	case CategoryPenetrations:
		return p.Penetrations
	default:
		return nil
	}
}

// Detection summarizes the detection string for c.
func (p RoofPlan) Detection(c Category) detection.Detection {
	return detection.Summarize(p.Field(c))
}

// Detail returns the detail number or "" when absent.
func (p RoofPlan) Detail() string {
	return deref(p.DetailNumber)
}

// TypeText returns the sheet type or "" when absent.
func (p RoofPlan) TypeText() string {
	return deref(p.Type)
}

// ScaleText returns the scale, or "" when absent or the not-specified sentinel.
func (p RoofPlan) ScaleText() string {
	s := deref(p.Scale)
	if s == ScaleNotSpecified {
		return ""
	}
	return s
}

// File is one drawing file with its roof-plan sheets. Keys the parser adds
// beyond filename and roof_plans are kept in Extra.
type File struct {
	Filename  string
	RoofPlans []RoofPlan
	Extra     map[string]any
}

type fileJSON struct {
	Filename  string     `json:"filename"`
	RoofPlans []RoofPlan `json:"roof_plans"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *File) UnmarshalJSON(data []byte) error {
	var known fileJSON
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	delete(all, "filename")
	delete(all, "roof_plans")

	f.Filename = known.Filename
	f.RoofPlans = known.RoofPlans
	f.Extra = nil
	for k, raw := range all {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("decode drawing field %s: %w", k, err)
		}
		if f.Extra == nil {
			f.Extra = make(map[string]any, len(all))
		}
		f.Extra[k] = v
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f File) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(f.Extra)+2)
	for k, v := range f.Extra {
		out[k] = v
	}
	out["filename"] = f.Filename
	plans := f.RoofPlans
	if plans == nil {
		plans = []RoofPlan{}
	}
	out["roof_plans"] = plans
	return json.Marshal(out)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
