package render

import (
	"strconv"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/drawing"
)

// Section is one supplementary document block (scope, spec, assemblies).
type Section struct {
	Title  string
	Fields []drawing.Field
	// Groups holds one field list per assembly record.
	Groups []Group
}

// Group is a titled field list.
type Group struct {
	Title  string
	Fields []drawing.Field
}

// IsEmpty reports whether the section has nothing to show.
func (s Section) IsEmpty() bool {
	return len(s.Fields) == 0 && len(s.Groups) == 0
}

// Documents lists the non-empty scope, spec and assembly sections.
func Documents(set *drawing.Set) []Section {
	if set == nil {
		return nil
	}
	var out []Section

	if s := (Section{Title: "Scope of Work", Fields: drawing.Enumerate(set.Scope)}); !s.IsEmpty() {
		out = append(out, s)
	}
	if s := (Section{Title: "Specification", Fields: drawing.Enumerate(set.Spec)}); !s.IsEmpty() {
		out = append(out, s)
	}

	if b := set.Assembly; b != nil {
		s := Section{Title: "Assembly Letters", Fields: b.SharedFields()}
		for i, rec := range b.Records {
			fields := rec.Fields()
			if len(fields) == 0 {
				continue
			}
			title := rec.Filename()
			if title == "" {
				title = "Assembly " + strconv.Itoa(i+1)
			}
			s.Groups = append(s.Groups, Group{Title: title, Fields: fields})
		}
		if !s.IsEmpty() {
			out = append(out, s)
		}
	}
	return out
}
