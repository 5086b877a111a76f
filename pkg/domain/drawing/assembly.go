package drawing

import (
	"bytes"
	"encoding/json"
	"sort"
)

// AssemblyFieldOrder is the display order for assembly-letter fields.
var AssemblyFieldOrder = []string{
	"filename",
	"project_name",
	"project_location",
	"project_date",
	"manufacturer",
	"assembly_type",
	"deck",
	"insulation",
	"cover_board",
	"membrane",
	"attachment",
	"warranty",
	"notes",
}

// SharedAssemblyFields are the metadata keys that may sit beside an
// assemblies list.
var SharedAssemblyFields = []string{"project_name", "project_location", "project_date", "manufacturer"}

// AssemblyRecord is one assembly letter's field bag.
type AssemblyRecord map[string]any

// Fields lists non-falsy fields in AssemblyFieldOrder, then any other keys
// sorted by name.
func (r AssemblyRecord) Fields() []Field {
	return orderedFields(r, AssemblyFieldOrder)
}

// Filename returns the originating file name when the parser recorded one.
func (r AssemblyRecord) Filename() string {
	s, _ := r["filename"].(string)
	return s
}

// AssemblyBundle holds the assembly records plus metadata shared by them.
type AssemblyBundle struct {
	Shared  map[string]any
	Records []AssemblyRecord
}

// SharedFields lists non-falsy shared metadata fields.
func (b *AssemblyBundle) SharedFields() []Field {
	if b == nil {
		return nil
	}
	return orderedFields(b.Shared, SharedAssemblyFields)
}

// MarshalJSON writes the bundle in the object-with-assemblies form.
func (b AssemblyBundle) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(b.Shared)+1)
	for k, v := range b.Shared {
		out[k] = v
	}
	recs := b.Records
	if recs == nil {
		recs = []AssemblyRecord{}
	}
	out["assemblies"] = recs
	return json.Marshal(out)
}

func decodeAssembly(raw json.RawMessage) (*AssemblyBundle, error) {
	if isNull(raw) {
		return nil, nil
	}
	trimmed := bytes.TrimSpace(raw)
	if trimmed[0] == '[' {
		var recs []AssemblyRecord
		if err := json.Unmarshal(trimmed, &recs); err != nil {
			return nil, err
		}
		return &AssemblyBundle{Records: recs}, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, err
	}
	list, ok := obj["assemblies"]
	if !ok {
		var rec AssemblyRecord
		if err := json.Unmarshal(trimmed, &rec); err != nil {
			return nil, err
		}
		return &AssemblyBundle{Records: []AssemblyRecord{rec}}, nil
	}

	b := &AssemblyBundle{}
	if !isNull(list) {
		if err := json.Unmarshal(list, &b.Records); err != nil {
			return nil, err
		}
	}
	delete(obj, "assemblies")
	for k, v := range obj {
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return nil, err
		}
		if b.Shared == nil {
			b.Shared = make(map[string]any, len(obj))
		}
		b.Shared[k] = val
	}
	return b, nil
}

func orderedFields(rec map[string]any, order []string) []Field {
	if len(rec) == 0 {
		return nil
	}
	placed := make(map[string]bool, len(order))
	var fields []Field
	for _, k := range order {
		placed[k] = true
		if f, ok := NewField(k, rec[k]); ok {
			fields = append(fields, f)
		}
	}

	var rest []string
	for k := range rec {
		if !placed[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		if f, ok := NewField(k, rec[k]); ok {
			fields = append(fields, f)
		}
	}
	return fields
}
