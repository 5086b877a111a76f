package drawing

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Set is the top-level parse result.
type Set struct {
	Scope    map[string]any
	Spec     map[string]any
	Drawings []File
	Assembly *AssemblyBundle
}

// HasDrawings reports whether the set holds at least one drawing file.
func (s *Set) HasDrawings() bool {
	return s != nil && len(s.Drawings) > 0
}

// SheetCount returns the number of roof plans across all drawing files.
func (s *Set) SheetCount() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, f := range s.Drawings {
		n += len(f.RoofPlans)
	}
	return n
}

type setJSON struct {
	Scope    json.RawMessage `json:"scope"`
	Spec     json.RawMessage `json:"spec"`
	Drawing  json.RawMessage `json:"drawing"`
	Assembly json.RawMessage `json:"assembly"`
}

// Decode parses a parse-service payload.
func Decode(data []byte) (*Set, error) {
	var s Set
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// UnmarshalJSON accepts drawing as an object or an array, and assembly as a
// flat record, an object with an assemblies list, or an array of records.
func (s *Set) UnmarshalJSON(data []byte) error {
	var raw setJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var err error
	if s.Scope, err = decodeRecord(raw.Scope); err != nil {
		return fmt.Errorf("decode scope: %w", err)
	}
	if s.Spec, err = decodeRecord(raw.Spec); err != nil {
		return fmt.Errorf("decode spec: %w", err)
	}
	if s.Drawings, err = decodeDrawings(raw.Drawing); err != nil {
		return fmt.Errorf("decode drawing: %w", err)
	}
	if s.Assembly, err = decodeAssembly(raw.Assembly); err != nil {
		return fmt.Errorf("decode assembly: %w", err)
	}
	return nil
}

// MarshalJSON always writes drawing as an array.
func (s Set) MarshalJSON() ([]byte, error) {
	out := struct {
		Scope    map[string]any  `json:"scope"`
		Spec     map[string]any  `json:"spec"`
		Drawing  []File          `json:"drawing"`
		Assembly *AssemblyBundle `json:"assembly"`
	}{s.Scope, s.Spec, s.Drawings, s.Assembly}
	return json.Marshal(out)
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func decodeRecord(raw json.RawMessage) (map[string]any, error) {
	if isNull(raw) {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeDrawings(raw json.RawMessage) ([]File, error) {
	if isNull(raw) {
		return nil, nil
	}
	trimmed := bytes.TrimSpace(raw)
	if trimmed[0] == '[' {
		var files []File
		if err := json.Unmarshal(trimmed, &files); err != nil {
			return nil, err
		}
		return files, nil
	}
	var f File
	if err := json.Unmarshal(trimmed, &f); err != nil {
		return nil, err
	}
	return []File{f}, nil
}
