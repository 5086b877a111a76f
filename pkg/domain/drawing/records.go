package drawing

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Field is one displayable entry of a scope, spec or assembly record.
// List values populate Items; scalars populate Text.
type Field struct {
	Key   string
	Label string
	Text  string
	Items []string
}

// IsFalsy reports whether v should be omitted from display: nil, "", 0,
// false, and empty lists or maps.
func IsFalsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case float64:
		return t == 0
	case int:
		return t == 0
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}

// Enumerate lists the non-falsy entries of rec with keys in sorted order.
func Enumerate(rec map[string]any) []Field {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]Field, 0, len(keys))
	for _, k := range keys {
		if f, ok := NewField(k, rec[k]); ok {
			fields = append(fields, f)
		}
	}
	return fields
}

// NewField builds a display field, returning false for falsy values.
func NewField(key string, v any) (Field, bool) {
	if IsFalsy(v) {
		return Field{}, false
	}
	f := Field{Key: key, Label: Humanize(key)}
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if !IsFalsy(item) {
				f.Items = append(f.Items, FormatValue(item))
			}
		}
		if len(f.Items) == 0 {
			return Field{}, false
		}
	case []string:
		for _, item := range t {
			if item != "" {
				f.Items = append(f.Items, item)
			}
		}
		if len(f.Items) == 0 {
			return Field{}, false
		}
	case map[string]any:
		for _, sub := range Enumerate(t) {
			f.Items = append(f.Items, sub.Label+": "+sub.String())
		}
		if len(f.Items) == 0 {
			return Field{}, false
		}
	default:
		f.Text = FormatValue(v)
	}
	return f, true
}

// String flattens the field to one line.
func (f Field) String() string {
	if len(f.Items) > 0 {
		return strings.Join(f.Items, ", ")
	}
	return f.Text
}

// FormatValue renders a decoded JSON scalar.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, FormatValue(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(t)
	}
}

// Humanize turns "project_name" into "Project Name".
func Humanize(key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool { return r == '_' || r == '-' || r == ' ' })
	for i, w := range words {
		switch strings.ToLower(w) {
		case "rtus":
			words[i] = "RTUs"
		default:
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
