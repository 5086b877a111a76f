// Package detection turns the parser's detection strings into counts and
// confidence tiers.
//
// A detection string looks like "✓✓✓ (4)": zero to three tick marks
// followed by a parenthesized count. Every number shown to a user is
// derived from the string with the functions in this package.
package detection

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Tick is the confidence mark used by the parsing service.
const Tick = "✓"

var countPattern = regexp.MustCompile(`\((\d+)\)`)

// Confidence is the tier encoded by the number of tick marks.
type Confidence string

const (
	ConfidenceNone   Confidence = "none"
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// AllConfidences returns the tiers from lowest to highest.
func AllConfidences() []Confidence {
	return []Confidence{ConfidenceNone, ConfidenceLow, ConfidenceMedium, ConfidenceHigh}
}

// IsValid returns true for the four known tiers.
func (c Confidence) IsValid() bool {
	switch c {
	case ConfidenceNone, ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		return true
	default:
		return false
	}
}

func (c Confidence) String() string {
	return string(c)
}

// Rank orders tiers: none=0, low=1, medium=2, high=3.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceLow:
		return 1
	case ConfidenceMedium:
		return 2
	case ConfidenceHigh:
		return 3
	default:
		return 0
	}
}

// Badge returns the class suffix used by renderers ("badge-high" etc).
func (c Confidence) Badge() string {
	if !c.IsValid() {
		return "badge-" + string(ConfidenceNone)
	}
	return "badge-" + string(c)
}

// ParseConfidence parses a tier name.
func ParseConfidence(s string) (Confidence, error) {
	c := Confidence(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("invalid confidence: %s", s)
	}
	return c, nil
}

// MarshalJSON implements json.Marshaler.
func (c Confidence) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(c))
}

// UnmarshalJSON implements json.Unmarshaler. Empty means none.
func (c *Confidence) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	if str == "" {
		*c = ConfidenceNone
		return nil
	}
	parsed, err := ParseConfidence(str)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ExtractCount returns the first parenthesized integer in field, or 0 when
// field is nil, has no such group, or the number does not fit in an int.
func ExtractCount(field *string) int {
	if field == nil || *field == "" {
		return 0
	}
	m := countPattern.FindStringSubmatch(*field)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// ConfidenceLevel classifies field by tick marks. The three-tick check runs
// first so "✓✓✓" is never read as medium.
func ConfidenceLevel(field *string) Confidence {
	if field == nil || *field == "" {
		return ConfidenceNone
	}
	switch s := *field; {
	case strings.Contains(s, Tick+Tick+Tick):
		return ConfidenceHigh
	case strings.Contains(s, Tick+Tick):
		return ConfidenceMedium
	case strings.Contains(s, Tick):
		return ConfidenceLow
	default:
		return ConfidenceNone
	}
}

// Detection is the derived (count, confidence) pair for one field.
type Detection struct {
	Count      int        `json:"count"`
	Confidence Confidence `json:"confidence"`
}

// Summarize derives both values from field.
func Summarize(field *string) Detection {
	return Detection{
		Count:      ExtractCount(field),
		Confidence: ConfidenceLevel(field),
	}
}

// IsZero reports whether nothing was detected. Renderers show a neutral
// dash instead of a badge in that case.
func (d Detection) IsZero() bool {
	return d.Count == 0
}
