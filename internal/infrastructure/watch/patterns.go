package watch

import (
	"path/filepath"
	"strings"
)

// PatternFilter filters file paths based on include/exclude glob patterns.
// Matching ignores case so "*.pdf" also matches "A101.PDF".
type PatternFilter struct {
	Include []string
	Exclude []string
}

// NewPatternFilter creates a new pattern filter.
func NewPatternFilter(include, exclude []string) *PatternFilter {
	return &PatternFilter{
		Include: include,
		Exclude: exclude,
	}
}

// DrawingFilter accepts PDFs and skips hidden, lock and partial download
// files.
func DrawingFilter() *PatternFilter {
	return NewPatternFilter(
		[]string{"*.pdf"},
		[]string{".*", "~$*", "*.crdownload", "*.part"},
	)
}

// Matches returns true if the path passes the filter.
// If include patterns are set, at least one must match.
// If exclude patterns are set, none must match.
func (f *PatternFilter) Matches(path string) bool {
	path = strings.ToLower(filepath.ToSlash(path))
	base := filepath.Base(path)

	for _, pattern := range f.Exclude {
		if match(pattern, base, path) {
			return false
		}
	}

	if len(f.Include) == 0 {
		return true
	}

	for _, pattern := range f.Include {
		if match(pattern, base, path) {
			return true
		}
	}

	return false
}

func match(pattern, base, path string) bool {
	pattern = strings.ToLower(pattern)
	if ok, _ := filepath.Match(pattern, base); ok {
		return true
	}
	ok, _ := filepath.Match(pattern, path)
	return ok
}
