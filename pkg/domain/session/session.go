// Package session holds the user's file selection and the saved parse
// result.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

// DefaultMaxAge is how long a saved session stays restorable.
const DefaultMaxAge = 7 * 24 * time.Hour

var (
	// ErrNoSession indicates nothing restorable is saved.
	ErrNoSession = errors.New("no saved session")

	// ErrSessionExpired indicates the saved session is older than the limit.
	ErrSessionExpired = errors.New("saved session expired")

	// ErrIndexOutOfRange indicates a selection index that does not exist.
	ErrIndexOutOfRange = errors.New("selection index out of range")
)

// Category is an upload field name.
type Category string

const (
	CategoryScope    Category = "scope"
	CategorySpec     Category = "spec"
	CategoryDrawing  Category = "drawing"
	CategoryAssembly Category = "assembly"
)

// AllCategories returns the upload fields in submission order.
func AllCategories() []Category {
	return []Category{CategoryScope, CategorySpec, CategoryDrawing, CategoryAssembly}
}

// IsValid returns true for a known upload field.
func (c Category) IsValid() bool {
	switch c {
	case CategoryScope, CategorySpec, CategoryDrawing, CategoryAssembly:
		return true
	default:
		return false
	}
}

// IsMulti reports whether selections accumulate rather than replace.
func (c Category) IsMulti() bool {
	return c == CategoryDrawing || c == CategoryAssembly
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory parses an upload field name.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.IsValid() {
		return "", fmt.Errorf("invalid upload category: %s (want scope, spec, drawing or assembly)", s)
	}
	return c, nil
}

// Selection is the set of files chosen per category.
type Selection struct {
	Files map[Category][]string `json:"files"`
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{Files: make(map[Category][]string)}
}

// Select records paths under c. Single-file categories keep only the last
// path; multi-file categories append.
func (s *Selection) Select(c Category, paths ...string) error {
	if !c.IsValid() {
		return fmt.Errorf("invalid upload category: %s", c)
	}
	if len(paths) == 0 {
		return nil
	}
	if s.Files == nil {
		s.Files = make(map[Category][]string)
	}
	if !c.IsMulti() {
		s.Files[c] = []string{paths[len(paths)-1]}
		return nil
	}
	s.Files[c] = append(s.Files[c], paths...)
	return nil
}

// Replace sets the paths under c, dropping what was there. An empty list
// clears the category.
func (s *Selection) Replace(c Category, paths ...string) error {
	if !c.IsValid() {
		return fmt.Errorf("invalid upload category: %s", c)
	}
	if s.Files == nil {
		s.Files = make(map[Category][]string)
	}
	delete(s.Files, c)
	return s.Select(c, paths...)
}

// Remove drops the file at index under c.
func (s *Selection) Remove(c Category, index int) error {
	files := s.Files[c]
	if index < 0 || index >= len(files) {
		return fmt.Errorf("%w: %s[%d]", ErrIndexOutOfRange, c, index)
	}
	s.Files[c] = append(files[:index:index], files[index+1:]...)
	if len(s.Files[c]) == 0 {
		delete(s.Files, c)
	}
	return nil
}

// Get returns the paths selected under c.
func (s *Selection) Get(c Category) []string {
	if s == nil {
		return nil
	}
	return s.Files[c]
}

// Item is one selected file.
type Item struct {
	Category Category
	Index    int
	Path     string
}

// Name returns the base file name.
func (i Item) Name() string {
	return filepath.Base(i.Path)
}

// All lists every selected file in category order.
func (s *Selection) All() []Item {
	var items []Item
	for _, c := range AllCategories() {
		for i, p := range s.Get(c) {
			items = append(items, Item{Category: c, Index: i, Path: p})
		}
	}
	return items
}

// Len returns the number of selected files.
func (s *Selection) Len() int {
	return len(s.All())
}

// Clear drops every selected file.
func (s *Selection) Clear() {
	s.Files = make(map[Category][]string)
}

// Record is the persisted session: the raw parse payload plus when it was
// received.
type Record struct {
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// Age returns how old the record is at now.
func (r Record) Age(now time.Time) time.Duration {
	return now.Sub(r.Timestamp)
}

// Restorable reports whether the record is younger than maxAge at now.
func (r Record) Restorable(now time.Time, maxAge time.Duration) bool {
	if len(r.Data) == 0 || r.Timestamp.IsZero() {
		return false
	}
	return r.Age(now) < maxAge
}
