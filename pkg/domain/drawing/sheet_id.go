package drawing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
)

// SheetID identifies one roof plan across re-parses of the same documents.
type SheetID string

func (id SheetID) String() string {
	return string(id)
}

// NewSheetID derives the identifier from the filename, the detail number and
// an ordinal that separates repeated (filename, detail) pairs in one set.
func NewSheetID(filename, detail string, ordinal int) SheetID {
	h := sha256.New()
	h.Write([]byte(filename))
	h.Write([]byte{0})
	h.Write([]byte(detail))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(ordinal)))
	return SheetID(hex.EncodeToString(h.Sum(nil))[:12])
}

// PositionalID returns the "<file>-<plan>" key older sessions stored.
func PositionalID(fileIdx, planIdx int) SheetID {
	return SheetID(fmt.Sprintf("%d-%d", fileIdx, planIdx))
}

// Sheet is one roof plan located within a set.
type Sheet struct {
	ID        SheetID
	FileIndex int
	PlanIndex int
	Filename  string
	Plan      RoofPlan
}

// Sheets lists every roof plan in document order.
func (s *Set) Sheets() []Sheet {
	if s == nil {
		return nil
	}
	type pair struct{ file, detail string }
	seen := make(map[pair]int)

	sheets := make([]Sheet, 0, s.SheetCount())
	for fi, f := range s.Drawings {
		for pi, p := range f.RoofPlans {
			key := pair{f.Filename, p.Detail()}
			ordinal := seen[key]
			seen[key] = ordinal + 1
			sheets = append(sheets, Sheet{
				ID:        NewSheetID(f.Filename, p.Detail(), ordinal),
				FileIndex: fi,
				PlanIndex: pi,
				Filename:  f.Filename,
				Plan:      p,
			})
		}
	}
	return sheets
}

// Sheet finds a sheet by id.
func (s *Set) Sheet(id SheetID) (Sheet, bool) {
	for _, sh := range s.Sheets() {
		if sh.ID == id {
			return sh, true
		}
	}
	return Sheet{}, false
}

// LegacyIDs maps positional keys to content-stable ids for this set.
func (s *Set) LegacyIDs() map[SheetID]SheetID {
	sheets := s.Sheets()
	out := make(map[SheetID]SheetID, len(sheets))
	for _, sh := range sheets {
		out[PositionalID(sh.FileIndex, sh.PlanIndex)] = sh.ID
	}
	return out
}
