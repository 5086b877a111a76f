package workflow

import (
	"fmt"
	"sync"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/drawing"
)

// Board maps sheet ids to their review status. Unset sheets are detected.
type Board struct {
	mu       sync.RWMutex
	statuses map[drawing.SheetID]Status
}

// NewBoard returns a board seeded from states. Invalid values are dropped.
func NewBoard(states map[drawing.SheetID]Status) *Board {
	b := &Board{statuses: make(map[drawing.SheetID]Status, len(states))}
	for id, s := range states {
		if s.IsValid() && s != StatusDetected {
			b.statuses[id] = s
		}
	}
	return b
}

// Get returns the status for id, detected when never set.
func (b *Board) Get(id drawing.SheetID) Status {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if s, ok := b.statuses[id]; ok {
		return s
	}
	return StatusDetected
}

// Advance moves id one step forward and returns the new status.
func (b *Board) Advance(id drawing.SheetID) (Status, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	current := b.getLocked(id)
	next, event, ok := current.Next()
	if !ok {
		return current, &TransitionError{SheetID: string(id), From: current}
	}
	if err := b.fireLocked(id, current, event); err != nil {
		return current, err
	}
	return next, nil
}

// Transition moves id to target, which must be the legal successor of the
// current status. The board is unchanged on error.
func (b *Board) Transition(id drawing.SheetID, target Status) error {
	if !target.IsValid() {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, target)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	current := b.getLocked(id)
	event, ok := current.EventTo(target)
	if !ok {
		return &TransitionError{SheetID: string(id), From: current, To: target}
	}
	return b.fireLocked(id, current, event)
}

// Fire applies a named event ("review", "verify", "approve") to id.
func (b *Board) Fire(id drawing.SheetID, event string) (Status, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	current := b.getLocked(id)
	if !current.CanTransitionWith(event) {
		return current, &TransitionError{SheetID: string(id), From: current, Event: event}
	}
	if err := b.fireLocked(id, current, event); err != nil {
		return current, err
	}
	return b.statuses[id], nil
}

func (b *Board) getLocked(id drawing.SheetID) Status {
	if s, ok := b.statuses[id]; ok {
		return s
	}
	return StatusDetected
}

func (b *Board) fireLocked(id drawing.SheetID, current Status, event string) error {
	sm, err := NewSheetStateMachine(current, string(id))
	if err != nil {
		return err
	}
	if err := sm.Fire(event); err != nil {
		return &TransitionError{SheetID: string(id), From: current, Event: event}
	}
	b.statuses[id] = sm.Current()
	return nil
}

// Snapshot returns a copy of every explicitly set status.
func (b *Board) Snapshot() map[drawing.SheetID]Status {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[drawing.SheetID]Status, len(b.statuses))
	for id, s := range b.statuses {
		out[id] = s
	}
	return out
}

// Len returns the number of sheets with a recorded status.
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.statuses)
}

// Counts tallies statuses over ids. Unset ids count as detected.
func (b *Board) Counts(ids []drawing.SheetID) map[Status]int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	counts := make(map[Status]int, len(AllStatuses()))
	for _, id := range ids {
		counts[b.getLocked(id)]++
	}
	return counts
}

// Rekey renames entries using mapping, for boards saved under older ids.
// Entries already present under the new id win. It reports whether any
// entry moved.
func (b *Board) Rekey(mapping map[drawing.SheetID]drawing.SheetID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	moved := false
	for from, to := range mapping {
		s, ok := b.statuses[from]
		if !ok || from == to {
			continue
		}
		delete(b.statuses, from)
		if _, exists := b.statuses[to]; !exists {
			b.statuses[to] = s
		}
		moved = true
	}
	return moved
}

// Clear removes every recorded status.
func (b *Board) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.statuses = make(map[drawing.SheetID]Status)
}
