package workflow_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/drawing"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/workflow"
)

func TestBoard_DefaultDetected(t *testing.T) {
	b := workflow.NewBoard(nil)
	if got := b.Get("never-set"); got != workflow.StatusDetected {
		t.Errorf("expected detected, got %s", got)
	}
	if b.Len() != 0 {
		t.Errorf("expected empty board, got %d", b.Len())
	}
}

func TestBoard_Advance(t *testing.T) {
	b := workflow.NewBoard(nil)
	id := drawing.SheetID("abc")

	for _, want := range []workflow.Status{workflow.StatusReviewing, workflow.StatusVerified, workflow.StatusApproved} {
		got, err := b.Advance(id)
		if err != nil {
			t.Fatalf("Advance failed: %v", err)
		}
		if got != want || b.Get(id) != want {
			t.Errorf("Advance = %s (stored %s), want %s", got, b.Get(id), want)
		}
	}

	_, err := b.Advance(id)
	if !errors.Is(err, workflow.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	var te *workflow.TransitionError
	if !errors.As(err, &te) || te.From != workflow.StatusApproved {
		t.Errorf("expected TransitionError from approved, got %#v", err)
	}
}

func TestBoard_TransitionRejectsIllegal(t *testing.T) {
	b := workflow.NewBoard(map[drawing.SheetID]workflow.Status{"s1": workflow.StatusReviewing})

	tests := []struct {
		name   string
		target workflow.Status
	}{
		{"skip ahead", workflow.StatusApproved},
		{"backwards", workflow.StatusDetected},
		{"same", workflow.StatusReviewing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := b.Transition("s1", tt.target)
			if !errors.Is(err, workflow.ErrInvalidTransition) {
				t.Errorf("expected ErrInvalidTransition, got %v", err)
			}
			if b.Get("s1") != workflow.StatusReviewing {
				t.Errorf("board changed to %s", b.Get("s1"))
			}
		})
	}

	if err := b.Transition("s1", workflow.Status("bogus")); !errors.Is(err, workflow.ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}
	if err := b.Transition("s1", workflow.StatusVerified); err != nil {
		t.Fatalf("legal transition failed: %v", err)
	}
	if b.Get("s1") != workflow.StatusVerified {
		t.Errorf("expected verified, got %s", b.Get("s1"))
	}
}

func TestBoard_Fire(t *testing.T) {
	b := workflow.NewBoard(nil)
	if _, err := b.Fire("s1", workflow.EventVerify); !errors.Is(err, workflow.ErrInvalidTransition) {
		t.Errorf("expected verify from detected to fail, got %v", err)
	}
	got, err := b.Fire("s1", workflow.EventReview)
	if err != nil || got != workflow.StatusReviewing {
		t.Errorf("Fire(review) = %s, %v", got, err)
	}
}

func TestBoard_SnapshotCountsClear(t *testing.T) {
	b := workflow.NewBoard(map[drawing.SheetID]workflow.Status{
		"a": workflow.StatusVerified,
		"b": workflow.StatusApproved,
		"c": workflow.Status("junk"),
	})
	snap := b.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected invalid entries dropped, got %v", snap)
	}
	snap["a"] = workflow.StatusDetected
	if b.Get("a") != workflow.StatusVerified {
		t.Error("snapshot mutation leaked into board")
	}

	counts := b.Counts([]drawing.SheetID{"a", "b", "z"})
	if counts[workflow.StatusDetected] != 1 || counts[workflow.StatusVerified] != 1 || counts[workflow.StatusApproved] != 1 {
		t.Errorf("unexpected counts %v", counts)
	}

	b.Clear()
	if b.Len() != 0 || b.Get("b") != workflow.StatusDetected {
		t.Error("Clear did not reset board")
	}
}

func TestBoard_Rekey(t *testing.T) {
	b := workflow.NewBoard(map[drawing.SheetID]workflow.Status{
		"0-0":  workflow.StatusReviewing,
		"0-1":  workflow.StatusVerified,
		"new1": workflow.StatusApproved,
	})
	moved := b.Rekey(map[drawing.SheetID]drawing.SheetID{"0-0": "new0", "0-1": "new1"})
	if !moved {
		t.Fatal("expected entries to move")
	}
	if b.Get("new0") != workflow.StatusReviewing {
		t.Errorf("expected new0 reviewing, got %s", b.Get("new0"))
	}
	if b.Get("new1") != workflow.StatusApproved {
		t.Errorf("existing entry should win, got %s", b.Get("new1"))
	}
	if b.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", b.Len())
	}
}

func TestBoard_ConcurrentAdvance(t *testing.T) {
	b := workflow.NewBoard(nil)
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := b.Advance("shared"); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if successes != 3 {
		t.Errorf("expected exactly 3 successful advances, got %d", successes)
	}
	if b.Get("shared") != workflow.StatusApproved {
		t.Errorf("expected approved, got %s", b.Get("shared"))
	}
}
