package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/drawing"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/events"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/notify"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/workflow"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/render"
)

// WorkflowService moves sheets through detected, reviewing, verified and
// approved.
type WorkflowService struct {
	ctrl *SessionController
}

func NewWorkflowService(ctrl *SessionController) *WorkflowService {
	return &WorkflowService{ctrl: ctrl}
}

// Resolve finds a sheet by id, unique id prefix, positional id ("0-1") or
// unique detail number.
func (s *WorkflowService) Resolve(ref string) (drawing.Sheet, error) {
	s.ctrl.mu.Lock()
	data := s.ctrl.data
	s.ctrl.mu.Unlock()
	if !data.HasDrawings() {
		return drawing.Sheet{}, ErrNoData
	}

	ref = strings.TrimSpace(ref)
	sheets := data.Sheets()
	if ref == "" {
		return drawing.Sheet{}, fmt.Errorf("%w: empty reference", ErrSheetNotFound)
	}

	for _, sh := range sheets {
		if string(sh.ID) == ref || drawing.PositionalID(sh.FileIndex, sh.PlanIndex) == drawing.SheetID(ref) {
			return sh, nil
		}
	}

	matchers := []func(drawing.Sheet) bool{
		func(sh drawing.Sheet) bool { return strings.HasPrefix(string(sh.ID), ref) },
		func(sh drawing.Sheet) bool { return strings.EqualFold(sh.Plan.Detail(), ref) },
	}
	for _, match := range matchers {
		var found []drawing.Sheet
		for _, sh := range sheets {
			if match(sh) {
				found = append(found, sh)
			}
		}
		switch len(found) {
		case 0:
			continue
		case 1:
			return found[0], nil
		default:
			return drawing.Sheet{}, fmt.Errorf("%w: %q matches %d sheets", ErrAmbiguousSheet, ref, len(found))
		}
	}
	return drawing.Sheet{}, fmt.Errorf("%w: %s", ErrSheetNotFound, ref)
}

// Advance moves the sheet one step forward and returns its new status.
func (s *WorkflowService) Advance(ctx context.Context, ref string) (workflow.Status, error) {
	sh, err := s.Resolve(ref)
	if err != nil {
		return "", err
	}
	from := s.board().Get(sh.ID)
	to, err := s.board().Advance(sh.ID)
	if err != nil {
		return from, err
	}
	s.changed(ctx, sh, from, to)
	return to, nil
}

// Transition moves the sheet to target, which must be the next status.
func (s *WorkflowService) Transition(ctx context.Context, ref string, target workflow.Status) error {
	sh, err := s.Resolve(ref)
	if err != nil {
		return err
	}
	from := s.board().Get(sh.ID)
	if err := s.board().Transition(sh.ID, target); err != nil {
		return err
	}
	s.changed(ctx, sh, from, target)
	return nil
}

// Status returns the sheet's current status.
func (s *WorkflowService) Status(ref string) (drawing.Sheet, workflow.Status, error) {
	sh, err := s.Resolve(ref)
	if err != nil {
		return drawing.Sheet{}, "", err
	}
	return sh, s.board().Get(sh.ID), nil
}

// Pending lists the sheets that are not yet approved, in document order.
func (s *WorkflowService) Pending() []render.SheetView {
	st := s.ctrl.State()
	var out []render.SheetView
	for _, v := range render.Project(st.Data, st.Statuses) {
		if v.Status != workflow.StatusApproved {
			out = append(out, v)
		}
	}
	return out
}

// Counts tallies the loaded sheets by status.
func (s *WorkflowService) Counts() map[workflow.Status]int {
	st := s.ctrl.State()
	sheets := st.Data.Sheets()
	ids := make([]drawing.SheetID, len(sheets))
	for i, sh := range sheets {
		ids[i] = sh.ID
	}
	return s.board().Counts(ids)
}

func (s *WorkflowService) board() *workflow.Board {
	s.ctrl.mu.Lock()
	defer s.ctrl.mu.Unlock()
	return s.ctrl.board
}

func (s *WorkflowService) changed(ctx context.Context, sh drawing.Sheet, from, to workflow.Status) {
	c := s.ctrl
	c.mu.Lock()
	c.revision++
	board := c.board
	c.mu.Unlock()

	// Save failures are logged by the repository and not shown to the user.
	_ = c.deps.Workflows.SaveBoard(ctx, board)

	c.deps.Observer.StatusChanged(from, to)
	c.notice(notify.SeveritySuccess, fmt.Sprintf("Status updated to %s", to))
	c.publish(events.New(events.TypeWorkflowChanged, fmt.Sprintf("%s %s is now %s", sh.Filename, sheetLabel(sh), to)).
		WithSheet(string(sh.ID)).
		WithMeta("from", string(from)).
		WithMeta("to", string(to)))
}

func sheetLabel(sh drawing.Sheet) string {
	if d := sh.Plan.Detail(); d != "" {
		return d
	}
	return render.Placeholder
}
