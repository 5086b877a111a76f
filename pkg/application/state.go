package application

import (
	"context"
	"time"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/drawing"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/session"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/workflow"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/parse"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/render"
)

// AppState is a snapshot of everything the surfaces render from.
type AppState struct {
	Data      *drawing.Set
	Statuses  map[drawing.SheetID]workflow.Status
	Mode      render.ViewMode
	Query     string
	Busy      bool
	Revision  uint64
	Selection []session.Item
}

// Render returns the renderer input for the snapshot.
func (s AppState) Render() render.State {
	return render.State{
		Data:     s.Data,
		Statuses: s.Statuses,
		Mode:     s.Mode,
		Query:    s.Query,
		Busy:     s.Busy,
	}
}

// HasDrawings reports whether any drawing data is loaded.
func (s AppState) HasDrawings() bool {
	return s.Data.HasDrawings()
}

// RestoreInfo describes the saved session found at start-up.
type RestoreInfo struct {
	Available bool
	Timestamp time.Time
	Age       time.Duration
	Sheets    int
}

// Parser uploads the selected files and decodes the response.
type Parser interface {
	Parse(ctx context.Context, files []parse.Upload) (*parse.Result, error)
}

// BoardStore persists workflow statuses.
type BoardStore interface {
	LoadBoard(ctx context.Context) *workflow.Board
	SaveBoard(ctx context.Context, b *workflow.Board) error
	Clear(ctx context.Context) error
}

// SessionStore persists the last parse result.
type SessionStore interface {
	Load(ctx context.Context) (session.Record, bool)
	Save(ctx context.Context, rec session.Record) error
	Clear(ctx context.Context) error
}

// SelectionStore persists the chosen files.
type SelectionStore interface {
	Load(ctx context.Context) *session.Selection
	Save(ctx context.Context, sel *session.Selection) error
}

// Observer is told about finished submits and status changes.
type Observer interface {
	SubmitFinished(err error, elapsed time.Duration)
	StatusChanged(from, to workflow.Status)
	Exported(rows int)
}

type nopObserver struct{}

func (nopObserver) SubmitFinished(error, time.Duration)            {}
func (nopObserver) StatusChanged(workflow.Status, workflow.Status) {}
func (nopObserver) Exported(int)                                   {}
