// Package application coordinates file selection, uploads, the review board
// and persistence on behalf of the CLI, TUI, web dashboard and MCP server.
package application

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/drawing"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/events"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/notify"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/session"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/workflow"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/parse"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/render"
)

// Deps are the collaborators of a SessionController. Parser, Sessions,
// Workflows and Selections are required; the rest default to no-ops.
type Deps struct {
	Parser     Parser
	Sessions   SessionStore
	Workflows  BoardStore
	Selections SelectionStore

	Notifier  notify.Notifier
	Publisher events.Publisher
	Observer  Observer
	Logger    *zap.Logger

	// MaxAge bounds how old a restorable session may be.
	MaxAge time.Duration
	Now    func() time.Time
}

// SessionController owns the application state: the file selection, the
// loaded parse result, the review board and the view mode.
type SessionController struct {
	deps Deps

	mu        sync.Mutex
	selection *session.Selection
	data      *drawing.Set
	board     *workflow.Board
	mode      render.ViewMode
	query     string
	revision  uint64

	inFlight atomic.Bool
}

func NewSessionController(deps Deps) *SessionController {
	if deps.Notifier == nil {
		deps.Notifier = notify.Discard
	}
	if deps.Publisher == nil {
		deps.Publisher = events.NewInMemoryPublisher()
	}
	if deps.Observer == nil {
		deps.Observer = nopObserver{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.MaxAge <= 0 {
		deps.MaxAge = session.DefaultMaxAge
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &SessionController{
		deps:      deps,
		selection: session.NewSelection(),
		board:     workflow.NewBoard(nil),
		mode:      render.ViewTable,
	}
}

// Load reads the saved selection and review board. It never loads the saved
// parse result; see CheckRestore and RestoreSession.
func (c *SessionController) Load(ctx context.Context) {
	sel := c.deps.Selections.Load(ctx)
	board := c.deps.Workflows.LoadBoard(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection = sel
	c.board = board
}

// Publisher returns the event publisher change events are sent to.
func (c *SessionController) Publisher() events.Publisher {
	return c.deps.Publisher
}

// Select adds paths to the selection under cat and saves it.
func (c *SessionController) Select(ctx context.Context, cat session.Category, paths ...string) error {
	c.mu.Lock()
	err := c.selection.Select(cat, paths...)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	return c.saveSelection(ctx)
}

// Replace sets the files under cat and saves the selection.
func (c *SessionController) Replace(ctx context.Context, cat session.Category, paths ...string) error {
	c.mu.Lock()
	err := c.selection.Replace(cat, paths...)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	return c.saveSelection(ctx)
}

// Remove drops the file at index under cat and saves the selection.
func (c *SessionController) Remove(ctx context.Context, cat session.Category, index int) error {
	c.mu.Lock()
	err := c.selection.Remove(cat, index)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	return c.saveSelection(ctx)
}

// ResetSelection empties the selection.
func (c *SessionController) ResetSelection(ctx context.Context) error {
	c.mu.Lock()
	c.selection.Clear()
	c.mu.Unlock()
	return c.saveSelection(ctx)
}

// Selection lists the chosen files in category order.
func (c *SessionController) Selection() []session.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection.All()
}

func (c *SessionController) saveSelection(ctx context.Context) error {
	c.mu.Lock()
	snapshot := &session.Selection{Files: make(map[session.Category][]string, len(c.selection.Files))}
	for k, v := range c.selection.Files {
		snapshot.Files[k] = append([]string(nil), v...)
	}
	c.mu.Unlock()
	return c.deps.Selections.Save(ctx, snapshot)
}

// InFlight reports whether a submit is running.
func (c *SessionController) InFlight() bool {
	return c.inFlight.Load()
}

// Submit uploads every selected file in one request. On success the result
// replaces the current data and is saved; on failure the current data is
// left as it was and an error notice is emitted.
func (c *SessionController) Submit(ctx context.Context) (*drawing.Set, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSubmitInFlight
	}
	defer c.inFlight.Store(false)

	c.mu.Lock()
	uploads := parse.UploadsFrom(c.selection)
	c.mu.Unlock()
	if len(uploads) == 0 {
		return nil, ErrNoSelection
	}

	c.notice(notify.SeverityInfo, fmt.Sprintf("Parsing %d document(s)...", len(uploads)))
	start := c.deps.Now()
	res, err := c.deps.Parser.Parse(ctx, uploads)
	c.deps.Observer.SubmitFinished(err, c.deps.Now().Sub(start))
	if err != nil {
		c.notice(notify.SeverityError, "Error parsing documents")
		return nil, fmt.Errorf("submit: %w", err)
	}

	c.install(ctx, res.Set)
	// A failed save keeps the in-memory result; the repository logs it.
	_ = c.deps.Sessions.Save(ctx, session.Record{Data: res.Raw, Timestamp: c.deps.Now().UTC()})

	c.notice(notify.SeveritySuccess, fmt.Sprintf("Parsed %d sheet(s)", res.Set.SheetCount()))
	c.publish(events.New(events.TypeSessionLoaded, "documents parsed").
		WithMeta("sheets", fmt.Sprint(res.Set.SheetCount())))
	return res.Set, nil
}

// install makes set the current data and moves board entries saved under
// positional ids onto the set's content ids.
func (c *SessionController) install(ctx context.Context, set *drawing.Set) {
	c.mu.Lock()
	c.data = set
	c.revision++
	moved := c.board.Rekey(set.LegacyIDs())
	board := c.board
	c.mu.Unlock()

	if moved {
		_ = c.deps.Workflows.SaveBoard(ctx, board)
	}
}

// CheckRestore reports whether a saved session younger than the maximum
// age exists. It does not load it.
func (c *SessionController) CheckRestore(ctx context.Context) RestoreInfo {
	rec, ok := c.deps.Sessions.Load(ctx)
	if !ok {
		return RestoreInfo{}
	}
	now := c.deps.Now()
	info := RestoreInfo{
		Available: rec.Restorable(now, c.deps.MaxAge),
		Timestamp: rec.Timestamp,
		Age:       rec.Age(now),
	}
	if info.Available {
		if set, err := drawing.Decode(rec.Data); err == nil {
			info.Sheets = set.SheetCount()
		}
	}
	return info
}

// RestoreSession loads the saved session as the current data.
func (c *SessionController) RestoreSession(ctx context.Context) error {
	if err := c.restore(ctx, true); err != nil {
		return err
	}
	c.notice(notify.SeverityInfo, "Session restored")
	return nil
}

// Resume re-reads the selection and board, then loads the saved session
// without a notice or event. Each CLI invocation and MCP call resumes the
// session a previous submit or restore left behind.
func (c *SessionController) Resume(ctx context.Context) error {
	c.Load(ctx)
	return c.restore(ctx, false)
}

func (c *SessionController) restore(ctx context.Context, announce bool) error {
	rec, ok := c.deps.Sessions.Load(ctx)
	if !ok {
		return session.ErrNoSession
	}
	if !rec.Restorable(c.deps.Now(), c.deps.MaxAge) {
		return session.ErrSessionExpired
	}
	set, err := drawing.Decode(rec.Data)
	if err != nil {
		c.deps.Logger.Warn("saved session undecodable", zap.Error(err))
		return fmt.Errorf("%w: %v", session.ErrNoSession, err)
	}

	c.install(ctx, set)
	if announce {
		c.publish(events.New(events.TypeSessionLoaded, "session restored").
			WithMeta("sheets", fmt.Sprint(set.SheetCount())))
	}
	return nil
}

// Clear deletes the saved session and review board and resets the loaded
// data. The file selection is kept.
func (c *SessionController) Clear(ctx context.Context) {
	_ = c.deps.Sessions.Clear(ctx)
	_ = c.deps.Workflows.Clear(ctx)

	c.mu.Lock()
	c.data = nil
	c.board.Clear()
	c.revision++
	c.mu.Unlock()

	c.notice(notify.SeverityInfo, "Session cleared")
	c.publish(events.New(events.TypeSessionCleared, "session cleared"))
}

// SetViewMode switches between the table and card layouts.
func (c *SessionController) SetViewMode(mode render.ViewMode) error {
	if !mode.IsValid() {
		return fmt.Errorf("invalid view mode: %s", mode)
	}
	c.mu.Lock()
	c.mode = mode
	c.revision++
	c.mu.Unlock()

	c.notice(notify.SeverityInfo, fmt.Sprintf("Switched to %s view", mode))
	c.publish(events.New(events.TypeViewChanged, string(mode)))
	return nil
}

// SetQuery sets the search filter.
func (c *SessionController) SetQuery(q string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query = q
}

// State returns a snapshot of the application state.
func (c *SessionController) State() AppState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return AppState{
		Data:      c.data,
		Statuses:  c.board.Snapshot(),
		Mode:      c.mode,
		Query:     c.query,
		Busy:      c.inFlight.Load(),
		Revision:  c.revision,
		Selection: c.selection.All(),
	}
}

func (c *SessionController) notice(sev notify.Severity, msg string) {
	c.deps.Notifier.Notify(notify.New(sev, msg))
}

func (c *SessionController) publish(e *events.Event) {
	if err := c.deps.Publisher.Publish(e); err != nil {
		c.deps.Logger.Warn("event publish failed", zap.String("type", e.Type), zap.Error(err))
	}
}
