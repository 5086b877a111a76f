package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/drawing"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/session"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/workflow"
)

// WorkflowRepository persists the sheet status board under KeyWorkflowStates.
// Read and write failures are logged and degrade to an empty board.
type WorkflowRepository struct {
	store  Store
	logger *zap.Logger
}

func NewWorkflowRepository(store Store, logger *zap.Logger) *WorkflowRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkflowRepository{store: store, logger: logger}
}

// LoadBoard never fails: a missing, unreadable or corrupt value yields an
// empty board.
func (r *WorkflowRepository) LoadBoard(ctx context.Context) *workflow.Board {
	data, err := r.store.Get(ctx, KeyWorkflowStates)
	if errors.Is(err, ErrNotFound) {
		return workflow.NewBoard(nil)
	}
	if err != nil {
		r.logger.Warn("workflow states unreadable, starting empty",
			zap.String("key", KeyWorkflowStates), zap.Error(err))
		return workflow.NewBoard(nil)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		r.logger.Warn("workflow states corrupt, starting empty",
			zap.String("key", KeyWorkflowStates), zap.Error(err))
		return workflow.NewBoard(nil)
	}

	states := make(map[drawing.SheetID]workflow.Status, len(raw))
	for id, s := range raw {
		status, err := workflow.ParseStatus(s)
		if err != nil {
			r.logger.Warn("dropping invalid workflow status",
				zap.String("key", KeyWorkflowStates), zap.String("sheet", id), zap.String("status", s))
			continue
		}
		states[drawing.SheetID(id)] = status
	}
	return workflow.NewBoard(states)
}

// SaveBoard writes the board. The error is also logged.
func (r *WorkflowRepository) SaveBoard(ctx context.Context, b *workflow.Board) error {
	data, err := json.Marshal(b.Snapshot())
	if err == nil {
		err = r.store.Set(ctx, KeyWorkflowStates, data)
	}
	if err != nil {
		r.logger.Warn("failed to save workflow states",
			zap.String("key", KeyWorkflowStates), zap.Error(err))
		return fmt.Errorf("save workflow states: %w", err)
	}
	return nil
}

// Clear deletes the stored board.
func (r *WorkflowRepository) Clear(ctx context.Context) error {
	if err := r.store.Delete(ctx, KeyWorkflowStates); err != nil {
		r.logger.Warn("failed to clear workflow states",
			zap.String("key", KeyWorkflowStates), zap.Error(err))
		return err
	}
	return nil
}

// SessionRepository persists the last parse result under KeySession.
type SessionRepository struct {
	store  Store
	logger *zap.Logger
}

func NewSessionRepository(store Store, logger *zap.Logger) *SessionRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionRepository{store: store, logger: logger}
}

// Load returns the saved record. ok is false when nothing usable is stored.
func (r *SessionRepository) Load(ctx context.Context) (rec session.Record, ok bool) {
	data, err := r.store.Get(ctx, KeySession)
	if errors.Is(err, ErrNotFound) {
		return session.Record{}, false
	}
	if err != nil {
		r.logger.Warn("saved session unreadable",
			zap.String("key", KeySession), zap.Error(err))
		return session.Record{}, false
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		r.logger.Warn("saved session corrupt",
			zap.String("key", KeySession), zap.Error(err))
		return session.Record{}, false
	}
	if len(rec.Data) == 0 {
		return session.Record{}, false
	}
	return rec, true
}

// Save writes rec. The error is also logged.
func (r *SessionRepository) Save(ctx context.Context, rec session.Record) error {
	data, err := json.Marshal(rec)
	if err == nil {
		err = r.store.Set(ctx, KeySession, data)
	}
	if err != nil {
		r.logger.Warn("failed to save session",
			zap.String("key", KeySession), zap.Error(err))
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Clear deletes the saved session.
func (r *SessionRepository) Clear(ctx context.Context) error {
	if err := r.store.Delete(ctx, KeySession); err != nil {
		r.logger.Warn("failed to clear session",
			zap.String("key", KeySession), zap.Error(err))
		return err
	}
	return nil
}

// SelectionRepository persists the chosen files between CLI invocations.
type SelectionRepository struct {
	store  Store
	logger *zap.Logger
}

func NewSelectionRepository(store Store, logger *zap.Logger) *SelectionRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SelectionRepository{store: store, logger: logger}
}

// Load returns the saved selection, or an empty one.
func (r *SelectionRepository) Load(ctx context.Context) *session.Selection {
	sel := session.NewSelection()
	data, err := r.store.Get(ctx, KeySelection)
	if errors.Is(err, ErrNotFound) {
		return sel
	}
	if err == nil {
		err = json.Unmarshal(data, sel)
	}
	if err != nil {
		r.logger.Warn("file selection unreadable, starting empty",
			zap.String("key", KeySelection), zap.Error(err))
		return session.NewSelection()
	}
	if sel.Files == nil {
		sel.Files = make(map[session.Category][]string)
	}
	return sel
}

// Save writes sel.
func (r *SelectionRepository) Save(ctx context.Context, sel *session.Selection) error {
	data, err := json.Marshal(sel)
	if err != nil {
		return fmt.Errorf("marshal selection: %w", err)
	}
	if err := r.store.Set(ctx, KeySelection, data); err != nil {
		r.logger.Warn("failed to save file selection",
			zap.String("key", KeySelection), zap.Error(err))
		return err
	}
	return nil
}
