package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/application"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/drawing"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/session"
)

// Target is the part of the session controller the auto-submitter drives.
type Target interface {
	Replace(ctx context.Context, cat session.Category, paths ...string) error
	Submit(ctx context.Context) (*drawing.Set, error)
}

// AutoSubmitter keeps the drawing selection in step with a folder and
// re-submits when it changes.
type AutoSubmitter struct {
	dir    string
	filter *PatternFilter
	target Target
	logger *zap.Logger
}

func NewAutoSubmitter(dir string, target Target, logger *zap.Logger) *AutoSubmitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AutoSubmitter{
		dir:    dir,
		filter: DrawingFilter(),
		target: target,
		logger: logger,
	}
}

// Scan lists the drawings under the folder in path order.
func (a *AutoSubmitter) Scan() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(a.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && a.filter.Matches(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", a.dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Sync replaces the drawing selection with the folder contents and submits.
// An empty folder clears the drawings without submitting. A submit that is
// already running is logged and skipped.
func (a *AutoSubmitter) Sync(ctx context.Context) error {
	paths, err := a.Scan()
	if err != nil {
		return err
	}
	if err := a.target.Replace(ctx, session.CategoryDrawing, paths...); err != nil {
		return fmt.Errorf("select drawings: %w", err)
	}
	if len(paths) == 0 {
		a.logger.Info("no drawings in watched folder", zap.String("dir", a.dir))
		return nil
	}

	set, err := a.target.Submit(ctx)
	switch {
	case errors.Is(err, application.ErrSubmitInFlight):
		a.logger.Warn("submit already in flight, change skipped", zap.Int("drawings", len(paths)))
		return nil
	case err != nil:
		return err
	}
	a.logger.Info("drawings submitted",
		zap.Int("drawings", len(paths)),
		zap.Int("sheets", set.SheetCount()))
	return nil
}

// OnChange returns a watcher callback that syncs and logs failures.
func (a *AutoSubmitter) OnChange(ctx context.Context) func(paths []string) {
	return func(changed []string) {
		a.logger.Debug("drawings changed", zap.Strings("paths", changed))
		if err := a.Sync(ctx); err != nil {
			a.logger.Error("auto-submit failed", zap.Error(err))
		}
	}
}
