package wiring

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/internal/infrastructure/config"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/internal/infrastructure/logging"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/internal/infrastructure/messaging"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/storage"
)

// Workspace bundles core infrastructure dependencies.
type Workspace struct {
	Root      string
	Config    *config.Config
	Logger    *zap.Logger
	Repo      *storage.FilesystemRepository
	Store     storage.Store
	Messaging *messaging.Registry
}

// NewWorkspace loads config for root and opens the configured store. When
// logger is nil one is built from the log settings.
func NewWorkspace(root string, logger *zap.Logger) (*Workspace, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger, err = logging.New(cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return nil, err
		}
	}

	repo := storage.NewFilesystemRepository(root)
	sqlitePath := cfg.Storage.SQLitePath
	if !filepath.IsAbs(sqlitePath) {
		sqlitePath = filepath.Join(root, sqlitePath)
	}
	store, err := storage.Open(cfg.Storage.Backend, root, sqlitePath)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Backend, err)
	}

	// A broken messaging file disables messaging rather than the workspace.
	deadLetters := messaging.NewDeadLetterStore(filepath.Join(repo.Dir(), storage.DeadLetterFile))
	registry, _ := messaging.NewRegistry(nil, messaging.WithDeadLetters(deadLetters))
	if msgCfg, err := repo.LoadMessagingConfig(); err != nil {
		logger.Warn("messaging config ignored", zap.Error(err))
	} else if r, err := messaging.NewRegistry(msgCfg, messaging.WithDeadLetters(deadLetters)); err != nil {
		logger.Warn("messaging config ignored", zap.Error(err))
	} else {
		registry = r
	}

	return &Workspace{
		Root:      root,
		Config:    cfg,
		Logger:    logger,
		Repo:      repo,
		Store:     store,
		Messaging: registry,
	}, nil
}

// Close drains pending messaging deliveries, releases the store and flushes
// the logger.
func (w *Workspace) Close() error {
	var errs []error
	if w.Messaging != nil {
		w.Messaging.Close()
	}
	if c, ok := w.Store.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	// Sync on a terminal stderr reports EINVAL on some platforms.
	_ = w.Logger.Sync()
	return errors.Join(errs...)
}
