package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/internal/infrastructure/config"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/internal/infrastructure/logging"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/internal/infrastructure/wiring"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/notify"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/session"
)

// loadServices opens the workspace at root and resumes the saved session.
// Notices are printed to out.
func loadServices(ctx context.Context, root string, out io.Writer) (*wiring.AppServices, error) {
	services, err := openServices(ctx, root, newTerminalNotifier(out))
	if err != nil {
		return nil, err
	}
	ws := services.Workspace
	switch err := services.Controller.Resume(ctx); {
	case err == nil:
	case errors.Is(err, session.ErrSessionExpired):
		ws.Logger.Debug("saved session expired")
	case errors.Is(err, session.ErrNoSession):
		ws.Logger.Debug("no saved session", zap.Error(err))
	default:
		_ = ws.Close()
		return nil, fmt.Errorf("failed to resume session: %w", err)
	}
	return services, nil
}

// openServices opens the workspace at root without loading any saved state.
func openServices(ctx context.Context, root string, notifier notify.Notifier) (*wiring.AppServices, error) {
	logger, err := overrideLogger(root)
	if err != nil {
		return nil, MapError(err)
	}
	ws, err := wiring.NewWorkspace(root, logger)
	if err != nil {
		return nil, MapError(fmt.Errorf("failed to open workspace: %w", err))
	}
	return wiring.BuildAppServices(ctx, ws, notifier), nil
}

// overrideLogger builds a logger when --log-level is set.
func overrideLogger(root string) (*zap.Logger, error) {
	if logLevel == "" {
		return nil, nil
	}
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	return logging.New(logLevel, cfg.Log.Format)
}

func getProjectRoot() (string, error) {
	if projectPath != "" {
		abs, err := filepath.Abs(projectPath)
		if err != nil {
			return "", fmt.Errorf("invalid project path %q: %w", projectPath, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return "", fmt.Errorf("project path %q: %w", abs, err)
		}
		if !info.IsDir() {
			return "", fmt.Errorf("project path %q is not a directory", abs)
		}
		return abs, nil
	}
	return os.Getwd()
}

func loadServicesForCurrentDir(cmd *cobra.Command) (*wiring.AppServices, error) {
	root, err := getProjectRoot()
	if err != nil {
		return nil, err
	}
	return loadServices(cmd.Context(), root, cmd.ErrOrStderr())
}

func closeServices(services *wiring.AppServices) {
	_ = services.Workspace.Close()
}
