package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/internal/infrastructure/watch"
)

var (
	watchDebounce  time.Duration
	watchNoInitial bool
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Watch a folder of drawings and re-submit when it changes",
	Long: `Watch a folder of drawings and re-submit when it changes.

Every PDF under the folder becomes the drawing selection. Temporary and
hidden files are ignored, and bursts of changes are coalesced into one
submit.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid directory %q: %w", args[0], err)
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return fmt.Errorf("%q is not a directory", args[0])
		}

		ctx, stop := signalContext(cmd)
		defer stop()

		services, err := loadServicesForCurrentDir(cmd)
		if err != nil {
			return err
		}
		defer closeServices(services)

		logger := services.Workspace.Logger.Named("watch")
		auto := watch.NewAutoSubmitter(dir, services.Controller, logger)
		if !watchNoInitial {
			if err := auto.Sync(ctx); err != nil {
				logger.Error("initial submit failed", zap.Error(err))
			}
		}

		w, err := watch.NewFSWatcher(watchDebounce, watch.DrawingFilter(), auto.OnChange(ctx))
		if err != nil {
			return err
		}
		if err := w.WatchRecursive(dir); err != nil {
			return err
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for drawing changes... Press Ctrl+C to stop\n", dir)
		return ignoreCanceled(w.Run(ctx))
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "Quiet period before re-submitting")
	watchCmd.Flags().BoolVar(&watchNoInitial, "no-initial", false, "Skip the submit at start-up")
	RootCmd.AddCommand(watchCmd)
}
