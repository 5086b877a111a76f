package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/internal/infrastructure/nudge"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/internal/infrastructure/wiring"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/session"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/render"
)

var (
	nudgeSchedule string
	nudgeOnce     bool
)

var nudgeCmd = &cobra.Command{
	Use:   "nudge",
	Short: "Remind reviewers about sheets awaiting approval",
	Long: `Remind reviewers about sheets awaiting approval.

Reminders are shown here and sent to the messaging adapters configured in
.drafty/messaging.yaml. The schedule is a five-field cron expression and
defaults to nudge.schedule.`,
	Example: `  drafty nudge --once
  drafty nudge --schedule "0 9 * * 1-5"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext(cmd)
		defer stop()

		services, err := loadServicesForCurrentDir(cmd)
		if err != nil {
			return err
		}
		defer closeServices(services)

		spec := nudgeSchedule
		if spec == "" {
			spec = services.Workspace.Config.Nudge.Schedule
		}
		if nudgeOnce && spec == "" {
			spec = "@daily"
		}
		if spec == "" {
			return NewCLIError("no nudge schedule", "Pass --schedule or set nudge.schedule in .drafty/config.yaml", nil)
		}

		sched, err := nudge.New(spec, reviewSource{services}, services.Events, newTerminalNotifier(cmd.OutOrStdout()), services.Workspace.Logger.Named("nudge"))
		if err != nil {
			return err
		}
		if nudgeOnce {
			if !sched.Nudge(ctx) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Nothing awaiting review.")
			}
			return nil
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Nudging on %q. Press Ctrl+C to stop\n", spec)
		return ignoreCanceled(sched.Run(ctx))
	},
}

// reviewSource feeds the scheduler from the workspace's saved session.
type reviewSource struct {
	services *wiring.AppServices
}

func (s reviewSource) Refresh(ctx context.Context) error {
	err := s.services.Controller.Resume(ctx)
	if errors.Is(err, session.ErrNoSession) || errors.Is(err, session.ErrSessionExpired) {
		return nil
	}
	return err
}

func (s reviewSource) Pending() []render.SheetView {
	return s.services.Workflow.Pending()
}

func init() {
	nudgeCmd.Flags().StringVar(&nudgeSchedule, "schedule", "", "Cron schedule (default: nudge.schedule)")
	nudgeCmd.Flags().BoolVar(&nudgeOnce, "once", false, "Send one reminder now and exit")
	RootCmd.AddCommand(nudgeCmd)
}
