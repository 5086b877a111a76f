package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/workflow"
)

var advanceCmd = &cobra.Command{
	Use:   "advance <sheet>",
	Short: "Move a sheet to its next review status",
	Long: `Move a sheet to its next review status.

Sheets move detected → reviewing → verified → approved, one step at a time.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir(cmd)
		if err != nil {
			return err
		}
		defer closeServices(services)

		to, err := services.Workflow.Advance(cmd.Context(), args[0])
		if err != nil {
			return MapError(fmt.Errorf("advance %s: %w", args[0], err))
		}
		sh, _, _ := services.Workflow.Status(args[0])
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Sheet %s (%s) is now %s\n", sheetLabel(sh), sh.Filename, to.DisplayName())
		return nil
	},
}

// transitionCmd builds the review, verify and approve commands.
func transitionCmd(use string, target workflow.Status) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <sheet>",
		Short: fmt.Sprintf("Mark a sheet as %s", target.DisplayName()),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := loadServicesForCurrentDir(cmd)
			if err != nil {
				return err
			}
			defer closeServices(services)

			if err := services.Workflow.Transition(cmd.Context(), args[0], target); err != nil {
				return MapError(fmt.Errorf("%s %s: %w", use, args[0], err))
			}
			sh, _, _ := services.Workflow.Status(args[0])
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Sheet %s (%s) is now %s\n", sheetLabel(sh), sh.Filename, target.DisplayName())
			return nil
		},
	}
}

func init() {
	RootCmd.AddCommand(advanceCmd)
	RootCmd.AddCommand(transitionCmd(workflow.EventReview, workflow.StatusReviewing))
	RootCmd.AddCommand(transitionCmd(workflow.EventVerify, workflow.StatusVerified))
	RootCmd.AddCommand(transitionCmd(workflow.EventApprove, workflow.StatusApproved))
}
