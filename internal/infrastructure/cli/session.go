package cli

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var clearYes bool

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect or restore the saved session",
}

var sessionInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Describe the saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir(cmd)
		if err != nil {
			return err
		}
		defer closeServices(services)

		out := cmd.OutOrStdout()
		info := services.Controller.CheckRestore(cmd.Context())
		if info.Timestamp.IsZero() {
			_, _ = fmt.Fprintln(out, "No saved session.")
			return nil
		}
		_, _ = fmt.Fprintf(out, "Saved:  %s (%s ago)\n", info.Timestamp.Local().Format(time.DateTime), info.Age.Round(time.Minute))
		if !info.Available {
			_, _ = fmt.Fprintf(out, "Status: expired (older than %s)\n", services.Workspace.Config.Session.MaxAge)
			return nil
		}
		_, _ = fmt.Fprintf(out, "Sheets: %d\n", info.Sheets)
		return nil
	},
}

var sessionRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Load the saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir(cmd)
		if err != nil {
			return err
		}
		defer closeServices(services)

		if err := services.Controller.RestoreSession(cmd.Context()); err != nil {
			return MapError(err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d sheet(s) loaded\n", services.Controller.State().Data.SheetCount())
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the saved session and review statuses",
	Long: `Delete the saved session and review statuses.

The file selection is kept so the same drawings can be submitted again.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearYes && !confirm(cmd, "Clear the saved session and all review statuses?") {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
		services, err := loadServicesForCurrentDir(cmd)
		if err != nil {
			return err
		}
		defer closeServices(services)

		services.Controller.Clear(cmd.Context())
		return nil
	},
}

func confirm(cmd *cobra.Command, prompt string) bool {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", prompt)
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func init() {
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "Do not ask for confirmation")
	sessionCmd.AddCommand(sessionInfoCmd)
	sessionCmd.AddCommand(sessionRestoreCmd)
	RootCmd.AddCommand(sessionCmd)
	RootCmd.AddCommand(clearCmd)
}
