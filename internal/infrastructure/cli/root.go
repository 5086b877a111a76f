package cli

import (
	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Global flags
var (
	projectPath string
	logLevel    string
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "drafty",
	Version: Version,
	Short:   "Review detections parsed from architectural roof drawings",
	Long: `Drafty sends architectural drawings to a parsing service and turns the
response into a reviewable summary. For every roof-plan sheet it shows
drains, scuppers, RTUs/curbs and penetrations with a confidence level,
aggregates totals, draws charts, exports CSV and tracks each sheet
through detected, reviewing, verified and approved.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&projectPath, "project", "C", "", "Workspace directory (default: current directory)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")
}
