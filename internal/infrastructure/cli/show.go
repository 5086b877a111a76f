package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/application"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/render"
)

var (
	showView   string
	showSearch string
	showWidth  int
	exportOut  string
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the parsed drawings as a table or cards",
	Long: `Show the parsed drawings as a table or cards.

The search filter matches file name, sheet, type, scale and counts,
case-insensitively. Project, specification and assembly details follow
the sheets.`,
	Example: `  drafty show
  drafty show --view cards --width 120
  drafty show --search "A1."`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := render.ParseViewMode(showView)
		if err != nil {
			return err
		}
		services, err := loadServicesForCurrentDir(cmd)
		if err != nil {
			return err
		}
		defer closeServices(services)

		st := services.Controller.State()
		if !st.HasDrawings() {
			return MapError(application.ErrNoData)
		}
		rs := st.Render()
		rs.Mode = mode
		rs.Query = showSearch

		out, err := render.TextRenderer{Width: showWidth}.Render(rs)
		if err != nil {
			return fmt.Errorf("render: %w", err)
		}
		_, _ = fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

var chartsCmd = &cobra.Command{
	Use:   "charts",
	Short: "Chart the element totals across all sheets",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir(cmd)
		if err != nil {
			return err
		}
		defer closeServices(services)

		if _, err := services.Charts.Chart(render.TextBarWidth); err != nil {
			return MapError(err)
		}
		out, err := render.TextRenderer{Width: showWidth}.RenderChart(services.Controller.State().Render())
		if err != nil {
			return fmt.Errorf("render chart: %w", err)
		}
		_, _ = fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the sheets as CSV",
	Long: `Export the sheets as CSV.

Without --output the file is written to the configured export directory
as drawing_analysis_<date>.csv. Use --output - to write to stdout.`,
	Example: `  drafty export
  drafty export -o reports/
  drafty export -o - > sheets.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir(cmd)
		if err != nil {
			return err
		}
		defer closeServices(services)

		if exportOut == "-" {
			return MapError(services.Export.WriteCSV(cmd.OutOrStdout()))
		}

		data, name, err := services.Export.CSV()
		if err != nil {
			return MapError(err)
		}
		path := exportPath(services.Workspace.Root, services.Workspace.Config.Export.Dir, exportOut, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create export directory: %w", err)
		}
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

// exportPath resolves the CSV destination. An output ending in a separator
// or naming an existing directory receives the default file name.
func exportPath(root, dir, output, name string) string {
	if output == "" {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(root, dir)
		}
		return filepath.Join(dir, name)
	}
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return filepath.Join(output, name)
	}
	if os.IsPathSeparator(output[len(output)-1]) {
		return filepath.Join(output, name)
	}
	return output
}

func init() {
	showCmd.Flags().StringVar(&showView, "view", string(render.ViewTable), "Layout: table or cards")
	showCmd.Flags().StringVarP(&showSearch, "search", "s", "", "Only show sheets matching this text")
	showCmd.PersistentFlags().IntVar(&showWidth, "width", 0, "Terminal width for cards and charts")
	chartsCmd.Flags().IntVar(&showWidth, "width", 0, "Terminal width")
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "File, directory or - for stdout")
	RootCmd.AddCommand(showCmd)
	RootCmd.AddCommand(chartsCmd)
	RootCmd.AddCommand(exportCmd)
}
