package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/session"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/render"
)

var submitShow bool

var submitCmd = &cobra.Command{
	Use:   "submit [drawings...]",
	Short: "Upload the selected files to the parsing service",
	Long: `Upload the selected files to the parsing service in one request.

Drawings given as arguments replace the drawing selection first. On
success the result is saved as the current session and replaces any
previously loaded data; on failure the previous data is kept.`,
	Example: `  drafty submit
  drafty submit plans/*.pdf --show`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var paths []string
		if len(args) > 0 {
			var err error
			if paths, err = absFiles(args); err != nil {
				return err
			}
		}

		services, err := loadServicesForCurrentDir(cmd)
		if err != nil {
			return err
		}
		defer closeServices(services)

		ctrl := services.Controller
		if len(paths) > 0 {
			if err := ctrl.Replace(cmd.Context(), session.CategoryDrawing, paths...); err != nil {
				return MapError(fmt.Errorf("select drawings: %w", err))
			}
		}

		set, err := ctrl.Submit(cmd.Context())
		if err != nil {
			return MapError(err)
		}

		st := ctrl.State().Render()
		totals := st.Totals()
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d file(s), %d sheet(s), %d element(s)\n",
			len(set.Drawings), totals.Sheets, totals.Elements())
		if !submitShow {
			return nil
		}
		out, err := render.TextRenderer{}.Render(st)
		if err != nil {
			return fmt.Errorf("render: %w", err)
		}
		_, _ = fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	submitCmd.Flags().BoolVar(&submitShow, "show", false, "Print the sheet table after parsing")
	RootCmd.AddCommand(submitCmd)
}
