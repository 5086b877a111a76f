package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/application"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/drawing"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/workflow"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/render"
)

// Flag variables for status command
var (
	statusFilter string
	pendingOnly  bool
	statusLimit  int
	statusJSON   bool
)

var statusCmd = &cobra.Command{
	Use:   "status [sheet]",
	Short: "Show review progress for the parsed sheets",
	Long: `Show review progress for the parsed sheets.

A sheet can be named by its id, a unique id prefix or its detail number.

Use flags to filter sheets:
  --status, -s    Filter by status (detected,reviewing,verified,approved)
  --pending       Show only sheets not yet approved
  --limit, -n     Limit number of sheets shown
  --json          Output in JSON format

Examples:
  drafty status
  drafty status A1.1
  drafty status -s reviewing,verified
  drafty status --pending --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatusCmd,
}

// statusJSONOutput represents the JSON output format for status
type statusJSONOutput struct {
	Sheets   int               `json:"total_sheets"`
	Progress float64           `json:"progress"`
	Counts   map[string]int    `json:"counts"`
	Items    []sheetJSONOutput `json:"sheets,omitempty"`
}

type sheetJSONOutput struct {
	ID     string `json:"id"`
	File   string `json:"file"`
	Sheet  string `json:"sheet"`
	Type   string `json:"type"`
	Status string `json:"status"`
	Next   string `json:"next_action,omitempty"`
}

func runStatusCmd(cmd *cobra.Command, args []string) error {
	services, err := loadServicesForCurrentDir(cmd)
	if err != nil {
		return err
	}
	defer closeServices(services)

	st := services.Controller.State()
	if !st.HasDrawings() {
		return MapError(application.ErrNoData)
	}

	if len(args) == 1 {
		sh, status, err := services.Workflow.Status(args[0])
		if err != nil {
			return MapError(err)
		}
		return outputSheetStatus(cmd.OutOrStdout(), sh, status)
	}

	filter, err := parseStatusFilter(statusFilter)
	if err != nil {
		return MapError(err)
	}
	views := filterSheets(render.Project(st.Data, st.Statuses), filter)
	counts := services.Workflow.Counts()

	if statusJSON {
		return outputStatusJSON(cmd.OutOrStdout(), st.Data.SheetCount(), counts, views)
	}
	outputStatusText(cmd.OutOrStdout(), st.Data.SheetCount(), counts, views)
	return nil
}

func parseStatusFilter(s string) (map[workflow.Status]bool, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	filter := make(map[workflow.Status]bool)
	for _, part := range strings.Split(s, ",") {
		status, err := workflow.ParseStatus(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		filter[status] = true
	}
	return filter, nil
}

func filterSheets(views []render.SheetView, filter map[workflow.Status]bool) []render.SheetView {
	var out []render.SheetView
	for _, v := range views {
		if filter != nil && !filter[v.Status] {
			continue
		}
		if pendingOnly && v.Status.IsFinal() {
			continue
		}
		out = append(out, v)
		if statusLimit > 0 && len(out) >= statusLimit {
			break
		}
	}
	return out
}

func progress(total int, counts map[workflow.Status]int) float64 {
	if total == 0 {
		return 0
	}
	return float64(counts[workflow.StatusApproved]) / float64(total) * 100
}

func outputStatusJSON(w io.Writer, total int, counts map[workflow.Status]int, views []render.SheetView) error {
	output := statusJSONOutput{
		Sheets:   total,
		Progress: progress(total, counts),
		Counts:   make(map[string]int, len(counts)),
	}
	for _, s := range workflow.AllStatuses() {
		output.Counts[string(s)] = counts[s]
	}
	for _, v := range views {
		item := sheetJSONOutput{
			ID:     string(v.ID),
			File:   v.Filename,
			Sheet:  v.DetailOrPlaceholder(),
			Type:   v.TypeOrPlaceholder(),
			Status: string(v.Status),
		}
		if next, _, ok := v.Status.Next(); ok {
			item.Next = string(next)
		}
		output.Items = append(output.Items, item)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

func outputStatusText(w io.Writer, total int, counts map[workflow.Status]int, views []render.SheetView) {
	_, _ = fmt.Fprintf(w, "Sheets: %d\n", total)
	for _, s := range workflow.AllStatuses() {
		_, _ = fmt.Fprintf(w, "- %-10s %d\n", s.DisplayName()+":", counts[s])
	}
	_, _ = fmt.Fprintf(w, "\nReview Progress: %.1f%% (%d/%d sheets approved)\n",
		progress(total, counts), counts[workflow.StatusApproved], total)

	if len(views) == 0 {
		return
	}
	_, _ = fmt.Fprintln(w)
	for _, v := range views {
		_, _ = fmt.Fprintf(w, "%s  %-12s %-10s %s  %s\n",
			shortID(v.ID), v.DetailOrPlaceholder(), v.Status.DisplayName(), v.Filename, v.TypeOrPlaceholder())
	}
}

func outputSheetStatus(w io.Writer, sh drawing.Sheet, status workflow.Status) error {
	_, _ = fmt.Fprintf(w, "Sheet:  %s\n", sheetLabel(sh))
	_, _ = fmt.Fprintf(w, "File:   %s\n", sh.Filename)
	_, _ = fmt.Fprintf(w, "ID:     %s\n", sh.ID)
	_, _ = fmt.Fprintf(w, "Status: %s\n", status.DisplayName())
	if next, _, ok := status.Next(); ok {
		_, _ = fmt.Fprintf(w, "Next:   %s (drafty advance %s)\n", next.DisplayName(), sh.ID)
	}
	return nil
}

func sheetLabel(sh drawing.Sheet) string {
	if d := sh.Plan.Detail(); d != "" {
		return d
	}
	return render.UnknownSheet
}

// shortID trims content ids for the listing; any unique prefix resolves.
func shortID(id drawing.SheetID) string {
	if len(id) > 8 {
		return string(id[:8])
	}
	return string(id)
}

func init() {
	statusCmd.Flags().StringVarP(&statusFilter, "status", "s", "", "Filter by status (comma-separated)")
	statusCmd.Flags().BoolVar(&pendingOnly, "pending", false, "Show only sheets not yet approved")
	statusCmd.Flags().IntVarP(&statusLimit, "limit", "n", 0, "Limit number of sheets shown")
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output in JSON format")
	RootCmd.AddCommand(statusCmd)
}
