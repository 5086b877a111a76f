package render

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/drawing"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/workflow"
)

// CSVContentType is the MIME type of the export.
const CSVContentType = "text/csv"

// CSVHeader is the fixed header row.
var CSVHeader = []string{"File", "Sheet", "Type", "Workflow Status", "Drains", "Scuppers", "RTUs", "Penetrations", "Scale"}

// CSVFilename returns drawing_analysis_<YYYY-MM-DD>.csv for the UTC date of now.
func CSVFilename(now time.Time) string {
	return "drawing_analysis_" + now.UTC().Format("2006-01-02") + ".csv"
}

// WriteCSV writes one row per sheet. Text fields are always quoted, counts
// are bare integers, and absent values use the placeholder.
func WriteCSV(w io.Writer, set *drawing.Set, statuses map[drawing.SheetID]workflow.Status) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(CSVHeader, ",") + "\n"); err != nil {
		return err
	}
	for _, v := range Project(set, statuses) {
		if _, err := bw.WriteString(csvRow(v)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func csvRow(v SheetView) string {
	fields := []string{
		quote(v.Filename),
		quote(v.DetailOrPlaceholder()),
		quote(v.TypeOrPlaceholder()),
		quote(string(v.Status)),
	}
	for _, c := range v.Cells {
		fields = append(fields, csvCount(c))
	}
	fields = append(fields, quote(v.ScaleOrPlaceholder()))
	return strings.Join(fields, ",") + "\n"
}

func csvCount(c Cell) string {
	if !c.Present {
		return Placeholder
	}
	return strconv.Itoa(c.Count)
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
