package application

import (
	"bytes"
	"fmt"
	"io"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/notify"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/render"
)

// ExportService writes the loaded data as CSV.
type ExportService struct {
	ctrl *SessionController
}

func NewExportService(ctrl *SessionController) *ExportService {
	return &ExportService{ctrl: ctrl}
}

// Filename returns the download name for today's export.
func (s *ExportService) Filename() string {
	return render.CSVFilename(s.ctrl.deps.Now())
}

// WriteCSV writes the export to w.
func (s *ExportService) WriteCSV(w io.Writer) error {
	st := s.ctrl.State()
	if !st.HasDrawings() {
		s.ctrl.notice(notify.SeverityError, "No data to export")
		return ErrNoData
	}
	if err := render.WriteCSV(w, st.Data, st.Statuses); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	s.ctrl.deps.Observer.Exported(st.Data.SheetCount())
	s.ctrl.notice(notify.SeveritySuccess, "CSV exported successfully!")
	return nil
}

// CSV returns the export bytes and the download name.
func (s *ExportService) CSV() ([]byte, string, error) {
	var buf bytes.Buffer
	if err := s.WriteCSV(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), s.Filename(), nil
}

// ChartService builds the element totals chart.
type ChartService struct {
	ctrl *SessionController
}

func NewChartService(ctrl *SessionController) *ChartService {
	return &ChartService{ctrl: ctrl}
}

// Chart returns the chart scaled to maxWidth.
func (s *ChartService) Chart(maxWidth int) (render.Chart, error) {
	st := s.ctrl.State()
	if !st.HasDrawings() {
		s.ctrl.notice(notify.SeverityError, "No data available")
		return render.Chart{}, ErrNoData
	}
	return render.BuildChart(st.Render().Totals(), maxWidth), nil
}
