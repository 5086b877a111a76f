package application_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/application"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/events"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/notify"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/workflow"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/storage"
)

func TestWorkflowService_Resolve(t *testing.T) {
	f := newFixture(t)
	wf := application.NewWorkflowService(f.ctrl)

	_, err := wf.Resolve("A1.1")
	assert.ErrorIs(t, err, application.ErrNoData)

	f.submit(t)
	sheets := f.ctrl.State().Data.Sheets()

	tests := []struct {
		ref     string
		want    int
		wantErr error
	}{
		{string(sheets[0].ID), 0, nil},
		{string(sheets[1].ID)[:6], 1, nil},
		{"0-1", 1, nil},
		{"a1.2", 1, nil},
		{"Z9", 0, application.ErrSheetNotFound},
		{"", 0, application.ErrSheetNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			sh, err := wf.Resolve(tt.ref)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, sheets[tt.want].ID, sh.ID)
		})
	}
}

func TestWorkflowService_Advance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.submit(t)
	wf := application.NewWorkflowService(f.ctrl)

	want := []workflow.Status{workflow.StatusReviewing, workflow.StatusVerified, workflow.StatusApproved}
	for _, w := range want {
		got, err := wf.Advance(ctx, "A1.1")
		require.NoError(t, err)
		assert.Equal(t, w, got)
		assert.Equal(t, "Status updated to "+string(w), f.notices.last().Message)
		assert.Equal(t, notify.SeveritySuccess, f.notices.last().Severity)
	}

	_, err := wf.Advance(ctx, "A1.1")
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)

	sh, status, err := wf.Status("A1.1")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusApproved, status)

	board := storage.NewWorkflowRepository(f.store, nil).LoadBoard(ctx)
	assert.Equal(t, workflow.StatusApproved, board.Get(sh.ID))

	last := (*f.events)[len(*f.events)-1]
	assert.Equal(t, events.TypeWorkflowChanged, last.Type)
	assert.Equal(t, string(sh.ID), last.SheetID)
	assert.Equal(t, "verified", last.Metadata["from"])
	assert.Equal(t, "approved", last.Metadata["to"])
}

func TestWorkflowService_TransitionRejectsSkips(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.submit(t)
	wf := application.NewWorkflowService(f.ctrl)
	before := f.ctrl.State().Revision

	err := wf.Transition(ctx, "A1.2", workflow.StatusApproved)
	var te *workflow.TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, workflow.StatusDetected, te.From)

	_, status, err := wf.Status("A1.2")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusDetected, status)
	assert.Equal(t, before, f.ctrl.State().Revision)

	require.NoError(t, wf.Transition(ctx, "A1.2", workflow.StatusReviewing))
	assert.Equal(t, before+1, f.ctrl.State().Revision)
}

func TestWorkflowService_PendingAndCounts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.submit(t)
	wf := application.NewWorkflowService(f.ctrl)

	for range 3 {
		_, err := wf.Advance(ctx, "A1.1")
		require.NoError(t, err)
	}

	pending := wf.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "A1.2", pending[0].Detail)

	counts := wf.Counts()
	assert.Equal(t, 1, counts[workflow.StatusApproved])
	assert.Equal(t, 1, counts[workflow.StatusDetected])
}

func TestExportService(t *testing.T) {
	f := newFixture(t)
	exp := application.NewExportService(f.ctrl)

	_, _, err := exp.CSV()
	assert.ErrorIs(t, err, application.ErrNoData)
	assert.Equal(t, "No data to export", f.notices.last().Message)

	f.submit(t)
	data, name, err := exp.CSV()
	require.NoError(t, err)
	assert.Equal(t, "drawing_analysis_2024-05-01.csv", name)
	assert.Equal(t, "CSV exported successfully!", f.notices.last().Message)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `"roof.pdf","A1.1","-","detected",3,-,-,-,"-"`, lines[1])

	var buf bytes.Buffer
	require.NoError(t, exp.WriteCSV(&buf))
	assert.Equal(t, string(data), buf.String())
}

func TestChartService(t *testing.T) {
	f := newFixture(t)
	charts := application.NewChartService(f.ctrl)

	_, err := charts.Chart(300)
	assert.ErrorIs(t, err, application.ErrNoData)
	assert.Equal(t, "No data available", f.notices.last().Message)

	f.submit(t)
	c, err := charts.Chart(300)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Sheets)
	assert.Equal(t, 5, c.Elements)
	assert.Equal(t, "2.5", c.AverageText())
}
