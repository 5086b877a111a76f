package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/internal/infrastructure/wiring"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/session"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/workflow"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/storage"
)

const payload = `{
  "drawing": [
    {"filename": "roof.pdf", "roof_plans": [
      {"detail_number": "A1.1", "type": "Roof Plan", "drains": "✓✓✓ (3)", "scuppers": "✓ (1)"},
      {"detail_number": "A1.2", "rtus_curbs": "✓✓ (2)"}
    ]}
  ]
}`

type testEnv struct {
	*Server
	services *wiring.AppServices
}

func newTestServer(t *testing.T) *Server {
	return newEnv(t, false).Server
}

func newEnv(t *testing.T, seed bool) testEnv {
	t.Helper()
	ws, err := wiring.NewWorkspace(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("workspace: %v", err)
	}
	t.Cleanup(func() { _ = ws.Close() })

	if seed {
		repo := storage.NewSessionRepository(ws.Store, nil)
		rec := session.Record{Data: json.RawMessage(payload), Timestamp: time.Now().UTC()}
		if err := repo.Save(context.Background(), rec); err != nil {
			t.Fatalf("seed session: %v", err)
		}
	}

	services := wiring.BuildAppServices(context.Background(), ws, nil)
	return testEnv{Server: NewServer(services), services: services}
}

func TestHandlers_NoSession(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	if _, err := s.handleSummary(ctx, struct{}{}); err == nil || !strings.Contains(err.Error(), "drafty submit") {
		t.Errorf("summary: expected no-data error, got %v", err)
	}
	if _, err := s.handleSheets(ctx, SheetsArgs{}); err == nil {
		t.Error("sheets: expected error")
	}
	if _, err := s.handleExportCSV(ctx, struct{}{}); err == nil {
		t.Error("export: expected error")
	}
	if _, err := s.handleAdvanceSheet(ctx, AdvanceSheetArgs{Sheet: "A1.1"}); err == nil || !strings.Contains(err.Error(), "drafty submit") {
		t.Errorf("advance: expected no-data error, got %v", err)
	}
}

func TestHandleSummary(t *testing.T) {
	env := newEnv(t, true)

	got, err := env.handleSummary(context.Background(), struct{}{})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	sum, ok := got.(SummaryResponse)
	if !ok {
		t.Fatalf("unexpected type %T", got)
	}
	if sum.Files != 1 || sum.Sheets != 2 || sum.Elements != 6 {
		t.Errorf("unexpected totals %+v", sum)
	}
	if sum.AveragePerSheet != 3 {
		t.Errorf("average = %v, want 3", sum.AveragePerSheet)
	}
	if sum.Statuses[workflow.StatusDetected] != 2 || sum.Approved != 0 {
		t.Errorf("statuses = %v", sum.Statuses)
	}
}

func TestHandleSheets(t *testing.T) {
	env := newEnv(t, true)
	ctx := context.Background()

	tests := []struct {
		name string
		args SheetsArgs
		want []string
	}{
		{"all", SheetsArgs{}, []string{"A1.1", "A1.2"}},
		{"query", SheetsArgs{Query: "roof plan"}, []string{"A1.1"}},
		{"status", SheetsArgs{Status: "detected"}, []string{"A1.1", "A1.2"}},
		{"none", SheetsArgs{Status: "approved"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := env.handleSheets(ctx, tt.args)
			if err != nil {
				t.Fatalf("sheets: %v", err)
			}
			rows := got.([]SheetResponse)
			details := []string{}
			for _, r := range rows {
				details = append(details, r.Detail)
			}
			if strings.Join(details, ",") != strings.Join(tt.want, ",") {
				t.Errorf("details = %v, want %v", details, tt.want)
			}
		})
	}

	got, _ := env.handleSheets(ctx, SheetsArgs{Query: "A1.1"})
	row := got.([]SheetResponse)[0]
	if row.Counts["drains"] != "3" || row.Counts["rtus_curbs"] != "-" {
		t.Errorf("counts = %v", row.Counts)
	}
	if row.Scale != "-" {
		t.Errorf("scale = %q", row.Scale)
	}

	if _, err := env.handleSheets(ctx, SheetsArgs{Status: "done"}); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestHandleAdvanceSheet(t *testing.T) {
	env := newEnv(t, true)
	ctx := context.Background()

	msg, err := env.handleAdvanceSheet(ctx, AdvanceSheetArgs{Sheet: "a1.1"})
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if msg != "Sheet A1.1 (roof.pdf) is now Reviewing" {
		t.Errorf("unexpected message %q", msg)
	}

	if _, err := env.handleAdvanceSheet(ctx, AdvanceSheetArgs{Sheet: "A1.1", Status: "approved"}); err == nil ||
		!strings.Contains(err.Error(), "one step at a time") {
		t.Errorf("expected skip rejection, got %v", err)
	}

	if _, err := env.handleAdvanceSheet(ctx, AdvanceSheetArgs{Sheet: "A1.1", Status: "verified"}); err != nil {
		t.Fatalf("transition: %v", err)
	}

	// A fresh server sees the saved board.
	other := NewServer(wiring.BuildAppServices(ctx, env.services.Workspace, nil))
	_, status, err := other.workflow.Status("A1.1")
	if err == nil {
		t.Fatalf("expected no data before refresh, got %s", status)
	}
	other.refresh(ctx)
	_, status, err = other.workflow.Status("A1.1")
	if err != nil || status != workflow.StatusVerified {
		t.Fatalf("status = %s, %v", status, err)
	}

	if _, err := env.handleAdvanceSheet(ctx, AdvanceSheetArgs{Sheet: "Z9"}); err == nil || !strings.Contains(err.Error(), "No sheet matches") {
		t.Errorf("expected not found, got %v", err)
	}
	if _, err := env.handleAdvanceSheet(ctx, AdvanceSheetArgs{Sheet: " "}); err == nil {
		t.Error("expected error for empty sheet")
	}
}

func TestHandleAdvanceSheet_AlreadyApproved(t *testing.T) {
	env := newEnv(t, true)
	ctx := context.Background()
	for range 3 {
		if _, err := env.handleAdvanceSheet(ctx, AdvanceSheetArgs{Sheet: "A1.2"}); err != nil {
			t.Fatal(err)
		}
	}
	_, err := env.handleAdvanceSheet(ctx, AdvanceSheetArgs{Sheet: "A1.2"})
	if err == nil || !strings.Contains(err.Error(), "already approved") {
		t.Errorf("expected already approved, got %v", err)
	}
}

func TestHandleExportCSV(t *testing.T) {
	env := newEnv(t, true)

	text, err := env.handleExportCSV(context.Background(), struct{}{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(lines))
	}
	if lines[1] != `"roof.pdf","A1.1","Roof Plan","detected",3,1,-,-,"-"` {
		t.Errorf("row = %s", lines[1])
	}
}

func TestServeHTTPReturnsCanceled(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.ServeHTTP(ctx, "127.0.0.1:0"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
