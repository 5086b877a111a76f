// Package mcp exposes the saved drawing session and its review workflow to
// MCP clients.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/mcp-go"
	"go.uber.org/zap"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/internal/infrastructure/wiring"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/application"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/drawing"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/session"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/stats"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/workflow"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/render"
)

type Server struct {
	mcpServer *mcp.Server
	ctrl      *application.SessionController
	workflow  *application.WorkflowService
	export    *application.ExportService
	logger    *zap.Logger
}

var (
	Version     = "dev"
	BuildCommit = "unknown"
	BuildDate   = "unknown"
)

// mcpErr returns a user-friendly error for MCP clients.
// Internal details are omitted; only the friendly message is returned.
func mcpErr(friendly string) error {
	return fmt.Errorf("%s", friendly)
}

const noDataMsg = "No parsed drawings. Select files and run 'drafty submit' first."

func NewServer(services *wiring.AppServices) *Server {
	info := mcp.ServerInfo{
		Name:    "drafty",
		Version: Version,
	}

	s := &Server{
		mcpServer: mcp.NewServer(info,
			mcp.WithTitle("Drafty MCP Server"),
			mcp.WithDescription("Drafty exposes parsed architectural drawings, detection counts and the sheet review workflow to MCP clients."),
			mcp.WithBuildInfo(BuildCommit, BuildDate),
			mcp.WithInstructions("Use drafty_summary for totals, drafty_sheets to list sheets, drafty_advance_sheet to move a sheet through review and drafty_export_csv for a spreadsheet export."),
		),
		ctrl:     services.Controller,
		workflow: services.Workflow,
		export:   services.Export,
		logger:   services.Workspace.Logger.Named("mcp"),
	}

	s.registerTools()
	s.registerResources()
	return s
}

// SheetsArgs filters drafty_sheets.
type SheetsArgs struct {
	Query  string `json:"query,omitempty" jsonschema:"description=Case-insensitive text the sheet must contain (file name, detail number, type, scale or counts)"`
	Status string `json:"status,omitempty" jsonschema:"description=Only list sheets in this status: detected, reviewing, verified or approved"`
}

type AdvanceSheetArgs struct {
	Sheet  string `json:"sheet" jsonschema:"description=Sheet id, unique id prefix or detail number such as A1.1"`
	Status string `json:"status,omitempty" jsonschema:"description=Target status. Defaults to the next status; skipping steps is rejected"`
}

func (s *Server) registerTools() {
	s.mcpServer.Tool("drafty_summary").
		Description("Totals for the parsed drawing set: sheets, detected elements per category, average per sheet and review progress").
		Handler(s.handleSummary)

	s.mcpServer.Tool("drafty_sheets").
		Description("List parsed sheets with their detection counts and review status").
		Handler(s.handleSheets)

	s.mcpServer.Tool("drafty_advance_sheet").
		Description("Advance a sheet one review step (detected, reviewing, verified, approved)").
		Handler(s.handleAdvanceSheet)

	s.mcpServer.Tool("drafty_export_csv").
		Description("Export every sheet as CSV in the same format as the dashboard download").
		Handler(s.handleExportCSV)
}

// refresh picks up changes other drafty processes saved since the last call.
func (s *Server) refresh(ctx context.Context) {
	if err := s.ctrl.Resume(ctx); err != nil && !errors.Is(err, session.ErrNoSession) {
		s.logger.Debug("session not resumed", zap.Error(err))
	}
}

type SummaryResponse struct {
	Files           int                     `json:"files"`
	Sheets          int                     `json:"sheets"`
	Elements        int                     `json:"elements"`
	AveragePerSheet float64                 `json:"average_per_sheet"`
	Totals          stats.Totals            `json:"totals"`
	Statuses        map[workflow.Status]int `json:"statuses"`
	Approved        int                     `json:"approved"`
}

type SheetResponse struct {
	ID     string            `json:"id"`
	File   string            `json:"file"`
	Detail string            `json:"detail"`
	Type   string            `json:"type"`
	Scale  string            `json:"scale"`
	Status workflow.Status   `json:"status"`
	Counts map[string]string `json:"counts"`
}

func (s *Server) handleSummary(ctx context.Context, args struct{}) (any, error) {
	s.refresh(ctx)
	st := s.ctrl.State()
	if !st.HasDrawings() {
		return nil, mcpErr(noDataMsg)
	}

	totals := st.Render().Totals()
	counts := s.workflow.Counts()
	return SummaryResponse{
		Files:           len(st.Data.Drawings),
		Sheets:          totals.Sheets,
		Elements:        totals.Elements(),
		AveragePerSheet: totals.AveragePerSheet(),
		Totals:          totals,
		Statuses:        counts,
		Approved:        counts[workflow.StatusApproved],
	}, nil
}

func (s *Server) handleSheets(ctx context.Context, args SheetsArgs) (any, error) {
	s.refresh(ctx)
	st := s.ctrl.State()
	if !st.HasDrawings() {
		return nil, mcpErr(noDataMsg)
	}

	var want workflow.Status
	if args.Status != "" {
		parsed, err := workflow.ParseStatus(args.Status)
		if err != nil {
			return nil, mcpErr(fmt.Sprintf("Unknown status '%s'. Use detected, reviewing, verified or approved.", args.Status))
		}
		want = parsed
	}

	out := []SheetResponse{}
	for _, v := range render.Project(st.Data, st.Statuses) {
		if !v.Matches(args.Query) || (want != "" && v.Status != want) {
			continue
		}
		out = append(out, sheetResponse(v))
	}
	return out, nil
}

func sheetResponse(v render.SheetView) SheetResponse {
	counts := make(map[string]string, len(v.Cells))
	for _, c := range v.Cells {
		counts[string(c.Category)] = c.Display()
	}
	return SheetResponse{
		ID:     string(v.ID),
		File:   v.Filename,
		Detail: v.DetailOrPlaceholder(),
		Type:   v.TypeOrPlaceholder(),
		Scale:  v.ScaleOrPlaceholder(),
		Status: v.Status,
		Counts: counts,
	}
}

func (s *Server) handleAdvanceSheet(ctx context.Context, args AdvanceSheetArgs) (string, error) {
	s.refresh(ctx)
	if strings.TrimSpace(args.Sheet) == "" {
		return "", mcpErr("Provide a sheet id or detail number.")
	}

	var to workflow.Status
	var err error
	if args.Status == "" {
		to, err = s.workflow.Advance(ctx, args.Sheet)
	} else {
		if to, err = workflow.ParseStatus(args.Status); err != nil {
			return "", mcpErr(fmt.Sprintf("Unknown status '%s'. Use detected, reviewing, verified or approved.", args.Status))
		}
		err = s.workflow.Transition(ctx, args.Sheet, to)
	}
	if err != nil {
		return "", advanceErr(args.Sheet, err)
	}

	sh, _, _ := s.workflow.Status(args.Sheet)
	return fmt.Sprintf("Sheet %s (%s) is now %s", sheetName(sh), sh.Filename, to.DisplayName()), nil
}

func advanceErr(ref string, err error) error {
	var te *workflow.TransitionError
	switch {
	case errors.Is(err, application.ErrNoData):
		return mcpErr(noDataMsg)
	case errors.Is(err, application.ErrAmbiguousSheet):
		return mcpErr(fmt.Sprintf("'%s' matches more than one sheet. Use the sheet id from drafty_sheets.", ref))
	case errors.Is(err, application.ErrSheetNotFound):
		return mcpErr(fmt.Sprintf("No sheet matches '%s'.", ref))
	case errors.As(err, &te) && te.To == "":
		return mcpErr(fmt.Sprintf("Sheet '%s' is already %s.", ref, te.From))
	case errors.As(err, &te):
		return mcpErr(fmt.Sprintf("Sheet '%s' is %s and cannot move to %s. Advance one step at a time.", ref, te.From, te.To))
	default:
		return mcpErr(fmt.Sprintf("Failed to update sheet '%s'.", ref))
	}
}

func sheetName(sh drawing.Sheet) string {
	if d := sh.Plan.Detail(); d != "" {
		return d
	}
	return string(sh.ID)
}

func (s *Server) handleExportCSV(ctx context.Context, args struct{}) (string, error) {
	s.refresh(ctx)
	data, _, err := s.export.CSV()
	if err != nil {
		return "", mcpErr(noDataMsg)
	}
	return string(data), nil
}

func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	return mcp.ServeHTTP(ctx, s.mcpServer, addr, mcp.WithDefaultCORS())
}

func (s *Server) ServeWebSocket(ctx context.Context, addr string) error {
	return mcp.ServeWebSocket(ctx, s.mcpServer, addr)
}
