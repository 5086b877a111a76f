// Package dashboard provides the web UI for reviewing parsed drawings.
package dashboard

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/application"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/notify"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/session"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/render"
)

//go:embed templates/*
var templatesFS embed.FS

// maxUploadMemory is how much of a multipart upload is held in memory.
const maxUploadMemory = 32 << 20

// Options configures a Server.
type Options struct {
	Addr string
	// Prefix mounts the dashboard under a path such as /drafty. Every
	// generated link and the page scripts carry it.
	Prefix string
	// UploadDir receives files added through the browser.
	UploadDir string
	// Flash is the notice queue shown at the top of the page. It must also
	// be one of the controller's notifiers.
	Flash *notify.Queue
	// Events streams change events; Metrics serves Prometheus metrics.
	// Either may be nil.
	Events  http.Handler
	Metrics http.Handler
	Logger  *zap.Logger
}

// Server is the dashboard HTTP server.
type Server struct {
	opts     Options
	ctrl     *application.SessionController
	workflow *application.WorkflowService
	export   *application.ExportService
	charts   *application.ChartService
	renderer *render.HTMLRenderer
	tmpl     *template.Template
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a new dashboard server.
func NewServer(ctrl *application.SessionController, opts Options) (*Server, error) {
	tmpl, err := render.Templates()
	if err != nil {
		return nil, err
	}
	tmpl, err = tmpl.Funcs(template.FuncMap{
		"formatTime": formatTime,
		"ago":        ago,
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	opts.Prefix = normalizePrefix(opts.Prefix)
	renderer, err := render.NewHTMLRenderer(opts.Prefix)
	if err != nil {
		return nil, err
	}
	if opts.Flash == nil {
		opts.Flash = notify.NewQueue()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.UploadDir == "" {
		opts.UploadDir = filepath.Join(os.TempDir(), "drafty-uploads")
	}

	return &Server{
		opts:     opts,
		ctrl:     ctrl,
		workflow: application.NewWorkflowService(ctrl),
		export:   application.NewExportService(ctrl),
		charts:   application.NewChartService(ctrl),
		renderer: renderer,
		tmpl:     tmpl,
		logger:   opts.Logger,
	}, nil
}

// Handler returns the dashboard routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /results", s.handleResults)
	mux.HandleFunc("GET /charts", s.handleCharts)
	mux.HandleFunc("GET /export.csv", s.handleExport)
	mux.HandleFunc("GET /api/state", s.handleAPIState)
	mux.HandleFunc("POST /view/{mode}", s.handleView)
	mux.HandleFunc("POST /files", s.handleAddFiles)
	mux.HandleFunc("POST /files/{category}/{index}/remove", s.handleRemoveFile)
	mux.HandleFunc("POST /submit", s.handleSubmit)
	mux.HandleFunc("POST /sheets/{id}/advance", s.handleAdvance)
	mux.HandleFunc("POST /session/restore", s.handleRestore)
	mux.HandleFunc("POST /clear", s.handleClear)
	if s.opts.Events != nil {
		mux.Handle("GET /events", s.opts.Events)
	}
	if s.opts.Metrics != nil {
		mux.Handle("GET /metrics", s.opts.Metrics)
	}
	if s.opts.Prefix == "" {
		return mux
	}
	mounted := http.NewServeMux()
	mounted.Handle(s.opts.Prefix+"/", http.StripPrefix(s.opts.Prefix, mux))
	return mounted
}

func normalizePrefix(p string) string {
	p = strings.TrimRight(strings.TrimSpace(p), "/")
	if p != "" && !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// Start starts the dashboard server and blocks until it stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
	}

	s.logger.Info("dashboard server starting", zap.String("addr", s.opts.Addr))
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// PageData holds data for the page templates.
type PageData struct {
	Prefix    string
	Title     string
	Query     string
	Notices   []notify.Notice
	Selection []session.Item
	Busy      bool
	Restore   application.RestoreInfo
	HasData   bool
	Results   render.ResultsData
	Chart     render.Chart
}

// Categories lists the upload fields in form order.
func (PageData) Categories() []session.Category {
	return session.AllCategories()
}

func (s *Server) page(r *http.Request, title string) PageData {
	st := s.ctrl.State()
	st.Query = r.URL.Query().Get("q")

	data := PageData{
		Prefix:    s.opts.Prefix,
		Title:     title,
		Query:     st.Query,
		Selection: st.Selection,
		Busy:      st.Busy,
		HasData:   st.HasDrawings(),
		Results:   render.NewResultsData(st.Render(), s.opts.Prefix),
	}
	if !data.HasData {
		data.Restore = s.ctrl.CheckRestore(r.Context())
	}
	data.Notices = s.opts.Flash.Active()
	return data
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, "index.html", s.page(r, "Drawings"))
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	st := s.ctrl.State()
	st.Query = r.URL.Query().Get("q")
	if !st.HasDrawings() {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	out, err := s.renderer.Render(st.Render())
	if err != nil {
		s.logger.Warn("render results failed", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, out)
}

func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	chart, err := s.charts.Chart(render.HTMLBarWidth)
	if err != nil {
		s.redirect(w, r)
		return
	}
	data := s.page(r, "Charts")
	data.Chart = chart
	s.render(w, "charts.html", data)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	body, name, err := s.export.CSV()
	if err != nil {
		s.redirect(w, r)
		return
	}
	w.Header().Set("Content-Type", render.CSVContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = w.Write(body)
}

// StateResponse is the /api/state payload.
type StateResponse struct {
	Revision uint64           `json:"revision"`
	Mode     render.ViewMode  `json:"mode"`
	Busy     bool             `json:"busy"`
	Totals   map[string]int   `json:"totals"`
	Sheets   []SheetResponse  `json:"sheets"`
	Counts   map[string]int   `json:"counts"`
	Files    []FileResponse   `json:"files"`
	Notices  []notify.Notice  `json:"notices"`
	Restore  *RestoreResponse `json:"restore,omitempty"`
}

// SheetResponse is one sheet in StateResponse.
type SheetResponse struct {
	ID       string         `json:"id"`
	Filename string         `json:"filename"`
	Sheet    string         `json:"sheet"`
	Status   string         `json:"status"`
	Counts   map[string]int `json:"counts"`
}

// RestoreResponse describes a restorable session.
type RestoreResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Sheets    int       `json:"sheets"`
}

// FileResponse is one selected file.
type FileResponse struct {
	Category string `json:"category"`
	Name     string `json:"name"`
}

func (s *Server) handleAPIState(w http.ResponseWriter, r *http.Request) {
	st := s.ctrl.State()
	totals := st.Render().Totals()

	resp := StateResponse{
		Revision: st.Revision,
		Mode:     st.Mode,
		Busy:     st.Busy,
		Totals: map[string]int{
			"sheets":       totals.Sheets,
			"drains":       totals.Drains,
			"scuppers":     totals.Scuppers,
			"rtus_curbs":   totals.RTUs,
			"penetrations": totals.Penetrations,
		},
		Sheets:  []SheetResponse{},
		Notices: s.opts.Flash.Active(),
		Files:   []FileResponse{},
		Counts:  map[string]int{},
	}
	for _, v := range st.Render().Views() {
		counts := make(map[string]int, len(v.Cells))
		for _, c := range v.Cells {
			counts[string(c.Category)] = c.Count
		}
		resp.Sheets = append(resp.Sheets, SheetResponse{
			ID:       string(v.ID),
			Filename: v.Filename,
			Sheet:    v.DetailOrPlaceholder(),
			Status:   string(v.Status),
			Counts:   counts,
		})
		resp.Counts[string(v.Status)]++
	}
	for _, it := range st.Selection {
		resp.Files = append(resp.Files, FileResponse{Category: string(it.Category), Name: it.Name()})
	}
	if !st.HasDrawings() {
		if info := s.ctrl.CheckRestore(r.Context()); info.Available {
			resp.Restore = &RestoreResponse{Timestamp: info.Timestamp, Sheets: info.Sheets}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	mode, err := render.ParseViewMode(r.PathValue("mode"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	_ = s.ctrl.SetViewMode(mode)
	s.redirect(w, r)
}

func (s *Server) handleAddFiles(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		http.Error(w, "invalid upload: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	for _, cat := range session.AllCategories() {
		var paths []string
		for _, fh := range r.MultipartForm.File[string(cat)] {
			path, err := s.saveUpload(fh)
			if err != nil {
				s.logger.Warn("failed to store upload", zap.String("file", fh.Filename), zap.Error(err))
				s.flash(notify.SeverityError, "Could not store "+fh.Filename)
				continue
			}
			paths = append(paths, path)
		}
		if err := s.ctrl.Select(r.Context(), cat, paths...); err != nil {
			s.logger.Warn("failed to save file selection", zap.Error(err))
		}
	}
	s.redirect(w, r)
}

// saveUpload copies an uploaded file into its own directory under UploadDir
// so the original base name is kept.
func (s *Server) saveUpload(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer func() { _ = src.Close() }()

	dir := filepath.Join(s.opts.UploadDir, uuid.NewString())
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	path := filepath.Join(dir, filepath.Base(fh.Filename))
	dst, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return "", err
	}
	return path, dst.Close()
}

func (s *Server) handleRemoveFile(w http.ResponseWriter, r *http.Request) {
	cat, err := session.ParseCategory(r.PathValue("category"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		http.Error(w, "invalid index", http.StatusBadRequest)
		return
	}
	if err := s.ctrl.Remove(r.Context(), cat, index); err != nil {
		if errors.Is(err, session.ErrIndexOutOfRange) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		s.logger.Warn("failed to save file selection", zap.Error(err))
	}
	s.redirect(w, r)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	_, err := s.ctrl.Submit(r.Context())
	switch {
	case errors.Is(err, application.ErrSubmitInFlight):
		s.flash(notify.SeverityWarning, "A submit is already in progress")
	case errors.Is(err, application.ErrNoSelection):
		s.flash(notify.SeverityWarning, "Select at least one file first")
	}
	s.redirect(w, r)
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	if _, err := s.workflow.Advance(r.Context(), r.PathValue("id")); err != nil {
		switch {
		case errors.Is(err, application.ErrSheetNotFound), errors.Is(err, application.ErrNoData):
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		default:
			s.flash(notify.SeverityError, err.Error())
		}
	}
	s.redirect(w, r)
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.RestoreSession(r.Context()); err != nil {
		s.flash(notify.SeverityError, "No saved session to restore")
	}
	s.redirect(w, r)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.ctrl.Clear(r.Context())
	s.redirect(w, r)
}

// redirect returns the browser to the listing, keeping the search query.
func (s *Server) redirect(w http.ResponseWriter, r *http.Request) {
	target := s.opts.Prefix + "/"
	q := r.URL.Query().Get("q")
	if q == "" {
		if ref, err := url.Parse(r.Referer()); err == nil {
			q = ref.Query().Get("q")
		}
	}
	if q != "" {
		target += "?q=" + url.QueryEscape(q)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) flash(sev notify.Severity, msg string) {
	s.opts.Flash.Notify(notify.New(sev, msg))
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Warn("template error", zap.String("template", name), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func ago(d time.Duration) string {
	switch {
	case d < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	}
}
