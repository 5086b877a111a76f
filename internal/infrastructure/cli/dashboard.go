package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/internal/infrastructure/wiring"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/application"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/drawing"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/render"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive terminal dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		if os.Getenv("DRAFTY_SKIP_DASHBOARD_RUN") == "true" {
			return nil
		}
		root, err := getProjectRoot()
		if err != nil {
			return err
		}
		services, err := openServices(cmd.Context(), root, nil)
		if err != nil {
			return err
		}
		defer closeServices(services)

		p := tea.NewProgram(initialModel(cmd.Context(), services), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("dashboard run failed: %w", err)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(dashboardCmd)
}

// Styles
var baseStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	BorderForeground(lipgloss.Color("240"))

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#7D56F4")).
	PaddingLeft(1).
	PaddingRight(1)

var statusDone = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
var statusWIP = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
var statusErr = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
var helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

type prompt int

const (
	promptNone prompt = iota
	promptRestore
	promptClear
)

type tickMsg time.Time

type submitDoneMsg struct{ err error }

type model struct {
	ctx       context.Context
	services  *wiring.AppServices
	table     table.Model
	search    textinput.Model
	views     []render.SheetView
	restore   application.RestoreInfo
	prompt    prompt
	showChart bool
	width     int
	status    string
	err       error
}

func initialModel(ctx context.Context, services *wiring.AppServices) model {
	ctrl := services.Controller
	ctrl.Load(ctx)

	columns := []table.Column{
		{Title: "File", Width: 20},
		{Title: "Sheet", Width: 10},
		{Title: "Type", Width: 16},
		{Title: "Status", Width: 10},
	}
	for _, c := range drawing.AllCategories() {
		columns = append(columns, table.Column{Title: c.Label(), Width: 9})
	}
	columns = append(columns, table.Column{Title: "Scale", Width: 12})

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240"))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229"))
	t.SetStyles(s)

	search := textinput.New()
	search.Placeholder = "file, sheet, type, scale or count"
	search.Prompt = "Search: "

	m := model{
		ctx:      ctx,
		services: services,
		table:    t,
		search:   search,
		restore:  ctrl.CheckRestore(ctx),
	}
	if m.restore.Available {
		m.prompt = promptRestore
	}
	m.refresh()
	return m
}

// refresh rebuilds the rows from the controller's current state.
func (m *model) refresh() {
	st := m.services.Controller.State()
	all := render.Project(st.Data, st.Statuses)
	vis := render.Filter(all, st.Query)

	m.views = nil
	rows := make([]table.Row, 0, len(all))
	for i, v := range all {
		if !vis[i].Visible {
			continue
		}
		m.views = append(m.views, v)
		row := table.Row{v.Filename, v.DetailOrPlaceholder(), v.TypeOrPlaceholder(), v.Status.DisplayName()}
		for _, c := range drawing.AllCategories() {
			row = append(row, v.Cell(c).Display())
		}
		rows = append(rows, append(row, v.ScaleOrPlaceholder()))
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(0, len(rows)-1))
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Init() tea.Cmd { return tick() }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, tick()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case submitDoneMsg:
		m.err = msg.err
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		if m.prompt != promptNone {
			return m.answer(msg.String()), nil
		}
		if m.search.Focused() {
			return m.updateSearch(msg)
		}
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m model) answer(key string) model {
	ctrl := m.services.Controller
	yes := key == "y" || key == "Y"
	switch m.prompt {
	case promptRestore:
		if yes {
			m.err = MapError(ctrl.RestoreSession(m.ctx))
		}
	case promptClear:
		if yes {
			ctrl.Clear(m.ctx)
			m.showChart = false
		}
	}
	m.prompt = promptNone
	m.refresh()
	return m
}

func (m model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.search.Blur()
		m.table.Focus()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.services.Controller.SetQuery(m.search.Value())
	m.refresh()
	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctrl := m.services.Controller
	m.err = nil
	m.status = ""

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "/":
		m.showChart = false
		m.table.Blur()
		return m, m.search.Focus()
	case "esc":
		m.showChart = false
		return m, nil
	case "enter", "a":
		m.advanceSelected()
		return m, nil
	case "v":
		next := render.ViewCards
		if ctrl.State().Mode == render.ViewCards {
			next = render.ViewTable
		}
		m.err = ctrl.SetViewMode(next)
		return m, nil
	case "c":
		if _, err := m.services.Charts.Chart(render.TextBarWidth); err != nil {
			m.err = MapError(err)
			return m, nil
		}
		m.showChart = !m.showChart
		return m, nil
	case "e":
		m.exportCSV()
		return m, nil
	case "s":
		if ctrl.InFlight() {
			return m, nil
		}
		ctx := m.ctx
		return m, func() tea.Msg {
			_, err := ctrl.Submit(ctx)
			return submitDoneMsg{err: MapError(err)}
		}
	case "x":
		if ctrl.State().HasDrawings() {
			m.prompt = promptClear
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *model) advanceSelected() {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.views) {
		return
	}
	v := m.views[i]
	to, err := m.services.Workflow.Advance(m.ctx, string(v.ID))
	if err != nil {
		m.err = MapError(err)
		return
	}
	m.status = fmt.Sprintf("%s is now %s", v.DetailOrPlaceholder(), to.DisplayName())
	m.refresh()
}

func (m *model) exportCSV() {
	data, name, err := m.services.Export.CSV()
	if err != nil {
		m.err = MapError(err)
		return
	}
	ws := m.services.Workspace
	path := exportPath(ws.Root, ws.Config.Export.Dir, "", name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		m.err = err
		return
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		m.err = err
		return
	}
	m.status = "Wrote " + path
}

func (m model) View() string {
	if m.services == nil {
		return "Error loading dashboard\nPress q to quit."
	}
	st := m.services.Controller.State()
	rs := st.Render()
	totals := rs.Totals()

	title := "Drafty"
	if st.Busy {
		title += " · parsing..."
	}
	header := headerStyle.Render(title)
	summary := fmt.Sprintf("Sheets: %d  Elements: %d  Avg/sheet: %.1f  Selected files: %d",
		totals.Sheets, totals.Elements(), totals.AveragePerSheet(), len(st.Selection))

	var body string
	switch {
	case m.prompt == promptRestore:
		body = statusWIP.Render(fmt.Sprintf("\nRestore session from %s (%d sheets)? [y/n]",
			m.restore.Timestamp.Local().Format(time.DateTime), m.restore.Sheets))
	case m.prompt == promptClear:
		body = statusErr.Render("\nClear the saved session and all review statuses? [y/n]")
	case !st.HasDrawings():
		body = "\nNo drawings. Add files with 'drafty add' and press s to submit."
	case m.showChart:
		body, _ = render.TextRenderer{Width: m.width}.RenderChart(rs)
	case rs.ModeOrDefault() == render.ViewCards:
		body, _ = render.TextRenderer{Width: m.width}.Render(rs)
	default:
		body = "\nSheets:\n" + m.table.View()
	}

	lines := []string{header, summary, body}
	if m.search.Focused() || strings.TrimSpace(st.Query) != "" {
		lines = append(lines, m.search.View())
	}
	lines = append(lines, m.footer())
	return baseStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)) + "\n"
}

func (m model) footer() string {
	var line string
	switch {
	case m.err != nil:
		line = statusErr.Render("✗ " + m.err.Error())
		if hint := errorHint(m.err); hint != "" {
			line += "\n  " + hint
		}
	case m.status != "":
		line = statusDone.Render("✓ " + m.status)
	default:
		if n, ok := m.services.Flash.Latest(); ok {
			line = noticeLine(n)
		}
	}
	help := helpStyle.Render("[enter] advance  [/] search  [v] view  [c] chart  [e] export  [s] submit  [x] clear  [q] quit")
	return "\n" + line + "\n" + help
}

func errorHint(err error) string {
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr.Hint
	}
	return ""
}
