package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/drawing"
)

// TextBarWidth is the full bar width in cells on a terminal.
const TextBarWidth = 40

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	headStyle    = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Underline(true)

	cardStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Width(36)
)

// TableHeaders are the listing's column headings.
var TableHeaders = []string{"File", "Sheet", "Type", "Status", "💧 Drains", "🌊 Scuppers", "⚡ RTUs", "🔧 Pens", "📐 Scale", "Action"}

// TextRenderer renders State for a terminal.
type TextRenderer struct {
	// Width caps the card grid; zero means one card per line.
	Width int
}

// Render implements Renderer.
func (r TextRenderer) Render(s State) (string, error) {
	var b strings.Builder
	b.WriteString(titleStyle.Render("🏗️ Architectural Drawings"))
	b.WriteString("\n\n")
	b.WriteString(summaryLine(s))
	b.WriteString("\n\n")

	views := s.Views()
	vis := Filter(views, s.Query)
	shown := make([]SheetView, 0, len(views))
	for i, v := range views {
		if vis[i].Visible {
			shown = append(shown, v)
		}
	}

	switch {
	case len(views) == 0:
		b.WriteString(mutedStyle.Render("No drawings."))
		b.WriteString("\n")
	case s.ModeOrDefault() == ViewCards:
		b.WriteString(r.cards(shown))
		b.WriteString("\n")
	default:
		b.WriteString(sheetTable(shown))
		b.WriteString("\n")
	}

	if strings.TrimSpace(s.Query) != "" {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("Showing %d of %d sheets matching %q", len(shown), len(views), s.Query)))
		b.WriteString("\n")
	}

	for _, sec := range Documents(s.Data) {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(sec.Title))
		b.WriteString("\n")
		writeFields(&b, sec.Fields, "")
		for _, g := range sec.Groups {
			b.WriteString("  " + lipgloss.NewStyle().Bold(true).Render(g.Title) + "\n")
			writeFields(&b, g.Fields, "  ")
		}
	}
	return b.String(), nil
}

func summaryLine(s State) string {
	t := s.Totals()
	parts := []string{fmt.Sprintf("Sheets %d", t.Sheets)}
	for _, c := range drawing.AllCategories() {
		parts = append(parts, fmt.Sprintf("%s %s %d", CategoryIcon(c), c.Label(), t.Category(c)))
	}
	return strings.Join(parts, "  │  ")
}

func sheetTable(views []SheetView) string {
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		row := []string{v.Filename, v.DetailOrPlaceholder(), v.TypeOrPlaceholder(), StatusBadge(v.Status)}
		for _, c := range v.Cells {
			row = append(row, c.Display())
		}
		row = append(row, v.ScaleOrPlaceholder(), textAction(v, "✓✓✓"))
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(TableHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headStyle
			}
			if row < 0 || row >= len(views) {
				return cellStyle
			}
			switch {
			case col == 3:
				return paletteStyle(StatusPalette(views[row].Status))
			case col >= 4 && col < 4+len(views[row].Cells):
				c := views[row].Cells[col-4]
				if c.Count == 0 {
					return cellStyle.Foreground(lipgloss.Color("245"))
				}
				return paletteStyle(ConfidencePalette(c.Confidence))
			}
			return cellStyle
		})
	return t.String()
}

func (r TextRenderer) cards(views []SheetView) string {
	if len(views) == 0 {
		return ""
	}
	perLine := 1
	if r.Width > 0 {
		perLine = max(1, r.Width/(cardStyle.GetWidth()+2))
	}

	var lines []string
	for start := 0; start < len(views); start += perLine {
		end := min(start+perLine, len(views))
		boxes := make([]string, 0, end-start)
		for _, v := range views[start:end] {
			boxes = append(boxes, card(v))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func card(v SheetView) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(v.Filename) + "\n")
	b.WriteString(v.CardTitle() + "\n")
	b.WriteString(paletteStyle(StatusPalette(v.Status)).Render(v.Status.DisplayName()) + "\n")
	if v.Type != "" {
		b.WriteString("Type: " + v.Type + "\n")
	}
	for _, c := range v.Cells {
		val := cellStyle.Render(Placeholder)
		if c.Count != 0 {
			val = paletteStyle(ConfidencePalette(c.Confidence)).Render(c.Display())
		}
		b.WriteString(fmt.Sprintf("%s %s: %s\n", c.Icon(), c.Label(), val))
	}
	if v.Scale != "" {
		b.WriteString("📐 Scale: " + v.Scale + "\n")
	}
	b.WriteString(textAction(v, CardConfirmation))
	return cardStyle.Render(b.String())
}

func textAction(v SheetView, done string) string {
	if v.CanAdvance() {
		return v.Action()
	}
	return done
}

func paletteStyle(p Palette) lipgloss.Style {
	return cellStyle.
		Background(lipgloss.Color(p.Background)).
		Foreground(lipgloss.Color(p.Foreground))
}

func writeFields(b *strings.Builder, fields []drawing.Field, indent string) {
	for _, f := range fields {
		if len(f.Items) == 0 {
			fmt.Fprintf(b, "%s  %s: %s\n", indent, f.Label, f.Text)
			continue
		}
		fmt.Fprintf(b, "%s  %s:\n", indent, f.Label)
		for _, item := range f.Items {
			fmt.Fprintf(b, "%s    • %s\n", indent, item)
		}
	}
}

// RenderChart draws one bar per category followed by the summary.
func (r TextRenderer) RenderChart(s State) (string, error) {
	width := TextBarWidth
	if r.Width > 0 && r.Width-20 < width {
		width = max(10, r.Width-20)
	}
	c := BuildChart(s.Totals(), width)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Element Totals"))
	b.WriteString("\n\n")
	for _, bar := range c.Bars {
		p := progress.New(
			progress.WithSolidFill(bar.Color),
			progress.WithWidth(width),
			progress.WithoutPercentage(),
		)
		label := lipgloss.NewStyle().Width(14).Render(bar.Label)
		value := lipgloss.NewStyle().Foreground(lipgloss.Color(bar.Color)).Render(fmt.Sprintf("%d", bar.Value))
		fmt.Fprintf(&b, "%s %s %s\n", label, p.ViewAs(bar.Fraction()), value)
	}

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("Summary"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Total Sheets: %d\n", c.Sheets)
	fmt.Fprintf(&b, "Total Elements: %d\n", c.Elements)
	fmt.Fprintf(&b, "Avg per Sheet: %s\n", c.AverageText())
	return b.String(), nil
}
