package render

import (
	"strconv"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/drawing"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/stats"
)

// ChartScale is the total that fills a bar completely.
const ChartScale = 20

// HTMLBarWidth is the full bar width in pixels on the dashboard.
const HTMLBarWidth = 300

// CategoryColor returns the bar colour for c.
func CategoryColor(c drawing.Category) string {
	switch c {
	case drawing.CategoryDrains:
		return "#FF6B47"
	case drawing.CategoryScuppers:
		return "#4299e1"
	case drawing.CategoryRTUs:
		return "#48bb78"
	case drawing.CategoryPenetrations:
		return "#f6ad55"
	default:
		return "#a0aec0"
	}
}

// Bar is one category total.
type Bar struct {
	Category drawing.Category
	Label    string
	Value    int
	Color    string
	Width    float64
}

// Fraction returns how full the bar is, between 0 and 1.
func (b Bar) Fraction() float64 {
	return BarFraction(b.Value)
}

// WidthText formats Width for a CSS length.
func (b Bar) WidthText() string {
	return strconv.FormatFloat(b.Width, 'f', -1, 64)
}

// BarFraction is min(value/ChartScale, 1), never negative.
func BarFraction(value int) float64 {
	if value <= 0 {
		return 0
	}
	f := float64(value) / ChartScale
	if f > 1 {
		return 1
	}
	return f
}

// Chart is the chart modal's model.
type Chart struct {
	Bars     []Bar
	Sheets   int
	Elements int
	Average  float64
}

// AverageText is the average per sheet with one decimal.
func (c Chart) AverageText() string {
	return strconv.FormatFloat(c.Average, 'f', 1, 64)
}

// BuildChart builds bars scaled to maxWidth.
func BuildChart(t stats.Totals, maxWidth int) Chart {
	c := Chart{
		Sheets:   t.Sheets,
		Elements: t.Elements(),
		Average:  t.AveragePerSheet(),
	}
	for _, cat := range drawing.AllCategories() {
		v := t.Category(cat)
		c.Bars = append(c.Bars, Bar{
			Category: cat,
			Label:    cat.Label(),
			Value:    v,
			Color:    CategoryColor(cat),
			Width:    BarFraction(v) * float64(maxWidth),
		})
	}
	return c
}
