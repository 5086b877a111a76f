package render

import (
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/detection"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/workflow"
)

// Palette is a background/foreground colour pair.
type Palette struct {
	Background string
	Foreground string
}

// ConfidencePalette returns the badge colours for c.
func ConfidencePalette(c detection.Confidence) Palette {
	switch c {
	case detection.ConfidenceHigh:
		return Palette{Background: "#c6f6d5", Foreground: "#22543d"}
	case detection.ConfidenceMedium:
		return Palette{Background: "#bee3f8", Foreground: "#2c5282"}
	case detection.ConfidenceLow:
		return Palette{Background: "#feebc8", Foreground: "#744210"}
	default:
		return Palette{Background: "#f7fafc", Foreground: "#a0aec0"}
	}
}

// StatusPalette returns the workflow badge colours for s.
func StatusPalette(s workflow.Status) Palette {
	switch s {
	case workflow.StatusReviewing:
		return Palette{Background: "#bee3f8", Foreground: "#2c5282"}
	case workflow.StatusVerified:
		return Palette{Background: "#c6f6d5", Foreground: "#22543d"}
	case workflow.StatusApproved:
		return Palette{Background: "#9ae6b4", Foreground: "#22543d"}
	default:
		return Palette{Background: "#feebc8", Foreground: "#744210"}
	}
}

// StatusBadge is the table's workflow badge text.
func StatusBadge(s workflow.Status) string {
	switch s {
	case workflow.StatusReviewing:
		return "🔵 Reviewing"
	case workflow.StatusVerified:
		return "🟢 Verified"
	case workflow.StatusApproved:
		return "✅ Approved"
	default:
		return "🟡 Detected"
	}
}

// CardConfirmation is shown on approved cards in place of a button.
const CardConfirmation = "✓✓✓ Approved"
