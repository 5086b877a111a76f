package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/notify"
)

// terminalNotifier prints each notice as one coloured line.
type terminalNotifier struct {
	out io.Writer
}

var _ notify.Notifier = terminalNotifier{}

func newTerminalNotifier(out io.Writer) terminalNotifier {
	return terminalNotifier{out: out}
}

func (n terminalNotifier) Notify(notice notify.Notice) {
	_, _ = fmt.Fprintln(n.out, noticeLine(notice))
}

func noticeLine(notice notify.Notice) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(notice.Severity.Color()))
	return style.Render(noticeIcon(notice.Severity) + " " + notice.Message)
}

func noticeIcon(sev notify.Severity) string {
	switch sev {
	case notify.SeveritySuccess:
		return "✓"
	case notify.SeverityError:
		return "✗"
	case notify.SeverityWarning:
		return "!"
	default:
		return "•"
	}
}
