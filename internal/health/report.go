package health

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	nameStyle = lipgloss.NewStyle().Bold(true).Width(16)
)

// Render formats the report for terminal output, one line per check plus a
// trailing verdict.
func (r *Report) Render() string {
	var sb strings.Builder
	for _, c := range r.Checks {
		var marker string
		switch c.Status {
		case StatusOK:
			marker = okStyle.Render("✓")
		case StatusWarn:
			marker = warnStyle.Render("!")
		default:
			marker = failStyle.Render("✗")
		}
		sb.WriteString(marker + " " + nameStyle.Render(c.Name))
		if c.Message != "" {
			sb.WriteString(" " + c.Message)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	if r.Success {
		sb.WriteString(okStyle.Render("healthy"))
	} else {
		sb.WriteString(failStyle.Render("unhealthy"))
	}
	sb.WriteString("\n")
	return sb.String()
}
