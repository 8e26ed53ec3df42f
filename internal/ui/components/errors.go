package components

import (
	"fmt"
	"strings"

	"github.com/catalog-console/console/internal/errors"
	"github.com/charmbracelet/lipgloss"
)

var (
	errorPaneStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder(), false, true, true, true).
			BorderForeground(lipgloss.Color("#F38BA8")).
			MarginTop(1).
			Padding(0, 1)

	errorHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#F38BA8"))

	errorCodeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAB387")).
			Italic(true)

	errorDetailsStyle = lipgloss.NewStyle().
				MarginTop(1).
				Border(lipgloss.NormalBorder(), true, false, false, false).
				BorderForeground(lipgloss.Color("#6C7086")).
				Foreground(lipgloss.Color("#CDD6F4"))
)

// RenderErrorPane renders the message, code and details of an error. The
// recovery actions are rendered separately by the actions pane.
func RenderErrorPane(current *errors.ProcessedError, width int) string {
	if current == nil {
		return ""
	}

	var builder strings.Builder
	builder.WriteString(errorHeaderStyle.Render(fmt.Sprintf("❌ %s", current.Message)))

	if current.Code != "" {
		builder.WriteRune('\n')
		builder.WriteString(errorCodeStyle.Render(fmt.Sprintf("   Code: %s", current.Code)))
	}

	if current.Details != "" && current.Details != current.Message {
		builder.WriteRune('\n')
		builder.WriteString(errorDetailsStyle.Render(current.Details))
	}

	if width < 20 {
		return errorPaneStyle.Render(builder.String())
	}
	return errorPaneStyle.Width(width - 4).Render(builder.String())
}
