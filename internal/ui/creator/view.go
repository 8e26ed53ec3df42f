package creator

import (
	"fmt"
	"strings"

	listing "github.com/catalog-console/console/internal/catalog"
	"github.com/catalog-console/console/internal/generation"
	"github.com/catalog-console/console/internal/ui/components"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#CBA6F7")).
			Padding(0, 1)

	labelStyle        = lipgloss.NewStyle().Width(10).Foreground(lipgloss.Color("#89B4FA"))
	focusedLabelStyle = labelStyle.Bold(true).Foreground(lipgloss.Color("#FAB387"))
	fieldStyle        = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, true, false).BorderForeground(lipgloss.Color("#6C7086"))

	previewStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#6C7086")).
			Padding(0, 1)

	savedStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#A6E3A1")).
			Padding(1, 2)

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")).PaddingTop(1)
)

// View renders the creator
func (m *Model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Width(max(m.width, 0)).Render("Create Product"))
	s.WriteString("\n\n")
	s.WriteString(m.workflow.View())
	s.WriteString("\n")

	switch m.Step() {
	case StepAudience:
		s.WriteString(m.viewAudience())
	case StepDetails:
		s.WriteString(m.viewDetails())
	case StepReview:
		s.WriteString(m.viewReview())
	case StepSaved:
		s.WriteString(savedStyle.Render(components.RenderStatus("success",
			fmt.Sprintf("Saved %q to the catalog as item %s", strings.TrimSpace(m.name.Value()), m.savedID))))
	}

	if m.statusMessage != "" {
		s.WriteString("\n")
		s.WriteString(components.RenderStatus("warning", m.statusMessage))
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render(m.helpText()))
	return s.String()
}

func (m *Model) viewAudience() string {
	rows := []string{lipgloss.NewStyle().Bold(true).Render("Who is this product for?")}
	for i, audience := range listing.Audiences {
		text := fmt.Sprintf("[%d] %s %-26s %s", i+1, audience.Icon, audience.Name, audience.Description)
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(audience.Color))
		if i == m.cursor {
			style = style.Bold(true).Reverse(true)
		}
		rows = append(rows, style.Render(text))
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) label(text string, index int) string {
	if index == m.focus {
		return focusedLabelStyle.Render(text)
	}
	return labelStyle.Render(text)
}

func (m *Model) viewDetails() string {
	rows := []string{}
	if audience, ok := listing.AudienceByID(m.audience); ok {
		rows = append(rows, fmt.Sprintf("Audience: %s %s", audience.Icon, audience.Name), "")
	}

	rows = append(rows,
		lipgloss.JoinHorizontal(lipgloss.Top, m.label("Name", 0), fieldStyle.Render(m.name.View())),
		lipgloss.JoinHorizontal(lipgloss.Top, m.label("Price", 1), fieldStyle.Render(m.price.View())),
		"",
		lipgloss.NewStyle().Bold(true).Render("Technical specifications"),
	)
	for i, row := range m.specs {
		nameIndex := 2 + 2*i
		line := lipgloss.JoinHorizontal(lipgloss.Top,
			m.label(fmt.Sprintf("Spec %d", i+1), -1),
			fieldStyle.Render(row.name.View()),
			"  ",
			fieldStyle.Render(row.value.View()),
		)
		if m.focus == nameIndex || m.focus == nameIndex+1 {
			line = focusedLabelStyle.Render("▸") + line
		} else {
			line = " " + line
		}
		rows = append(rows, line)
	}

	ready := components.RenderStatus("pending", "Fill in name, price and at least one specification")
	if m.CanGenerate() {
		ready = components.RenderStatus("success", "Ready to generate (ctrl+g)")
	}
	rows = append(rows, "", ready)

	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) viewReview() string {
	state := generation.DisplayState(m.service.Registry(), m.reconciler, DraftID)
	var rows []string

	switch state.Phase {
	case generation.PhaseGenerating:
		rows = append(rows, components.RenderStatus("running", m.spinner.View()+" Generating description..."))
	case generation.PhaseReady:
		rows = append(rows, components.RenderStatus("success", "Description ready - edit it below, then save"), m.editor.View())
	case generation.PhaseError:
		rows = append(rows, components.RenderStatus("error", state.Message))
		if state.Pending != "" {
			rows = append(rows, state.Pending)
		}
	}

	if m.saving {
		rows = append(rows, components.RenderStatus("running", m.spinner.View()+" Saving product..."))
	}

	if m.showPayload && m.payload != nil {
		preview, err := m.renderer.RenderJSON(m.payload)
		if err != nil {
			preview = err.Error()
		}
		rows = append(rows, "", "Request payload", previewStyle.Render(preview))
	}

	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) helpText() string {
	switch m.Step() {
	case StepAudience:
		return "[1-6] Choose | [↑/↓] Move | [Enter] Confirm | [Esc] Back to catalog"
	case StepDetails:
		return "[Tab] Next field | [Ctrl+A] Add spec | [Ctrl+D] Remove spec | [Ctrl+G] Generate | [Esc] Audience"
	case StepReview:
		return "[Ctrl+S] Save to catalog | [Ctrl+R] Regenerate | [Ctrl+P] Payload | [Esc] Back to details"
	case StepSaved:
		return "[N] New product | [Enter/Esc] Back to catalog"
	}
	return ""
}
