package upload

import (
	"fmt"
	"strings"

	"github.com/catalog-console/console/internal/importer"
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
			Padding(1, 2)

	focusedBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("#89B4FA")).
			Padding(1, 2)

	listItemStyle    = lipgloss.NewStyle().PaddingLeft(1)
	focusedItemStyle = lipgloss.NewStyle().
				PaddingLeft(1).
				Foreground(lipgloss.Color("#1e1e2e")).
				Background(lipgloss.Color("#FAB387"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")).Padding(1, 0)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F38BA8")).
			Bold(true)
)

// View renders the upload view
func (m *Model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Width(max(m.width, 0)).Render("Product Catalog Setup"))
	s.WriteString("\n\n")

	if m.processing {
		s.WriteString(m.viewProcessing())
		return s.String()
	}

	s.WriteString(m.viewInput())
	s.WriteString("\n\n")
	s.WriteString(m.viewFiles())

	if session := m.recovery.Active(); session != nil {
		s.WriteString(components.RenderErrorPane(session.Error, m.width))
		s.WriteString("\n")
		s.WriteString(helpStyle.Render("[U] Upload again | [Esc] Dismiss"))
	}

	if m.statusMessage != "" {
		s.WriteString("\n")
		s.WriteString(errorStyle.Render(m.statusMessage))
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("Commands: [Enter] Add file / start when empty | [Ctrl+S] Import | [Tab] Navigate | [D]elete file | [Ctrl+C] Quit"))
	return s.String()
}

func (m *Model) viewInput() string {
	style := boxStyle
	if m.focusState == FocusInput {
		style = focusedBoxStyle
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).Render("Upload product files (.csv or .json)"),
		m.input.View(),
	))
}

func (m *Model) viewFiles() string {
	var items []string
	if len(m.paths) == 0 {
		items = append(items, helpStyle.Render("No files selected yet."))
	}
	for i, path := range m.paths {
		text := fmt.Sprintf("[%d] %s", i+1, path)
		if m.focusState == FocusList && i == m.selectedIndex {
			items = append(items, focusedItemStyle.Render(text))
		} else {
			items = append(items, listItemStyle.Render(text))
		}
	}

	style := boxStyle
	if m.focusState == FocusList {
		style = focusedBoxStyle
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("Selected files (%d)", len(m.paths))),
		lipgloss.JoinVertical(lipgloss.Left, items...),
	))
}

func (m *Model) viewProcessing() string {
	label := "Reading files"
	if m.progress.Step == importer.StepSaving {
		label = "Saving products"
	}

	bar := components.RenderProgressBar(components.Percent(m.progress.Done, m.progress.Total), 30, "█", "░")
	rows := []string{
		components.RenderStatus("running", fmt.Sprintf("%s %s %d/%d", m.spinner.View(), label, m.progress.Done, m.progress.Total)),
		bar,
		"",
	}

	start := max(len(m.steps)-8, 0)
	for _, step := range m.steps[start:] {
		rows = append(rows, components.RenderStatus("success", step))
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
