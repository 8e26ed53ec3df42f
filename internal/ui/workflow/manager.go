// Package workflow renders the step breadcrumb of multi-step flows such as
// creating a product.
package workflow

import (
	"fmt"

	"github.com/catalog-console/console/internal/ui/components"
	"github.com/charmbracelet/lipgloss"
)

var workflowStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("#CBA6F7")).
	Foreground(lipgloss.Color("#CBA6F7")).
	Padding(0, 1).
	MarginBottom(1)

// Manager tracks the current step of one flow
type Manager struct {
	title   string
	steps   []string
	current int
	active  bool
	width   int
}

// NewManager creates an inactive manager
func NewManager() *Manager {
	return &Manager{}
}

// Start begins a flow at its first step
func (m *Manager) Start(title string, steps ...string) {
	m.title = title
	m.steps = steps
	m.current = 0
	m.active = len(steps) > 0
}

// GoTo jumps to the named step; unknown names are ignored
func (m *Manager) GoTo(step string) {
	for i, s := range m.steps {
		if s == step {
			m.current = i
			return
		}
	}
}

// Current returns the name of the current step
func (m *Manager) Current() string {
	if !m.active {
		return ""
	}
	return m.steps[m.current]
}

// IsActive returns true while a flow is in progress
func (m *Manager) IsActive() bool {
	return m.active
}

// SetWidth sets the rendering width
func (m *Manager) SetWidth(width int) {
	m.width = width
}

// View renders the breadcrumb with a step progress bar
func (m *Manager) View() string {
	if !m.IsActive() {
		return ""
	}

	total := len(m.steps)
	step := m.current + 1
	text := fmt.Sprintf("%s: %s (%d/%d)", m.title, m.steps[m.current], step, total)

	available := m.width - lipgloss.Width(text) - 6
	if available < 10 {
		available = 10
	}
	bar := components.RenderProgressBar(step*100/total, available, "●", "○")

	width := m.width - 2
	if width < lipgloss.Width(text) {
		width = lipgloss.Width(text) + available + 4
	}
	return workflowStyle.Width(width).Render(lipgloss.JoinHorizontal(lipgloss.Left, text, " ", bar))
}
