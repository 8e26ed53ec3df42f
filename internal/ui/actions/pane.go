// Package actions implements the numbered actions pane shown under the
// product list and the creator. Actions can be run by number, by their key
// or by moving the focus and pressing enter.
package actions

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/catalog-console/console/internal/interfaces"
	"github.com/charmbracelet/lipgloss"
)

var (
	actionsPaneStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("#FAB387")).
				Padding(0, 1).
				MarginTop(1)

	actionsPaneTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FAB387"))

	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")).Padding(0, 1)

	actionStyles = map[string]lipgloss.Style{
		"primary":        lipgloss.NewStyle().Foreground(lipgloss.Color("#89B4FA")).Padding(0, 1),
		"primary_f":      lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#89B4FA")).Padding(0, 1),
		"confirmation":   lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1")).Padding(0, 1),
		"confirmation_f": lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#A6E3A1")).Padding(0, 1),
		"cancel":         lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")).Padding(0, 1),
		"cancel_f":       lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#F38BA8")).Padding(0, 1),
		"info":           lipgloss.NewStyle().Foreground(lipgloss.Color("#94E2D5")).Padding(0, 1),
		"info_f":         lipgloss.NewStyle().Foreground(lipgloss.Color("#181825")).Background(lipgloss.Color("#94E2D5")).Padding(0, 1),
		"alternative":    lipgloss.NewStyle().Foreground(lipgloss.Color("#CBA6F7")).Padding(0, 1),
		"alternative_f":  lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#CBA6F7")).Padding(0, 1),
	}
)

// Action types with a dedicated style
const (
	TypePrimary      = "primary"
	TypeConfirmation = "confirmation"
	TypeCancel       = "cancel"
	TypeInfo         = "info"
	TypeAlternative  = "alternative"
	TypeDisabled     = "disabled"
)

// Pane holds the actions available for the current selection
type Pane struct {
	title         string
	actions       []interfaces.Action
	selectedIndex int
	width         int
}

// NewPane creates an empty pane
func NewPane() *Pane {
	return &Pane{selectedIndex: -1}
}

// SetActions replaces the actions, keeping the focus when the list is
// unchanged in length
func (p *Pane) SetActions(title string, actions []interfaces.Action) {
	p.title = title
	if len(actions) != len(p.actions) || p.selectedIndex < 0 {
		p.selectedIndex = 0
	}
	p.actions = actions
	if len(actions) == 0 {
		p.selectedIndex = -1
	}
}

// Reset hides the pane
func (p *Pane) Reset() {
	p.actions = nil
	p.selectedIndex = -1
}

// IsVisible reports whether there is anything to show
func (p *Pane) IsVisible() bool {
	return len(p.actions) > 0
}

// Next moves the focus down, wrapping around
func (p *Pane) Next() {
	if !p.IsVisible() {
		return
	}
	p.selectedIndex = (p.selectedIndex + 1) % len(p.actions)
}

// Previous moves the focus up, wrapping around
func (p *Pane) Previous() {
	if !p.IsVisible() {
		return
	}
	p.selectedIndex--
	if p.selectedIndex < 0 {
		p.selectedIndex = len(p.actions) - 1
	}
}

// Selected returns the focused action
func (p *Pane) Selected() (*interfaces.Action, error) {
	if p.selectedIndex < 0 || p.selectedIndex >= len(p.actions) {
		return nil, fmt.Errorf("no action selected")
	}
	return p.enabled(p.actions[p.selectedIndex])
}

// Resolve maps a key press to an enabled action: a digit selects by
// position, anything else matches the action key
func (p *Pane) Resolve(key string) (*interfaces.Action, bool) {
	if n, err := strconv.Atoi(key); err == nil {
		if n < 1 || n > len(p.actions) {
			return nil, false
		}
		action, err := p.enabled(p.actions[n-1])
		return action, err == nil
	}
	for i := range p.actions {
		if p.actions[i].Key == key {
			action, err := p.enabled(p.actions[i])
			return action, err == nil
		}
	}
	return nil, false
}

func (p *Pane) enabled(action interfaces.Action) (*interfaces.Action, error) {
	if action.Type == TypeDisabled {
		return nil, fmt.Errorf("action %q is disabled", action.Name)
	}
	return &action, nil
}

// SetWidth sets the rendering width
func (p *Pane) SetWidth(width int) {
	p.width = width
}

// View renders the pane
func (p *Pane) View() string {
	if !p.IsVisible() {
		return ""
	}

	lines := make([]string, 0, len(p.actions))
	for i, action := range p.actions {
		lines = append(lines, p.renderActionItem(i, action, i == p.selectedIndex))
	}

	title := p.title
	if title == "" {
		title = "Available Actions"
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		actionsPaneTitleStyle.Render(title),
		strings.Join(lines, "\n"),
	)

	width := p.width - 2
	if width < 20 {
		width = 20
	}
	return actionsPaneStyle.Width(width).Render(body)
}

func (p *Pane) renderActionItem(index int, action interfaces.Action, focused bool) string {
	number := fmt.Sprintf("[%d]", index+1)
	text := fmt.Sprintf("%-4s %s %s", number, actionIcon(action), action.Name)
	if action.Key != "" {
		text += fmt.Sprintf(" (%s)", action.Key)
	}

	if action.Type == TypeDisabled {
		return disabledStyle.Render(text)
	}

	styleKey := action.Type
	if styleKey == "" {
		styleKey = TypePrimary
	}
	if focused {
		styleKey += "_f"
	}
	style, exists := actionStyles[styleKey]
	if !exists {
		style = actionStyles[TypePrimary]
		if focused {
			style = actionStyles["primary_f"]
		}
	}
	return style.Render(text)
}

func actionIcon(action interfaces.Action) string {
	if action.Icon != "" {
		return action.Icon
	}
	switch action.Type {
	case TypeConfirmation:
		return "✅"
	case TypeCancel:
		return "❌"
	case TypeInfo:
		return "📋"
	case TypeAlternative:
		return "🔄"
	case TypeDisabled:
		return "🚫"
	default:
		return "▶️"
	}
}
