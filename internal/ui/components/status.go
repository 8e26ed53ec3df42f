// Package components provides shared interface elements: status lines,
// per-item generation badges, progress bars and the error pane.
package components

import (
	"fmt"
	"strings"

	"github.com/catalog-console/console/internal/generation"
	"github.com/charmbracelet/lipgloss"
)

var statusStyles = map[string]lipgloss.Style{
	"pending":  lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
	"success":  lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1")),
	"error":    lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
	"warning":  lipgloss.NewStyle().Foreground(lipgloss.Color("#FAB387")),
	"info":     lipgloss.NewStyle().Foreground(lipgloss.Color("#89B4FA")),
	"running":  lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
	"complete": lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1")),
}

var statusIcons = map[string]string{
	"pending":  "⏳",
	"success":  "✅",
	"error":    "❌",
	"warning":  "⚠️",
	"info":     "ℹ️",
	"running":  "🏃",
	"complete": "🏁",
}

// RenderStatus formats a status message with an icon and color
func RenderStatus(status, message string) string {
	style, exists := statusStyles[status]
	if !exists {
		style = lipgloss.NewStyle()
	}
	icon, exists := statusIcons[status]
	if !exists {
		icon = "🔹"
	}
	return style.Render(fmt.Sprintf("%s %s", icon, message))
}

// RenderItemBadge is the short marker shown next to a product for its
// generation state. spinner is the current spinner frame.
func RenderItemBadge(state generation.ItemState, spinner string) string {
	switch {
	case state.Updating:
		return statusStyles["running"].Render(spinner + " updating")
	case state.Phase == generation.PhaseGenerating:
		return statusStyles["running"].Render(spinner + " generating")
	case state.Phase == generation.PhaseReady:
		return statusStyles["success"].Render("✨ description ready")
	case state.Phase == generation.PhaseError:
		return statusStyles["error"].Render("❌ generation failed")
	default:
		return ""
	}
}

// RenderProgressBar draws a bar of width cells for a 0-100 percentage
func RenderProgressBar(progress int, width int, fillChar, emptyChar string) string {
	if width <= 0 {
		return ""
	}
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}

	filledWidth := (progress * width) / 100
	return fmt.Sprintf("[%s%s]",
		strings.Repeat(fillChar, filledWidth),
		strings.Repeat(emptyChar, width-filledWidth))
}

// Percent converts a done/total pair for RenderProgressBar
func Percent(done, total int) int {
	if total <= 0 {
		return 0
	}
	return done * 100 / total
}
