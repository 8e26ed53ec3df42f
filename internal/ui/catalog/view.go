package catalog

import (
	"fmt"
	"strings"

	listing "github.com/catalog-console/console/internal/catalog"
	"github.com/catalog-console/console/internal/generation"
	"github.com/catalog-console/console/internal/interfaces"
	"github.com/catalog-console/console/internal/protocol"
	"github.com/catalog-console/console/internal/ui/components"
	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	itemStyle = lipgloss.NewStyle().PaddingLeft(2)

	selectedItemStyle = lipgloss.NewStyle().
				PaddingLeft(1).
				Border(lipgloss.NormalBorder(), false, false, false, true).
				BorderForeground(lipgloss.Color("#FAB387"))

	nameStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#CDD6F4"))
	priceStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1"))
	featuresStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#94E2D5"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))

	descriptionStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#CDD6F4")).
				MarginLeft(2)

	pendingStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#A6E3A1")).
			Padding(0, 1).
			MarginLeft(2)

	pendingErrorStyle = pendingStyle.
				BorderForeground(lipgloss.Color("#F38BA8"))

	pickerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#CBA6F7")).
			Padding(0, 1).
			MarginLeft(2)

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")).PaddingTop(1)
)

// View renders the catalog view
func (m *Model) View() string {
	var s strings.Builder

	title := "Product Catalog"
	if !m.loading {
		title = fmt.Sprintf("Product Catalog (%d of %d)", len(m.visible), len(m.products))
	}
	s.WriteString(headerStyle.Width(max(m.width, 0)).Render(title))
	s.WriteString("\n\n")

	s.WriteString(m.search.View())
	s.WriteString("\n\n")

	switch {
	case m.loading && len(m.products) == 0:
		s.WriteString(components.RenderStatus("running", m.spinner.View()+" Loading products..."))
	case len(m.products) == 0 && !m.recovery.IsActive():
		s.WriteString(mutedStyle.Render("The catalog is empty. Press u to upload product files or n to create one."))
	case len(m.visible) == 0 && len(m.products) > 0:
		s.WriteString(mutedStyle.Render(fmt.Sprintf("No products match %q", m.search.Value())))
	default:
		s.WriteString(m.viewList())
	}

	if session := m.recovery.Active(); session != nil {
		s.WriteString(components.RenderErrorPane(session.Error, m.width))
	}

	if m.mode == modeAudience {
		s.WriteString("\n")
		s.WriteString(m.viewAudiencePicker())
	} else if m.actions.IsVisible() {
		s.WriteString(m.actions.View())
	}

	if m.statusMessage != "" {
		s.WriteString("\n")
		s.WriteString(components.RenderStatus("info", m.statusMessage))
	}

	if line := m.apiStatus(); line != "" {
		s.WriteString("\n")
		s.WriteString(mutedStyle.Render(line))
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render(m.helpText()))
	return s.String()
}

// statsReporter is implemented by clients that count their requests
type statsReporter interface {
	Stats() protocol.Statistics
}

func (m *Model) apiStatus() string {
	reporter, ok := m.client.(statsReporter)
	if !ok {
		return ""
	}
	stats := reporter.Stats()
	if stats.TotalRequests == 0 {
		return ""
	}
	return fmt.Sprintf("API: %d requests, %d failed, avg %dms",
		stats.TotalRequests, stats.FailedRequests, stats.AverageResponseTime.Milliseconds())
}

// viewList renders the window of products around the cursor
func (m *Model) viewList() string {
	start, end := m.window()
	items := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		items = append(items, m.viewProduct(m.visible[i], i == m.cursor))
	}
	if end < len(m.visible) {
		items = append(items, mutedStyle.Render(fmt.Sprintf("  ... %d more", len(m.visible)-end)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

// window returns the range of visible products that fits the terminal
func (m *Model) window() (int, int) {
	size := len(m.visible)
	if m.height > 0 {
		size = max((m.height-16)/3, 3)
	}
	start := 0
	if m.cursor >= size {
		start = m.cursor - size + 1
	}
	end := min(start+size, len(m.visible))
	return start, end
}

func (m *Model) viewProduct(product interfaces.Product, selected bool) string {
	state := m.state(product.ItemID)

	line := fmt.Sprintf("%s  %s", nameStyle.Render(listing.CleanTitle(product.ProductName)), priceStyle.Render(fmt.Sprintf("$%.2f", product.Price)))
	if badge := components.RenderItemBadge(state, m.spinner.View()); badge != "" {
		line += "  " + badge
	}

	lines := []string{line}
	if product.KeyFeatures != "" {
		lines = append(lines, featuresStyle.Render(product.KeyFeatures))
	}

	if selected {
		if product.Description != "" {
			lines = append(lines, descriptionStyle.Render(product.Description))
		}
		if m.expansion.Expanded(product.ItemID) {
			lines = append(lines, m.renderer.RenderSpecsTable(product.TechnicalSpecs))
		} else if n := len(product.TechnicalSpecs); n > 0 {
			lines = append(lines, mutedStyle.Render(fmt.Sprintf("%d specifications (space to show)", n)))
		}
		if pending := m.viewPending(product.ItemID, state); pending != "" {
			lines = append(lines, pending)
		}
	}

	body := lipgloss.JoinVertical(lipgloss.Left, lines...)
	if selected {
		return selectedItemStyle.Render(body)
	}
	return itemStyle.Render(body)
}

// viewPending renders the staged description, the editor or the failure
// message of one product
func (m *Model) viewPending(itemID string, state generation.ItemState) string {
	if m.mode == modeEdit && m.editingID == itemID {
		return pendingStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			"Edit description (ctrl+s save, esc cancel)",
			m.editor.View(),
		))
	}

	wrap := lipgloss.NewStyle()
	if m.width > 30 {
		wrap = wrap.Width(m.width - 10)
	}
	switch state.Phase {
	case generation.PhaseReady:
		body := wrap.Render(state.Pending)
		if state.Message != "" {
			body += "\n" + components.RenderStatus("error", state.Message)
		}
		return pendingStyle.Render("✨ Generated description\n" + body)
	case generation.PhaseError:
		body := components.RenderStatus("error", state.Message)
		if state.Pending != "" {
			body += "\n" + wrap.Render(state.Pending)
		}
		return pendingErrorStyle.Render(body)
	}
	return ""
}

func (m *Model) viewAudiencePicker() string {
	rows := []string{lipgloss.NewStyle().Bold(true).Render("Choose a target audience")}
	for i, audience := range listing.Audiences {
		text := fmt.Sprintf("[%d] %s %s - %s", i+1, audience.Icon, audience.Name, audience.Description)
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(audience.Color))
		if i == m.audienceCursor {
			style = style.Bold(true).Reverse(true)
		}
		rows = append(rows, style.Render(text))
	}
	return pickerStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) helpText() string {
	switch m.mode {
	case modeSearch:
		return "Type to filter | [Enter] Done | [Esc] Clear"
	case modeAudience:
		return "[1-6] Choose | [↑/↓] Move | [Enter] Confirm | [Esc] Cancel"
	case modeEdit:
		return "[Ctrl+S] Save | [Esc] Cancel"
	}
	return "[↑/↓] Move | [Space] Specs | [/] Search | [Tab/Enter] Actions | [N]ew product | [U]pload files | [Ctrl+R] Refresh | [Q]uit"
}
