// Package content renders product data for the terminal: syntax highlighted
// JSON previews of outgoing payloads and bordered specification tables.
package content

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma"
	"github.com/alecthomas/chroma/formatters"
	"github.com/alecthomas/chroma/lexers"
	"github.com/alecthomas/chroma/styles"
	"github.com/catalog-console/console/internal/interfaces"
	"github.com/charmbracelet/lipgloss"
)

const (
	minColumnWidth = 8
	maxColumnWidth = 40
)

// SyntaxHighlighter colors source text with a chroma style
type SyntaxHighlighter struct {
	formatter chroma.Formatter
	style     *chroma.Style
}

// NewSyntaxHighlighter creates a highlighter; unknown names fall back to
// the plain formatter and the github style
func NewSyntaxHighlighter(themeName, formatterName string) *SyntaxHighlighter {
	formatter := formatters.Get(formatterName)
	if formatter == nil {
		formatter = formatters.Fallback
	}
	style := styles.Get(themeName)
	if style == nil {
		style = styles.GitHub
	}
	return &SyntaxHighlighter{formatter: formatter, style: style}
}

// Highlight applies syntax highlighting to code. On failure the input is
// returned unchanged together with the error.
func (sh *SyntaxHighlighter) Highlight(code, language string) (string, error) {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code, err
	}

	var highlighted strings.Builder
	if err := sh.formatter.Format(&highlighted, sh.style, iterator); err != nil {
		return code, err
	}
	return highlighted.String(), nil
}

// Renderer formats payloads and products
type Renderer struct {
	highlighter *SyntaxHighlighter
	headerStyle lipgloss.Style
	borderColor lipgloss.Color
}

// NewRenderer creates a renderer. theme names a chroma style; an empty
// theme selects monokai. Pass plain=true for uncolored output.
func NewRenderer(theme string, plain bool) *Renderer {
	if theme == "" {
		theme = "monokai"
	}
	formatter := "terminal256"
	if plain {
		formatter = "noop"
	}
	return &Renderer{
		highlighter: NewSyntaxHighlighter(theme, formatter),
		headerStyle: lipgloss.NewStyle().Bold(true),
		borderColor: lipgloss.Color("#6C7086"),
	}
}

// RenderJSON pretty-prints v and highlights it as JSON
func (r *Renderer) RenderJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal preview: %w", err)
	}
	out, err := r.highlighter.Highlight(string(data), "json")
	if err != nil {
		return string(data), nil
	}
	return strings.TrimRight(out, "\n"), nil
}

// RenderSpecsTable lays out technical specs as a two column table
func (r *Renderer) RenderSpecsTable(specs []interfaces.TechnicalSpec) string {
	if len(specs) == 0 {
		return ""
	}

	rows := make([][]string, len(specs))
	for i, s := range specs {
		rows[i] = []string{s.Name, s.Value}
	}
	return r.formatTable([]string{"Specification", "Value"}, rows)
}

func (r *Renderer) formatTable(headers []string, rows [][]string) string {
	widths := columnWidths(headers, rows)

	lines := []string{
		r.formatRow(headers, widths, true),
		separator(widths),
	}
	for _, row := range rows {
		lines = append(lines, r.formatRow(row, widths, false))
	}
	return strings.Join(lines, "\n")
}

func columnWidths(headers []string, rows [][]string) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}
	for i := range widths {
		if widths[i] < minColumnWidth {
			widths[i] = minColumnWidth
		}
		if widths[i] > maxColumnWidth {
			widths[i] = maxColumnWidth
		}
	}
	return widths
}

func (r *Renderer) formatRow(cells []string, widths []int, header bool) string {
	formatted := make([]string, len(widths))
	for i, width := range widths {
		cell := ""
		if i < len(cells) {
			cell = truncate(cells[i], width)
		}
		cell += strings.Repeat(" ", width-lipgloss.Width(cell))
		if header {
			cell = r.headerStyle.Render(cell)
		}
		formatted[i] = cell
	}
	return "│ " + strings.Join(formatted, " │ ") + " │"
}

func separator(widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("─", w)
	}
	return "├─" + strings.Join(parts, "─┼─") + "─┤"
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}
