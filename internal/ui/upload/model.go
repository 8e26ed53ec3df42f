// Package upload implements the first-run view: the user lists CSV or JSON
// product files, they are imported into the catalog with a progress view,
// and the catalog is marked initialized.
package upload

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/catalog-console/console/internal/errors"
	"github.com/catalog-console/console/internal/importer"
	"github.com/catalog-console/console/internal/interfaces"
	"github.com/catalog-console/console/internal/logging"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// FocusState represents which part of the view is focused
type FocusState int

const (
	FocusInput FocusState = iota
	FocusList
)

type (
	// progressMsg carries one update and the channel to keep reading
	progressMsg struct {
		progress importer.Progress
		updates  <-chan importer.Progress
	}

	importFinishedMsg struct {
		result *importer.Result
		err    error
	}
)

// Model is the state of the upload view
type Model struct {
	// Injected dependencies
	ctx      context.Context
	importer *importer.Importer
	store    interfaces.FlagStore
	handler  *apperrors.Handler
	recovery *apperrors.RecoveryManager
	logger   *logging.Logger

	// UI state
	input         textinput.Model
	spinner       spinner.Model
	paths         []string
	selectedIndex int
	focusState    FocusState
	processing    bool
	progress      importer.Progress
	steps         []string
	statusMessage string

	// Terminal dimensions
	width  int
	height int
}

// NewModel creates the upload view
func NewModel(ctx context.Context, imp *importer.Importer, store interfaces.FlagStore, logger *logging.Logger) *Model {
	if logger == nil {
		logger = logging.GetUILogger()
	}
	logger = logger.WithField("view", "upload")

	ti := textinput.New()
	ti.Placeholder = "./products.csv"
	ti.Prompt = "File: "
	ti.CharLimit = 512
	ti.Width = 60
	ti.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Line

	return &Model{
		ctx:        ctx,
		importer:   imp,
		store:      store,
		handler:    apperrors.NewHandler(logger),
		recovery:   apperrors.NewRecoveryManager(),
		logger:     logger,
		input:      ti,
		spinner:    spin,
		focusState: FocusInput,
	}
}

// Init starts the cursor blink and the spinner
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Paths returns the files queued for import
func (m *Model) Paths() []string {
	return m.paths
}

// Processing reports whether an import is running
func (m *Model) Processing() bool {
	return m.processing
}

// ValidatePath checks that path names an existing CSV or JSON file and
// returns it cleaned, with a leading ~ expanded
func ValidatePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("no file given")
	}
	if strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}
	path = filepath.Clean(path)

	if !importer.Supported(path) {
		return "", importer.ErrUnsupportedFormat
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("cannot open %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}
	return path, nil
}

// addPath queues the file typed in the input
func (m *Model) addPath() {
	path, err := ValidatePath(m.input.Value())
	if err != nil {
		m.statusMessage = err.Error()
		return
	}
	for _, p := range m.paths {
		if p == path {
			m.statusMessage = fmt.Sprintf("%s is already selected", path)
			return
		}
	}
	m.paths = append(m.paths, path)
	m.input.SetValue("")
	m.statusMessage = ""
}

// removeSelected drops the focused file from the queue
func (m *Model) removeSelected() {
	if m.selectedIndex < 0 || m.selectedIndex >= len(m.paths) {
		return
	}
	m.paths = append(m.paths[:m.selectedIndex], m.paths[m.selectedIndex+1:]...)
	if m.selectedIndex >= len(m.paths) && m.selectedIndex > 0 {
		m.selectedIndex--
	}
}

// startImport runs the importer off the event loop and streams its
// progress back as messages
func (m *Model) startImport() tea.Cmd {
	if len(m.paths) == 0 {
		m.statusMessage = "Add at least one CSV or JSON file"
		return nil
	}

	m.processing = true
	m.recovery.EndSession()
	m.statusMessage = ""
	m.steps = nil
	m.progress = importer.Progress{Step: importer.StepParsing, Total: len(m.paths)}

	paths := append([]string(nil), m.paths...)
	updates := make(chan importer.Progress, 16)
	ctx := m.ctx

	run := func() tea.Msg {
		result, err := m.importer.Import(ctx, paths, func(p importer.Progress) {
			select {
			case updates <- p:
			case <-ctx.Done():
			}
		})
		close(updates)
		return importFinishedMsg{result: result, err: err}
	}
	return tea.Batch(run, waitForProgress(updates))
}

func waitForProgress(updates <-chan importer.Progress) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-updates
		if !ok {
			return nil
		}
		return progressMsg{progress: p, updates: updates}
	}
}
