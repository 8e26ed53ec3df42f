package upload

import (
	"fmt"

	apperrors "github.com/catalog-console/console/internal/errors"
	"github.com/catalog-console/console/internal/importer"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages and updates the model state
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-12, 20)
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		// Input is ignored while importing
		if m.processing {
			return m, nil
		}
		switch m.focusState {
		case FocusList:
			return m, m.handleListKeys(msg)
		default:
			return m, m.handleInputKeys(msg)
		}

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progressMsg:
		m.progress = msg.progress
		if msg.progress.Message != "" {
			m.steps = append(m.steps, msg.progress.Message)
		}
		return m, waitForProgress(msg.updates)

	case importFinishedMsg:
		m.processing = false
		return m, m.finishImport(msg)
	}

	if m.focusState == FocusInput {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

// finishImport marks the catalog initialized on success. The flag change
// is what moves the console on to the catalog.
func (m *Model) finishImport(msg importFinishedMsg) tea.Cmd {
	if msg.err != nil {
		saved := 0
		if msg.result != nil {
			for _, id := range msg.result.ItemIDs {
				if id != "" {
					saved++
				}
			}
		}
		contextual := apperrors.NewImportError("upload").
			WithOperation("import").
			WithMessage("import failed").
			WithUserMessage(fmt.Sprintf("Import failed after saving %d products: %v", saved, msg.err)).
			WithCause(msg.err).
			WithContext("files", len(m.paths)).
			Build()
		m.recovery.StartSession("upload", m.handler.Process(contextual))
		return nil
	}

	m.progress = importer.Progress{Step: importer.StepDone, Done: len(msg.result.ItemIDs), Total: len(msg.result.ItemIDs)}
	m.statusMessage = fmt.Sprintf("Imported %d products from %d files", len(msg.result.ItemIDs), msg.result.Files)
	m.logger.Info("Import complete", "files", msg.result.Files, "products", len(msg.result.ItemIDs))

	if err := m.store.SetInitialized(true); err != nil {
		contextual := apperrors.NewStateError("upload").
			WithOperation("set_initialized").
			WithMessage("failed to persist catalog state").
			WithUserMessage("Products were imported but the catalog state could not be saved").
			WithCause(err).
			Build()
		m.recovery.StartSession("upload", m.handler.Process(contextual))
	}
	m.paths = nil
	m.selectedIndex = 0
	return nil
}

// handleInputKeys processes key presses when the path input is focused
func (m *Model) handleInputKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		if m.input.Value() == "" {
			return m.startImport()
		}
		m.addPath()
		return nil

	case "ctrl+s":
		return m.startImport()

	case "tab", "shift+tab":
		if len(m.paths) > 0 {
			m.focusState = FocusList
			m.input.Blur()
		}
		return nil

	case "esc":
		if m.recovery.IsActive() {
			m.recovery.EndSession()
			return nil
		}
		m.input.SetValue("")
		return nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

// handleListKeys processes key presses when the file list is focused
func (m *Model) handleListKeys(msg tea.KeyMsg) tea.Cmd {
	switch key := msg.String(); key {
	case "q":
		return tea.Quit

	case "up", "k":
		if m.selectedIndex > 0 {
			m.selectedIndex--
		}

	case "down", "j":
		if m.selectedIndex < len(m.paths)-1 {
			m.selectedIndex++
		}

	case "d", "delete", "backspace":
		m.removeSelected()
		if len(m.paths) == 0 {
			m.focusState = FocusInput
			return m.input.Focus()
		}

	case "enter", "ctrl+s":
		return m.startImport()

	case "tab", "shift+tab":
		m.focusState = FocusInput
		return m.input.Focus()

	default:
		if action, ok := m.recovery.FindAction(key); ok {
			switch action.Command {
			case apperrors.CommandUploadAgain:
				m.recovery.EndSession()
				return m.startImport()
			case apperrors.CommandDismiss:
				m.recovery.EndSession()
			}
		}
	}
	return nil
}
