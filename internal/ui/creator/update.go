package creator

import (
	"fmt"
	"strconv"

	listing "github.com/catalog-console/console/internal/catalog"
	"github.com/catalog-console/console/internal/generation"
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
		m.workflow.SetWidth(msg.Width)
		m.editor.SetWidth(max(msg.Width-6, 20))
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m, m.handleKey(msg)

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case generation.SubmittedMsg:
		return m, m.handleSession(msg, msg.Session, msg.Current)

	case generation.PolledMsg:
		return m, m.handleSession(msg, msg.Session, msg.Current)

	case generation.PollDueMsg:
		return m, m.service.Continue(m.ctx, msg)

	case savedMsg:
		m.saving = false
		if msg.err != nil {
			m.statusMessage = m.handler.Process(msg.err).Message
			return m, nil
		}
		m.saved = true
		m.savedID = msg.itemID
		m.reconciler.Discard(DraftID)
		m.service.Registry().Cancel(DraftID)
		m.workflow.GoTo(StepSaved)
		m.logger.Info("Product saved", "item_id", msg.itemID)
		return m, nil
	}

	// Cursor blinks and other input messages
	switch m.Step() {
	case StepDetails:
		*m.input(m.focus), cmd = m.input(m.focus).Update(msg)
	case StepReview:
		m.editor, cmd = m.editor.Update(msg)
	}
	return m, cmd
}

// handleSession resolves the draft session and moves the staged text into
// the editor
func (m *Model) handleSession(msg tea.Msg, session generation.Session, current bool) tea.Cmd {
	if current && session.Status.Terminal() && m.reconciler.Resolve(session) {
		state := m.reconciler.State(DraftID)
		m.editor.SetValue(state.Pending)
		if state.Phase == generation.PhaseReady {
			m.editor.Focus()
		}
	}
	return m.service.Continue(m.ctx, msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch m.Step() {
	case StepAudience:
		return m.handleAudienceKeys(msg)
	case StepDetails:
		return m.handleDetailsKeys(msg)
	case StepReview:
		return m.handleReviewKeys(msg)
	case StepSaved:
		return m.handleSavedKeys(msg)
	}
	return nil
}

func (m *Model) handleAudienceKeys(msg tea.KeyMsg) tea.Cmd {
	switch key := msg.String(); key {
	case "esc", "q":
		return closeCreator(m.saved)
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(listing.Audiences)-1 {
			m.cursor++
		}
	case "enter":
		return m.chooseAudience(m.cursor)
	default:
		if i, err := strconv.Atoi(key); err == nil && i >= 1 && i <= len(listing.Audiences) {
			return m.chooseAudience(i - 1)
		}
	}
	return nil
}

func (m *Model) chooseAudience(index int) tea.Cmd {
	m.cursor = index
	m.audience = listing.Audiences[index].ID
	m.workflow.GoTo(StepDetails)
	return m.setFocus(m.focus)
}

func (m *Model) handleDetailsKeys(msg tea.KeyMsg) tea.Cmd {
	m.statusMessage = ""

	switch msg.String() {
	case "esc":
		m.input(m.focus).Blur()
		m.workflow.GoTo(StepAudience)
		return nil

	case "tab", "down", "enter":
		return m.setFocus(m.focus + 1)

	case "shift+tab", "up":
		return m.setFocus(m.focus - 1)

	case "ctrl+a":
		m.specs = append(m.specs, newSpecRow())
		return m.setFocus(m.inputCount() - 2)

	case "ctrl+d":
		return m.removeSpec(m.focusedSpec())

	case "ctrl+g":
		return m.generate()
	}

	var cmd tea.Cmd
	*m.input(m.focus), cmd = m.input(m.focus).Update(msg)
	return cmd
}

// removeSpec deletes a spec row; the last row is cleared instead
func (m *Model) removeSpec(index int) tea.Cmd {
	if index < 0 || index >= len(m.specs) {
		return nil
	}
	if len(m.specs) == 1 {
		m.specs[0].name.SetValue("")
		m.specs[0].value.SetValue("")
		return nil
	}

	m.input(m.focus).Blur()
	m.specs = append(m.specs[:index], m.specs[index+1:]...)
	m.focus = min(m.focus, m.inputCount()-1)
	return m.setFocus(m.focus)
}

// generate starts a generation for the draft, superseding any earlier one
func (m *Model) generate() tea.Cmd {
	if m.audience == "" {
		m.workflow.GoTo(StepAudience)
		return nil
	}

	req, err := m.service.Begin(DraftID, m.form())
	if err != nil {
		m.statusMessage = m.handler.Process(err).Message
		return nil
	}

	payload := req.Payload
	m.payload = &payload
	m.requestID = req.RequestID
	m.reconciler.Begin(DraftID, req.RequestID)
	m.editor.Reset()
	m.input(m.focus).Blur()
	m.workflow.GoTo(StepReview)
	m.logger.Info("Generation started", "entity_id", DraftID, "request_id", req.RequestID, "audience", m.audience)
	return m.service.SubmitCmd(m.ctx, req)
}

func (m *Model) handleReviewKeys(msg tea.KeyMsg) tea.Cmd {
	state := generation.DisplayState(m.service.Registry(), m.reconciler, DraftID)

	switch msg.String() {
	case "esc":
		m.service.Registry().Cancel(DraftID)
		m.reconciler.Discard(DraftID)
		m.editor.Blur()
		m.workflow.GoTo(StepDetails)
		return m.setFocus(m.focus)

	case "ctrl+p":
		m.showPayload = !m.showPayload
		return nil

	case "ctrl+r":
		return m.generate()

	case "ctrl+s":
		return m.save(state)
	}

	if state.Phase != generation.PhaseReady || m.saving {
		return nil
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return cmd
}

// save writes the reviewed product to the catalog
func (m *Model) save(state generation.ItemState) tea.Cmd {
	if m.saving {
		return nil
	}
	if !state.CanApply() {
		m.statusMessage = "Generate a description before saving"
		return nil
	}

	m.reconciler.Edit(DraftID, m.editor.Value())
	request, err := m.saveRequest(m.editor.Value())
	if err != nil {
		m.statusMessage = fmt.Sprintf("Invalid price: %v", err)
		return nil
	}

	m.saving = true
	m.statusMessage = ""
	return m.saveProduct(request)
}

func (m *Model) handleSavedKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "n":
		m.Reset()
		return nil
	case "esc", "enter", "q":
		return closeCreator(true)
	}
	return nil
}

func closeCreator(saved bool) tea.Cmd {
	return func() tea.Msg { return CloseCreatorMsg{Saved: saved} }
}
