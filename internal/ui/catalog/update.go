package catalog

import (
	"fmt"
	"strconv"

	listing "github.com/catalog-console/console/internal/catalog"
	apperrors "github.com/catalog-console/console/internal/errors"
	"github.com/catalog-console/console/internal/generation"
	"github.com/catalog-console/console/internal/interfaces"
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
		m.actions.SetWidth(msg.Width)
		m.editor.SetWidth(max(msg.Width-8, 20))
		return m, nil

	case tea.KeyMsg:
		cmd = m.handleKey(msg)
		m.refreshActions()
		return m, cmd

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case productsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.showFetchError(msg.err)
		} else {
			m.recovery.EndSession()
			m.products = msg.products
			m.refreshVisible()
			m.logger.Info("Products loaded", "count", len(msg.products))
		}
		m.refreshActions()
		return m, nil

	case generation.SubmittedMsg:
		return m, m.handleSession(msg, msg.Session, msg.Current)

	case generation.PolledMsg:
		return m, m.handleSession(msg, msg.Session, msg.Current)

	case generation.PollDueMsg:
		return m, m.service.Continue(m.ctx, msg)

	case appliedMsg:
		if msg.err != nil {
			m.statusMessage = m.handler.Process(msg.err).Message
		} else if msg.product != nil {
			m.service.Registry().Release(msg.itemID, msg.requestID)
			m.replaceProduct(*msg.product)
			m.statusMessage = fmt.Sprintf("Description updated for %s", listing.CleanTitle(msg.product.ProductName))
		}
		m.refreshActions()
		return m, nil
	}

	// Cursor blinks and other input messages
	switch m.mode {
	case modeSearch:
		m.search, cmd = m.search.Update(msg)
	case modeEdit:
		m.editor, cmd = m.editor.Update(msg)
	}
	return m, cmd
}

// handleSession resolves terminal sessions and keeps the poll chain going
func (m *Model) handleSession(msg tea.Msg, session generation.Session, current bool) tea.Cmd {
	if current && session.Status.Terminal() {
		if m.reconciler.Resolve(session) {
			m.logger.LogUIStateChange(string(generation.PhaseGenerating), string(m.state(session.EntityID).Phase), session.EntityID)
		}
		m.refreshActions()
	}
	return m.service.Continue(m.ctx, msg)
}

// showFetchError opens the recovery banner for a failed product load
func (m *Model) showFetchError(err error) {
	contextual := apperrors.NewCatalogError("catalog").
		WithOperation("fetch_products").
		WithMessage(FetchFailedMessage).
		WithUserMessage(FetchFailedMessage).
		WithCause(err).
		Build()
	if _, startErr := m.recovery.StartSession("catalog", m.handler.Process(contextual)); startErr != nil {
		m.logger.Warn("Failed to open recovery banner", "error", startErr.Error())
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		return tea.Quit
	}

	switch m.mode {
	case modeSearch:
		return m.handleSearchKeys(msg)
	case modeAudience:
		return m.handleAudienceKeys(msg)
	case modeEdit:
		return m.handleEditKeys(msg)
	default:
		return m.handleBrowseKeys(msg)
	}
}

// handleBrowseKeys processes key presses while moving through the list
func (m *Model) handleBrowseKeys(msg tea.KeyMsg) tea.Cmd {
	m.statusMessage = ""

	switch key := msg.String(); key {
	case "q":
		return tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}

	case "/":
		m.mode = modeSearch
		return m.search.Focus()

	case " ":
		if product, ok := m.selected(); ok {
			m.expansion.Toggle(product.ItemID)
		}

	case "tab":
		m.actions.Next()

	case "shift+tab":
		m.actions.Previous()

	case "enter":
		if action, err := m.actions.Selected(); err == nil {
			return m.runAction(*action)
		}

	case "ctrl+r":
		if m.loading {
			return nil
		}
		m.loading = true
		return m.fetchProducts()

	case "n":
		return func() tea.Msg { return OpenCreatorMsg{} }

	case "u":
		return func() tea.Msg { return UploadNewFilesMsg{} }

	default:
		if action, ok := m.recovery.FindAction(key); ok {
			return m.runAction(action)
		}
		if action, ok := m.actions.Resolve(key); ok {
			return m.runAction(*action)
		}
	}
	return nil
}

// handleSearchKeys edits the search query; the list filters as it changes
func (m *Model) handleSearchKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.search.SetValue("")
		m.search.Blur()
		m.mode = modeBrowse
		m.refreshVisible()
		return nil
	case "enter", "tab":
		m.search.Blur()
		m.mode = modeBrowse
		return nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.refreshVisible()
	return cmd
}

// handleAudienceKeys picks the target audience of a generation
func (m *Model) handleAudienceKeys(msg tea.KeyMsg) tea.Cmd {
	switch key := msg.String(); key {
	case "esc":
		m.mode = modeBrowse
	case "up", "k":
		if m.audienceCursor > 0 {
			m.audienceCursor--
		}
	case "down", "j":
		if m.audienceCursor < len(listing.Audiences)-1 {
			m.audienceCursor++
		}
	case "enter":
		return m.chooseAudience(m.audienceCursor)
	default:
		if i, err := strconv.Atoi(key); err == nil && i >= 1 && i <= len(listing.Audiences) {
			return m.chooseAudience(i - 1)
		}
	}
	return nil
}

func (m *Model) chooseAudience(index int) tea.Cmd {
	m.mode = modeBrowse
	product, ok := m.selected()
	if !ok {
		return nil
	}
	return m.startGeneration(product, listing.Audiences[index].ID)
}

// handleEditKeys edits the staged description of one product
func (m *Model) handleEditKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.editor.Blur()
		m.mode = modeBrowse
		m.editingID = ""
		return nil
	case "ctrl+s":
		if !m.reconciler.Edit(m.editingID, m.editor.Value()) {
			m.statusMessage = "The description changed while editing; edit discarded"
		}
		m.editor.Blur()
		m.mode = modeBrowse
		m.editingID = ""
		return nil
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return cmd
}

// runAction executes an action from the actions pane or the recovery banner
func (m *Model) runAction(action interfaces.Action) tea.Cmd {
	switch action.Command {
	case apperrors.CommandRetryFetch:
		m.recovery.EndSession()
		m.loading = true
		return m.fetchProducts()

	case apperrors.CommandDismiss:
		m.recovery.EndSession()
		return nil

	case apperrors.CommandUploadAgain:
		return func() tea.Msg { return UploadNewFilesMsg{} }
	}

	product, ok := m.selected()
	if !ok {
		return nil
	}

	switch action.Command {
	case CommandGenerate:
		m.openAudiencePicker(product.ItemID)

	case apperrors.CommandRegenerate:
		if audience, ok := m.audiences[product.ItemID]; ok {
			return m.startGeneration(product, audience)
		}
		m.openAudiencePicker(product.ItemID)

	case CommandApply:
		if !m.state(product.ItemID).CanApply() {
			return nil
		}
		return m.applyDescription(product)

	case CommandEdit:
		state := m.state(product.ItemID)
		if !state.CanApply() {
			return nil
		}
		m.editingID = product.ItemID
		m.editor.SetValue(state.Pending)
		m.mode = modeEdit
		return m.editor.Focus()

	case CommandDiscard, CommandCancel:
		m.service.Registry().Cancel(product.ItemID)
		m.reconciler.Discard(product.ItemID)
	}
	return nil
}

func (m *Model) openAudiencePicker(itemID string) {
	m.audienceCursor = 0
	if last, ok := m.audiences[itemID]; ok {
		for i, a := range listing.Audiences {
			if a.ID == last {
				m.audienceCursor = i
			}
		}
	}
	m.mode = modeAudience
}

// startGeneration registers a new session for product, superseding any
// earlier one, and submits it
func (m *Model) startGeneration(product interfaces.Product, audienceID string) tea.Cmd {
	form := generation.FormFromProduct(product, audienceID)
	req, err := m.service.Begin(product.ItemID, form)
	if err != nil {
		m.statusMessage = m.handler.Process(err).Message
		return nil
	}

	m.audiences[product.ItemID] = audienceID
	m.reconciler.Begin(product.ItemID, req.RequestID)
	m.logger.Info("Generation started", "item_id", product.ItemID, "request_id", req.RequestID, "audience", audienceID)
	return m.service.SubmitCmd(m.ctx, req)
}
