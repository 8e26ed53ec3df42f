// Package catalog implements the product list view: search, specification
// expansion and per-product description generation with staged results that
// are only written back once the user applies them.
package catalog

import (
	"context"

	listing "github.com/catalog-console/console/internal/catalog"
	"github.com/catalog-console/console/internal/content"
	apperrors "github.com/catalog-console/console/internal/errors"
	"github.com/catalog-console/console/internal/generation"
	"github.com/catalog-console/console/internal/interfaces"
	"github.com/catalog-console/console/internal/logging"
	"github.com/catalog-console/console/internal/ui/actions"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// FetchFailedMessage is shown when the product list cannot be loaded
const FetchFailedMessage = "Failed to fetch products from API Gateway"

// Commands of the product actions pane
const (
	CommandGenerate = "generate"
	CommandApply    = "apply"
	CommandEdit     = "edit"
	CommandDiscard  = "discard"
	CommandCancel   = "cancel"
)

// mode is the part of the view receiving keys
type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modeAudience
	modeEdit
)

// OpenCreatorMsg asks the controller to show the product creator
type OpenCreatorMsg struct{}

// UploadNewFilesMsg asks the controller to return to the upload view
type UploadNewFilesMsg struct{}

type (
	productsLoadedMsg struct {
		products []interfaces.Product
		err      error
	}

	appliedMsg struct {
		itemID    string
		requestID string
		product   *interfaces.Product
		err       error
	}
)

// Model is the state of the catalog view
type Model struct {
	// Injected dependencies
	ctx        context.Context
	client     interfaces.CatalogClient
	service    *generation.Service
	reconciler *generation.Reconciler
	renderer   *content.Renderer
	handler    *apperrors.Handler
	recovery   *apperrors.RecoveryManager
	logger     *logging.Logger

	// Catalog state
	products  []interfaces.Product
	visible   []interfaces.Product
	cursor    int
	expansion listing.Expansion
	audiences map[string]string
	loading   bool

	// UI state
	mode           mode
	search         textinput.Model
	editor         textarea.Model
	spinner        spinner.Model
	actions        *actions.Pane
	audienceCursor int
	editingID      string
	statusMessage  string

	// Terminal dimensions
	width  int
	height int
}

// NewModel creates the catalog view. ctx bounds every request the view
// issues.
func NewModel(
	ctx context.Context,
	client interfaces.CatalogClient,
	service *generation.Service,
	reconciler *generation.Reconciler,
	renderer *content.Renderer,
	logger *logging.Logger,
) *Model {
	if logger == nil {
		logger = logging.GetUILogger()
	}
	logger = logger.WithField("view", "catalog")

	search := textinput.New()
	search.Placeholder = "Search by name or feature"
	search.Prompt = "🔍 "
	search.CharLimit = 100
	search.Width = 40

	editor := textarea.New()
	editor.Placeholder = "Generated description"
	editor.ShowLineNumbers = false
	editor.SetHeight(6)

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return &Model{
		ctx:        ctx,
		client:     client,
		service:    service,
		reconciler: reconciler,
		renderer:   renderer,
		handler:    apperrors.NewHandler(logger),
		recovery:   apperrors.NewRecoveryManager(),
		logger:     logger,
		audiences:  make(map[string]string),
		loading:    true,
		search:     search,
		editor:     editor,
		spinner:    spin,
		actions:    actions.NewPane(),
	}
}

// Init loads the product list and starts the spinner
func (m *Model) Init() tea.Cmd {
	m.loading = true
	return tea.Batch(m.fetchProducts(), m.spinner.Tick)
}

// fetchProducts loads the product list off the event loop
func (m *Model) fetchProducts() tea.Cmd {
	return func() tea.Msg {
		products, err := m.client.Products(m.ctx)
		return productsLoadedMsg{products: products, err: err}
	}
}

// applyDescription confirms the staged description of product
func (m *Model) applyDescription(product interfaces.Product) tea.Cmd {
	requestID := m.reconciler.State(product.ItemID).RequestID
	return func() tea.Msg {
		updated, err := m.reconciler.Confirm(m.ctx, product)
		return appliedMsg{itemID: product.ItemID, requestID: requestID, product: updated, err: err}
	}
}

// state is what the view shows for itemID
func (m *Model) state(itemID string) generation.ItemState {
	return generation.DisplayState(m.service.Registry(), m.reconciler, itemID)
}

// selected returns the product under the cursor
func (m *Model) selected() (interfaces.Product, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return interfaces.Product{}, false
	}
	return m.visible[m.cursor], true
}

// Products returns the loaded product list in display order
func (m *Model) Products() []interfaces.Product {
	return m.visible
}

// refreshVisible recomputes the filtered and sorted list, keeping the
// cursor on the same product when it is still shown
func (m *Model) refreshVisible() {
	current, hadSelection := m.selected()
	m.visible = listing.View(m.products, m.search.Value())

	if hadSelection {
		for i, p := range m.visible {
			if p.ItemID == current.ItemID {
				m.cursor = i
				return
			}
		}
	}
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// replaceProduct swaps in an updated copy of a product
func (m *Model) replaceProduct(updated interfaces.Product) {
	for i := range m.products {
		if m.products[i].ItemID == updated.ItemID {
			m.products[i] = updated
			break
		}
	}
	m.refreshVisible()
}

// refreshActions rebuilds the actions pane for the current selection
func (m *Model) refreshActions() {
	if m.recovery.IsActive() {
		m.actions.SetActions("Recovery", m.recovery.GetRecoveryActions())
		return
	}

	product, ok := m.selected()
	if !ok {
		m.actions.Reset()
		return
	}
	m.actions.SetActions(listing.CleanTitle(product.ProductName), productActions(m.state(product.ItemID)))
}

// productActions lists what can be done with a product in state
func productActions(state generation.ItemState) []interfaces.Action {
	generate := interfaces.Action{Name: "Generate Description", Command: CommandGenerate, Type: actions.TypePrimary, Icon: "✨", Key: "g"}
	regenerate := apperrors.RegenerateAction
	discard := interfaces.Action{Name: "Discard", Command: CommandDiscard, Type: actions.TypeCancel, Icon: "🗑️", Key: "x"}

	switch state.Phase {
	case generation.PhaseGenerating:
		return []interfaces.Action{
			{Name: "Cancel", Command: CommandCancel, Type: actions.TypeCancel, Key: "x"},
		}
	case generation.PhaseReady:
		apply := interfaces.Action{Name: "Use This Description", Command: CommandApply, Type: actions.TypeConfirmation, Key: "a"}
		edit := interfaces.Action{Name: "Edit", Command: CommandEdit, Type: actions.TypeInfo, Icon: "✏️", Key: "e"}
		if !state.CanApply() {
			apply.Type = actions.TypeDisabled
			edit.Type = actions.TypeDisabled
		}
		return []interfaces.Action{apply, edit, regenerate, discard}
	case generation.PhaseError:
		list := []interfaces.Action{regenerate, discard}
		if state.Pending != "" {
			apply := interfaces.Action{Name: "Use This Description", Command: CommandApply, Type: actions.TypeDisabled, Key: "a"}
			list = append([]interfaces.Action{apply}, list...)
		}
		return list
	default:
		return []interfaces.Action{generate}
	}
}
