// Package creator implements the new product flow: pick a target audience,
// describe the product, generate a description, review it and save the
// product to the catalog.
package creator

import (
	"context"
	"strings"
	"time"

	listing "github.com/catalog-console/console/internal/catalog"
	"github.com/catalog-console/console/internal/content"
	apperrors "github.com/catalog-console/console/internal/errors"
	"github.com/catalog-console/console/internal/generation"
	"github.com/catalog-console/console/internal/importer"
	"github.com/catalog-console/console/internal/interfaces"
	"github.com/catalog-console/console/internal/logging"
	"github.com/catalog-console/console/internal/ui/workflow"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// DraftID is the entity ID of the product being created. There is at most
// one draft, so a new generation always supersedes the previous one.
const DraftID = "draft"

// Workflow steps
const (
	StepAudience = "Audience"
	StepDetails  = "Details"
	StepReview   = "Review"
	StepSaved    = "Saved"
)

// CloseCreatorMsg asks the controller to return to the catalog
type CloseCreatorMsg struct {
	Saved bool
}

type savedMsg struct {
	itemID string
	err    error
}

// specRow is one editable technical specification
type specRow struct {
	name  textinput.Model
	value textinput.Model
}

// Model is the state of the creator
type Model struct {
	// Injected dependencies
	ctx        context.Context
	client     interfaces.CatalogClient
	service    *generation.Service
	reconciler *generation.Reconciler
	renderer   *content.Renderer
	handler    *apperrors.Handler
	logger     *logging.Logger
	now        func() time.Time

	// Flow state
	workflow  *workflow.Manager
	audience  string
	cursor    int
	requestID string
	payload   *generation.Payload
	saving    bool
	savedID   string
	saved     bool

	// Form
	name    textinput.Model
	price   textinput.Model
	specs   []specRow
	focus   int
	editor  textarea.Model
	spinner spinner.Model

	showPayload   bool
	statusMessage string

	// Terminal dimensions
	width  int
	height int
}

// NewModel creates the creator at its first step
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
	logger = logger.WithField("view", "creator")

	editor := textarea.New()
	editor.Placeholder = "Generated description"
	editor.ShowLineNumbers = false
	editor.SetHeight(8)

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := &Model{
		ctx:        ctx,
		client:     client,
		service:    service,
		reconciler: reconciler,
		renderer:   renderer,
		handler:    apperrors.NewHandler(logger),
		logger:     logger,
		now:        time.Now,
		workflow:   workflow.NewManager(),
		editor:     editor,
		spinner:    spin,
	}
	m.Reset()
	return m
}

// Init starts the spinner
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Reset clears the form and abandons any draft generation
func (m *Model) Reset() {
	m.service.Registry().Cancel(DraftID)
	m.reconciler.Discard(DraftID)

	m.name = newInput("Product name", 120)
	m.price = newInput("Price, e.g. 199.99", 20)
	m.specs = []specRow{newSpecRow()}
	m.focus = 0
	m.audience = ""
	m.cursor = 0
	m.requestID = ""
	m.payload = nil
	m.saving = false
	m.saved = false
	m.savedID = ""
	m.showPayload = false
	m.statusMessage = ""
	m.editor.Reset()
	m.workflow.Start("New Product", StepAudience, StepDetails, StepReview, StepSaved)
	m.workflow.SetWidth(m.width)
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = 40
	ti.Prompt = ""
	return ti
}

func newSpecRow() specRow {
	row := specRow{
		name:  newInput("Name, e.g. Battery", 60),
		value: newInput("Value, e.g. 20 hours", 120),
	}
	row.name.Width = 20
	row.value.Width = 30
	return row
}

// Step returns the current workflow step
func (m *Model) Step() string {
	return m.workflow.Current()
}

// form collects the current field values
func (m *Model) form() generation.Form {
	specs := make([]interfaces.TechnicalSpec, len(m.specs))
	for i, row := range m.specs {
		specs[i] = interfaces.TechnicalSpec{Name: row.name.Value(), Value: row.value.Value()}
	}
	valid := generation.ValidSpecs(specs)
	return generation.Form{
		Title:          m.name.Value(),
		Price:          m.price.Value(),
		Specs:          specs,
		TargetAudience: m.audience,
		KeyFeatures:    listing.KeyFeatures(valid.Pairs()),
	}
}

// CanGenerate reports whether the form has every required field
func (m *Model) CanGenerate() bool {
	return m.audience != "" && generation.CanGenerate(m.form())
}

// inputCount is the number of focusable form inputs
func (m *Model) inputCount() int {
	return 2 + 2*len(m.specs)
}

// input returns the focusable input at index
func (m *Model) input(index int) *textinput.Model {
	switch index {
	case 0:
		return &m.name
	case 1:
		return &m.price
	}
	row := &m.specs[(index-2)/2]
	if (index-2)%2 == 0 {
		return &row.name
	}
	return &row.value
}

// setFocus moves the focus to index, wrapping around
func (m *Model) setFocus(index int) tea.Cmd {
	n := m.inputCount()
	index = ((index % n) + n) % n
	m.input(m.focus).Blur()
	m.focus = index
	return m.input(index).Focus()
}

// focusedSpec returns the spec row holding the focus, or -1
func (m *Model) focusedSpec() int {
	if m.focus < 2 {
		return -1
	}
	return (m.focus - 2) / 2
}

// saveRequest builds the SAVE_PRODUCT body from the form and description
func (m *Model) saveRequest(description string) (interfaces.SaveProductRequest, error) {
	price, err := importer.ParsePrice(m.price.Value())
	if err != nil {
		return interfaces.SaveProductRequest{}, err
	}
	form := m.form()
	pairs := generation.ValidSpecs(form.Specs).Pairs()
	return interfaces.SaveProductRequest{
		ProductName:    strings.TrimSpace(form.Title),
		Price:          price,
		KeyFeatures:    listing.KeyFeatures(pairs),
		TechnicalSpecs: pairs,
		Description:    description,
		TargetAudience: m.audience,
		CreatedAt:      m.now().UTC().Format(time.RFC3339),
	}, nil
}

// saveProduct stores the draft off the event loop
func (m *Model) saveProduct(request interfaces.SaveProductRequest) tea.Cmd {
	return func() tea.Msg {
		resp, err := m.client.SaveProduct(m.ctx, request)
		if err != nil {
			return savedMsg{err: err}
		}
		return savedMsg{itemID: resp.ItemID}
	}
}
