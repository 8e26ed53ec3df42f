// Package app provides the top-level controller that owns the upload,
// catalog and creator views. It picks the first view from the persisted
// "catalog initialized" flag, follows changes of that flag, and routes
// generation messages to the view that owns the entity.
package app

import (
	"context"

	"github.com/catalog-console/console/internal/content"
	"github.com/catalog-console/console/internal/generation"
	"github.com/catalog-console/console/internal/importer"
	"github.com/catalog-console/console/internal/interfaces"
	"github.com/catalog-console/console/internal/logging"
	catalogui "github.com/catalog-console/console/internal/ui/catalog"
	"github.com/catalog-console/console/internal/ui/creator"
	"github.com/catalog-console/console/internal/ui/upload"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// activeView determines which model is currently visible and receiving keys
type activeView int

const (
	uploadView activeView = iota
	catalogView
	creatorView
)

func (v activeView) String() string {
	switch v {
	case uploadView:
		return "upload"
	case catalogView:
		return "catalog"
	case creatorView:
		return "creator"
	default:
		return "unknown"
	}
}

// Dependencies holds everything the views need
type Dependencies struct {
	Client     interfaces.CatalogClient
	Generation *generation.Service
	Reconciler *generation.Reconciler
	Importer   *importer.Importer
	Store      interfaces.FlagStore
	Renderer   *content.Renderer
	Logger     *logging.Logger
}

// flagChangedMsg reports a change of the catalog initialized flag
type flagChangedMsg struct {
	initialized bool
}

// ConsoleController is the root bubbletea model
type ConsoleController struct {
	ctx    context.Context
	cancel context.CancelFunc
	deps   Dependencies
	logger *logging.Logger

	// Child UI models
	uploadModel  *upload.Model
	catalogModel *catalogui.Model
	creatorModel *creator.Model

	currentView activeView

	flagChanges <-chan bool
	unsubscribe func()

	// Terminal dimensions
	width  int
	height int
}

// NewConsoleController creates the controller. Requests issued by any view
// are cancelled when ctx is done or Shutdown is called.
func NewConsoleController(ctx context.Context, deps Dependencies) *ConsoleController {
	if deps.Logger == nil {
		deps.Logger = logging.GetUILogger()
	}
	ctx, cancel := context.WithCancel(ctx)

	c := &ConsoleController{
		ctx:    ctx,
		cancel: cancel,
		deps:   deps,
		logger: deps.Logger.WithComponent("ui"),
	}
	c.catalogModel = catalogui.NewModel(ctx, deps.Client, deps.Generation, deps.Reconciler, deps.Renderer, deps.Logger)
	c.creatorModel = creator.NewModel(ctx, deps.Client, deps.Generation, deps.Reconciler, deps.Renderer, deps.Logger)
	c.uploadModel = upload.NewModel(ctx, deps.Importer, deps.Store, deps.Logger)

	if deps.Store.Initialized() {
		c.currentView = catalogView
	} else {
		c.currentView = uploadView
	}
	c.flagChanges, c.unsubscribe = deps.Store.Subscribe()
	return c
}

// Init starts the first view and the flag subscription
func (c *ConsoleController) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForFlag(c.flagChanges), c.creatorModel.Init()}
	switch c.currentView {
	case catalogView:
		cmds = append(cmds, c.catalogModel.Init())
	default:
		cmds = append(cmds, c.uploadModel.Init())
	}
	c.logger.Info("Console started", "view", c.currentView.String())
	return tea.Batch(cmds...)
}

// Shutdown cancels outstanding requests and ends the flag subscription
func (c *ConsoleController) Shutdown() {
	c.cancel()
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
}

func waitForFlag(changes <-chan bool) tea.Cmd {
	return func() tea.Msg {
		v, ok := <-changes
		if !ok {
			return nil
		}
		return flagChangedMsg{initialized: v}
	}
}

// Update handles messages and delegates them to the child models
func (c *ConsoleController) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return c, tea.Quit
		}

	case tea.WindowSizeMsg:
		c.width = msg.Width
		c.height = msg.Height
		// Propagate size to every child so a switch renders at the right width
		c.uploadModel.Update(msg)
		c.catalogModel.Update(msg)
		c.creatorModel.Update(msg)
		return c, nil

	case spinner.TickMsg:
		// Each spinner only accepts its own ticks
		_, cmd = c.catalogModel.Update(msg)
		cmds = append(cmds, cmd)
		_, cmd = c.creatorModel.Update(msg)
		cmds = append(cmds, cmd)
		_, cmd = c.uploadModel.Update(msg)
		cmds = append(cmds, cmd)
		return c, tea.Batch(cmds...)

	case flagChangedMsg:
		cmds = append(cmds, waitForFlag(c.flagChanges))
		if msg.initialized {
			cmds = append(cmds, c.showCatalog(true))
		} else {
			cmds = append(cmds, c.showUpload())
		}
		return c, tea.Batch(cmds...)

	case catalogui.OpenCreatorMsg:
		if !c.deps.Store.Initialized() {
			return c, nil
		}
		c.creatorModel.Reset()
		c.switchTo(creatorView, "open creator")
		return c, nil

	case creator.CloseCreatorMsg:
		return c, c.showCatalog(msg.Saved)

	case catalogui.UploadNewFilesMsg:
		if err := c.deps.Store.SetInitialized(false); err != nil {
			c.logger.Error("Failed to reset catalog state", "error", err.Error())
		}
		return c, c.showUpload()

	case generation.SubmittedMsg:
		return c, c.route(msg.EntityID, msg)

	case generation.PolledMsg:
		return c, c.route(msg.EntityID, msg)

	case generation.PollDueMsg:
		return c, c.route(msg.EntityID, msg)
	}

	// Delegate everything else to the active model
	switch c.currentView {
	case uploadView:
		_, cmd = c.uploadModel.Update(msg)
	case catalogView:
		_, cmd = c.catalogModel.Update(msg)
	case creatorView:
		_, cmd = c.creatorModel.Update(msg)
	}
	return c, cmd
}

// route delivers a generation message to the view owning the entity,
// whichever view is visible
func (c *ConsoleController) route(entityID string, msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if entityID == creator.DraftID {
		_, cmd = c.creatorModel.Update(msg)
	} else {
		_, cmd = c.catalogModel.Update(msg)
	}
	return cmd
}

// showCatalog switches to the catalog, reloading the products when refresh
// is set
func (c *ConsoleController) showCatalog(refresh bool) tea.Cmd {
	previous := c.currentView
	c.switchTo(catalogView, "catalog initialized")
	if refresh || previous == uploadView {
		return c.catalogModel.Init()
	}
	return nil
}

// showUpload switches to a fresh upload view
func (c *ConsoleController) showUpload() tea.Cmd {
	if c.currentView == uploadView {
		return nil
	}
	for _, entityID := range c.deps.Generation.Registry().Active() {
		c.deps.Generation.Registry().Cancel(entityID)
	}
	c.deps.Reconciler.DiscardAll()
	c.uploadModel = upload.NewModel(c.ctx, c.deps.Importer, c.deps.Store, c.deps.Logger)
	c.uploadModel.Update(tea.WindowSizeMsg{Width: c.width, Height: c.height})
	c.switchTo(uploadView, "upload new files")
	return c.uploadModel.Init()
}

func (c *ConsoleController) switchTo(view activeView, reason string) {
	if c.currentView == view {
		return
	}
	c.logger.LogUIStateChange(c.currentView.String(), view.String(), reason)
	c.currentView = view
}

// View renders the view of the currently active child model
func (c *ConsoleController) View() string {
	switch c.currentView {
	case uploadView:
		return c.uploadModel.View()
	case catalogView:
		return c.catalogModel.View()
	case creatorView:
		return c.creatorModel.View()
	default:
		return "Error: Unknown view state."
	}
}
