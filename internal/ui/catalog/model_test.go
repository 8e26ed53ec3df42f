package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/catalog-console/console/internal/content"
	"github.com/catalog-console/console/internal/generation"
	"github.com/catalog-console/console/internal/interfaces"
	"github.com/catalog-console/console/internal/logging"
	"github.com/catalog-console/console/internal/mockapi"
	"github.com/catalog-console/console/internal/protocol"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	model      *Model
	mock       *mockapi.Server
	reconciler *generation.Reconciler
	service    *generation.Service
}

func newFixture(t *testing.T, products ...interfaces.Product) *fixture {
	t.Helper()

	mock := mockapi.New(mockapi.Options{PollsUntilDone: 2, Logger: logging.NewDiscardLogger()})
	mock.Seed(products...)
	srv := httptest.NewServer(mock.Handler())
	t.Cleanup(srv.Close)

	return newFixtureAt(t, srv.URL, mock)
}

func newFixtureAt(t *testing.T, baseURL string, mock *mockapi.Server) *fixture {
	t.Helper()

	logger := logging.NewDiscardLogger()
	client, err := protocol.NewClient(protocol.Options{BaseURL: baseURL, Logger: logger})
	require.NoError(t, err)

	service := generation.NewService(client, nil, generation.Options{PollInterval: time.Millisecond, Logger: logger})
	reconciler := generation.NewReconciler(client, logger)
	model := NewModel(context.Background(), client, service, reconciler, content.NewRenderer("", true), logger)

	return &fixture{model: model, mock: mock, reconciler: reconciler, service: service}
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// drain feeds every message produced by cmd back into the model until the
// chain ends
func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil; i++ {
		require.Less(t, i, 200, "command chain did not settle")
		msg := cmd()
		if batch, ok := msg.(tea.BatchMsg); ok {
			for _, c := range batch {
				drain(t, m, c)
			}
			return
		}
		_, cmd = m.Update(msg)
	}
}

func (f *fixture) load(t *testing.T) {
	t.Helper()
	drain(t, f.model, f.model.fetchProducts())
}

func laptop() interfaces.Product {
	return interfaces.Product{
		ProductName: "Laptop Pro",
		Price:       1299.99,
		KeyFeatures: "cpu: M3, ram: 16GB",
		TechnicalSpecs: []interfaces.TechnicalSpec{
			{Name: "cpu", Value: "M3"},
			{Name: "ram", Value: "16GB"},
		},
		CreatedAt: "2024-01-01T00:00:00Z",
	}
}

func TestLoad_SortsAndFilters(t *testing.T) {
	older := laptop()
	newer := interfaces.Product{ProductName: "Gaming Mouse", Price: 59, KeyFeatures: "dpi: 16000", CreatedAt: "2024-06-01T00:00:00Z"}
	f := newFixture(t, older, newer)
	f.load(t)

	require.Len(t, f.model.Products(), 2)
	assert.Equal(t, "Gaming Mouse", f.model.Products()[0].ProductName)

	f.model.Update(keys("/"))
	f.model.Update(keys("m3"))
	require.Len(t, f.model.Products(), 1)
	assert.Equal(t, "Laptop Pro", f.model.Products()[0].ProductName)

	f.model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Len(t, f.model.Products(), 2)
	assert.Equal(t, modeBrowse, f.model.mode)
}

func TestView_ShowsRequestStatistics(t *testing.T) {
	f := newFixture(t, laptop())
	f.load(t)

	assert.Contains(t, f.model.View(), "API: 1 requests, 0 failed")
}

func TestGenerate_StagesThenApplies(t *testing.T) {
	f := newFixture(t, laptop())
	f.load(t)
	itemID := f.model.Products()[0].ItemID

	_, cmd := f.model.Update(keys("g"))
	assert.Nil(t, cmd)
	require.Equal(t, modeAudience, f.model.mode)

	_, cmd = f.model.Update(keys("3"))
	require.NotNil(t, cmd)
	assert.Equal(t, generation.PhaseGenerating, f.reconciler.State(itemID).Phase)
	assert.Equal(t, "gamers", f.model.audiences[itemID])

	drain(t, f.model, cmd)

	state := f.reconciler.State(itemID)
	require.Equal(t, generation.PhaseReady, state.Phase)
	assert.Contains(t, state.Pending, "Laptop Pro")
	assert.Contains(t, f.model.View(), "Generated description")

	stored, _ := f.mock.Product(itemID)
	assert.Empty(t, stored.Description, "a generated description is only staged")

	_, cmd = f.model.Update(keys("a"))
	require.NotNil(t, cmd)
	drain(t, f.model, cmd)

	stored, _ = f.mock.Product(itemID)
	assert.Equal(t, state.Pending, stored.Description)
	assert.Equal(t, generation.PhaseIdle, f.reconciler.State(itemID).Phase)
	assert.Equal(t, state.Pending, f.model.Products()[0].Description)
	assert.NotEmpty(t, f.model.Products()[0].UpdatedAt)

	_, ok := f.service.Registry().Get(itemID)
	assert.False(t, ok, "an applied result leaves no session behind")
}

func TestGeneratingBadge_FollowsRegistry(t *testing.T) {
	f := newFixture(t, laptop())
	f.load(t)
	itemID := f.model.Products()[0].ItemID

	f.model.Update(keys("g"))
	_, cmd := f.model.Update(keys("1"))
	require.NotNil(t, cmd)
	assert.Contains(t, f.model.View(), " generating")
	action, err := f.model.actions.Selected()
	require.NoError(t, err)
	assert.Equal(t, CommandCancel, action.Command)

	f.service.Registry().Cancel(itemID)
	f.model.refreshActions()

	assert.NotContains(t, f.model.View(), " generating")
	action, err = f.model.actions.Selected()
	require.NoError(t, err)
	assert.Equal(t, CommandGenerate, action.Command)
}

func TestEdit_ReplacesStagedText(t *testing.T) {
	f := newFixture(t, laptop())
	f.load(t)
	itemID := f.model.Products()[0].ItemID

	_, cmd := f.model.Update(keys("g"))
	assert.Nil(t, cmd)
	_, cmd = f.model.Update(keys("1"))
	drain(t, f.model, cmd)

	f.model.Update(keys("e"))
	require.Equal(t, modeEdit, f.model.mode)
	f.model.editor.SetValue("Hand written copy")
	f.model.Update(tea.KeyMsg{Type: tea.KeyCtrlS})

	assert.Equal(t, modeBrowse, f.model.mode)
	assert.Equal(t, "Hand written copy", f.reconciler.State(itemID).Pending)
}

func TestSentinel_DisablesApply(t *testing.T) {
	p := laptop()
	p.ProductName = "Sentinel Tablet"
	f := newFixture(t, p)
	f.load(t)
	itemID := f.model.Products()[0].ItemID

	f.model.Update(keys("g"))
	_, cmd := f.model.Update(keys("2"))
	drain(t, f.model, cmd)

	state := f.reconciler.State(itemID)
	assert.Equal(t, generation.PhaseError, state.Phase)
	assert.True(t, state.ApplyDisabled)

	_, cmd = f.model.Update(keys("a"))
	assert.Nil(t, cmd)
	stored, _ := f.mock.Product(itemID)
	assert.Empty(t, stored.Description)
}

func TestRegenerate_ReusesAudienceAndDiscardCancels(t *testing.T) {
	f := newFixture(t, laptop())
	f.load(t)
	itemID := f.model.Products()[0].ItemID

	f.model.Update(keys("g"))
	_, first := f.model.Update(keys("4"))
	require.NotNil(t, first)
	firstID := f.reconciler.State(itemID).RequestID

	// Cancel while the submission is still in flight
	f.model.Update(keys("x"))
	assert.Equal(t, generation.PhaseIdle, f.reconciler.State(itemID).Phase)
	_, ok := f.service.Registry().Get(itemID)
	assert.False(t, ok)

	drain(t, f.model, first)
	assert.Equal(t, generation.PhaseIdle, f.reconciler.State(itemID).Phase, "a cancelled request must not stage text")

	f.model.audiences[itemID] = "families"
	f.reconciler.Begin(itemID, firstID)
	f.reconciler.Resolve(generation.Session{EntityID: itemID, RequestID: firstID, Status: generation.StatusTimedOut, Outcome: generation.Outcome{Message: generation.TimeoutMessage}})
	f.model.refreshActions()

	_, cmd := f.model.Update(keys("r"))
	require.NotNil(t, cmd, "regenerate reuses the last audience")
	assert.NotEqual(t, firstID, f.reconciler.State(itemID).RequestID)
	drain(t, f.model, cmd)
	assert.Equal(t, generation.PhaseReady, f.reconciler.State(itemID).Phase)
}

func TestFetchFailure_ShowsRecovery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := newFixtureAt(t, srv.URL, nil)
	f.load(t)

	require.True(t, f.model.recovery.IsActive())
	assert.Contains(t, f.model.View(), FetchFailedMessage)

	_, cmd := f.model.Update(keys("r"))
	require.NotNil(t, cmd, "retry refetches the list")
	assert.False(t, f.model.recovery.IsActive())

	drain(t, f.model, cmd)
	require.True(t, f.model.recovery.IsActive())

	f.model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, f.model.recovery.IsActive())
}

func TestNavigationMessages(t *testing.T) {
	f := newFixture(t)
	f.load(t)

	_, cmd := f.model.Update(keys("n"))
	require.NotNil(t, cmd)
	assert.IsType(t, OpenCreatorMsg{}, cmd())

	_, cmd = f.model.Update(keys("u"))
	require.NotNil(t, cmd)
	assert.IsType(t, UploadNewFilesMsg{}, cmd())
}

func TestSpaceTogglesSpecs(t *testing.T) {
	f := newFixture(t, laptop())
	f.load(t)
	itemID := f.model.Products()[0].ItemID

	f.model.Update(tea.KeyMsg{Type: tea.KeySpace})
	assert.True(t, f.model.expansion.Expanded(itemID))
	assert.Contains(t, f.model.View(), "Specification")

	f.model.Update(tea.KeyMsg{Type: tea.KeySpace})
	assert.False(t, f.model.expansion.Expanded(itemID))
}
