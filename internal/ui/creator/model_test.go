package creator

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/catalog-console/console/internal/content"
	"github.com/catalog-console/console/internal/generation"
	"github.com/catalog-console/console/internal/logging"
	"github.com/catalog-console/console/internal/mockapi"
	"github.com/catalog-console/console/internal/protocol"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T) (*Model, *mockapi.Server, *generation.Reconciler) {
	t.Helper()

	mock := mockapi.New(mockapi.Options{PollsUntilDone: 2, Logger: logging.NewDiscardLogger()})
	srv := httptest.NewServer(mock.Handler())
	t.Cleanup(srv.Close)

	logger := logging.NewDiscardLogger()
	client, err := protocol.NewClient(protocol.Options{BaseURL: srv.URL, Logger: logger})
	require.NoError(t, err)

	service := generation.NewService(client, nil, generation.Options{PollInterval: time.Millisecond, Logger: logger})
	reconciler := generation.NewReconciler(client, logger)
	m := NewModel(context.Background(), client, service, reconciler, content.NewRenderer("", true), logger)
	m.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return m, mock, reconciler
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil; i++ {
		require.Less(t, i, 200, "command chain did not settle")
		_, cmd = m.Update(cmd())
	}
}

func fill(m *Model) {
	m.name.SetValue("Trail Headphones")
	m.price.SetValue("$1,199.50")
	m.specs[0].name.SetValue("Battery")
	m.specs[0].value.SetValue("30 hours")
}

func TestAudienceStepAdvances(t *testing.T) {
	m, _, _ := newTestModel(t)
	require.Equal(t, StepAudience, m.Step())

	m.Update(keys("5"))
	assert.Equal(t, StepDetails, m.Step())
	assert.Equal(t, "tech-enthusiasts", m.audience)

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, StepAudience, m.Step())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, CloseCreatorMsg{Saved: false}, cmd())
}

func TestSpecRows_KeepAtLeastOne(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.Update(keys("1"))

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlA})
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlA})
	require.Len(t, m.specs, 3)
	assert.Equal(t, 2, m.focusedSpec())

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	require.Len(t, m.specs, 1)

	m.specs[0].name.SetValue("Weight")
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	require.Len(t, m.specs, 1)
	assert.Empty(t, m.specs[0].name.Value())
}

func TestGenerate_RequiresFields(t *testing.T) {
	m, _, reconciler := newTestModel(t)
	m.Update(keys("2"))
	m.name.SetValue("Trail Headphones")

	assert.False(t, m.CanGenerate())
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlG})
	assert.Nil(t, cmd)
	assert.Equal(t, StepDetails, m.Step())
	assert.Contains(t, m.statusMessage, "price")
	assert.Equal(t, generation.PhaseIdle, reconciler.State(DraftID).Phase)
}

func TestGenerateEditAndSave(t *testing.T) {
	m, mock, reconciler := newTestModel(t)
	m.Update(keys("3"))
	fill(m)
	require.True(t, m.CanGenerate())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlG})
	require.NotNil(t, cmd)
	assert.Equal(t, StepReview, m.Step())
	require.NotNil(t, m.payload)
	assert.Equal(t, "gamers", m.payload.TargetAudience)
	assert.Equal(t, "Battery: 30 hours", m.payload.KeyFeatures)

	drain(t, m, cmd)
	state := reconciler.State(DraftID)
	require.Equal(t, generation.PhaseReady, state.Phase)
	assert.Equal(t, state.Pending, m.editor.Value())

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlP})
	assert.Contains(t, m.View(), "requestId")

	m.editor.SetValue("Edited copy for gamers")
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	drain(t, m, cmd)

	require.Equal(t, StepSaved, m.Step())
	require.NotEmpty(t, m.savedID)
	assert.Contains(t, m.View(), m.savedID)

	stored, ok := mock.Product(m.savedID)
	require.True(t, ok)
	assert.Equal(t, "Trail Headphones", stored.ProductName)
	assert.Equal(t, 1199.5, stored.Price)
	assert.Equal(t, "Edited copy for gamers", stored.Description)
	assert.Equal(t, "Battery: 30 hours", stored.KeyFeatures)
	assert.Equal(t, "gamers", stored.TargetAudience)
	assert.Equal(t, "2024-05-01T12:00:00Z", stored.CreatedAt)
	assert.Equal(t, generation.PhaseIdle, reconciler.State(DraftID).Phase)

	m.Update(keys("n"))
	assert.Equal(t, StepAudience, m.Step())
	assert.Empty(t, m.name.Value())
}

func TestSaveBlockedOnFailure(t *testing.T) {
	m, _, reconciler := newTestModel(t)
	m.Update(keys("1"))
	fill(m)
	m.name.SetValue("Fail Speaker")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlG})
	drain(t, m, cmd)

	state := reconciler.State(DraftID)
	require.Equal(t, generation.PhaseError, state.Phase)

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Nil(t, cmd)
	assert.Equal(t, StepReview, m.Step())
	assert.Contains(t, m.View(), "model invocation failed")
}

func TestBackFromReviewCancelsGeneration(t *testing.T) {
	m, _, reconciler := newTestModel(t)
	m.Update(keys("1"))
	fill(m)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlG})
	require.NotNil(t, cmd)

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, StepDetails, m.Step())

	drain(t, m, cmd)
	assert.Equal(t, generation.PhaseIdle, reconciler.State(DraftID).Phase)
}

func TestReviewSpinnerFollowsRegistry(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.Update(keys("1"))
	fill(m)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlG})
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "Generating description...")

	m.service.Registry().Cancel(DraftID)
	assert.NotContains(t, m.View(), "Generating description...")
}
