package upload

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/catalog-console/console/internal/importer"
	"github.com/catalog-console/console/internal/logging"
	"github.com/catalog-console/console/internal/mockapi"
	"github.com/catalog-console/console/internal/protocol"
	"github.com/catalog-console/console/internal/state"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = "product_name,price,key_features,technical_specs,description\n" +
	"Desk Lamp,$39.99,,\"power: 9W; color: warm\",\n" +
	"Standing Desk,\"1,099.00\",motorized,\"height: 70-120cm\",Sturdy\n"

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func newTestModel(t *testing.T) (*Model, *mockapi.Server, *state.Store) {
	t.Helper()

	mock := mockapi.New(mockapi.Options{Logger: logging.NewDiscardLogger()})
	srv := httptest.NewServer(mock.Handler())
	t.Cleanup(srv.Close)

	logger := logging.NewDiscardLogger()
	client, err := protocol.NewClient(protocol.Options{BaseURL: srv.URL, Logger: logger})
	require.NoError(t, err)

	store := state.NewMemoryStore(false)
	imp := importer.New(client, importer.Options{Logger: logger})
	return NewModel(context.Background(), imp, store, logger), mock, store
}

// run executes cmd and every command it leads to, delivering messages in
// arrival order like the bubbletea runtime does
func run(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()

	msgs := make(chan tea.Msg, 64)
	outstanding := 0
	launch := func(c tea.Cmd) {
		if c == nil {
			return
		}
		outstanding++
		go func() { msgs <- c() }()
	}

	launch(cmd)
	for outstanding > 0 {
		select {
		case msg := <-msgs:
			outstanding--
			switch msg := msg.(type) {
			case nil:
			case tea.BatchMsg:
				for _, c := range msg {
					launch(c)
				}
			default:
				_, next := m.Update(msg)
				launch(next)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("import did not finish")
		}
	}
}

func enter() tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyEnter}
}

func TestValidatePath(t *testing.T) {
	csvPath := writeFile(t, "products.csv", sampleCSV)

	got, err := ValidatePath("  " + csvPath + " ")
	require.NoError(t, err)
	assert.Equal(t, csvPath, got)

	_, err = ValidatePath(writeFile(t, "notes.txt", "x"))
	assert.ErrorIs(t, err, importer.ErrUnsupportedFormat)

	_, err = ValidatePath(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = ValidatePath("")
	assert.Error(t, err)
}

func TestAddAndRemovePaths(t *testing.T) {
	m, _, _ := newTestModel(t)
	csvPath := writeFile(t, "a.csv", sampleCSV)

	m.input.SetValue(csvPath)
	m.Update(enter())
	require.Equal(t, []string{csvPath}, m.Paths())
	assert.Empty(t, m.input.Value())

	m.input.SetValue(csvPath)
	m.Update(enter())
	assert.Len(t, m.Paths(), 1)
	assert.Contains(t, m.statusMessage, "already selected")

	m.input.SetValue("products.xlsx")
	m.Update(enter())
	assert.Len(t, m.Paths(), 1)
	assert.Equal(t, importer.ErrUnsupportedFormat.Error(), m.statusMessage)

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, FocusList, m.focusState)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	assert.Empty(t, m.Paths())
	assert.Equal(t, FocusInput, m.focusState)
}

func TestImportMarksCatalogInitialized(t *testing.T) {
	m, mock, store := newTestModel(t)
	changes, cancel := store.Subscribe()
	defer cancel()

	m.input.SetValue(writeFile(t, "a.csv", sampleCSV))
	m.Update(enter())
	m.input.SetValue(writeFile(t, "b.json", `[{"product_name":"Webcam","price":"59.50","technical_specs":[{"name":"resolution","value":"4K"}]}]`))
	m.Update(enter())
	require.Len(t, m.Paths(), 2)

	_, cmd := m.Update(enter())
	require.NotNil(t, cmd)
	assert.True(t, m.Processing())

	run(t, m, cmd)

	assert.False(t, m.Processing())
	assert.Contains(t, m.statusMessage, "Imported 3 products from 2 files")
	assert.True(t, store.Initialized())
	assert.Empty(t, m.Paths())
	assert.NotEmpty(t, m.steps)

	select {
	case v := <-changes:
		assert.True(t, v)
	default:
		t.Fatal("expected a flag change notification")
	}

	for _, id := range []string{"1001", "1002", "1003"} {
		_, ok := mock.Product(id)
		assert.True(t, ok, "product %s saved", id)
	}
}

func TestImportFailureShowsRecovery(t *testing.T) {
	m, _, store := newTestModel(t)

	m.input.SetValue(writeFile(t, "bad.json", `{"not":"an array"}`))
	m.Update(enter())
	_, cmd := m.Update(enter())
	run(t, m, cmd)

	assert.False(t, store.Initialized())
	require.True(t, m.recovery.IsActive())
	assert.Contains(t, m.View(), "Import failed")
	assert.Len(t, m.Paths(), 1, "files stay queued for another attempt")
}

func TestKeysIgnoredWhileProcessing(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.processing = true

	_, cmd := m.Update(enter())
	assert.Nil(t, cmd)
}
