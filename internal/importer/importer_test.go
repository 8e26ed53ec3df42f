package importer

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/catalog-console/console/internal/interfaces"
	"github.com/catalog-console/console/internal/logging"
	"github.com/catalog-console/console/internal/mockapi"
	"github.com/catalog-console/console/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `product_name,price,key_features,technical_specs,description
"Laptop Pro","$1,299.00","Fast, light","RAM: 16GB; Storage: 512GB SSD",Great laptop
Mouse,25,,DPI: 1600; Buttons: 6;broken,
,10,,,
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseCSV(t *testing.T) {
	products, err := ParseCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "Laptop Pro", products[0].ProductName)
	assert.Equal(t, 1299.0, products[0].Price)
	assert.Equal(t, "Fast, light", products[0].KeyFeatures)
	assert.Equal(t, []interfaces.TechnicalSpec{
		{Name: "RAM", Value: "16GB"},
		{Name: "Storage", Value: "512GB SSD"},
	}, products[0].TechnicalSpecs)
	assert.Equal(t, "Great laptop", products[0].Description)

	assert.Equal(t, []interfaces.TechnicalSpec{
		{Name: "DPI", Value: "1600"},
		{Name: "Buttons", Value: "6"},
	}, products[1].TechnicalSpecs)
}

func TestParseCSV_Errors(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""))
	assert.Error(t, err)

	_, err = ParseCSV(strings.NewReader("name,price\nMouse,1\n"))
	assert.ErrorContains(t, err, "product_name")

	_, err = ParseCSV(strings.NewReader("product_name,price\nMouse,cheap\n"))
	assert.ErrorContains(t, err, "line 2")
}

func TestParseJSON(t *testing.T) {
	products, err := ParseJSON(strings.NewReader(`[
		{"product_name": "Tablet", "price": 499.99, "technical_specs": [{"name": "Screen", "value": "11in"}]},
		{"product_name": "Pen", "price": "$19.50"},
		{"product_name": "", "price": 1}
	]`))
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, 499.99, products[0].Price)
	assert.Equal(t, "Screen", products[0].TechnicalSpecs[0].Name)
	assert.Equal(t, 19.5, products[1].Price)

	_, err = ParseJSON(strings.NewReader(`{"product_name": "not a list"}`))
	assert.Error(t, err)
}

func TestParseFile_RejectsUnsupported(t *testing.T) {
	path := writeFile(t, "catalog.xlsx", "whatever")
	_, err := ParseFile(path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.True(t, Supported("a.CSV"))
	assert.False(t, Supported("a.txt"))
}

type countingSaver struct {
	inFlight int32
	peak     int32
	mu       sync.Mutex
	saved    []interfaces.SaveProductRequest
	failOn   string
}

func (s *countingSaver) SaveProduct(ctx context.Context, req interfaces.SaveProductRequest) (*interfaces.SaveProductResponse, error) {
	n := atomic.AddInt32(&s.inFlight, 1)
	defer atomic.AddInt32(&s.inFlight, -1)
	for {
		peak := atomic.LoadInt32(&s.peak)
		if n <= peak || atomic.CompareAndSwapInt32(&s.peak, peak, n) {
			break
		}
	}
	time.Sleep(2 * time.Millisecond)

	if req.ProductName == s.failOn {
		return nil, errors.New("save rejected")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, req)
	return &interfaces.SaveProductResponse{ItemID: strconv.Itoa(len(s.saved))}, nil
}

func TestImport_BoundedConcurrency(t *testing.T) {
	var rows strings.Builder
	rows.WriteString("product_name,price,technical_specs\n")
	for i := 0; i < 20; i++ {
		rows.WriteString("Item " + strconv.Itoa(i) + ",1,Color: red\n")
	}
	path := writeFile(t, "bulk.csv", rows.String())

	saver := &countingSaver{}
	im := New(saver, Options{
		Logger: logging.NewDiscardLogger(),
		Now:    func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) },
	})

	var steps []Progress
	result, err := im.Import(context.Background(), []string{path}, func(p Progress) { steps = append(steps, p) })
	require.NoError(t, err)

	assert.Len(t, result.ItemIDs, 20)
	assert.LessOrEqual(t, atomic.LoadInt32(&saver.peak), int32(DefaultConcurrency))
	require.Len(t, saver.saved, 20)
	assert.Equal(t, "Color: red", saver.saved[0].KeyFeatures)
	assert.Equal(t, "2024-01-02T03:04:05Z", saver.saved[0].CreatedAt)

	assert.Equal(t, StepParsing, steps[0].Step)
	assert.Equal(t, StepDone, steps[len(steps)-1].Step)
}

func TestImport_StopsOnSaveFailure(t *testing.T) {
	path := writeFile(t, "p.json", `[{"product_name": "Good", "price": 1}, {"product_name": "Bad", "price": 2}]`)
	im := New(&countingSaver{failOn: "Bad"}, Options{Logger: logging.NewDiscardLogger()})

	_, err := im.Import(context.Background(), []string{path}, nil)
	assert.ErrorContains(t, err, `"Bad"`)
}

func TestImport_ParseFailureSavesNothing(t *testing.T) {
	good := writeFile(t, "good.csv", "product_name,price\nMouse,1\n")
	bad := writeFile(t, "bad.txt", "nope")
	saver := &countingSaver{}
	im := New(saver, Options{Logger: logging.NewDiscardLogger()})

	_, err := im.Import(context.Background(), []string{good, bad}, nil)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Empty(t, saver.saved)

	_, err = im.Import(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestImport_AgainstMockAPI(t *testing.T) {
	srv := httptest.NewServer(mockapi.New(mockapi.Options{}).Handler())
	defer srv.Close()
	client, err := protocol.NewClient(protocol.Options{BaseURL: srv.URL, Logger: logging.NewDiscardLogger()})
	require.NoError(t, err)

	path := writeFile(t, "catalog.csv", sampleCSV)
	result, err := New(client, Options{Logger: logging.NewDiscardLogger()}).Import(context.Background(), []string{path}, nil)
	require.NoError(t, err)
	assert.Len(t, result.ItemIDs, 2)

	products, err := client.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)

	byName := map[string]interfaces.Product{}
	for _, p := range products {
		byName[p.ProductName] = p
	}
	assert.Equal(t, []interfaces.TechnicalSpec{
		{Name: "RAM", Value: "16GB"},
		{Name: "Storage", Value: "512GB SSD"},
	}, byName["Laptop Pro"].TechnicalSpecs)
}
