package content

import (
	"strings"
	"testing"

	"github.com/catalog-console/console/internal/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderJSON_Plain(t *testing.T) {
	r := NewRenderer("", true)

	out, err := r.RenderJSON(map[string]string{"title": "Laptop"})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"title\": \"Laptop\"\n}", out)
}

func TestRenderJSON_Highlighted(t *testing.T) {
	r := NewRenderer("monokai", false)

	out, err := r.RenderJSON(map[string]int{"price": 10})
	require.NoError(t, err)
	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "price")
}

func TestRenderSpecsTable(t *testing.T) {
	r := NewRenderer("", true)

	out := r.RenderSpecsTable([]interfaces.TechnicalSpec{
		{Name: "RAM", Value: "16GB"},
		{Name: "Storage", Value: strings.Repeat("x", 60)},
	})
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Specification")
	assert.True(t, strings.HasPrefix(lines[1], "├─"))
	assert.Contains(t, lines[2], "RAM")
	assert.Contains(t, lines[3], "...")

	assert.Empty(t, r.RenderSpecsTable(nil))
}
