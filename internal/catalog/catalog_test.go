package catalog

import (
	"testing"

	"github.com/catalog-console/console/internal/interfaces"
	"github.com/stretchr/testify/assert"
)

func ids(products []interfaces.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ItemID
	}
	return out
}

func TestCleanTitle(t *testing.T) {
	assert.Equal(t, "USB-C - 2m cable", CleanTitle("USB-C ‚Äì 2m cable"))
	assert.Equal(t, "Plain title", CleanTitle("Plain title"))
}

func TestFilter_NameOrFeatures(t *testing.T) {
	products := []interfaces.Product{
		{ItemID: "1", ProductName: "Gaming Mouse", KeyFeatures: "RGB"},
		{ItemID: "2", ProductName: "Keyboard", KeyFeatures: "Mechanical, rgb backlight"},
		{ItemID: "3", ProductName: "Monitor", KeyFeatures: "4K"},
	}

	assert.Equal(t, []string{"1", "2"}, ids(Filter(products, "RgB")))
	assert.Equal(t, []string{"3"}, ids(Filter(products, " monitor ")))
	assert.Len(t, Filter(products, ""), 3)
	assert.Empty(t, Filter(products, "webcam"))
}

func TestSort_ThreeKeys(t *testing.T) {
	products := []interfaces.Product{
		{ItemID: "5"},
		{ItemID: "12"},
		{ItemID: "x"},
		{ItemID: "1", CreatedAt: "2024-01-01T00:00:00Z"},
		{ItemID: "2", CreatedAt: "2024-02-01T00:00:00Z"},
		{ItemID: "3", CreatedAt: "2023-01-01T00:00:00Z", UpdatedAt: "2024-03-01T00:00:00Z"},
	}

	assert.Equal(t, []string{"3", "2", "1", "12", "5", "x"}, ids(Sort(products)))
	assert.Equal(t, "5", products[0].ItemID, "input must not be reordered")
}

func TestView(t *testing.T) {
	products := []interfaces.Product{
		{ItemID: "1", ProductName: "Laptop Stand"},
		{ItemID: "2", ProductName: "Laptop"},
		{ItemID: "3", ProductName: "Phone"},
	}
	assert.Equal(t, []string{"2", "1"}, ids(View(products, "laptop")))
}

func TestKeyFeatures(t *testing.T) {
	got := KeyFeatures([]interfaces.TechnicalSpec{{Name: "RAM", Value: "16GB"}, {Name: "CPU", Value: "M3"}})
	assert.Equal(t, "RAM: 16GB, CPU: M3", got)
	assert.Empty(t, KeyFeatures(nil))
}

func TestExpansion(t *testing.T) {
	var e Expansion
	assert.False(t, e.Expanded("1"))
	assert.True(t, e.Toggle("1"))
	assert.True(t, e.Expanded("1"))
	assert.False(t, e.Expanded("2"))
	assert.False(t, e.Toggle("1"))
	assert.False(t, e.Expanded("1"))
}

func TestAudienceByID(t *testing.T) {
	a, ok := AudienceByID("gamers")
	assert.True(t, ok)
	assert.Equal(t, "Gamers", a.Name)

	_, ok = AudienceByID("pets")
	assert.False(t, ok)
	assert.Len(t, Audiences, 6)
}
