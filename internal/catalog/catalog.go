// Package catalog holds the presentation rules of the product list:
// search, ordering, title cleanup, audiences and spec expansion.
package catalog

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/catalog-console/console/internal/interfaces"
)

// mis-decoded en dash left behind by spreadsheet exports
var mojibake = regexp.MustCompile(`‚Ä.`)

// CleanTitle repairs mis-decoded dashes in a product name
func CleanTitle(title string) string {
	return mojibake.ReplaceAllString(title, "-")
}

// Matches reports whether query occurs in the product name or key features,
// ignoring case. An empty query matches everything.
func Matches(product interfaces.Product, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(product.ProductName), q) ||
		strings.Contains(strings.ToLower(product.KeyFeatures), q)
}

// Filter returns the products matching query, keeping their order
func Filter(products []interfaces.Product, query string) []interfaces.Product {
	out := make([]interfaces.Product, 0, len(products))
	for _, p := range products {
		if Matches(p, query) {
			out = append(out, p)
		}
	}
	return out
}

// Sort returns a copy ordered newest first: by updated_at, then created_at,
// then numeric item_id. Missing or unparsable values sort last.
func Sort(products []interfaces.Product) []interfaces.Product {
	out := append([]interfaces.Product(nil), products...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if ua, ub := timestamp(a.UpdatedAt), timestamp(b.UpdatedAt); ua != ub {
			return ua > ub
		}
		if ca, cb := timestamp(a.CreatedAt), timestamp(b.CreatedAt); ca != cb {
			return ca > cb
		}
		return numericID(a.ItemID) > numericID(b.ItemID)
	})
	return out
}

// View filters then sorts
func View(products []interfaces.Product, query string) []interfaces.Product {
	return Sort(Filter(products, query))
}

func timestamp(value string) int64 {
	if value == "" {
		return 0
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UnixMilli()
		}
	}
	return 0
}

func numericID(id string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// KeyFeatures renders specs as "name: value, name: value"
func KeyFeatures(specs []interfaces.TechnicalSpec) string {
	parts := make([]string, 0, len(specs))
	for _, s := range specs {
		parts = append(parts, s.Name+": "+s.Value)
	}
	return strings.Join(parts, ", ")
}

// Expansion tracks which products show their full spec list
type Expansion struct {
	open map[string]bool
}

// Toggle flips itemID and returns the new state
func (e *Expansion) Toggle(itemID string) bool {
	if e.open == nil {
		e.open = make(map[string]bool)
	}
	if e.open[itemID] {
		delete(e.open, itemID)
		return false
	}
	e.open[itemID] = true
	return true
}

// Expanded reports whether itemID is open
func (e *Expansion) Expanded(itemID string) bool {
	return e.open[itemID]
}
