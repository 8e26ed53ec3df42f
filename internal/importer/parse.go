// Package importer reads product files and saves their rows to the catalog.
package importer

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/catalog-console/console/internal/catalog"
	"github.com/catalog-console/console/internal/interfaces"
)

// ErrUnsupportedFormat is returned for files that are neither CSV nor JSON
var ErrUnsupportedFormat = errors.New("unsupported file type: only .csv and .json are accepted")

// Supported reports whether path has an accepted extension
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".json":
		return true
	}
	return false
}

// ParseFile reads every product in a CSV or JSON file
func ParseFile(path string) ([]interfaces.SaveProductRequest, error) {
	if !Supported(path) {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupportedFormat)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var products []interfaces.SaveProductRequest
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		products, err = ParseCSV(f)
	} else {
		products, err = ParseJSON(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return products, nil
}

// ParseCSV reads a header row followed by one product per row. Recognised
// columns are product_name, price, key_features, technical_specs,
// description and target_audience; technical_specs holds
// "name: value; name: value".
func ParseCSV(r io.Reader) ([]interfaces.SaveProductRequest, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty CSV file")
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	if _, ok := columns["product_name"]; !ok {
		return nil, fmt.Errorf("CSV header is missing the product_name column")
	}

	field := func(record []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var products []interfaces.SaveProductRequest
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}

		name := field(record, "product_name")
		if name == "" {
			continue
		}
		price, err := ParsePrice(field(record, "price"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		products = append(products, interfaces.SaveProductRequest{
			ProductName:    name,
			Price:          price,
			KeyFeatures:    field(record, "key_features"),
			TechnicalSpecs: ParseSpecs(field(record, "technical_specs")),
			Description:    field(record, "description"),
			TargetAudience: field(record, "target_audience"),
		})
	}
	return products, nil
}

type jsonProduct struct {
	ProductName    string                     `json:"product_name"`
	Price          json.RawMessage            `json:"price"`
	KeyFeatures    string                     `json:"key_features"`
	TechnicalSpecs []interfaces.TechnicalSpec `json:"technical_specs"`
	Description    string                     `json:"description"`
	TargetAudience string                     `json:"target_audience"`
	CreatedAt      string                     `json:"created_at"`
}

// ParseJSON reads an array of product objects. Prices may be numbers or
// strings.
func ParseJSON(r io.Reader) ([]interfaces.SaveProductRequest, error) {
	var raw []jsonProduct
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid JSON product list: %w", err)
	}

	products := make([]interfaces.SaveProductRequest, 0, len(raw))
	for i, p := range raw {
		if strings.TrimSpace(p.ProductName) == "" {
			continue
		}
		price, err := parseJSONPrice(p.Price)
		if err != nil {
			return nil, fmt.Errorf("product %d: %w", i, err)
		}
		products = append(products, interfaces.SaveProductRequest{
			ProductName:    strings.TrimSpace(p.ProductName),
			Price:          price,
			KeyFeatures:    p.KeyFeatures,
			TechnicalSpecs: p.TechnicalSpecs,
			Description:    p.Description,
			TargetAudience: p.TargetAudience,
			CreatedAt:      p.CreatedAt,
		})
	}
	return products, nil
}

func parseJSONPrice(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("invalid price %s", string(raw))
	}
	return ParsePrice(s)
}

// ParsePrice accepts plain or currency-formatted prices like "$1,299.00".
// An empty string is a zero price.
func ParsePrice(s string) (float64, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return 0, nil
	}
	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q", s)
	}
	return price, nil
}

// ParseSpecs splits "name: value; name: value" into ordered pairs, dropping
// entries without both parts
func ParseSpecs(s string) []interfaces.TechnicalSpec {
	var specs []interfaces.TechnicalSpec
	for _, part := range strings.Split(s, ";") {
		name, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		name, value = strings.TrimSpace(name), strings.TrimSpace(value)
		if name == "" || value == "" {
			continue
		}
		specs = append(specs, interfaces.TechnicalSpec{Name: name, Value: value})
	}
	return specs
}

// fillDefaults derives key features from specs when absent
func fillDefaults(p *interfaces.SaveProductRequest, createdAt string) {
	if p.KeyFeatures == "" {
		p.KeyFeatures = catalog.KeyFeatures(p.TechnicalSpecs)
	}
	if p.TechnicalSpecs == nil {
		p.TechnicalSpecs = []interfaces.TechnicalSpec{}
	}
	if p.CreatedAt == "" {
		p.CreatedAt = createdAt
	}
}
