package generation

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/catalog-console/console/internal/interfaces"
)

// Specs is an insertion-ordered name to value mapping. Setting an existing
// name replaces its value in place.
type Specs struct {
	names  []string
	values map[string]string
}

// Set adds or replaces a specification
func (s *Specs) Set(name, value string) {
	if s.values == nil {
		s.values = make(map[string]string)
	}
	if _, exists := s.values[name]; !exists {
		s.names = append(s.names, name)
	}
	s.values[name] = value
}

// Get returns the value stored for name
func (s Specs) Get(name string) (string, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Len returns the number of distinct names
func (s Specs) Len() int { return len(s.names) }

// Names returns the names in insertion order
func (s Specs) Names() []string {
	return append([]string(nil), s.names...)
}

// Pairs returns the specifications as an ordered sequence
func (s Specs) Pairs() []interfaces.TechnicalSpec {
	out := make([]interfaces.TechnicalSpec, 0, len(s.names))
	for _, name := range s.names {
		out = append(out, interfaces.TechnicalSpec{Name: name, Value: s.values[name]})
	}
	return out
}

// MarshalJSON encodes the specs as a JSON object with keys in insertion order
func (s Specs) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range s.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(s.values[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Form holds the raw fields a generation is built from
type Form struct {
	Title          string
	Price          string
	Specs          []interfaces.TechnicalSpec
	TargetAudience string
	KeyFeatures    string
}

// FormFromProduct prefills a form from a saved product
func FormFromProduct(product interfaces.Product, audience string) Form {
	return Form{
		Title:          product.ProductName,
		Price:          FormatPrice(product.Price),
		Specs:          product.TechnicalSpecs,
		TargetAudience: audience,
		KeyFeatures:    product.KeyFeatures,
	}
}

// FormatPrice renders a numeric price the way it is sent in a payload
func FormatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', -1, 64)
}

// Payload is the body of a generation request
type Payload struct {
	RequestID               string `json:"requestId"`
	Title                   string `json:"title"`
	Price                   string `json:"price"`
	TechnicalSpecifications Specs  `json:"technicalSpecifications"`
	TargetAudience          string `json:"targetAudience"`
	KeyFeatures             string `json:"keyFeatures,omitempty"`
}

// Request is one submission attempt for one entity
type Request struct {
	RequestID string
	EntityID  string
	Payload   Payload
}

// ValidSpecs keeps the entries whose name and value are both non-blank
func ValidSpecs(entries []interfaces.TechnicalSpec) Specs {
	var specs Specs
	for _, entry := range entries {
		name := strings.TrimSpace(entry.Name)
		value := strings.TrimSpace(entry.Value)
		if name == "" || value == "" {
			continue
		}
		specs.Set(name, value)
	}
	return specs
}

// CanGenerate reports whether a form has every field a generation requires
func CanGenerate(form Form) bool {
	return len(missingFields(form)) == 0
}

func missingFields(form Form) []string {
	var missing []string
	if strings.TrimSpace(form.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(form.Price) == "" {
		missing = append(missing, "price")
	}
	if ValidSpecs(form.Specs).Len() == 0 {
		missing = append(missing, "technical specifications")
	}
	return missing
}

// Build assembles a generation request. newID is called exactly once, and
// only when the form is valid.
func Build(entityID string, form Form, newID func() string) (*Request, error) {
	if missing := missingFields(form); len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}
	if newID == nil {
		newID = NewRequestID
	}

	requestID := newID()
	return &Request{
		RequestID: requestID,
		EntityID:  entityID,
		Payload: Payload{
			RequestID:               requestID,
			Title:                   strings.TrimSpace(form.Title),
			Price:                   strings.TrimSpace(form.Price),
			TechnicalSpecifications: ValidSpecs(form.Specs),
			TargetAudience:          form.TargetAudience,
			KeyFeatures:             strings.TrimSpace(form.KeyFeatures),
		},
	}, nil
}
