package generation

import (
	"encoding/json"
	"errors"
	"regexp"
	"testing"

	"github.com/catalog-console/console/internal/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequestID_Unique(t *testing.T) {
	pattern := regexp.MustCompile(`^req_\d+_[0-9a-f]{12}$`)
	seen := make(map[string]struct{}, 10000)

	for i := 0; i < 10000; i++ {
		id := NewRequestID()
		require.Regexp(t, pattern, id)
		_, dup := seen[id]
		require.False(t, dup, "duplicate request id %s after %d calls", id, i)
		seen[id] = struct{}{}
	}
}

func TestValidSpecs_FiltersBlankAndKeepsOrder(t *testing.T) {
	specs := ValidSpecs([]interfaces.TechnicalSpec{
		{Name: "RAM", Value: "16GB"},
		{Name: "  ", Value: "ignored"},
		{Name: "Storage", Value: "   "},
		{Name: " Display ", Value: " 14 inch "},
		{Name: "CPU", Value: "M3"},
		{Name: "RAM", Value: "32GB"},
	})

	assert.Equal(t, []string{"RAM", "Display", "CPU"}, specs.Names())
	assert.Equal(t, []interfaces.TechnicalSpec{
		{Name: "RAM", Value: "32GB"},
		{Name: "Display", Value: "14 inch"},
		{Name: "CPU", Value: "M3"},
	}, specs.Pairs())

	data, err := json.Marshal(specs)
	require.NoError(t, err)
	assert.Equal(t, `{"RAM":"32GB","Display":"14 inch","CPU":"M3"}`, string(data))
}

func TestBuild_Payload(t *testing.T) {
	form := FormFromProduct(interfaces.Product{
		ItemID:      "42",
		ProductName: "Laptop",
		Price:       999.5,
		KeyFeatures: "Light",
		TechnicalSpecs: []interfaces.TechnicalSpec{
			{Name: "Weight", Value: "1.2kg"},
			{Name: "Battery", Value: "18h"},
		},
	}, "students")

	req, err := Build("42", form, func() string { return "req_1_abc" })
	require.NoError(t, err)
	assert.Equal(t, "req_1_abc", req.RequestID)
	assert.Equal(t, "42", req.EntityID)

	data, err := json.Marshal(req.Payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"requestId": "req_1_abc",
		"title": "Laptop",
		"price": "999.5",
		"technicalSpecifications": {"Weight": "1.2kg", "Battery": "18h"},
		"targetAudience": "students",
		"keyFeatures": "Light"
	}`, string(data))
}

func TestBuild_OmitsEmptyKeyFeatures(t *testing.T) {
	req, err := Build("draft", Form{
		Title: "Mouse",
		Price: "20",
		Specs: []interfaces.TechnicalSpec{{Name: "DPI", Value: "1600"}},
	}, nil)
	require.NoError(t, err)

	data, err := json.Marshal(req.Payload)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "keyFeatures")
	assert.Contains(t, string(data), `"price":"20"`)
}

func TestBuild_Validation(t *testing.T) {
	tests := []struct {
		name    string
		form    Form
		missing []string
	}{
		{
			name:    "empty form",
			form:    Form{},
			missing: []string{"title", "price", "technical specifications"},
		},
		{
			name: "only blank specs",
			form: Form{
				Title: "Mouse",
				Price: "20",
				Specs: []interfaces.TechnicalSpec{{Name: "DPI", Value: " "}},
			},
			missing: []string{"technical specifications"},
		},
		{
			name: "blank title",
			form: Form{
				Title: "   ",
				Price: "20",
				Specs: []interfaces.TechnicalSpec{{Name: "DPI", Value: "1600"}},
			},
			missing: []string{"title"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			_, err := Build("x", tt.form, func() string { called = true; return "id" })

			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, tt.missing, validationErr.Fields)
			assert.False(t, called, "request id must not be allocated for an invalid form")
			assert.False(t, CanGenerate(tt.form))
			assert.Equal(t, KindValidation, Classify(err))
		})
	}
}
