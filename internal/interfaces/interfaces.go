// Package interfaces defines the shared domain types and the interfaces used for
// dependency injection and testability throughout the catalog console.
package interfaces

import (
	"context"
	"time"
)

// Profile represents a configuration profile describing one catalog API deployment
type Profile struct {
	Name           string `yaml:"name"`
	BaseURL        string `yaml:"baseUrl"`
	TimeoutMs      int    `yaml:"timeoutMs"`
	MaxAttempts    int    `yaml:"maxAttempts"`
	PollIntervalMs int    `yaml:"pollIntervalMs"`
	Origin         string `yaml:"origin,omitempty"`
	APIKey         string `yaml:"apiKey,omitempty"`
	Theme          string `yaml:"theme,omitempty"`
}

// Timeout returns the per-request HTTP timeout of the profile
func (p *Profile) Timeout() time.Duration {
	return time.Duration(p.TimeoutMs) * time.Millisecond
}

// PollInterval returns the fixed delay between two status queries
func (p *Profile) PollInterval() time.Duration {
	return time.Duration(p.PollIntervalMs) * time.Millisecond
}

// ConfigManager handles profile persistence
type ConfigManager interface {
	// LoadProfile retrieves a profile by name from the configuration file
	LoadProfile(name string) (*Profile, error)

	// SaveProfile persists a profile to the configuration file
	SaveProfile(profile *Profile) error

	// ListProfiles returns all available profile names
	ListProfiles() ([]string, error)

	// ValidateProfile ensures profile has all required fields
	ValidateProfile(profile *Profile) error

	// GetConfigPath returns the path to the configuration file
	GetConfigPath() string
}

// TechnicalSpec is one name/value row of a product's technical specifications
type TechnicalSpec struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Product is the catalog entity as exposed by the PRODUCTS endpoint
type Product struct {
	ItemID         string          `json:"item_id"`
	ProductName    string          `json:"product_name"`
	Price          float64         `json:"price"`
	KeyFeatures    string          `json:"key_features"`
	TechnicalSpecs []TechnicalSpec `json:"technical_specs"`
	Description    string          `json:"description"`
	TargetAudience string          `json:"target_audience,omitempty"`
	CreatedAt      string          `json:"created_at,omitempty"`
	UpdatedAt      string          `json:"updated_at,omitempty"`
}

// SaveProductRequest is the body of SAVE_PRODUCT
type SaveProductRequest struct {
	ProductName    string          `json:"product_name"`
	Price          float64         `json:"price"`
	KeyFeatures    string          `json:"key_features"`
	TechnicalSpecs []TechnicalSpec `json:"technical_specs"`
	Description    string          `json:"description"`
	TargetAudience string          `json:"target_audience"`
	CreatedAt      string          `json:"created_at"`
}

// SaveProductResponse carries the identifier assigned by the catalog
type SaveProductResponse struct {
	ItemID string `json:"item_id"`
}

// UpdateProductRequest is the body of UPDATE_PRODUCT
type UpdateProductRequest struct {
	ItemID      string `json:"item_id"`
	Description string `json:"description"`
}

// Generation status values reported by the POLLING endpoint
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

// StatusResponse is the body returned by the POLLING endpoint
type StatusResponse struct {
	Status               string `json:"status"`
	GeneratedDescription string `json:"generatedDescription,omitempty"`
	Error                string `json:"error,omitempty"`
}

// CatalogClient handles HTTP communication with the catalog API
type CatalogClient interface {
	// Products fetches the full product list
	Products(ctx context.Context) ([]Product, error)

	// SaveProduct creates a product and returns its identifier
	SaveProduct(ctx context.Context, request SaveProductRequest) (*SaveProductResponse, error)

	// UpdateProduct replaces the description of an existing product
	UpdateProduct(ctx context.Context, request UpdateProductRequest) (*Product, error)

	// Generate queues a description generation; body is any JSON-serialisable payload
	Generate(ctx context.Context, body interface{}) error

	// Status queries the state of a queued generation
	Status(ctx context.Context, requestID string) (*StatusResponse, error)
}

// FlagStore holds the persisted "catalog initialized" flag
type FlagStore interface {
	// Initialized reports whether the upload flow has completed at least once
	Initialized() bool

	// SetInitialized persists the flag and notifies subscribers
	SetInitialized(value bool) error

	// Subscribe returns a channel receiving every flag change and a cancel func
	Subscribe() (<-chan bool, func())
}

// Action represents an executable action from the Actions Pane
type Action struct {
	Name    string `json:"name"`
	Command string `json:"command"`
	Type    string `json:"type"` // "primary", "confirmation", "cancel", "info", "alternative"
	Icon    string `json:"icon,omitempty"`
	Key     string `json:"key,omitempty"`
}
