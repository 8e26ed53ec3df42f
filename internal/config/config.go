// Package config implements profile management for the catalog console.
// A profile names one catalog API deployment and carries the client options
// (base URL, request timeout, poll budget) that the protocol client and the
// generation poll loop are constructed from.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/catalog-console/console/internal/interfaces"
	"github.com/catalog-console/console/internal/logging"
	"gopkg.in/yaml.v3"
)

// Defaults applied to profiles that leave the numeric options unset
const (
	DefaultProfileName    = "default"
	DefaultBaseURL        = "https://YOUR_API_ID.execute-api.us-east-1.amazonaws.com/prod"
	DefaultTimeoutMs      = 30000
	DefaultMaxAttempts    = 30
	DefaultPollIntervalMs = 2000

	// BaseURLEnv overrides the base URL of whichever profile is loaded
	BaseURLEnv = "CATALOG_API_URL"
)

// Config represents the complete configuration file structure
type Config struct {
	Profiles map[string]interfaces.Profile `yaml:"profiles"`
}

// Manager implements the ConfigManager interface on top of a YAML file
type Manager struct {
	configPath   string
	securityMgr  SecurityManager
	cachedConfig *Config
	logger       *logging.Logger
	mu           sync.Mutex
}

var _ interfaces.ConfigManager = (*Manager)(nil)

// NewManager creates a configuration manager rooted at the OS-appropriate paths
func NewManager() (*Manager, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to determine configuration path: %w", err)
	}

	securityMgr, err := NewSecurityManager()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize security manager: %w", err)
	}

	return NewManagerAt(configPath, securityMgr)
}

// NewManagerAt creates a configuration manager for an explicit file path
func NewManagerAt(configPath string, securityMgr SecurityManager) (*Manager, error) {
	if securityMgr == nil {
		return nil, fmt.Errorf("securityMgr cannot be nil")
	}

	manager := &Manager{
		configPath:  configPath,
		securityMgr: securityMgr,
		logger:      logging.GetConfigLogger(),
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create configuration directory: %w", err)
	}

	return manager, nil
}

// getConfigPath determines the OS-appropriate configuration file path
func getConfigPath() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "catalog-console", "profiles.yaml"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "catalog-console", "profiles.yaml"), nil
}

// loadConfig reads and parses the configuration file, creating defaults if necessary.
// Callers must hold m.mu.
func (m *Manager) loadConfig() (*Config, error) {
	if m.cachedConfig != nil {
		return m.cachedConfig, nil
	}

	if _, err := os.Stat(m.configPath); os.IsNotExist(err) {
		config := createDefaultConfig()
		if err := m.saveConfig(config); err != nil {
			return nil, fmt.Errorf("failed to create default configuration: %w", err)
		}
		m.logger.Info("Created default configuration", "path", m.configPath)
		m.cachedConfig = config
		return config, nil
	}

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file: %w", err)
	}
	if config.Profiles == nil {
		config.Profiles = make(map[string]interfaces.Profile)
	}

	for name, profile := range config.Profiles {
		if profile.APIKey == "" {
			continue
		}
		key, err := m.securityMgr.DecryptCredential(profile.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt api key for profile %s: %w", name, err)
		}
		profile.APIKey = key
		config.Profiles[name] = profile
	}

	m.cachedConfig = &config
	return &config, nil
}

// saveConfig writes the configuration to disk with the api keys encrypted
func (m *Manager) saveConfig(config *Config) error {
	configCopy := Config{Profiles: make(map[string]interfaces.Profile, len(config.Profiles))}

	for name, profile := range config.Profiles {
		profileCopy := profile
		if profile.APIKey != "" {
			encrypted, err := m.securityMgr.EncryptCredential(profile.APIKey)
			if err != nil {
				return fmt.Errorf("failed to encrypt api key for profile %s: %w", name, err)
			}
			profileCopy.APIKey = encrypted
		}
		configCopy.Profiles[name] = profileCopy
	}

	data, err := yaml.Marshal(&configCopy)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}

	if err := os.WriteFile(m.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	return nil
}

func createDefaultConfig() *Config {
	return &Config{
		Profiles: map[string]interfaces.Profile{
			DefaultProfileName: {
				Name:           DefaultProfileName,
				BaseURL:        DefaultBaseURL,
				TimeoutMs:      DefaultTimeoutMs,
				MaxAttempts:    DefaultMaxAttempts,
				PollIntervalMs: DefaultPollIntervalMs,
				Theme:          "github",
			},
		},
	}
}

// ApplyDefaults fills the zero-valued numeric options of a profile
func ApplyDefaults(profile *interfaces.Profile) {
	if profile.TimeoutMs == 0 {
		profile.TimeoutMs = DefaultTimeoutMs
	}
	if profile.MaxAttempts == 0 {
		profile.MaxAttempts = DefaultMaxAttempts
	}
	if profile.PollIntervalMs == 0 {
		profile.PollIntervalMs = DefaultPollIntervalMs
	}
}

// LoadProfile retrieves a profile by name, applying defaults and the env override
func (m *Manager) LoadProfile(name string) (*interfaces.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	config, err := m.loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	profile, exists := config.Profiles[name]
	if !exists {
		return nil, fmt.Errorf("profile '%s' not found", name)
	}

	profile.Name = name
	ApplyDefaults(&profile)
	if override := strings.TrimSpace(os.Getenv(BaseURLEnv)); override != "" {
		profile.BaseURL = override
	}

	if err := m.ValidateProfile(&profile); err != nil {
		return nil, fmt.Errorf("profile '%s' is invalid: %w", name, err)
	}

	return &profile, nil
}

// SaveProfile persists a profile to the configuration file
func (m *Manager) SaveProfile(profile *interfaces.Profile) error {
	if err := m.ValidateProfile(profile); err != nil {
		return fmt.Errorf("cannot save invalid profile: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	config, err := m.loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	config.Profiles[profile.Name] = *profile

	if err := m.saveConfig(config); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	m.cachedConfig = config
	return nil
}

// ListProfiles returns all available profile names in alphabetical order
func (m *Manager) ListProfiles() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	config, err := m.loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	names := make([]string, 0, len(config.Profiles))
	for name := range config.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	return names, nil
}

// ValidateProfile ensures profile has all required fields
func (m *Manager) ValidateProfile(profile *interfaces.Profile) error {
	if profile == nil {
		return fmt.Errorf("profile cannot be nil")
	}

	if strings.TrimSpace(profile.Name) == "" {
		return fmt.Errorf("profile name cannot be empty")
	}

	u, err := url.Parse(strings.TrimSpace(profile.BaseURL))
	if err != nil {
		return fmt.Errorf("invalid baseUrl: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("baseUrl must use http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("baseUrl must include a host")
	}

	if profile.TimeoutMs <= 0 {
		return fmt.Errorf("timeoutMs must be positive")
	}
	if profile.MaxAttempts < 1 {
		return fmt.Errorf("maxAttempts must be at least 1")
	}
	if profile.PollIntervalMs <= 0 {
		return fmt.Errorf("pollIntervalMs must be positive")
	}

	if profile.APIKey != "" {
		if err := m.securityMgr.ValidateAPIKeyFormat(profile.APIKey); err != nil {
			return fmt.Errorf("invalid apiKey: %w", err)
		}
	}

	return nil
}

// GetConfigPath returns the path to the configuration file
func (m *Manager) GetConfigPath() string {
	return m.configPath
}
