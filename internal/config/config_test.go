package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/catalog-console/console/internal/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	dir := t.TempDir()

	sec, err := NewSecurityManagerAt(filepath.Join(dir, "security", "master.key"))
	require.NoError(t, err)

	m, err := NewManagerAt(filepath.Join(dir, "profiles.yaml"), sec)
	require.NoError(t, err)
	return m
}

func TestLoadProfile_CreatesDefault(t *testing.T) {
	t.Setenv(BaseURLEnv, "")
	m := newTestManager(t)

	profile, err := m.LoadProfile(DefaultProfileName)
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, profile.BaseURL)
	assert.Equal(t, DefaultMaxAttempts, profile.MaxAttempts)
	assert.Equal(t, DefaultPollIntervalMs, profile.PollIntervalMs)
	assert.FileExists(t, m.GetConfigPath())
}

func TestLoadProfile_EnvOverride(t *testing.T) {
	t.Setenv(BaseURLEnv, "http://localhost:9090")
	m := newTestManager(t)

	profile, err := m.LoadProfile(DefaultProfileName)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9090", profile.BaseURL)
}

func TestSaveProfile_EncryptsAPIKey(t *testing.T) {
	t.Setenv(BaseURLEnv, "")
	m := newTestManager(t)

	profile := &interfaces.Profile{
		Name:           "staging",
		BaseURL:        "https://api.example.com/stage2",
		TimeoutMs:      5000,
		MaxAttempts:    10,
		PollIntervalMs: 500,
		APIKey:         "abcdefgh12345678",
	}
	require.NoError(t, m.SaveProfile(profile))

	raw, err := os.ReadFile(m.GetConfigPath())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "abcdefgh12345678")

	reopened, err := NewManagerAt(m.GetConfigPath(), m.securityMgr)
	require.NoError(t, err)
	loaded, err := reopened.LoadProfile("staging")
	require.NoError(t, err)
	assert.Equal(t, "abcdefgh12345678", loaded.APIKey)

	names, err := m.ListProfiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "staging"}, names)
}

func TestValidateProfile(t *testing.T) {
	m := newTestManager(t)

	valid := interfaces.Profile{
		Name: "p", BaseURL: "http://localhost:8080", TimeoutMs: 1, MaxAttempts: 1, PollIntervalMs: 1,
	}

	tests := []struct {
		name    string
		mutate  func(p *interfaces.Profile)
		wantErr bool
	}{
		{"valid", func(p *interfaces.Profile) {}, false},
		{"missing name", func(p *interfaces.Profile) { p.Name = " " }, true},
		{"relative url", func(p *interfaces.Profile) { p.BaseURL = "/prod" }, true},
		{"ftp url", func(p *interfaces.Profile) { p.BaseURL = "ftp://host" }, true},
		{"zero attempts", func(p *interfaces.Profile) { p.MaxAttempts = 0 }, true},
		{"zero interval", func(p *interfaces.Profile) { p.PollIntervalMs = 0 }, true},
		{"short api key", func(p *interfaces.Profile) { p.APIKey = "abc" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := m.ValidateProfile(&p)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSecurityManager_RoundTripAcrossInstances(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "master.key")

	first, err := NewSecurityManagerAt(keyPath)
	require.NoError(t, err)
	sealed, err := first.EncryptCredential("secret-value")
	require.NoError(t, err)

	second, err := NewSecurityManagerAt(keyPath)
	require.NoError(t, err)
	plain, err := second.DecryptCredential(sealed)
	require.NoError(t, err)
	assert.Equal(t, "secret-value", plain)
}
