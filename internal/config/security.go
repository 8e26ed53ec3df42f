// Package config provides at-rest protection for the API keys stored in
// profiles. Keys are sealed with AES-256-GCM under a master key derived with
// PBKDF2 from a random salt and a machine-specific passphrase.
package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const pbkdf2Iterations = 100000

// SecurityManager handles encryption and decryption of sensitive configuration data
type SecurityManager interface {
	// EncryptCredential encrypts a credential for storage
	EncryptCredential(plaintext string) (string, error)

	// DecryptCredential decrypts a stored credential
	DecryptCredential(ciphertext string) (string, error)

	// ValidateAPIKeyFormat rejects keys that cannot be sent as a header value
	ValidateAPIKeyFormat(key string) error
}

// AESSecurityManager implements SecurityManager using AES-256-GCM encryption
type AESSecurityManager struct {
	keyPath    string
	masterKey  []byte
	keyDerived bool
}

// NewSecurityManager creates a security manager with OS-appropriate key storage
func NewSecurityManager() (*AESSecurityManager, error) {
	keyPath, err := getSecurityKeyPath()
	if err != nil {
		return nil, fmt.Errorf("failed to determine security key path: %w", err)
	}
	return NewSecurityManagerAt(keyPath)
}

// NewSecurityManagerAt creates a security manager storing its salt at keyPath
func NewSecurityManagerAt(keyPath string) (*AESSecurityManager, error) {
	manager := &AESSecurityManager{keyPath: keyPath}

	if err := os.MkdirAll(filepath.Dir(keyPath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create security directory: %w", err)
	}

	if _, err := os.Stat(keyPath); os.IsNotExist(err) {
		if err := manager.generateKey(); err != nil {
			return nil, fmt.Errorf("failed to initialize encryption key: %w", err)
		}
		return manager, nil
	}

	if err := manager.loadExistingKey(); err != nil {
		return nil, fmt.Errorf("failed to initialize encryption key: %w", err)
	}
	return manager, nil
}

func getSecurityKeyPath() (string, error) {
	if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
		return filepath.Join(xdgDataHome, "catalog-console", "security", "master.key"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "catalog-console", "security", "master.key"), nil
}

func (s *AESSecurityManager) loadExistingKey() error {
	keyData, err := os.ReadFile(s.keyPath)
	if err != nil {
		return fmt.Errorf("failed to read master key file: %w", err)
	}

	salt, err := hex.DecodeString(strings.TrimSpace(string(keyData)))
	if err != nil {
		return fmt.Errorf("failed to decode key material: %w", err)
	}

	s.deriveKey(salt)
	return nil
}

func (s *AESSecurityManager) generateKey() error {
	salt := make([]byte, 32)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("failed to generate random salt: %w", err)
	}

	if err := os.WriteFile(s.keyPath, []byte(hex.EncodeToString(salt)), 0600); err != nil {
		return fmt.Errorf("failed to write key material: %w", err)
	}

	s.deriveKey(salt)
	return nil
}

func (s *AESSecurityManager) deriveKey(salt []byte) {
	hostname, _ := os.Hostname()
	username := os.Getenv("USER")
	if username == "" {
		username = os.Getenv("USERNAME")
	}
	passphrase := fmt.Sprintf("catalog-console-%s-%s", hostname, username)

	s.masterKey = pbkdf2.Key([]byte(passphrase), salt, pbkdf2Iterations, 32, sha256.New)
	s.keyDerived = true
}

func (s *AESSecurityManager) gcm() (cipher.AEAD, error) {
	if !s.keyDerived {
		return nil, fmt.Errorf("encryption key not available")
	}
	block, err := aes.NewCipher(s.masterKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

// EncryptCredential encrypts a credential using AES-256-GCM
func (s *AESSecurityManager) EncryptCredential(plaintext string) (string, error) {
	gcm, err := s.gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptCredential decrypts a stored credential
func (s *AESSecurityManager) DecryptCredential(ciphertext string) (string, error) {
	gcm, err := s.gcm()
	if err != nil {
		return "", err
	}

	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("failed to decode ciphertext: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	plaintext, err := gcm.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}

	return string(plaintext), nil
}

// ValidateAPIKeyFormat performs format validation on API gateway keys
func (s *AESSecurityManager) ValidateAPIKeyFormat(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("api key cannot be empty")
	}
	if strings.ContainsAny(key, " \t\n\r") {
		return fmt.Errorf("api key cannot contain whitespace")
	}
	if len(key) < 8 {
		return fmt.Errorf("api key appears to be too short (minimum 8 characters)")
	}
	return nil
}
