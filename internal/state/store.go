// Package state persists the "catalog initialized" flag and notifies
// subscribers when it changes.
package state

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/catalog-console/console/internal/interfaces"
	"github.com/catalog-console/console/internal/logging"
	"gopkg.in/yaml.v3"
)

type stateFile struct {
	CatalogInitialized bool      `yaml:"catalogInitialized"`
	UpdatedAt          time.Time `yaml:"updatedAt,omitempty"`
}

// Store implements interfaces.FlagStore. A Store with an empty path keeps
// the flag in memory only.
type Store struct {
	path   string
	logger *logging.Logger

	mu     sync.Mutex
	value  bool
	subs   map[int]chan bool
	nextID int
}

var _ interfaces.FlagStore = (*Store)(nil)

// DefaultPath returns the state file location under the XDG state directory
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "catalog-console", "state.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "state", "catalog-console", "state.yaml"), nil
}

// Open loads the flag from path. A missing file means not initialized.
func Open(path string, logger *logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.GetGlobalLogger().WithComponent("state")
	}
	s := &Store{path: path, logger: logger, subs: make(map[int]chan bool)}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var f stateFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	s.value = f.CatalogInitialized
	return s, nil
}

// NewMemoryStore creates a store that is never written to disk
func NewMemoryStore(initial bool) *Store {
	return &Store{value: initial, logger: logging.NewDiscardLogger(), subs: make(map[int]chan bool)}
}

// Initialized reports the current flag value
func (s *Store) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// SetInitialized persists value and notifies subscribers if it changed
func (s *Store) SetInitialized(value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist(value); err != nil {
		return err
	}
	if s.value == value {
		return nil
	}
	s.value = value
	s.logger.Info("Catalog flag changed", "initialized", value)

	for _, ch := range s.subs {
		// keep only the latest value for slow subscribers
		select {
		case <-ch:
		default:
		}
		ch <- value
	}
	return nil
}

// Subscribe returns a channel that receives every change of the flag. The
// returned func unsubscribes and closes the channel.
func (s *Store) Subscribe() (<-chan bool, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan bool, 1)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

func (s *Store) persist(value bool) error {
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := yaml.Marshal(stateFile{CatalogInitialized: value, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}
