package errors

import (
	"fmt"
	"sync"
	"time"

	"github.com/catalog-console/console/internal/interfaces"
	"github.com/google/uuid"
)

// RecoverySession is an error currently shown with its recovery actions
type RecoverySession struct {
	ID        string
	StartTime time.Time
	Scope     string
	Error     *ProcessedError
}

// RecoveryManager tracks the error banner of one view. Starting a session
// replaces the previous one.
type RecoveryManager struct {
	activeSession *RecoverySession
	sessionMutex  sync.RWMutex
}

// NewRecoveryManager creates a new recovery manager
func NewRecoveryManager() *RecoveryManager {
	return &RecoveryManager{}
}

// StartSession shows processedErr for scope, usually an entity ID
func (rm *RecoveryManager) StartSession(scope string, processedErr *ProcessedError) (*RecoverySession, error) {
	if processedErr == nil {
		return nil, fmt.Errorf("cannot start recovery session with a nil error")
	}

	rm.sessionMutex.Lock()
	defer rm.sessionMutex.Unlock()

	session := &RecoverySession{
		ID:        "recov_" + uuid.NewString(),
		StartTime: time.Now(),
		Scope:     scope,
		Error:     processedErr,
	}
	rm.activeSession = session
	return session, nil
}

// EndSession clears the active session
func (rm *RecoveryManager) EndSession() {
	rm.sessionMutex.Lock()
	defer rm.sessionMutex.Unlock()
	rm.activeSession = nil
}

// IsActive returns true if an error is being shown
func (rm *RecoveryManager) IsActive() bool {
	rm.sessionMutex.RLock()
	defer rm.sessionMutex.RUnlock()
	return rm.activeSession != nil
}

// Active returns the current session, or nil
func (rm *RecoveryManager) Active() *RecoverySession {
	rm.sessionMutex.RLock()
	defer rm.sessionMutex.RUnlock()
	return rm.activeSession
}

// GetRecoveryActions returns the actions of the active session
func (rm *RecoveryManager) GetRecoveryActions() []interfaces.Action {
	rm.sessionMutex.RLock()
	defer rm.sessionMutex.RUnlock()

	if rm.activeSession == nil || rm.activeSession.Error == nil {
		return nil
	}
	return rm.activeSession.Error.RecoveryActions
}

// FindAction returns the active action bound to key
func (rm *RecoveryManager) FindAction(key string) (interfaces.Action, bool) {
	for _, action := range rm.GetRecoveryActions() {
		if action.Key == key {
			return action, true
		}
	}
	return interfaces.Action{}, false
}
