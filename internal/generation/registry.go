package generation

import (
	"sort"
	"sync"
)

// Registry owns the live sessions, at most one per entity. Every write is
// checked against the entity's current request ID so a superseded poll chain
// cannot overwrite a newer generation.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]Session
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]Session)}
}

// Start registers a new session for entityID, replacing any existing one
func (r *Registry) Start(entityID, requestID string, maxAttempts int) Session {
	session := NewSession(entityID, requestID, maxAttempts)

	r.mu.Lock()
	r.sessions[entityID] = session
	r.mu.Unlock()
	return session
}

// Get returns the current session for entityID
func (r *Registry) Get(entityID string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[entityID]
	return session, ok
}

// Current reports whether requestID is the live request for entityID
func (r *Registry) Current(entityID, requestID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[entityID]
	return ok && session.RequestID == requestID
}

// Generating reports whether entityID has a submission or poll outstanding
func (r *Registry) Generating(entityID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[entityID]
	return ok && session.Status.Active()
}

// Update applies fn to the session for entityID if requestID is still
// current. The returned bool is false for a stale request or a rejected
// transition, in which case nothing is written.
func (r *Registry) Update(entityID, requestID string, fn func(Session) (Session, error)) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[entityID]
	if !ok || session.RequestID != requestID {
		return Session{}, false
	}
	next, err := fn(session)
	if err != nil {
		return session, false
	}
	r.sessions[entityID] = next
	return next, true
}

// MarkTerminal forces a terminal outcome onto the current session
func (r *Registry) MarkTerminal(entityID, requestID string, status Status, outcome Outcome) bool {
	if !status.Terminal() {
		return false
	}
	_, ok := r.Update(entityID, requestID, func(s Session) (Session, error) {
		if s.Status.Terminal() {
			return s, s.transitionError("mark terminal")
		}
		s.Status = status
		s.Outcome = outcome
		return s, nil
	})
	return ok
}

// Cancel drops the session for entityID without applying any outcome
func (r *Registry) Cancel(entityID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[entityID]
	delete(r.sessions, entityID)
	return ok
}

// Release drops the session only if requestID is still current
func (r *Registry) Release(entityID, requestID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[entityID]
	if !ok || session.RequestID != requestID {
		return false
	}
	delete(r.sessions, entityID)
	return true
}

// Active returns the entity IDs with outstanding work, sorted
func (r *Registry) Active() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ids []string
	for id, session := range r.sessions {
		if session.Status.Active() {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
