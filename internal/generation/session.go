// Package generation orchestrates asynchronous description generation:
// building and submitting a request, polling its status under a bounded
// attempt budget, tracking one live session per entity and reconciling the
// terminal outcome into per-item display state.
package generation

import (
	"fmt"

	"github.com/catalog-console/console/internal/interfaces"
)

// Status is the state of a generation session
type Status string

const (
	StatusSubmitting Status = "submitting"
	StatusPolling    Status = "polling"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
	StatusTimedOut   Status = "timedOut"
)

// Terminal reports whether no further transition is possible
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError || s == StatusTimedOut
}

// Active reports whether the session still has work outstanding
func (s Status) Active() bool {
	return s == StatusSubmitting || s == StatusPolling
}

// Outcome is the result carried by a terminal session
type Outcome struct {
	Description string
	Message     string
	Soft        bool
	Err         error
}

// Session is one generation attempt for one entity. Transitions are pure:
// each returns a new value and leaves the receiver untouched.
type Session struct {
	RequestID    string
	EntityID     string
	AttemptsMade int
	MaxAttempts  int
	Status       Status
	Outcome      Outcome
	LastErr      error
}

// NewSession creates a session in the submitting state
func NewSession(entityID, requestID string, maxAttempts int) Session {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return Session{
		RequestID:   requestID,
		EntityID:    entityID,
		MaxAttempts: maxAttempts,
		Status:      StatusSubmitting,
	}
}

func (s Session) transitionError(action string) error {
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, action, s.Status)
}

// Acknowledge moves a submitted session into polling
func (s Session) Acknowledge() (Session, error) {
	if s.Status != StatusSubmitting {
		return s, s.transitionError("acknowledge")
	}
	s.Status = StatusPolling
	s.AttemptsMade = 0
	return s, nil
}

// Reject ends a session whose submission failed
func (s Session) Reject(err error) (Session, error) {
	if s.Status != StatusSubmitting {
		return s, s.transitionError("reject")
	}
	s.Status = StatusError
	s.LastErr = err
	s.Outcome = Outcome{Message: err.Error(), Err: err}
	return s, nil
}

// Observe applies the result of one status query. queryErr is a failure of
// the query itself; it is retried until the budget is spent.
func (s Session) Observe(resp *interfaces.StatusResponse, queryErr error) (Session, error) {
	if s.Status != StatusPolling {
		return s, s.transitionError("observe")
	}
	s.AttemptsMade++

	if queryErr != nil {
		s.LastErr = queryErr
		return s.continueOrTimeout(), nil
	}
	if resp == nil {
		return s.continueOrTimeout(), nil
	}

	switch resp.Status {
	case interfaces.StatusCompleted:
		if IsSentinel(resp.GeneratedDescription) {
			s.Status = StatusError
			s.Outcome = Outcome{
				Description: resp.GeneratedDescription,
				Message:     SoftFailureMessage,
				Soft:        true,
				Err:         ErrSoftFailure,
			}
			return s, nil
		}
		s.Status = StatusCompleted
		s.Outcome = Outcome{Description: resp.GeneratedDescription}
		return s, nil

	case interfaces.StatusError:
		message := resp.Error
		if message == "" {
			message = DefaultFailureMessage
		}
		s.Status = StatusError
		s.Outcome = Outcome{Message: message, Err: &GenerationError{Message: message}}
		return s, nil

	default:
		return s.continueOrTimeout(), nil
	}
}

func (s Session) continueOrTimeout() Session {
	if s.AttemptsMade >= s.MaxAttempts {
		s.Status = StatusTimedOut
		s.Outcome = Outcome{
			Message: TimeoutMessage,
			Err:     &TimeoutError{Attempts: s.AttemptsMade, LastErr: s.LastErr},
		}
	}
	return s
}
