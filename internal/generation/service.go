package generation

import (
	"context"
	"fmt"
	"time"

	"github.com/catalog-console/console/internal/interfaces"
	"github.com/catalog-console/console/internal/logging"
)

const (
	DefaultMaxAttempts  = 30
	DefaultPollInterval = 2 * time.Second
)

// API is the part of the catalog client generation needs
type API interface {
	Generate(ctx context.Context, body interface{}) error
	Status(ctx context.Context, requestID string) (*interfaces.StatusResponse, error)
}

// Options configures a Service
type Options struct {
	MaxAttempts  int
	PollInterval time.Duration
	NewRequestID func() string
	Logger       *logging.Logger
}

// OptionsFromProfile reads the polling parameters from a profile
func OptionsFromProfile(profile *interfaces.Profile) Options {
	return Options{
		MaxAttempts:  profile.MaxAttempts,
		PollInterval: profile.PollInterval(),
	}
}

// Service ties request building, submission and polling to a registry
type Service struct {
	api          API
	registry     *Registry
	maxAttempts  int
	pollInterval time.Duration
	newID        func() string
	logger       *logging.Logger
}

// NewService creates a generation service. A nil registry gets a fresh one.
func NewService(api API, registry *Registry, opts Options) *Service {
	if registry == nil {
		registry = NewRegistry()
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.NewRequestID == nil {
		opts.NewRequestID = NewRequestID
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.GetGenerationLogger()
	}

	return &Service{
		api:          api,
		registry:     registry,
		maxAttempts:  opts.MaxAttempts,
		pollInterval: opts.PollInterval,
		newID:        opts.NewRequestID,
		logger:       logger,
	}
}

// Registry returns the session registry
func (s *Service) Registry() *Registry { return s.registry }

// PollInterval returns the delay between status queries
func (s *Service) PollInterval() time.Duration { return s.pollInterval }

// MaxAttempts returns the status query budget per session
func (s *Service) MaxAttempts() int { return s.maxAttempts }

// Begin validates the form, allocates a request ID and registers a session
// in the submitting state, superseding any earlier session for entityID.
// Nothing is registered when validation fails.
func (s *Service) Begin(entityID string, form Form) (*Request, error) {
	req, err := Build(entityID, form, s.newID)
	if err != nil {
		return nil, err
	}

	if prev, ok := s.registry.Get(entityID); ok && prev.Status.Active() {
		s.logger.Info("Superseding generation", "entity_id", entityID, "previous_request_id", prev.RequestID, "request_id", req.RequestID)
	}
	s.registry.Start(entityID, req.RequestID, s.maxAttempts)
	s.logger.LogSessionTransition(entityID, req.RequestID, "", string(StatusSubmitting))
	return req, nil
}

// Submit posts the request. On acceptance the session moves to polling; on
// failure it ends in error carrying the network or HTTP error. The bool is
// false when the session was superseded while the request was in flight.
func (s *Service) Submit(ctx context.Context, req *Request) (Session, bool) {
	err := s.api.Generate(ctx, req.Payload)
	if err != nil {
		s.logger.Warn("Generation submission failed", "entity_id", req.EntityID, "request_id", req.RequestID, "error", err.Error())
		session, ok := s.registry.Update(req.EntityID, req.RequestID, func(cur Session) (Session, error) {
			return cur.Reject(err)
		})
		if ok {
			s.logger.LogSessionTransition(req.EntityID, req.RequestID, string(StatusSubmitting), string(session.Status))
		}
		return session, ok
	}

	session, ok := s.registry.Update(req.EntityID, req.RequestID, Session.Acknowledge)
	if ok {
		s.logger.LogSessionTransition(req.EntityID, req.RequestID, string(StatusSubmitting), string(StatusPolling))
	}
	return session, ok
}

// Poll issues one status query for the current session and applies it.
// A stale or already terminal session is left alone and no query is made,
// so an exhausted budget never produces an extra request.
func (s *Service) Poll(ctx context.Context, entityID, requestID string) (Session, bool) {
	current, ok := s.registry.Get(entityID)
	if !ok || current.RequestID != requestID || current.Status != StatusPolling {
		s.logger.Debug("Skipping stale poll", "entity_id", entityID, "request_id", requestID)
		return Session{}, false
	}

	resp, queryErr := s.api.Status(ctx, requestID)

	session, ok := s.registry.Update(entityID, requestID, func(cur Session) (Session, error) {
		return cur.Observe(resp, queryErr)
	})
	if !ok {
		s.logger.Debug("Discarding result for superseded request", "entity_id", entityID, "request_id", requestID)
		return Session{}, false
	}

	status := "query_failed"
	if queryErr == nil && resp != nil {
		status = resp.Status
	}
	s.logger.LogPollAttempt(entityID, requestID, session.AttemptsMade, session.MaxAttempts, status)

	if session.Status.Terminal() {
		s.logger.LogSessionTransition(entityID, requestID, string(StatusPolling), string(session.Status))
	}
	return session, true
}

// Run performs a whole generation and blocks until it ends. The first status
// query is issued right after acceptance and the following ones every poll
// interval. When ctx is cancelled the session is released.
func (s *Service) Run(ctx context.Context, entityID string, form Form) (Session, error) {
	req, err := s.Begin(entityID, form)
	if err != nil {
		return Session{}, err
	}

	session, ok := s.Submit(ctx, req)
	if !ok {
		return session, fmt.Errorf("generation for %s was superseded", entityID)
	}

	timer := time.NewTimer(0)
	defer timer.Stop()

	for !session.Status.Terminal() {
		select {
		case <-ctx.Done():
			s.registry.Release(entityID, req.RequestID)
			return session, ctx.Err()
		case <-timer.C:
		}

		session, ok = s.Poll(ctx, entityID, req.RequestID)
		if !ok {
			return session, fmt.Errorf("generation for %s was superseded", entityID)
		}
		timer.Reset(s.pollInterval)
	}
	return session, nil
}
