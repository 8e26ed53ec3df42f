package generation

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// SubmittedMsg reports the result of a submission command
type SubmittedMsg struct {
	EntityID  string
	RequestID string
	Session   Session
	Current   bool
}

// PollDueMsg asks the model to issue the next status query
type PollDueMsg struct {
	EntityID  string
	RequestID string
}

// PolledMsg reports the result of one status query
type PolledMsg struct {
	EntityID  string
	RequestID string
	Session   Session
	Current   bool
}

// SubmitCmd submits req off the event loop
func (s *Service) SubmitCmd(ctx context.Context, req *Request) tea.Cmd {
	return func() tea.Msg {
		session, ok := s.Submit(ctx, req)
		return SubmittedMsg{EntityID: req.EntityID, RequestID: req.RequestID, Session: session, Current: ok}
	}
}

// PollCmd issues one status query off the event loop
func (s *Service) PollCmd(ctx context.Context, entityID, requestID string) tea.Cmd {
	return func() tea.Msg {
		session, ok := s.Poll(ctx, entityID, requestID)
		return PolledMsg{EntityID: entityID, RequestID: requestID, Session: session, Current: ok}
	}
}

// Continue returns the command that keeps a poll chain going after a
// submission or poll result: an immediate query after acceptance, a delayed
// one while polling, nothing once the session is terminal or stale.
func (s *Service) Continue(ctx context.Context, msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case SubmittedMsg:
		if !msg.Current || msg.Session.Status != StatusPolling {
			return nil
		}
		return s.PollCmd(ctx, msg.EntityID, msg.RequestID)
	case PolledMsg:
		if !msg.Current || msg.Session.Status != StatusPolling {
			return nil
		}
		entityID, requestID := msg.EntityID, msg.RequestID
		return tea.Tick(s.pollInterval, func(time.Time) tea.Msg {
			return PollDueMsg{EntityID: entityID, RequestID: requestID}
		})
	case PollDueMsg:
		return s.PollCmd(ctx, msg.EntityID, msg.RequestID)
	}
	return nil
}
