package generation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/catalog-console/console/internal/interfaces"
	"github.com/catalog-console/console/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingUpdater struct {
	requests []interfaces.UpdateProductRequest
	err      error
}

func (u *recordingUpdater) UpdateProduct(ctx context.Context, request interfaces.UpdateProductRequest) (*interfaces.Product, error) {
	u.requests = append(u.requests, request)
	if u.err != nil {
		return nil, u.err
	}
	return &interfaces.Product{ItemID: request.ItemID, Description: request.Description}, nil
}

func completedSession(entityID, requestID, description string) Session {
	return Session{
		EntityID:  entityID,
		RequestID: requestID,
		Status:    StatusCompleted,
		Outcome:   Outcome{Description: description},
	}
}

func TestReconciler_StageEditConfirm(t *testing.T) {
	updater := &recordingUpdater{}
	r := NewReconciler(updater, logging.NewDiscardLogger())
	r.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	r.Begin("7", "req_1")
	assert.False(t, r.Resolve(Session{EntityID: "7", RequestID: "req_1", Status: StatusPolling}))
	require.True(t, r.Resolve(completedSession("7", "req_1", "Draft text")))

	state := r.State("7")
	assert.Equal(t, PhaseReady, state.Phase)
	assert.Equal(t, "Draft text", state.Pending)
	assert.True(t, state.CanApply())

	require.True(t, r.Edit("7", "Edited text"))

	product := interfaces.Product{ItemID: "7", ProductName: "Mouse", Description: "Old"}
	updated, err := r.Confirm(context.Background(), product)
	require.NoError(t, err)
	assert.Equal(t, "Edited text", updated.Description)
	assert.Equal(t, "2024-05-01T12:00:00Z", updated.UpdatedAt)
	assert.Equal(t, "Old", product.Description, "input product must not be modified")

	require.Len(t, updater.requests, 1)
	assert.Equal(t, interfaces.UpdateProductRequest{ItemID: "7", Description: "Edited text"}, updater.requests[0])
	assert.Equal(t, PhaseIdle, r.State("7").Phase)
}

func TestReconciler_ConfirmFailureKeepsStagedText(t *testing.T) {
	updater := &recordingUpdater{err: errors.New("503")}
	r := NewReconciler(updater, logging.NewDiscardLogger())

	r.Begin("7", "req_1")
	r.Resolve(completedSession("7", "req_1", "Draft"))

	_, err := r.Confirm(context.Background(), interfaces.Product{ItemID: "7"})
	require.Error(t, err)

	state := r.State("7")
	assert.Equal(t, PhaseReady, state.Phase)
	assert.Equal(t, "Draft", state.Pending)
	assert.False(t, state.Updating)
	assert.Contains(t, state.Message, "Failed to update product")
}

func TestReconciler_SentinelDisablesApply(t *testing.T) {
	updater := &recordingUpdater{}
	r := NewReconciler(updater, logging.NewDiscardLogger())

	r.Begin("7", "req_1")
	soft := Session{
		EntityID:  "7",
		RequestID: "req_1",
		Status:    StatusError,
		Outcome:   Outcome{Description: "error", Soft: true, Message: SoftFailureMessage, Err: ErrSoftFailure},
	}
	require.True(t, r.Resolve(soft))

	state := r.State("7")
	assert.Equal(t, "error", state.Pending, "sentinel text is still shown")
	assert.True(t, state.ApplyDisabled)
	assert.False(t, state.CanApply())
	assert.False(t, r.Edit("7", "sneaky"))

	_, err := r.Confirm(context.Background(), interfaces.Product{ItemID: "7"})
	assert.ErrorIs(t, err, ErrNothingToApply)
	assert.Empty(t, updater.requests)

	// a fresh generation lifts the restriction
	r.Begin("7", "req_2")
	require.True(t, r.Resolve(completedSession("7", "req_2", "Real text")))
	assert.True(t, r.State("7").CanApply())
}

func TestReconciler_TimeoutLeavesDescriptionUntouched(t *testing.T) {
	r := NewReconciler(&recordingUpdater{}, logging.NewDiscardLogger())

	r.Begin("7", "req_1")
	require.True(t, r.Resolve(Session{
		EntityID:  "7",
		RequestID: "req_1",
		Status:    StatusTimedOut,
		Outcome:   Outcome{Message: TimeoutMessage, Err: &TimeoutError{Attempts: 30}},
	}))

	state := r.State("7")
	assert.Equal(t, PhaseError, state.Phase)
	assert.Equal(t, TimeoutMessage, state.Message)
	assert.Empty(t, state.Pending)

	r.Discard("7")
	assert.Equal(t, PhaseIdle, r.State("7").Phase)
}

func TestDisplayState_FollowsRegistry(t *testing.T) {
	registry := NewRegistry()
	r := NewReconciler(&recordingUpdater{}, logging.NewDiscardLogger())

	registry.Start("7", "req_1", 3)
	r.Begin("7", "req_1")
	assert.Equal(t, PhaseGenerating, DisplayState(registry, r, "7").Phase)

	// cancelling the session ends the generating state on its own
	registry.Cancel("7")
	assert.Equal(t, PhaseIdle, DisplayState(registry, r, "7").Phase)

	// a live session wins over an older staged result
	r.Begin("8", "req_2")
	require.True(t, r.Resolve(completedSession("8", "req_2", "Old text")))
	registry.Start("8", "req_3", 3)
	state := DisplayState(registry, r, "8")
	assert.Equal(t, PhaseGenerating, state.Phase)
	assert.Empty(t, state.Pending)
}

func TestReconciler_DiscardAll(t *testing.T) {
	r := NewReconciler(&recordingUpdater{}, logging.NewDiscardLogger())
	r.Begin("1", "req_1")
	require.True(t, r.Resolve(completedSession("1", "req_1", "Text")))
	r.Begin("2", "req_2")

	r.DiscardAll()
	assert.Equal(t, PhaseIdle, r.State("1").Phase)
	assert.Equal(t, PhaseIdle, r.State("2").Phase)
}
