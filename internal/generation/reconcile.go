package generation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/catalog-console/console/internal/interfaces"
	"github.com/catalog-console/console/internal/logging"
)

// Phase is the per-item display state
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseGenerating Phase = "generating"
	PhaseReady      Phase = "ready"
	PhaseError      Phase = "error"
)

// ItemState is what a view renders for one entity
type ItemState struct {
	Phase         Phase
	RequestID     string
	Pending       string
	ApplyDisabled bool
	Message       string
	Updating      bool
}

// CanApply reports whether the staged description may be confirmed
func (s ItemState) CanApply() bool {
	return s.Phase == PhaseReady && !s.ApplyDisabled && !s.Updating && s.Pending != ""
}

// ProductUpdater writes a confirmed description
type ProductUpdater interface {
	UpdateProduct(ctx context.Context, request interfaces.UpdateProductRequest) (*interfaces.Product, error)
}

// ErrNothingToApply is returned by Confirm when no usable description is staged
var ErrNothingToApply = errors.New("no description ready to apply")

// Reconciler turns terminal sessions into item states. A generated
// description is only staged; it reaches the product when Confirm is called.
type Reconciler struct {
	mu      sync.Mutex
	items   map[string]ItemState
	updater ProductUpdater
	now     func() time.Time
	logger  *logging.Logger
}

// NewReconciler creates a reconciler writing through updater
func NewReconciler(updater ProductUpdater, logger *logging.Logger) *Reconciler {
	if logger == nil {
		logger = logging.GetGenerationLogger()
	}
	return &Reconciler{
		items:   make(map[string]ItemState),
		updater: updater,
		now:     time.Now,
		logger:  logger,
	}
}

// State returns the display state of entityID
func (r *Reconciler) State(entityID string) ItemState {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.items[entityID]
	if !ok {
		return ItemState{Phase: PhaseIdle}
	}
	return state
}

// DisplayState combines the registry and the reconciler into what a view
// shows for entityID. Only the registry decides whether the entity is
// generating; the reconciler contributes staged text and messages.
func DisplayState(registry *Registry, r *Reconciler, entityID string) ItemState {
	if session, ok := registry.Get(entityID); ok && session.Status.Active() {
		return ItemState{Phase: PhaseGenerating, RequestID: session.RequestID}
	}
	state := r.State(entityID)
	if state.Phase == PhaseGenerating {
		// The session ended without an outcome being resolved
		return ItemState{Phase: PhaseIdle}
	}
	return state
}

// Begin marks entityID as generating requestID, clearing any staged text
func (r *Reconciler) Begin(entityID, requestID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[entityID] = ItemState{Phase: PhaseGenerating, RequestID: requestID}
}

// Resolve applies a terminal session. Sessions that are not terminal or
// whose request is no longer the one the item is showing are ignored.
func (r *Reconciler) Resolve(session Session) bool {
	if !session.Status.Terminal() {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.items[session.EntityID]
	if !ok || state.RequestID != session.RequestID {
		return false
	}

	switch {
	case session.Status == StatusCompleted:
		state = ItemState{
			Phase:     PhaseReady,
			RequestID: session.RequestID,
			Pending:   session.Outcome.Description,
		}
	case session.Outcome.Soft:
		state = ItemState{
			Phase:         PhaseError,
			RequestID:     session.RequestID,
			Pending:       session.Outcome.Description,
			ApplyDisabled: true,
			Message:       session.Outcome.Message,
		}
	default:
		state = ItemState{
			Phase:         PhaseError,
			RequestID:     session.RequestID,
			ApplyDisabled: true,
			Message:       session.Outcome.Message,
		}
	}
	r.items[session.EntityID] = state
	return true
}

// Edit replaces the staged description of a ready item
func (r *Reconciler) Edit(entityID, text string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.items[entityID]
	if !ok || state.Phase != PhaseReady || state.Updating {
		return false
	}
	state.Pending = text
	r.items[entityID] = state
	return true
}

// Confirm writes the staged description to product and returns the updated
// product with updated_at stamped. The item returns to idle on success; on
// failure the text stays staged and the message is set.
func (r *Reconciler) Confirm(ctx context.Context, product interfaces.Product) (*interfaces.Product, error) {
	entityID := product.ItemID

	r.mu.Lock()
	state, ok := r.items[entityID]
	if !ok || !state.CanApply() {
		r.mu.Unlock()
		return nil, ErrNothingToApply
	}
	state.Updating = true
	state.Message = ""
	r.items[entityID] = state
	r.mu.Unlock()

	description := state.Pending
	_, err := r.updater.UpdateProduct(ctx, interfaces.UpdateProductRequest{
		ItemID:      entityID,
		Description: description,
	})

	r.mu.Lock()
	defer r.mu.Unlock()

	requestID := state.RequestID
	current, stillShown := r.items[entityID]
	stillShown = stillShown && current.RequestID == requestID

	if err != nil {
		r.logger.Error("Failed to update product description", "item_id", entityID, "error", err.Error())
		if stillShown {
			current.Updating = false
			current.Message = fmt.Sprintf("Failed to update product: %v", err)
			r.items[entityID] = current
		}
		return nil, err
	}

	if stillShown {
		delete(r.items, entityID)
	}

	updated := product
	updated.Description = description
	updated.UpdatedAt = r.now().UTC().Format(time.RFC3339)
	r.logger.Info("Product description updated", "item_id", entityID)
	return &updated, nil
}

// DiscardAll forgets every staged text and message
func (r *Reconciler) DiscardAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = make(map[string]ItemState)
}

// Discard forgets any staged text or message for entityID
func (r *Reconciler) Discard(entityID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, entityID)
}
