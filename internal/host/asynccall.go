package host

import (
	"sync"

	"github.com/google/uuid"
)

// CallID identifies one in-flight cross-component call (the generic-process
// substitute for a chain's promise index, spec.md §9 "Coroutine/callback
// flow").
type CallID string

// CallTracker records in-flight verify/sign calls so that a failed callback
// can be distinguished from one that never ran, and so metrics/logs can
// correlate a sign request with the verify call that preceded it.
type CallTracker struct {
	mu    sync.Mutex
	calls map[CallID]CallState
}

// CallState is the bookkeeping recorded per call. Kind distinguishes the
// two suspension points spec.md §5 names: "verify" (router -> guard) and
// "sign" (pipeline -> MPC oracle).
type CallState struct {
	Kind   string
	Caller string
	Done   bool
	Failed bool
}

// NewCallTracker creates an empty tracker.
func NewCallTracker() *CallTracker {
	return &CallTracker{calls: make(map[CallID]CallState)}
}

// Begin registers a new in-flight call and returns its id.
func (t *CallTracker) Begin(kind, caller string) CallID {
	id := CallID(uuid.NewString())
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls[id] = CallState{Kind: kind, Caller: caller}
	return id
}

// Finish marks a call as complete, recording whether it failed. Only the
// caller's own committed frame should transition its call, matching
// spec.md §5's "callback sees the caller's committed state plus the
// callee's result" ordering guarantee.
func (t *CallTracker) Finish(id CallID, failed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	state, ok := t.calls[id]
	if !ok {
		return
	}
	state.Done = true
	state.Failed = failed
	t.calls[id] = state
}

// Lookup returns the current state of a call.
func (t *CallTracker) Lookup(id CallID) (CallState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	state, ok := t.calls[id]
	return state, ok
}

// Snapshot returns a copy of every call currently tracked, for metrics and
// admin introspection.
func (t *CallTracker) Snapshot() map[CallID]CallState {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[CallID]CallState, len(t.calls))
	for k, v := range t.calls {
		out[k] = v
	}
	return out
}
