package draft

import "sync"

// entry pairs a draft with its submission flag. The flag disables
// re-submission while a request is in flight; duplicate double-clicks must
// not create duplicate orders.
type entry struct {
	builder  *Builder
	receive  *ReceiveDraft
	inFlight bool
}

// Registry owns drafts per browser session. The registry mutex guards the
// map; the drafts it hands out carry their own locks, since a browser can
// overlap requests for the same session.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewRegistry returns an empty draft registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

func (r *Registry) key(sessionID string, kind Kind) string {
	return sessionID + ":" + string(kind)
}

// Open creates a fresh builder for the session and kind, replacing any
// previous draft. Mirrors opening the composition view.
func (r *Registry) Open(sessionID string, kind Kind) *Builder {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := NewBuilder(kind)
	r.entries[r.key(sessionID, kind)] = &entry{builder: b}
	return b
}

// Builder returns the session's draft of the given kind, if one is open.
func (r *Registry) Builder(sessionID string, kind Kind) (*Builder, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[r.key(sessionID, kind)]
	if !ok || e.builder == nil {
		return nil, false
	}
	return e.builder, true
}

// OpenReceive registers a receive draft for the session, replacing any
// previous one.
func (r *Registry) OpenReceive(sessionID string, d *ReceiveDraft) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[sessionID+":receive"] = &entry{receive: d}
}

// Receive returns the session's open receive draft, if any.
func (r *Registry) Receive(sessionID string) (*ReceiveDraft, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[sessionID+":receive"]
	if !ok || e.receive == nil {
		return nil, false
	}
	return e.receive, true
}

// Discard drops the session's draft of the given kind.
func (r *Registry) Discard(sessionID string, kind Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, r.key(sessionID, kind))
}

// DiscardReceive drops the session's receive draft.
func (r *Registry) DiscardReceive(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, sessionID+":receive")
}

// BeginSubmit flips the in-flight flag for the keyed draft. It returns
// false when a submission is already pending.
func (r *Registry) BeginSubmit(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok || e.inFlight {
		return false
	}
	e.inFlight = true
	return true
}

// EndSubmit clears the in-flight flag once the request resolved.
func (r *Registry) EndSubmit(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[key]; ok {
		e.inFlight = false
	}
}

// SubmitKey builds the in-flight key for a kind draft.
func (r *Registry) SubmitKey(sessionID string, kind Kind) string {
	return r.key(sessionID, kind)
}

// ReceiveSubmitKey builds the in-flight key for the receive draft.
func (r *Registry) ReceiveSubmitKey(sessionID string) string {
	return sessionID + ":receive"
}
