package dnd

import (
	"context"
	"sync"
)

// Registration is the callback set a node opts into, keyed by its qualified
// id. Every field except Entity is optional: a missing EnableDrop permits
// drops, a missing OnDrop accepts silently, a missing OnLeave skips the
// two-phase leave, a missing OnDragStart drags the node's own entity.
type Registration[T any] struct {
	// Entity is the node's own identity and payload.
	Entity Entity[T]

	// EnableDrop gates hovering. Called synchronously with the entities
	// currently being dragged.
	EnableDrop func(entities []Entity[T]) bool

	// OnDragStart resolves the drag payload when a gesture starts on this
	// node. Returning an empty sequence falls back to the node's entity.
	OnDragStart func(s State[T]) []Entity[T]

	// OnDrop performs the drop mutation. Runs on its own goroutine; the
	// returned error is logged and turns the drop into a cancellation.
	OnDrop func(ctx context.Context, entities []Entity[T]) error

	// OnLeave runs cleanup when the pointer leaves this node. Its error
	// never blocks removal of the hover entry.
	OnLeave func(ctx context.Context) error
}

// Registry maps qualified node ids to their registrations. Entries are
// owned by individual nodes and re-registered whenever a node's callbacks
// change identity; the monitor only ever reads by direct id lookup.
type Registry[T any] struct {
	mu      sync.RWMutex
	entries map[string]Registration[T]
}

// NewRegistry creates an empty registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{entries: make(map[string]Registration[T])}
}

// Register adds or replaces the registration for id.
func (r *Registry[T]) Register(id string, reg Registration[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = reg
}

// Unregister removes the registration for id. Unknown ids are a no-op.
func (r *Registry[T]) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

// Lookup returns the registration for id, if any.
func (r *Registry[T]) Lookup(id string) (Registration[T], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.entries[id]
	return reg, ok
}

// Len returns the number of registered nodes.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
