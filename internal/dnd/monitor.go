package dnd

import (
	"context"
	"sync"

	"github.com/zjrosen/ferry/internal/log"
)

// StartEvent reports a drag gesture starting on a node.
type StartEvent[T any] struct {
	ActiveID string
	// Entities is the engine-supplied payload, used when the node's
	// registration has no drag-start resolver.
	Entities []Entity[T]
}

// OverEvent reports the drop target currently under the pointer.
// HasTarget is false when the pointer is over no valid target.
type OverEvent[T any] struct {
	TargetID  string
	Entity    Entity[T]
	HasTarget bool
}

// EndEvent reports the gesture ending, over a target or not.
type EndEvent struct {
	TargetID  string
	HasTarget bool
}

// Monitor is the event orchestrator. It consumes raw pointer-engine events,
// consults the registry, and decides which actions the store applies. Async
// drop and leave handlers run on their own goroutines and dispatch their
// follow-up action when they settle; the monitor is reentrant, so a new
// gesture can begin while a previous drop is still in flight.
type Monitor[T any] struct {
	store    *Store[T]
	registry *Registry[T]

	mu       sync.Mutex
	lastOver string
}

// NewMonitor creates a monitor driving store from registry lookups.
func NewMonitor[T any](store *Store[T], registry *Registry[T]) *Monitor[T] {
	return &Monitor[T]{store: store, registry: registry}
}

// DragStart resolves the drag payload and starts a gesture.
// If the active node registered a drag-start resolver and it returns a
// non-empty sequence, that sequence (qualified under the node's namespace)
// becomes the payload; otherwise the engine-supplied entities are used.
func (m *Monitor[T]) DragStart(ctx context.Context, ev StartEvent[T]) {
	entities := ev.Entities

	if reg, ok := m.registry.Lookup(ev.ActiveID); ok && reg.OnDragStart != nil {
		if resolved := reg.OnDragStart(m.store.State()); len(resolved) > 0 {
			entities = QualifyAll(resolved, reg.Entity.Namespace)
		}
	}

	m.mu.Lock()
	m.lastOver = ""
	m.mu.Unlock()

	log.Debug(log.CatDnd, "drag start", "active", ev.ActiveID, "entities", len(entities))
	m.store.Dispatch(dragStart[T]{entities: entities})
}

// DragOver processes continuous pointer movement during a gesture.
func (m *Monitor[T]) DragOver(ctx context.Context, ev OverEvent[T]) {
	if !ev.HasTarget {
		m.leavePrevious(ctx)
		return
	}

	// A dragged item may not become its own drop target.
	if m.store.State().IsDragging(ev.TargetID) {
		return
	}

	entity := ev.Entity
	reg, registered := m.registry.Lookup(ev.TargetID)
	if registered {
		entity = reg.Entity
	}

	allowed := true
	if registered && reg.EnableDrop != nil {
		allowed = reg.EnableDrop(m.store.State().Dragging)
	}
	if !allowed {
		// The target refuses the hover; treat it like leaving whatever
		// was hovered before, so no entry is ever created for it.
		m.leavePrevious(ctx)
		return
	}

	m.mu.Lock()
	prev := m.lastOver
	m.lastOver = ev.TargetID
	m.mu.Unlock()

	if prev != "" && prev != ev.TargetID {
		m.leave(ctx, prev)
	}
	m.store.Dispatch(dragOver[T]{entity: entity})
}

// DragEnd completes a gesture: a cancel with no target, or a drop.
func (m *Monitor[T]) DragEnd(ctx context.Context, ev EndEvent) {
	if !ev.HasTarget {
		log.Debug(log.CatDnd, "drag canceled, no target")
		m.store.Dispatch(dragCanceled{})
		m.leavePrevious(ctx)
		return
	}

	// Dropping onto a dragged entity is a cancel, same as no target.
	if m.store.State().IsDragging(ev.TargetID) {
		log.Debug(log.CatDnd, "drag canceled, dropped on dragged entity", "target", ev.TargetID)
		m.store.Dispatch(dragCanceled{})
		m.leavePrevious(ctx)
		return
	}

	m.mu.Lock()
	m.lastOver = ""
	m.mu.Unlock()

	reg, registered := m.registry.Lookup(ev.TargetID)
	if !registered || reg.OnDrop == nil {
		// A drop target with no handler accepts silently. The pending
		// and resolved transitions still run so the gesture state is
		// cleared the same way as a handled drop.
		m.store.Dispatch(dropPending{targetID: ev.TargetID})
		m.store.Dispatch(dropResolved{targetID: ev.TargetID})
		return
	}

	// Refuse a second drop while one is already pending for the target,
	// so at most one snapshot per target id is ever in flight.
	if _, pending := m.store.State().snapshotFor(ev.TargetID); pending {
		log.Warn(log.CatDnd, "drop refused, target busy", "target", ev.TargetID)
		m.store.Dispatch(dragCanceled{})
		m.store.Dispatch(dragLeaveResolved{id: ev.TargetID})
		return
	}

	pre := m.store.State()
	m.store.Dispatch(dropPending{targetID: ev.TargetID})

	go func() {
		if err := reg.OnDrop(ctx, pre.Dragging); err != nil {
			log.ErrorErr(log.CatDnd, "drop handler failed", err, "target", ev.TargetID)
			m.store.Dispatch(dropCanceled{targetID: ev.TargetID})
			return
		}
		m.store.Dispatch(dropResolved{targetID: ev.TargetID})
	}()
}

// leavePrevious runs the leave flow for the last hovered target, if any.
func (m *Monitor[T]) leavePrevious(ctx context.Context) {
	m.mu.Lock()
	prev := m.lastOver
	m.lastOver = ""
	m.mu.Unlock()

	if prev == "" {
		return
	}
	m.leave(ctx, prev)
}

// leave removes the hover entry for id. Targets with a leave handler get
// the two-phase removal: the entry is marked leaving, the handler runs on
// its own goroutine, and the entry is purged when it settles regardless of
// the outcome. Each leave captures its own id, so overlapping leaves for
// different targets resolve independently.
func (m *Monitor[T]) leave(ctx context.Context, id string) {
	reg, registered := m.registry.Lookup(id)
	if !registered || reg.OnLeave == nil {
		m.store.Dispatch(dragLeave{id: id})
		m.store.Dispatch(dragLeaveResolved{id: id})
		return
	}

	m.store.Dispatch(dragLeave{id: id})
	go func() {
		if err := reg.OnLeave(ctx); err != nil {
			log.ErrorErr(log.CatDnd, "leave handler failed", err, "target", id)
		}
		m.store.Dispatch(dragLeaveResolved{id: id})
	}()
}
