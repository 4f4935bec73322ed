package dnd

import (
	"context"

	"github.com/zjrosen/ferry/internal/pubsub"
)

// Binding is the per-node contract a draggable/droppable element supplies
// when it mounts. ID is local; the node is keyed everywhere else by
// Namespace + ":" + ID.
type Binding[T any] struct {
	ID         string
	Namespace  string
	State      T
	EnableDrag bool

	EnableDrop  func(entities []Entity[T]) bool
	OnDragStart func(s State[T]) []Entity[T]
	OnDrop      func(ctx context.Context, entities []Entity[T]) error
	OnLeave     func(ctx context.Context) error
}

// Node is a mounted binding. It owns its registry entry, tracks its
// derived status, and exposes status change events to the element that
// created it. Rebinding with updated callbacks replaces the entry in
// place, which is how elements refresh handler identity across renders.
type Node[T any] struct {
	entity     Entity[T]
	enableDrag bool
	store      *Store[T]
	registry   *Registry[T]
}

// Bind registers the binding and starts status tracking for the node.
// The registration lives until Unbind.
func Bind[T any](store *Store[T], registry *Registry[T], b Binding[T]) *Node[T] {
	n := &Node[T]{
		entity:     Entity[T]{ID: b.ID, Namespace: b.Namespace, State: b.State},
		enableDrag: b.EnableDrag,
		store:      store,
		registry:   registry,
	}
	registry.Register(n.ID(), Registration[T]{
		Entity:      n.entity,
		EnableDrop:  b.EnableDrop,
		OnDragStart: b.OnDragStart,
		OnDrop:      b.OnDrop,
		OnLeave:     b.OnLeave,
	})
	store.Watch(n.ID())
	return n
}

// Rebind replaces the node's registration with fresh callbacks.
func (n *Node[T]) Rebind(b Binding[T]) {
	n.entity = Entity[T]{ID: b.ID, Namespace: b.Namespace, State: b.State}
	n.enableDrag = b.EnableDrag
	n.registry.Register(n.ID(), Registration[T]{
		Entity:      n.entity,
		EnableDrop:  b.EnableDrop,
		OnDragStart: b.OnDragStart,
		OnDrop:      b.OnDrop,
		OnLeave:     b.OnLeave,
	})
}

// Unbind removes the registration and stops status tracking.
func (n *Node[T]) Unbind() {
	n.registry.Unregister(n.ID())
	n.store.Unwatch(n.ID())
}

// ID returns the node's qualified id.
func (n *Node[T]) ID() string {
	return n.entity.QualifiedID()
}

// Entity returns the node's own entity.
func (n *Node[T]) Entity() Entity[T] {
	return n.entity
}

// Draggable reports whether the node opted into dragging.
func (n *Node[T]) Draggable() bool {
	return n.enableDrag
}

// Status derives the node's current display status from global state.
func (n *Node[T]) Status() NodeStatus {
	return StatusFor(n.store.State(), n.ID())
}

// Dragging returns the entity sequence the node exposes to descendants
// for its current status.
func (n *Node[T]) Dragging() []Entity[T] {
	return DraggingFor(n.store.State(), n.ID())
}

// StatusChanges subscribes to this node's status change events. The
// channel closes when ctx is cancelled.
func (n *Node[T]) StatusChanges(ctx context.Context) <-chan pubsub.Event[StatusChange[T]] {
	return n.store.StatusChanges(ctx, n.ID())
}
