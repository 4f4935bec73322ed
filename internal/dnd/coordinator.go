package dnd

import (
	"context"

	"github.com/zjrosen/ferry/internal/pubsub"
)

// Coordinator bundles the store, registry, and monitor into one facade.
// A UI wires its pointer engine output into Handle and binds each of its
// draggable/droppable elements through Bind.
type Coordinator[T any] struct {
	store    *Store[T]
	registry *Registry[T]
	monitor  *Monitor[T]
}

// NewCoordinator creates a coordinator with empty state.
func NewCoordinator[T any]() *Coordinator[T] {
	store := NewStore[T]()
	registry := NewRegistry[T]()
	return &Coordinator[T]{
		store:    store,
		registry: registry,
		monitor:  NewMonitor(store, registry),
	}
}

// Bind mounts a node binding.
func (c *Coordinator[T]) Bind(b Binding[T]) *Node[T] {
	return Bind(c.store, c.registry, b)
}

// Handle routes one pointer-engine event to the monitor.
// Unknown event types are ignored.
func (c *Coordinator[T]) Handle(ctx context.Context, event any) {
	switch ev := event.(type) {
	case StartEvent[T]:
		c.monitor.DragStart(ctx, ev)
	case OverEvent[T]:
		c.monitor.DragOver(ctx, ev)
	case EndEvent:
		c.monitor.DragEnd(ctx, ev)
	}
}

// State returns the current global drag/drop state.
func (c *Coordinator[T]) State() State[T] {
	return c.store.State()
}

// Transitions subscribes to every applied state transition.
func (c *Coordinator[T]) Transitions(ctx context.Context) <-chan pubsub.Event[Transition[T]] {
	return c.store.Transitions(ctx)
}

// Close shuts down the coordinator's event brokers.
func (c *Coordinator[T]) Close() {
	c.store.Close()
}
