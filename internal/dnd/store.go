package dnd

import (
	"context"
	"sync"

	"github.com/zjrosen/ferry/internal/log"
	"github.com/zjrosen/ferry/internal/pubsub"
)

// Transition is published after every applied action.
type Transition[T any] struct {
	Action string
	State  State[T]
}

// StatusChange notifies one node that its derived status changed.
type StatusChange[T any] struct {
	NodeID   string
	Status   NodeStatus
	Dragging []Entity[T]
}

// Store owns the global drag/drop state. All transitions are serialized
// through Dispatch under a single mutex, so no two reducer applications
// race. After each transition the store re-derives the status of every
// watched node and notifies only the nodes whose status actually changed.
type Store[T any] struct {
	mu       sync.Mutex
	state    State[T]
	watched  map[string]NodeStatus
	statuses *pubsub.KeyedBroker[StatusChange[T]]
	trans    *pubsub.Broker[Transition[T]]
}

// NewStore creates a store with empty state.
func NewStore[T any]() *Store[T] {
	return &Store[T]{
		state:    NewState[T](),
		watched:  make(map[string]NodeStatus),
		statuses: pubsub.NewKeyedBroker[StatusChange[T]](),
		trans:    pubsub.NewBroker[Transition[T]](),
	}
}

// State returns a copy-safe view of the current state. The returned value
// shares its maps and slices with the store but transitions never mutate
// them in place, so readers may hold it across dispatches.
func (s *Store[T]) State() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies action to the state machine and publishes the resulting
// transition plus per-node status changes.
func (s *Store[T]) Dispatch(action Action) {
	s.mu.Lock()
	s.state = reduce(s.state, action)
	next := s.state

	changes := make([]StatusChange[T], 0, 2)
	for id, prev := range s.watched {
		status := StatusFor(next, id)
		if status == prev {
			continue
		}
		s.watched[id] = status
		changes = append(changes, StatusChange[T]{
			NodeID:   id,
			Status:   status,
			Dragging: DraggingFor(next, id),
		})
	}
	s.mu.Unlock()

	log.Debug(log.CatDnd, "dispatch",
		"action", action.Name(),
		"dragging", len(next.Dragging),
		"over", len(next.Over),
		"dropping", len(next.Dropping),
	)

	s.trans.Publish(pubsub.TransitionEvent, Transition[T]{Action: action.Name(), State: next})
	for _, c := range changes {
		s.statuses.Publish(c.NodeID, pubsub.StatusEvent, c)
	}
}

// Watch starts status tracking for id. The node's current status is
// recorded so only real changes are published.
func (s *Store[T]) Watch(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watched[id] = StatusFor(s.state, id)
}

// Unwatch stops status tracking for id.
func (s *Store[T]) Unwatch(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.watched, id)
}

// StatusChanges subscribes to status change events for one node.
// The channel closes when ctx is cancelled.
func (s *Store[T]) StatusChanges(ctx context.Context, id string) <-chan pubsub.Event[StatusChange[T]] {
	return s.statuses.Subscribe(ctx, id)
}

// Transitions subscribes to every applied transition.
func (s *Store[T]) Transitions(ctx context.Context) <-chan pubsub.Event[Transition[T]] {
	return s.trans.Subscribe(ctx)
}

// Close shuts down the store's brokers.
func (s *Store[T]) Close() {
	s.trans.Close()
	s.statuses.Close()
}
