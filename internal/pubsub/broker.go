package pubsub

import (
	"context"
	"sync"
	"time"
)

const defaultBufferSize = 64

// Broker fans events out to any number of subscribers. Publishing never
// blocks: a subscriber that falls behind its channel buffer loses events
// rather than stalling the publisher.
type Broker[T any] struct {
	mu      sync.RWMutex
	subs    map[uint64]chan Event[T]
	nextID  uint64
	closed  bool
	bufSize int
}

// NewBroker creates a broker with the default per-subscriber buffer.
func NewBroker[T any]() *Broker[T] {
	return NewBrokerWithBuffer[T](defaultBufferSize)
}

// NewBrokerWithBuffer creates a broker whose subscriber channels hold up
// to size undelivered events.
func NewBrokerWithBuffer[T any](size int) *Broker[T] {
	return &Broker[T]{
		subs:    make(map[uint64]chan Event[T]),
		bufSize: size,
	}
}

// Subscribe registers a new subscriber. The returned channel is closed
// when ctx is cancelled or the broker shuts down. Subscribing to a closed
// broker yields an already-closed channel.
func (b *Broker[T]) Subscribe(ctx context.Context) <-chan Event[T] {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		ch := make(chan Event[T])
		close(ch)
		return ch
	}

	id := b.nextID
	b.nextID++
	sub := make(chan Event[T], b.bufSize)
	b.subs[id] = sub
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.closed {
			return
		}
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}()

	return sub
}

// Publish delivers an event to every subscriber with room in its buffer.
func (b *Broker[T]) Publish(eventType EventType, payload T) {
	event := Event[T]{Type: eventType, Payload: payload, Timestamp: time.Now()}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, sub := range b.subs {
		select {
		case sub <- event:
		default:
			// Subscriber buffer full, event dropped.
		}
	}
}

// Close shuts the broker down and closes every subscriber channel.
// Closing twice is a no-op.
func (b *Broker[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, sub := range b.subs {
		close(sub)
	}
	b.subs = nil
}

// SubscriberCount reports how many subscribers are registered.
func (b *Broker[T]) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
